package store

import "context"

// Collection keys. The whole persistence surface is two entries in a
// key-value store; each holds one serialized collection.
const (
	KeyTrades       = "trades"
	KeyMarketPrices = "market_prices"
)

// Store is the sole interface to persistence: get a value by key or report
// it absent, and set a value wholesale. Implementations must treat Set as a
// full replacement of the stored value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

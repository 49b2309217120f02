package store

import (
	"context"
	"fmt"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/username/markfolio/backend/src/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Repository layers the two typed collections over the raw Store. Trade
// writes are appends (read-modify-write of the whole collection); market
// price uploads replace their collection outright. The two write modes are
// deliberately distinct.
//
// Each collection takes a mutex around its read-modify-write sequence so
// concurrent writers serialize instead of losing updates.
type Repository struct {
	store   Store
	tradeMu sync.Mutex
	priceMu sync.Mutex
}

func NewRepository(s Store) *Repository {
	return &Repository{store: s}
}

// Trades returns the full trade collection in append order.
func (r *Repository) Trades(ctx context.Context) ([]models.Trade, error) {
	return loadCollection[models.Trade](ctx, r.store, KeyTrades)
}

// AppendTrades adds records to the end of the trade collection.
func (r *Repository) AppendTrades(ctx context.Context, trades []models.Trade) error {
	r.tradeMu.Lock()
	defer r.tradeMu.Unlock()

	existing, err := loadCollection[models.Trade](ctx, r.store, KeyTrades)
	if err != nil {
		return err
	}
	return saveCollection(ctx, r.store, KeyTrades, append(existing, trades...))
}

// ReplaceTrades rewrites the trade collection wholesale.
func (r *Repository) ReplaceTrades(ctx context.Context, trades []models.Trade) error {
	r.tradeMu.Lock()
	defer r.tradeMu.Unlock()
	return saveCollection(ctx, r.store, KeyTrades, trades)
}

// MarketPrices returns the full price collection in stored order.
func (r *Repository) MarketPrices(ctx context.Context) ([]models.MarketPrice, error) {
	return loadCollection[models.MarketPrice](ctx, r.store, KeyMarketPrices)
}

// ReplaceMarketPrices rewrites the price collection wholesale.
func (r *Repository) ReplaceMarketPrices(ctx context.Context, prices []models.MarketPrice) error {
	r.priceMu.Lock()
	defer r.priceMu.Unlock()
	return saveCollection(ctx, r.store, KeyMarketPrices, prices)
}

func loadCollection[T any](ctx context.Context, s Store, key string) ([]T, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("error reading %s collection: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("error decoding %s collection: %w", key, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func saveCollection[T any](ctx context.Context, s Store, key string, records []T) error {
	if records == nil {
		records = []T{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("error encoding %s collection: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("error writing %s collection: %w", key, err)
	}
	return nil
}

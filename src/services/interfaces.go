package services

import (
	"context"
	"errors"

	"github.com/username/markfolio/backend/src/models"
)

// ErrEmptyCSV reports input with fewer than two lines (header plus at least
// one data row).
var ErrEmptyCSV = errors.New("CSV input is empty or malformed")

// DashboardService is the full logical operation surface consumed by the
// HTTP handlers. Row-level validation failures are reported inside the
// result shapes; returned errors mean the whole operation failed (store
// failures, unusable input).
type DashboardService interface {
	UploadTrades(ctx context.Context, csvText string) (*models.UploadResult, error)
	CreateTrade(ctx context.Context, row models.RawRow) (*models.Trade, []string, error)
	ListTrades(ctx context.Context, filter models.TradeFilter, page, limit int) (*models.TradeListResult, error)
	ClearTrades(ctx context.Context) error

	UploadMarketPrices(ctx context.Context, csvText string) (*models.PriceUploadResult, error)
	ListMarketPrices(ctx context.Context) ([]models.MarketPrice, error)
	ClearMarketPrices(ctx context.Context) error

	ComputePnL(ctx context.Context, filter models.PnLFilter) (*models.PnLResult, error)
	GetStats(ctx context.Context) (*models.Stats, error)
	ListInstruments(ctx context.Context) ([]string, error)
	ListTraders(ctx context.Context) ([]string, error)
	ClearAll(ctx context.Context) error
}

package services

import (
	"context"
	"sort"

	"github.com/patrickmn/go-cache"

	"github.com/username/markfolio/backend/src/logger"
	"github.com/username/markfolio/backend/src/models"
)

// GetStats computes the dashboard headline figures over the full, unfiltered
// collections. Sums use plain float64 accumulation.
func (s *dashboardServiceImpl) GetStats(ctx context.Context) (*models.Stats, error) {
	if cached, found := s.reportCache.Get(ckStats); found {
		logger.L.Debug("Cache hit for dashboard stats")
		return cached.(*models.Stats), nil
	}

	trades, err := s.repo.Trades(ctx)
	if err != nil {
		return nil, err
	}
	prices, err := s.repo.MarketPrices(ctx)
	if err != nil {
		return nil, err
	}

	instruments := make(map[string]struct{})
	traders := make(map[string]struct{})
	stats := &models.Stats{
		TotalTrades:       len(trades),
		MarketPricesCount: len(prices),
	}
	for _, t := range trades {
		instruments[t.Instrument] = struct{}{}
		traders[t.Trader] = struct{}{}
		stats.TotalVolume += t.Quantity
		stats.TotalNotional += t.Quantity * t.TradePrice
	}
	stats.UniqueInstruments = len(instruments)
	stats.UniqueTraders = len(traders)

	s.reportCache.Set(ckStats, stats, cache.DefaultExpiration)
	return stats, nil
}

func (s *dashboardServiceImpl) ListInstruments(ctx context.Context) ([]string, error) {
	if cached, found := s.reportCache.Get(ckInstruments); found {
		return cached.([]string), nil
	}
	trades, err := s.repo.Trades(ctx)
	if err != nil {
		return nil, err
	}
	values := dedupeSorted(trades, func(t models.Trade) string { return t.Instrument })
	s.reportCache.Set(ckInstruments, values, cache.DefaultExpiration)
	return values, nil
}

func (s *dashboardServiceImpl) ListTraders(ctx context.Context) ([]string, error) {
	if cached, found := s.reportCache.Get(ckTraders); found {
		return cached.([]string), nil
	}
	trades, err := s.repo.Trades(ctx)
	if err != nil {
		return nil, err
	}
	values := dedupeSorted(trades, func(t models.Trade) string { return t.Trader })
	s.reportCache.Set(ckTraders, values, cache.DefaultExpiration)
	return values, nil
}

// dedupeSorted collects the distinct values of one trade field. Sorted for
// stable responses; the contract leaves ordering unspecified.
func dedupeSorted(trades []models.Trade, field func(models.Trade) string) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, t := range trades {
		v := field(t)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

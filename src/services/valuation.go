package services

import (
	"context"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/markfolio/backend/src/logger"
	"github.com/username/markfolio/backend/src/models"
)

const priceDateLayout = "2006-01-02"

// ComputePnL joins the filtered trade set against the latest market price
// per instrument and rolls up total and per-day P&L. Trades without a
// matching price are counted but not valued. The unfiltered result is
// cached until the next write.
func (s *dashboardServiceImpl) ComputePnL(ctx context.Context, filter models.PnLFilter) (*models.PnLResult, error) {
	cacheable := filter == (models.PnLFilter{})
	if cacheable {
		if cached, found := s.reportCache.Get(ckPnLAll); found {
			logger.L.Debug("Cache hit for unfiltered PnL")
			return cached.(*models.PnLResult), nil
		}
	}

	trades, err := s.repo.Trades(ctx)
	if err != nil {
		return nil, err
	}
	prices, err := s.repo.MarketPrices(ctx)
	if err != nil {
		return nil, err
	}

	filtered := filterForValuation(trades, filter)
	latest := latestPriceByInstrument(prices)

	result := &models.PnLResult{
		TradeCount: len(filtered),
		DailyPnL:   []models.DailyPnL{},
		Trades:     []models.ValuedTrade{},
	}

	dailyTotals := make(map[string]float64)
	for _, t := range filtered {
		price, ok := latest[t.Instrument]
		if !ok {
			continue
		}
		// Same formula for BUY and SELL: the delta is not sign-adjusted
		// for the sell side.
		mtm := (price.ClosePrice - t.TradePrice) * t.Quantity
		result.TotalPnL += mtm
		result.ValuedTradeCount++
		dailyTotals[t.TradeDate] += mtm
		result.Trades = append(result.Trades, models.ValuedTrade{
			Trade:       t,
			MarketPrice: price.ClosePrice,
			MtM:         mtm,
		})
	}

	for date, pnl := range dailyTotals {
		result.DailyPnL = append(result.DailyPnL, models.DailyPnL{Date: date, PnL: pnl})
	}
	sort.Slice(result.DailyPnL, func(i, j int) bool {
		return earlierDate(result.DailyPnL[i].Date, result.DailyPnL[j].Date)
	})

	if cacheable {
		s.reportCache.Set(ckPnLAll, result, cache.DefaultExpiration)
	}
	return result, nil
}

// filterForValuation applies the valuation-side filters: inclusive lexical
// date bounds and an exact (not substring) instrument match.
func filterForValuation(trades []models.Trade, f models.PnLFilter) []models.Trade {
	filtered := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if f.FromDate != "" && t.TradeDate < f.FromDate {
			continue
		}
		if f.ToDate != "" && t.TradeDate > f.ToDate {
			continue
		}
		if f.Instrument != "" && t.Instrument != f.Instrument {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

// latestPriceByInstrument picks, per instrument, the record with the maximum
// price_date. Among equal dates the first record in stored order wins.
func latestPriceByInstrument(prices []models.MarketPrice) map[string]models.MarketPrice {
	latest := make(map[string]models.MarketPrice)
	latestDate := make(map[string]time.Time)
	for _, p := range prices {
		d := parsePriceDate(p.PriceDate)
		if cur, ok := latestDate[p.Instrument]; ok && !d.After(cur) {
			continue
		}
		latest[p.Instrument] = p
		latestDate[p.Instrument] = d
	}
	return latest
}

func parsePriceDate(s string) time.Time {
	t, err := time.Parse(priceDateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func earlierDate(a, b string) bool {
	ta, errA := time.Parse(priceDateLayout, a)
	tb, errB := time.Parse(priceDateLayout, b)
	if errA != nil || errB != nil {
		return a < b
	}
	return ta.Before(tb)
}

package services

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/username/markfolio/backend/src/models"
	"github.com/username/markfolio/backend/src/utils"
)

const DefaultPageLimit = 50

// ListTrades filters, sorts and paginates the trade collection. An
// out-of-range page yields an empty slice, never an error.
func (s *dashboardServiceImpl) ListTrades(ctx context.Context, filter models.TradeFilter, page, limit int) (*models.TradeListResult, error) {
	trades, err := s.repo.Trades(ctx)
	if err != nil {
		return nil, err
	}

	filtered := filterTrades(trades, filter)
	sortTradesByID(filtered)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}

	total := len(filtered)
	start := utils.MinInt((page-1)*limit, total)
	end := utils.MinInt(start+limit, total)

	return &models.TradeListResult{
		Trades: filtered[start:end],
		Pagination: models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: utils.CeilDiv(total, limit),
		},
	}, nil
}

// filterTrades keeps a trade iff it passes every supplied condition: an
// inclusive lexical date range and case-insensitive substring matches on
// instrument and trader.
func filterTrades(trades []models.Trade, f models.TradeFilter) []models.Trade {
	filtered := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if f.FromDate != "" && t.TradeDate < f.FromDate {
			continue
		}
		if f.ToDate != "" && t.TradeDate > f.ToDate {
			continue
		}
		if f.Instrument != "" && !strings.Contains(strings.ToLower(t.Instrument), strings.ToLower(f.Instrument)) {
			continue
		}
		if f.Trader != "" && !strings.Contains(strings.ToLower(t.Trader), strings.ToLower(f.Trader)) {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

var nonDigits = regexp.MustCompile(`\D`)

// sortTradesByID orders ascending by the numeric key extracted from
// trade_id (all non-digit characters stripped). When either side has no
// usable numeric key the pair is compared lexically on the full id. The
// policy is applied consistently to every pair.
func sortTradesByID(trades []models.Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		return compareTradeIDs(trades[i].TradeID, trades[j].TradeID) < 0
	})
}

func compareTradeIDs(a, b string) int {
	an, aok := tradeIDNumericKey(a)
	bn, bok := tradeIDNumericKey(b)
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

func tradeIDNumericKey(id string) (int64, bool) {
	digits := nonDigits.ReplaceAllString(id, "")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

package parsers

import (
	"math"
	"strconv"
	"strings"

	"github.com/username/markfolio/backend/src/models"
)

const (
	DefaultTrader   = "Unknown"
	DefaultCurrency = "USD"

	SideBuy  = "BUY"
	SideSell = "SELL"
)

// ValidateTrade checks a raw row against the ingestion rules and, on success,
// returns the normalized trade: side uppercased, quantity and trade_price
// parsed, trader and currency defaulted. All rules are evaluated
// independently so a single row can accumulate multiple errors.
func ValidateTrade(row models.RawRow) (models.Trade, []string) {
	var errs []string

	if row["trade_id"] == "" {
		errs = append(errs, "trade_id is required")
	}
	if row["trade_date"] == "" {
		errs = append(errs, "trade_date is required")
	}
	if row["instrument"] == "" {
		errs = append(errs, "instrument is required")
	}

	side := strings.ToUpper(strings.TrimSpace(row["side"]))
	if side != SideBuy && side != SideSell {
		errs = append(errs, "side must be BUY or SELL")
	}

	quantity, err := parseFinite(row["quantity"])
	if err != nil {
		errs = append(errs, "quantity must be a number")
	}
	tradePrice, err := parseFinite(row["trade_price"])
	if err != nil {
		errs = append(errs, "trade_price must be a number")
	}

	if len(errs) > 0 {
		return models.Trade{}, errs
	}

	trader := row["trader"]
	if trader == "" {
		trader = DefaultTrader
	}
	currency := row["currency"]
	if currency == "" {
		currency = DefaultCurrency
	}

	return models.Trade{
		TradeID:    row["trade_id"],
		TradeDate:  row["trade_date"],
		Trader:     trader,
		Instrument: row["instrument"],
		Side:       side,
		Quantity:   quantity,
		TradePrice: tradePrice,
		Currency:   currency,
	}, nil
}

// PartitionTrades validates every row independently, never short-circuiting,
// and splits the batch into normalized trades and rejected rows.
func PartitionTrades(rows []models.RawRow) ([]models.Trade, []models.InvalidTrade) {
	valid := make([]models.Trade, 0, len(rows))
	var invalid []models.InvalidTrade
	for _, row := range rows {
		trade, errs := ValidateTrade(row)
		if len(errs) > 0 {
			invalid = append(invalid, models.InvalidTrade{Row: row, Errors: errs})
			continue
		}
		valid = append(valid, trade)
	}
	return valid, invalid
}

// ParseMarketPrices maps rows straight into price records with no validation.
// An unparseable close_price is stored as zero.
func ParseMarketPrices(rows []models.RawRow) []models.MarketPrice {
	prices := make([]models.MarketPrice, 0, len(rows))
	for _, row := range rows {
		closePrice, _ := strconv.ParseFloat(strings.TrimSpace(row["close_price"]), 64)
		prices = append(prices, models.MarketPrice{
			Instrument: row["instrument"],
			PriceDate:  row["price_date"],
			ClosePrice: closePrice,
		})
	}
	return prices
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

package models

// RawRow is one CSV data line mapped onto the header fields. Fields missing
// from a short row are simply absent from the map.
type RawRow map[string]string

// Trade is a captured trade after validation and normalization. Records are
// immutable once stored; the collection as a whole is append-only until
// cleared.
type Trade struct {
	TradeID    string  `json:"trade_id"`
	TradeDate  string  `json:"trade_date"` // YYYY-MM-DD, compared lexically for range filters
	Trader     string  `json:"trader"`
	Instrument string  `json:"instrument"`
	Side       string  `json:"side"` // BUY or SELL
	Quantity   float64 `json:"quantity"`
	TradePrice float64 `json:"trade_price"`
	Currency   string  `json:"currency"`
}

// MarketPrice is one close-of-day price observation. Instruments are matched
// by exact equality when valuing trades.
type MarketPrice struct {
	Instrument string  `json:"instrument"`
	PriceDate  string  `json:"price_date"`
	ClosePrice float64 `json:"close_price"`
}

// InvalidTrade pairs a rejected upload row with its validation errors.
type InvalidTrade struct {
	Row    RawRow   `json:"row"`
	Errors []string `json:"errors"`
}

// UploadResult summarizes a batch trade ingestion. InvalidTrades is capped at
// the first 10 rejected rows to bound the response size.
type UploadResult struct {
	ValidCount    int            `json:"validCount"`
	InvalidCount  int            `json:"invalidCount"`
	InvalidTrades []InvalidTrade `json:"invalidTrades"`
}

// PriceUploadResult reports how many market prices replaced the collection.
type PriceUploadResult struct {
	Count int `json:"count"`
}

// TradeFilter narrows a trade listing. Date bounds are inclusive and compared
// lexically; instrument and trader are case-insensitive substring matches.
type TradeFilter struct {
	FromDate   string
	ToDate     string
	Instrument string
	Trader     string
}

// PnLFilter narrows the valuation input. Unlike TradeFilter, the instrument
// filter is an exact match.
type PnLFilter struct {
	FromDate   string
	ToDate     string
	Instrument string
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type TradeListResult struct {
	Trades     []Trade    `json:"trades"`
	Pagination Pagination `json:"pagination"`
}

// ValuedTrade is a trade joined with the latest market price for its
// instrument and the resulting mark-to-market value.
type ValuedTrade struct {
	Trade
	MarketPrice float64 `json:"market_price"`
	MtM         float64 `json:"mtm"`
}

type DailyPnL struct {
	Date string  `json:"date"`
	PnL  float64 `json:"pnl"`
}

// PnLResult is the valuation output. TradeCount is the size of the filtered
// input; ValuedTradeCount counts trades for which a price could be resolved.
// Trades carries only the valued trades.
type PnLResult struct {
	TotalPnL         float64       `json:"totalPnL"`
	DailyPnL         []DailyPnL    `json:"dailyPnL"`
	TradeCount       int           `json:"tradeCount"`
	ValuedTradeCount int           `json:"valuedTradeCount"`
	Trades           []ValuedTrade `json:"trades"`
}

// Stats are the dashboard headline figures over the full, unfiltered
// collections.
type Stats struct {
	TotalTrades       int     `json:"totalTrades"`
	UniqueInstruments int     `json:"uniqueInstruments"`
	UniqueTraders     int     `json:"uniqueTraders"`
	TotalVolume       float64 `json:"totalVolume"`
	TotalNotional     float64 `json:"totalNotional"`
	MarketPricesCount int     `json:"marketPricesCount"`
}

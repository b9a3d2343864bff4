package models

// AggBar is one aggregated OHLCV bar from the market data provider.
// Field tags follow the Polygon aggregates response shape.
type AggBar struct {
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
	VWAP      float64 `json:"vw,omitempty"`
	Timestamp int64   `json:"t"`
	TradeN    int64   `json:"n,omitempty"`
}

// AggsResult is the payload returned to API clients for an aggregates query.
type AggsResult struct {
	Ticker string   `json:"ticker"`
	Range  string   `json:"range"`
	Bars   []AggBar `json:"data"`
}

// MarketTick is a single live event relayed from the upstream
// market data websocket to subscribed clients.
type MarketTick struct {
	EventType string  `json:"ev"`
	Ticker    string  `json:"sym"`
	Price     float64 `json:"p,omitempty"`
	Size      float64 `json:"s,omitempty"`
	Timestamp int64   `json:"t,omitempty"`
}

package prices

// PricePoint represents a daily OHLCV row for one symbol, in long format.
// A price table is a slice of these: one row per (symbol, date), with
// missing trading days simply absent rather than zero-filled.
type PricePoint struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Symbol string  `json:"symbol"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

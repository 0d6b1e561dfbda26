package model

// Indicator is a computed value tagged with whether enough history existed
// to compute it. When Ready is false, Value holds the neutral default
// (RSI 50, EMA last price, SMA 0, MACD 0).
type Indicator struct {
	Value float64
	Ready bool
}

// MACDResult holds the MACD line, signal line and histogram.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
	Ready     bool
}

// IndicatorSnapshot is recomputed every cycle from a price series.
type IndicatorSnapshot struct {
	Price float64
	RSI   Indicator
	EMA12 Indicator
	EMA26 Indicator
	MACD  MACDResult
	SMA20 Indicator
	SMA50 Indicator // SMA(min(50, len))
}

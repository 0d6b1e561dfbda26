package calculator

import "CoinSentinel/internal/model"

const (
	macdFast = 12
	macdSlow = 26
)

// MACD returns EMA12 - EMA26. The signal line is not smoothed and stays 0,
// so the histogram equals the MACD line.
// With fewer than 26 prices every field is 0 and Ready is false.
func MACD(prices []float64) model.MACDResult {
	if len(prices) < macdSlow {
		return model.MACDResult{}
	}
	macd := EMA(prices, macdFast).Value - EMA(prices, macdSlow).Value
	return model.MACDResult{
		MACD:      macd,
		Signal:    0,
		Histogram: macd,
		Ready:     true,
	}
}

// Snapshot computes every indicator the analyzer uses from one series.
func Snapshot(prices []float64) model.IndicatorSnapshot {
	snap := model.IndicatorSnapshot{
		RSI:   RSI(prices, DefaultRSIPeriod),
		EMA12: EMA(prices, macdFast),
		EMA26: EMA(prices, macdSlow),
		MACD:  MACD(prices),
		SMA20: SMA(prices, 20),
		SMA50: SMA(prices, min(50, len(prices))),
	}
	if len(prices) > 0 {
		snap.Price = prices[len(prices)-1]
	}
	return snap
}

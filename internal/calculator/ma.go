package calculator

import "CoinSentinel/internal/model"

// SMA computes the simple moving average of the last `period` prices.
// Returns {0, false} if there are fewer than period prices.
func SMA(prices []float64, period int) model.Indicator {
	if period <= 0 || len(prices) < period {
		return model.Indicator{}
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return model.Indicator{Value: sum / float64(period), Ready: true}
}

// EMA computes the exponential moving average, seeded with the SMA of the
// first `period` prices and smoothed with k = 2/(period+1) over the rest.
// With fewer than period prices it returns the last price, not ready.
func EMA(prices []float64, period int) model.Indicator {
	if len(prices) == 0 {
		return model.Indicator{}
	}
	if period <= 0 || len(prices) < period {
		return model.Indicator{Value: prices[len(prices)-1]}
	}

	k := 2.0 / float64(period+1)
	ema := 0.0
	for i := 0; i < period; i++ {
		ema += prices[i]
	}
	ema /= float64(period)
	for i := period; i < len(prices); i++ {
		ema = prices[i]*k + ema*(1-k)
	}
	return model.Indicator{Value: ema, Ready: true}
}

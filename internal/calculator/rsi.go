package calculator

import (
	"errors"

	"CoinSentinel/internal/model"
)

// ErrInvalidPeriod is returned for non-positive indicator periods.
var ErrInvalidPeriod = errors.New("period must be positive")

// DefaultRSIPeriod is the standard RSI lookback.
const DefaultRSIPeriod = 14

// neutralRSI is reported while there is not enough history.
const neutralRSI = 50.0

// RSI computes the relative strength index over the last `period` price
// changes using simple averages (no Wilder smoothing).
// Requires at least period+1 prices; otherwise returns {50, false}.
func RSI(prices []float64, period int) model.Indicator {
	ind, err := RSIChecked(prices, period)
	if err != nil {
		return model.Indicator{Value: neutralRSI}
	}
	return ind
}

// RSIChecked is RSI but reports a non-positive period as an error.
func RSIChecked(prices []float64, period int) (model.Indicator, error) {
	if period <= 0 {
		return model.Indicator{Value: neutralRSI}, ErrInvalidPeriod
	}
	if len(prices) < period+1 {
		return model.Indicator{Value: neutralRSI}, nil
	}

	var avgGain, avgLoss float64
	for i := len(prices) - period; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		return model.Indicator{Value: 100, Ready: true}, nil
	}
	rs := avgGain / avgLoss
	return model.Indicator{Value: 100.0 - 100.0/(1.0+rs), Ready: true}, nil
}

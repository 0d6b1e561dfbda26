package strategy

import (
	"fmt"

	"CoinSentinel/internal/model"
)

// Reason strings recorded by the rule groups, in the order they are checked.
const (
	ReasonOversold          = "RSI oversold"
	ReasonLeaningOversold   = "RSI leaning oversold"
	ReasonOverbought        = "RSI overbought"
	ReasonLeaningOverbought = "RSI leaning overbought"
	ReasonGoldenCross       = "golden cross"
	ReasonDeathCross        = "death cross"
	ReasonStrongUptrend     = "strong uptrend"
	ReasonStrongDowntrend   = "strong downtrend"
)

// factor is one rule group's outcome: the score it adds and the optional
// reason it records.
type factor struct {
	score  model.FactorScore
	reason string
}

// scoreRSI applies the mutually exclusive RSI bands.
// <30: buy 2.5, 30..40: buy 1.5, >70: sell 2.5, 60..70: sell 1.5.
func scoreRSI(rsi float64) factor {
	f := factor{score: model.FactorScore{Name: "RSI", Commentary: fmt.Sprintf("RSI=%.1f", rsi)}}
	switch {
	case rsi < 30:
		f.score.Side, f.score.Weight, f.reason = model.SideBuy, 2.5, ReasonOversold
	case rsi < 40:
		f.score.Side, f.score.Weight, f.reason = model.SideBuy, 1.5, ReasonLeaningOversold
	case rsi > 70:
		f.score.Side, f.score.Weight, f.reason = model.SideSell, 2.5, ReasonOverbought
	case rsi > 60:
		f.score.Side, f.score.Weight, f.reason = model.SideSell, 1.5, ReasonLeaningOverbought
	}
	return f
}

// scoreMACD adds 1 to buy on a positive histogram, otherwise 1 to sell.
func scoreMACD(macd model.MACDResult) factor {
	f := factor{score: model.FactorScore{Name: "MACD", Weight: 1, Commentary: fmt.Sprintf("hist=%.2f", macd.Histogram)}}
	if macd.Histogram > 0 {
		f.score.Side = model.SideBuy
	} else {
		f.score.Side = model.SideSell
	}
	return f
}

// scoreMovingAverages checks price/SMA20/SMA50 alignment.
// Both averages must be computed; otherwise the group contributes nothing.
func scoreMovingAverages(price float64, sma20, sma50 model.Indicator) factor {
	f := factor{score: model.FactorScore{Name: "MA cross", Commentary: "MA unavailable"}}
	if !sma20.Ready || !sma50.Ready {
		return f
	}
	f.score.Commentary = "no alignment"
	switch {
	case price > sma20.Value && sma20.Value > sma50.Value:
		f.score.Side, f.score.Weight, f.reason = model.SideBuy, 2, ReasonGoldenCross
		f.score.Commentary = "price > MA20 > MA50"
	case price < sma20.Value && sma20.Value < sma50.Value:
		f.score.Side, f.score.Weight, f.reason = model.SideSell, 2, ReasonDeathCross
		f.score.Commentary = "price < MA20 < MA50"
	}
	return f
}

// scoreChange grades the 24h change percent.
// >8: buy 1.5, 3..8: buy 0.5, <-8: sell 1.5, -8..-3: sell 0.5.
func scoreChange(change24h float64) factor {
	f := factor{score: model.FactorScore{Name: "24h change", Commentary: fmt.Sprintf("%+.2f%%", change24h)}}
	switch {
	case change24h > 8:
		f.score.Side, f.score.Weight, f.reason = model.SideBuy, 1.5, ReasonStrongUptrend
	case change24h > 3:
		f.score.Side, f.score.Weight = model.SideBuy, 0.5
	case change24h < -8:
		f.score.Side, f.score.Weight, f.reason = model.SideSell, 1.5, ReasonStrongDowntrend
	case change24h < -3:
		f.score.Side, f.score.Weight = model.SideSell, 0.5
	}
	return f
}

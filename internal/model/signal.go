package model

import "strings"

// SignalLabel is the discrete trading classification.
type SignalLabel string

const (
	LabelStrongBuy  SignalLabel = "strong-buy"
	LabelBuy        SignalLabel = "buy"
	LabelHold       SignalLabel = "hold"
	LabelSell       SignalLabel = "sell"
	LabelStrongSell SignalLabel = "strong-sell"
)

// Rank orders labels from strong-buy (0) to strong-sell (4).
func (l SignalLabel) Rank() int {
	switch l {
	case LabelStrongBuy:
		return 0
	case LabelBuy:
		return 1
	case LabelHold:
		return 2
	case LabelSell:
		return 3
	case LabelStrongSell:
		return 4
	}
	return 2
}

// IsBuy reports whether the label is buy or strong-buy.
func (l SignalLabel) IsBuy() bool { return strings.Contains(string(l), "buy") }

// IsSell reports whether the label is sell or strong-sell.
func (l SignalLabel) IsSell() bool { return strings.Contains(string(l), "sell") }

// Side says which score a factor contributed to.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
	SideNone Side = ""
)

// FactorScore is one rule group's contribution.
type FactorScore struct {
	Name       string  `json:"name"`
	Side       Side    `json:"side"`
	Weight     float64 `json:"weight"`
	Commentary string  `json:"commentary"`
}

// SignalResult is the classification of one asset at one point in time.
// RSI, MACD, SMA20 and Confidence are rounded for display; BuyScore and
// SellScore are the raw accumulated scores.
type SignalResult struct {
	Label      SignalLabel   `json:"label"`
	Confidence float64       `json:"confidence"`
	RSI        float64       `json:"rsi"`
	MACD       float64       `json:"macd"`
	SMA20      float64       `json:"sma20"`
	SMA20Ready bool          `json:"sma20_ready"`
	BuyScore   float64       `json:"buy_score"`
	SellScore  float64       `json:"sell_score"`
	Factors    []FactorScore `json:"factors,omitempty"`
	Reasons    []string      `json:"reasons,omitempty"`
	Rationale  string        `json:"rationale"`
	Warmup     bool          `json:"warmup"`
}

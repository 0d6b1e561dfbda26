// Package dashboard shapes per-cycle views for rendering and serves them
// over HTTP and websocket.
package dashboard

import (
	"math"
	"sort"
	"strings"

	"CoinSentinel/internal/model"
)

// Sort modes.
const (
	SortName   = "name"
	SortChange = "change"
	SortSignal = "signal"
	SortVolume = "volume"
)

// Filter modes.
const (
	FilterAll       = "all"
	FilterBuy       = "buy"
	FilterSell      = "sell"
	FilterFavorites = "favorites"
)

func label(v model.CoinView) model.SignalLabel {
	if v.Signal == nil {
		return model.LabelHold
	}
	return v.Signal.Label
}

// Sort orders rows in place. Unknown modes sort by name.
func Sort(rows []model.CoinView, mode string) {
	var less func(a, b model.CoinView) bool
	switch mode {
	case SortChange:
		less = func(a, b model.CoinView) bool { return math.Abs(a.Change24h) > math.Abs(b.Change24h) }
	case SortSignal:
		less = func(a, b model.CoinView) bool { return label(a).Rank() < label(b).Rank() }
	case SortVolume:
		less = func(a, b model.CoinView) bool { return a.Volume24h > b.Volume24h }
	default:
		less = func(a, b model.CoinView) bool { return strings.ToLower(a.Asset.Name) < strings.ToLower(b.Asset.Name) }
	}
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}

// Filter returns the rows matching mode. Unknown modes keep everything.
func Filter(rows []model.CoinView, mode string) []model.CoinView {
	var keep func(model.CoinView) bool
	switch mode {
	case FilterBuy:
		keep = func(v model.CoinView) bool { return label(v).IsBuy() }
	case FilterSell:
		keep = func(v model.CoinView) bool { return label(v).IsSell() }
	case FilterFavorites:
		keep = func(v model.CoinView) bool { return v.IsFavorite }
	default:
		return rows
	}
	out := make([]model.CoinView, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Summarize counts buy/hold/sell labels and picks the largest |change|.
// A move of exactly zero never becomes the top mover.
func Summarize(rows []model.CoinView) model.Summary {
	var sum model.Summary
	maxChange := 0.0
	for i := range rows {
		switch l := label(rows[i]); {
		case l.IsBuy():
			sum.Buy++
		case l.IsSell():
			sum.Sell++
		default:
			sum.Hold++
		}
		if math.Abs(rows[i].Change24h) > math.Abs(maxChange) {
			maxChange = rows[i].Change24h
			top := rows[i]
			sum.TopMover = &top
		}
	}
	return sum
}

package model

import "time"

// Asset describes one tracked coin.
type Asset struct {
	ID     string `yaml:"id" json:"id"`
	Symbol string `yaml:"symbol" json:"symbol"`
	Name   string `yaml:"name" json:"name"`
	FeedID string `yaml:"feed_id" json:"feed_id"` // CoinGecko id, defaults to ID
}

// Quote is one price observation from the feed, in the configured quote currency.
type Quote struct {
	Price     float64
	Change24h float64 // percent
	Volume24h float64
	FetchedAt time.Time
}

// PriceUpdate is posted by the background sync context. It is informational
// only and never merged into the foreground history.
type PriceUpdate struct {
	Source string           `json:"source"`
	Quotes map[string]Quote `json:"quotes"`
	At     time.Time        `json:"at"`
}

package model

import "time"

// CoinView is the per-cycle tuple handed to the renderer.
type CoinView struct {
	Asset      Asset         `json:"asset"`
	Price      float64       `json:"price"`
	Change24h  float64       `json:"change_24h"`
	Volume24h  float64       `json:"volume_24h"`
	Signal     *SignalResult `json:"signal"`
	IsFavorite bool          `json:"is_favorite"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Snapshot is the full set of views for one cycle.
type Snapshot struct {
	Coins     []CoinView `json:"coins"`
	Received  int        `json:"received"`
	Expected  int        `json:"expected"`
	CycleAt   time.Time  `json:"cycle_at"`
	Status    string     `json:"status"`
	LastError string     `json:"last_error,omitempty"`
}

// Summary counts labels across a set of views and names the biggest mover.
type Summary struct {
	Buy      int       `json:"buy"`
	Hold     int       `json:"hold"`
	Sell     int       `json:"sell"`
	TopMover *CoinView `json:"top_mover,omitempty"`
}

package recorder

import (
	"time"

	"CoinSentinel/internal/model"
)

// SignalRecord is one analyzed observation of an asset.
type SignalRecord struct {
	AssetID   string              `json:"asset_id"`
	Price     float64             `json:"price"`
	Change24h float64             `json:"change_24h"`
	Signal    *model.SignalResult `json:"signal"`
	At        time.Time           `json:"at"`
}

// FailureEvent records a cycle whose fetch retries were exhausted.
type FailureEvent struct {
	Source   string // fetcher name
	Attempts int
	Err      string
	At       time.Time
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordSignal(rec *SignalRecord) error
	RecordAlert(a *model.Alert) error
	RecordFailure(evt *FailureEvent) error
	// RecentSignals returns up to limit records for assetID, newest first.
	RecentSignals(assetID string, limit int) ([]SignalRecord, error)
	Close() error
}

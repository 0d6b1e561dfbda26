package recorder

import "CoinSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSignal(_ *SignalRecord) error  { return nil }
func (n *NoopRecorder) RecordAlert(_ *model.Alert) error    { return nil }
func (n *NoopRecorder) RecordFailure(_ *FailureEvent) error { return nil }
func (n *NoopRecorder) Close() error                        { return nil }

func (n *NoopRecorder) RecentSignals(_ string, _ int) ([]SignalRecord, error) {
	return nil, nil
}

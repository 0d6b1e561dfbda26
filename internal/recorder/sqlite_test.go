package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"CoinSentinel/internal/model"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "sentinel.db"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_RecentSignalsNewestFirst(t *testing.T) {
	r := openTemp(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	labels := []model.SignalLabel{model.LabelHold, model.LabelBuy, model.LabelStrongBuy}
	for i, l := range labels {
		err := r.RecordSignal(&SignalRecord{
			AssetID: "bitcoin",
			Price:   float64(100 + i),
			Signal:  &model.SignalResult{Label: l, Confidence: float64(10 * i), RSI: 55.6, Rationale: "consider buying"},
			At:      base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	if err := r.RecordSignal(&SignalRecord{AssetID: "ethereum", Price: 1, Signal: &model.SignalResult{Label: model.LabelHold, RSI: 50, Warmup: true}}); err != nil {
		t.Fatalf("record ethereum: %v", err)
	}

	got, err := r.RecentSignals("bitcoin", 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Signal.Label != model.LabelStrongBuy || got[1].Signal.Label != model.LabelBuy {
		t.Errorf("unexpected order: %s, %s", got[0].Signal.Label, got[1].Signal.Label)
	}
	if got[0].Price != 102 || got[0].Signal.RSI != 55.6 || !got[0].At.Equal(base.Add(2*time.Minute)) {
		t.Errorf("unexpected record: %+v", got[0])
	}

	eth, err := r.RecentSignals("ethereum", 0)
	if err != nil || len(eth) != 1 || !eth[0].Signal.Warmup {
		t.Errorf("expected one warm-up record for ethereum, got %+v err=%v", eth, err)
	}
}

func TestSQLiteRecorder_AlertsAndFailures(t *testing.T) {
	r := openTemp(t)
	if err := r.RecordAlert(&model.Alert{AssetID: "bitcoin", Kind: model.AlertTarget, Price: 5100000, Target: 5000000, Direction: model.DirectionAbove}); err != nil {
		t.Fatalf("record alert: %v", err)
	}
	if err := r.RecordFailure(&FailureEvent{Source: "coingecko", Attempts: 3, Err: "timeout"}); err != nil {
		t.Fatalf("record failure: %v", err)
	}

	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM alert_events WHERE kind = 'target'`).Scan(&n); err != nil || n != 1 {
		t.Errorf("expected 1 alert row, got %d (err=%v)", n, err)
	}
	if err := r.db.QueryRow(`SELECT attempts FROM fetch_failures`).Scan(&n); err != nil || n != 3 {
		t.Errorf("expected attempts=3, got %d (err=%v)", n, err)
	}
}

func TestSQLiteRecorder_NilSignalIgnored(t *testing.T) {
	r := openTemp(t)
	if err := r.RecordSignal(&SignalRecord{AssetID: "x"}); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

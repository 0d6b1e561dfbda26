// Package monitor runs the polling pipeline: fetch, record, analyze,
// evaluate alerts and publish a snapshot for rendering. A Monitor owns all
// foreground state; nothing is kept in package globals.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"CoinSentinel/internal/alert"
	"CoinSentinel/internal/collector"
	"CoinSentinel/internal/dashboard"
	"CoinSentinel/internal/history"
	"CoinSentinel/internal/metrics"
	"CoinSentinel/internal/model"
	"CoinSentinel/internal/notifier"
	"CoinSentinel/internal/recorder"
	"CoinSentinel/internal/store"
	"CoinSentinel/internal/strategy"
)

// Status values reported in snapshots.
const (
	StatusIdle     = "idle"
	StatusFetching = "fetching"
	StatusOK       = "ok"
	StatusFailed   = "failed"
)

var (
	// ErrHalted is returned by RunCycle after a fetch failure until Reload is called.
	ErrHalted       = errors.New("updates halted after fetch failure, reload to resume")
	ErrUnknownAsset = dashboard.ErrUnknownAsset
	ErrNoAlert      = errors.New("no alert configured")
)

// notifyTimeout bounds a single notification delivery inside a cycle.
const notifyTimeout = 30 * time.Second

// Deps are the collaborators a Monitor drives.
type Deps struct {
	Collector *collector.Collector
	Store     store.Store
	Recorder  recorder.Recorder
	Notifier  *notifier.Gate
	Metrics   *metrics.Metrics // optional
	Currency  string
	Capacity  int // history capacity, default 100
}

// Monitor is the foreground pipeline context.
type Monitor struct {
	cycleMu sync.Mutex // one fetch outstanding at a time
	mu      sync.Mutex

	collector *collector.Collector
	store     store.Store
	recorder  recorder.Recorder
	notifier  *notifier.Gate
	metrics   *metrics.Metrics
	currency  string

	assets  []model.Asset
	byID    map[string]model.Asset
	history *history.Store
	state   *model.UserState
	latest  map[string]model.CoinView

	status    string
	lastErr   error
	lastCycle time.Time
	received  int

	subMu       sync.RWMutex
	subscribers []func(*model.Snapshot)

	now func() time.Time
}

// New builds a Monitor and loads the persisted user state.
func New(ctx context.Context, deps Deps) (*Monitor, error) {
	if deps.Collector == nil {
		return nil, errors.New("monitor: collector is required")
	}
	if deps.Store == nil {
		return nil, errors.New("monitor: store is required")
	}
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	if deps.Notifier == nil {
		deps.Notifier = notifier.NewGate(notifier.LogNotifier{}, model.PermissionDefault)
	}
	if deps.Currency == "" {
		deps.Currency = "jpy"
	}

	m := &Monitor{
		collector: deps.Collector,
		store:     deps.Store,
		recorder:  deps.Recorder,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		currency:  deps.Currency,
		assets:    deps.Collector.Assets,
		byID:      make(map[string]model.Asset, len(deps.Collector.Assets)),
		history:   history.NewStore(deps.Capacity),
		latest:    make(map[string]model.CoinView),
		status:    StatusIdle,
		now:       time.Now,
	}
	for _, a := range m.assets {
		m.byID[a.ID] = a
	}

	state, err := m.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load user state: %w", err)
	}
	m.state = state
	log.Printf("[INFO] monitor ready: %d assets, %d favorites, %d alerts",
		len(m.assets), len(state.Favorites), len(state.Alerts))
	return m, nil
}

// Subscribe registers fn to receive every published snapshot.
func (m *Monitor) Subscribe(fn func(*model.Snapshot)) {
	m.subMu.Lock()
	m.subscribers = append(m.subscribers, fn)
	m.subMu.Unlock()
}

func (m *Monitor) publish(snap *model.Snapshot) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()
	for _, fn := range m.subscribers {
		fn(snap)
	}
}

// RunCycle performs one polling cycle. After the collector exhausts its
// retries the monitor enters the failed state and later cycles return
// ErrHalted until Reload.
//
// Cycles are serialized by cycleMu. The fetch and notification delivery run
// without holding mu, so readers keep seeing the previous results meanwhile.
func (m *Monitor) RunCycle(ctx context.Context) error {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()

	m.mu.Lock()
	prev := m.status
	if prev == StatusFailed {
		m.mu.Unlock()
		if m.metrics != nil {
			m.metrics.CyclesTotal.WithLabelValues("skipped").Inc()
		}
		return ErrHalted
	}
	m.status = StatusFetching
	m.mu.Unlock()

	start := m.now()
	quotes, err := m.collector.Collect(ctx)
	if m.metrics != nil {
		m.metrics.ObserveFetch(start)
	}
	if err != nil {
		if ctx.Err() != nil {
			m.mu.Lock()
			m.status = prev
			m.mu.Unlock()
			return ctx.Err()
		}
		m.fail(ctx, err)
		return err
	}

	m.mu.Lock()
	cycleAt := m.now()
	dirty := false
	skipped := 0
	var outgoing []message
	for _, a := range m.assets {
		q, ok := quotes[a.ID]
		if !ok {
			skipped++
			continue
		}
		msgs, changed := m.processLocked(a, q, cycleAt)
		outgoing = append(outgoing, msgs...)
		dirty = dirty || changed
	}
	if skipped > 0 {
		log.Printf("[WARN] %d of %d assets missing from response", skipped, len(m.assets))
		if m.metrics != nil {
			m.metrics.SkippedAssets.Add(float64(skipped))
		}
	}
	if dirty {
		if err := m.store.Save(ctx, m.state); err != nil {
			log.Printf("[ERROR] persist alert state: %v", err)
		}
	}

	m.status = StatusOK
	m.lastErr = nil
	m.lastCycle = cycleAt
	m.received = len(quotes)
	if m.metrics != nil {
		m.metrics.CyclesTotal.WithLabelValues("ok").Inc()
	}
	snap := m.snapshotLocked(dashboard.SortName, dashboard.FilterAll)
	m.mu.Unlock()
	log.Printf("[INFO] cycle complete: %d/%d assets", len(quotes), len(m.assets))

	for _, msg := range outgoing {
		m.deliver(ctx, msg.title, msg.body)
	}
	m.publish(snap)
	return nil
}

// message is a notification queued during a cycle and sent after mu is released.
type message struct {
	title, body string
}

// processLocked runs record, analyze and alert for one asset. It returns the
// notifications to send and whether the persisted alert state changed.
func (m *Monitor) processLocked(a model.Asset, q model.Quote, at time.Time) ([]message, bool) {
	m.history.Record(a.ID, q.Price)
	sig := strategy.Analyze(m.history.Series(a.ID), q.Change24h, q.Volume24h)

	m.latest[a.ID] = model.CoinView{
		Asset:     a,
		Price:     q.Price,
		Change24h: q.Change24h,
		Volume24h: q.Volume24h,
		Signal:    sig,
		UpdatedAt: at,
	}
	if m.metrics != nil {
		m.metrics.ObserveSignal(a.ID, sig.Label)
	}
	if err := m.recorder.RecordSignal(&recorder.SignalRecord{
		AssetID: a.ID, Price: q.Price, Change24h: q.Change24h, Signal: sig, At: at,
	}); err != nil {
		log.Printf("[ERROR] record signal %s: %v", a.ID, err)
	}

	cfg := m.state.Alerts[a.ID]
	if cfg == nil || !m.notifier.Granted() {
		return nil, false
	}
	fired := alert.Evaluate(a.ID, q.Price, q.Change24h, cfg, at)
	msgs := make([]message, 0, len(fired))
	for _, al := range fired {
		title, body := notifier.FormatAlert(al, a.Name, m.currency)
		log.Printf("[INFO] alert fired: %s %s", a.ID, al.Kind)
		msgs = append(msgs, message{title: title, body: body})
		if err := m.recorder.RecordAlert(&al); err != nil {
			log.Printf("[ERROR] record alert %s: %v", a.ID, err)
		}
		if m.metrics != nil {
			m.metrics.ObserveAlert(al.Kind)
		}
	}
	return msgs, len(fired) > 0
}

func (m *Monitor) deliver(ctx context.Context, title, body string) {
	nctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := m.notifier.Notify(nctx, title, body); err != nil {
		if errors.Is(err, notifier.ErrPermission) {
			log.Printf("[INFO] notification suppressed (%s): %s", m.notifier.Permission(), title)
			return
		}
		log.Printf("[ERROR] deliver notification: %v", err)
		if m.metrics != nil {
			m.metrics.NotificationErrors.Inc()
		}
	}
}

func (m *Monitor) fail(ctx context.Context, err error) {
	m.mu.Lock()
	m.status = StatusFailed
	m.lastErr = err
	m.lastCycle = m.now()
	at := m.lastCycle
	snap := m.snapshotLocked(dashboard.SortName, dashboard.FilterAll)
	m.mu.Unlock()
	log.Printf("[ERROR] %v", err)

	if m.metrics != nil {
		m.metrics.FetchFailures.Inc()
		m.metrics.CyclesTotal.WithLabelValues("failed").Inc()
	}

	attempts := 1
	var exhausted *collector.ExhaustedError
	if errors.As(err, &exhausted) {
		attempts = exhausted.Attempts
	}
	if rerr := m.recorder.RecordFailure(&recorder.FailureEvent{
		Source: m.collector.Fetcher.Name(), Attempts: attempts, Err: err.Error(), At: at,
	}); rerr != nil {
		log.Printf("[ERROR] record failure: %v", rerr)
	}

	title, body := notifier.FormatFailure(err)
	m.deliver(ctx, title, body)
	m.publish(snap)
}

// Reload clears the failed state, re-reads the persisted user state and
// runs a cycle. History is kept.
func (m *Monitor) Reload(ctx context.Context) error {
	m.mu.Lock()
	state, err := m.store.Load(ctx)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("reload user state: %w", err)
	}
	m.state = state
	m.status = StatusIdle
	m.lastErr = nil
	m.mu.Unlock()

	log.Println("[INFO] monitor reloaded")
	return m.RunCycle(ctx)
}

// Snapshot returns the latest views sorted and filtered for rendering.
func (m *Monitor) Snapshot(sortMode, filterMode string) *model.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(sortMode, filterMode)
}

func (m *Monitor) snapshotLocked(sortMode, filterMode string) *model.Snapshot {
	rows := m.rowsLocked()
	rows = dashboard.Filter(rows, filterMode)
	dashboard.Sort(rows, sortMode)

	snap := &model.Snapshot{
		Coins:    rows,
		Received: m.received,
		Expected: len(m.assets),
		CycleAt:  m.lastCycle,
		Status:   m.status,
	}
	if m.lastErr != nil {
		snap.LastError = m.lastErr.Error()
	}
	return snap
}

func (m *Monitor) rowsLocked() []model.CoinView {
	rows := make([]model.CoinView, 0, len(m.latest))
	for _, a := range m.assets {
		v, ok := m.latest[a.ID]
		if !ok {
			continue
		}
		v.IsFavorite = m.state.IsFavorite(a.ID)
		rows = append(rows, v)
	}
	return rows
}

// Summary counts labels over all current views.
func (m *Monitor) Summary() model.Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return dashboard.Summarize(m.rowsLocked())
}

// History returns up to the last n prices recorded for id.
func (m *Monitor) History(id string, n int) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return nil, ErrUnknownAsset
	}
	return m.history.Tail(id, n), nil
}

// Status returns the current status and the error that caused a failure.
func (m *Monitor) Status() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status, m.lastErr
}

// Asset looks up a configured asset by id.
func (m *Monitor) Asset(id string) (model.Asset, bool) {
	a, ok := m.byID[id]
	return a, ok
}

func (m *Monitor) Assets() []model.Asset { return m.assets }

func (m *Monitor) Currency() string { return m.currency }

// Notifier exposes the permission gate.
func (m *Monitor) Notifier() *notifier.Gate { return m.notifier }

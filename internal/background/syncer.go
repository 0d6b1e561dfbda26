// Package background runs the periodic sync that is independent of the
// foreground monitor. It fetches with its own collectors, keeps its own
// history and talks to the foreground only through its outbox.
package background

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"CoinSentinel/internal/collector"
	"CoinSentinel/internal/history"
	"CoinSentinel/internal/metrics"
	"CoinSentinel/internal/model"
	"CoinSentinel/internal/notifier"
)

// DefaultThreshold is the |24h change| percent above which Sync notifies.
const DefaultThreshold = 5.0

// outboxSize bounds undelivered price updates; older ones are dropped.
const outboxSize = 8

// Source tags updates posted by this package.
const Source = "background"

// Syncer is the background execution context.
type Syncer struct {
	sync      *collector.Collector
	update    *collector.Collector
	threshold float64
	notifier  notifier.Notifier
	metrics   *metrics.Metrics

	history *history.Store
	outbox  chan model.PriceUpdate
	now     func() time.Time
}

// Config selects the two asset subsets. Empty subsets disable that job.
type Config struct {
	SyncAssets   []model.Asset // checked for large moves
	UpdateAssets []model.Asset // posted as price updates
	Threshold    float64
	Metrics      *metrics.Metrics
}

// NewSyncer builds a Syncer. Each job makes a single fetch attempt per run.
func NewSyncer(fetcher collector.Fetcher, n notifier.Notifier, cfg Config) *Syncer {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	s := &Syncer{
		threshold: cfg.Threshold,
		notifier:  n,
		metrics:   cfg.Metrics,
		history:   history.NewStore(history.DefaultCapacity),
		outbox:    make(chan model.PriceUpdate, outboxSize),
		now:       time.Now,
	}
	if len(cfg.SyncAssets) > 0 {
		s.sync = collector.NewCollector(fetcher, cfg.SyncAssets)
		s.sync.Attempts = 1
	}
	if len(cfg.UpdateAssets) > 0 {
		s.update = collector.NewCollector(fetcher, cfg.UpdateAssets)
		s.update.Attempts = 1
	}
	return s
}

// Outbox delivers PriceUpdate messages to the foreground.
func (s *Syncer) Outbox() <-chan model.PriceUpdate { return s.outbox }

// History returns the background context's own series for id.
func (s *Syncer) History(id string) []float64 { return s.history.Series(id) }

// Sync fetches the sync subset and notifies for every asset whose 24h
// change exceeds the threshold. Returns the number of notifications sent.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	if s.sync == nil {
		return 0, nil
	}
	quotes, err := s.sync.Collect(ctx)
	if err != nil {
		s.observe(false)
		log.Printf("[WARN] background sync failed: %v", err)
		return 0, err
	}
	s.observe(true)

	sent := 0
	for _, a := range s.sync.Assets {
		q, ok := quotes[a.ID]
		if !ok {
			continue
		}
		s.history.Record(a.ID, q.Price)
		if math.Abs(q.Change24h) <= s.threshold {
			continue
		}
		err := s.notifier.Notify(ctx, "📊 Price change alert", notifier.FormatBackgroundChange(a.ID, q.Change24h))
		switch {
		case err == nil:
			sent++
		case errors.Is(err, notifier.ErrPermission):
			log.Printf("[INFO] background alert suppressed for %s: %v", a.ID, err)
		default:
			log.Printf("[ERROR] background alert %s: %v", a.ID, err)
		}
	}
	return sent, nil
}

// UpdatePrices fetches the update subset and posts a PriceUpdate.
func (s *Syncer) UpdatePrices(ctx context.Context) error {
	if s.update == nil {
		return nil
	}
	quotes, err := s.update.Collect(ctx)
	if err != nil {
		s.observe(false)
		log.Printf("[WARN] background price update failed: %v", err)
		return err
	}
	s.observe(true)
	for id, q := range quotes {
		s.history.Record(id, q.Price)
	}

	msg := model.PriceUpdate{Source: Source, Quotes: quotes, At: s.now()}
	select {
	case s.outbox <- msg:
	default:
		// Drop the oldest pending update so the newest always gets through.
		select {
		case <-s.outbox:
		default:
		}
		select {
		case s.outbox <- msg:
		default:
		}
		log.Println("[WARN] background outbox full, dropped oldest update")
	}
	return nil
}

// Run does one sync followed by one price update.
func (s *Syncer) Run(ctx context.Context) {
	if _, err := s.Sync(ctx); err != nil {
		return
	}
	s.UpdatePrices(ctx)
}

func (s *Syncer) observe(ok bool) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	s.metrics.BackgroundSyncs.WithLabelValues(result).Inc()
}

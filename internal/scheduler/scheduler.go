package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"CoinSentinel/internal/background"
	"CoinSentinel/internal/monitor"

	"github.com/robfig/cron/v3"
)

// AllowedIntervals are the polling intervals offered to users.
var AllowedIntervals = []time.Duration{15 * time.Second, 30 * time.Second, 60 * time.Second}

// ErrInterval is returned for an interval outside AllowedIntervals.
var ErrInterval = errors.New("interval must be 15, 30 or 60 seconds")

// Scheduler manages the polling and background cron entries.
type Scheduler struct {
	Cron    *cron.Cron
	Monitor *monitor.Monitor
	Syncer  *background.Syncer // optional
	Ctx     context.Context

	// AllowAnyInterval lifts the AllowedIntervals restriction.
	AllowAnyInterval bool

	mu       sync.Mutex
	pollID   cron.EntryID
	interval time.Duration
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, mon *monitor.Monitor, syncer *background.Syncer) *Scheduler {
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger)),
		),
		Monitor: mon,
		Syncer:  syncer,
		Ctx:     ctx,
	}
}

// RegisterAll registers the polling entry and, when a syncer is set, the
// background entry.
func (s *Scheduler) RegisterAll(interval time.Duration, backgroundCron string) error {
	if err := s.SetInterval(interval); err != nil {
		return fmt.Errorf("register polling task: %w", err)
	}
	if s.Syncer != nil && backgroundCron != "" {
		job := cron.NewChain(cron.SkipIfStillRunning(cron.PrintfLogger(log.Default()))).
			Then(cron.FuncJob(s.backgroundTask))
		if _, err := s.Cron.AddJob(backgroundCron, job); err != nil {
			return fmt.Errorf("register background task: %w", err)
		}
	}
	return nil
}

// SetInterval replaces the polling entry.
func (s *Scheduler) SetInterval(d time.Duration) error {
	if !s.AllowAnyInterval && !allowed(d) {
		return ErrInterval
	}
	if d < time.Second {
		return ErrInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pollID != 0 {
		s.Cron.Remove(s.pollID)
	}
	job := cron.NewChain(cron.SkipIfStillRunning(cron.PrintfLogger(log.Default()))).
		Then(cron.FuncJob(s.pollTask))
	s.pollID = s.Cron.Schedule(cron.Every(d), job)
	s.interval = d
	log.Printf("[INFO] polling interval set to %v", d)
	return nil
}

func allowed(d time.Duration) bool {
	for _, a := range AllowedIntervals {
		if d == a {
			return true
		}
	}
	return false
}

// Interval returns the current polling interval.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RefreshNow runs a polling cycle immediately.
func (s *Scheduler) RefreshNow() error {
	return s.Monitor.RunCycle(s.Ctx)
}

func (s *Scheduler) pollTask() {
	// Failures are logged and reported by the monitor itself.
	if err := s.Monitor.RunCycle(s.Ctx); errors.Is(err, monitor.ErrHalted) {
		log.Println("[INFO] polling skipped: updates halted until reload")
	}
}

func (s *Scheduler) backgroundTask() {
	log.Println("[INFO] running background sync")
	s.Syncer.Run(s.Ctx)
}

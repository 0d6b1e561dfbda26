package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"CoinSentinel/internal/model"
)

// Default retry policy: three attempts, fixed delay.
const (
	DefaultAttempts   = 3
	DefaultRetryDelay = 3 * time.Second
)

// ErrNoUsableQuotes means the feed answered but none of the requested assets had a price.
var ErrNoUsableQuotes = errors.New("no usable quotes in response")

// ExhaustedError is returned once every attempt of a cycle has failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("price fetch failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// MockFetcher returns scripted quotes for development and testing.
// Each call consumes the next entry of Script (the last one repeats);
// Errs, when set, fail the matching call.
type MockFetcher struct {
	mu     sync.Mutex
	Script []map[string]model.Quote
	Errs   []error
	Calls  int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchQuotes(_ context.Context, feedIDs []string) (map[string]model.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.Calls
	m.Calls++
	if i < len(m.Errs) && m.Errs[i] != nil {
		return nil, m.Errs[i]
	}
	if len(m.Script) == 0 {
		return map[string]model.Quote{}, nil
	}
	if i >= len(m.Script) {
		i = len(m.Script) - 1
	}
	out := make(map[string]model.Quote)
	for _, id := range feedIDs {
		if q, ok := m.Script[i][id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

// Collector maps configured assets to feed ids and applies the retry policy.
type Collector struct {
	Fetcher    Fetcher
	Assets     []model.Asset
	Attempts   int
	RetryDelay time.Duration
}

// NewCollector creates a new Collector with the default retry policy.
func NewCollector(fetcher Fetcher, assets []model.Asset) *Collector {
	return &Collector{
		Fetcher:    fetcher,
		Assets:     assets,
		Attempts:   DefaultAttempts,
		RetryDelay: DefaultRetryDelay,
	}
}

func feedID(a model.Asset) string {
	if a.FeedID != "" {
		return a.FeedID
	}
	return a.ID
}

// Collect fetches quotes for all assets, keyed by asset id. Missing assets
// are not an error; a response with no usable asset is, and is retried.
// A timeout counts as a failed attempt like any other error.
func (c *Collector) Collect(ctx context.Context) (map[string]model.Quote, error) {
	ids := make([]string, 0, len(c.Assets))
	for _, a := range c.Assets {
		ids = append(ids, feedID(a))
	}

	attempts := c.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		quotes, err := c.collectOnce(ctx, ids)
		if err == nil {
			return quotes, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if i == attempts-1 {
			break
		}
		log.Printf("[WARN] %s fetch failed (attempt %d/%d): %v, retrying in %v",
			c.Fetcher.Name(), i+1, attempts, err, c.RetryDelay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.RetryDelay):
		}
	}
	return nil, &ExhaustedError{Attempts: attempts, Err: lastErr}
}

func (c *Collector) collectOnce(ctx context.Context, ids []string) (map[string]model.Quote, error) {
	raw, err := c.Fetcher.FetchQuotes(ctx, ids)
	if err != nil {
		return nil, err
	}
	quotes := make(map[string]model.Quote, len(raw))
	for _, a := range c.Assets {
		if q, ok := raw[feedID(a)]; ok {
			quotes[a.ID] = q
		}
	}
	if len(quotes) == 0 {
		return nil, ErrNoUsableQuotes
	}
	return quotes, nil
}

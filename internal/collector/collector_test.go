package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"CoinSentinel/internal/model"
)

var testAssets = []model.Asset{
	{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin"},
	{ID: "polygon", Symbol: "POL", Name: "Polygon", FeedID: "matic-network"},
	{ID: "oasys", Symbol: "OAS", Name: "Oasys"},
}

func newTestCollector(f Fetcher) *Collector {
	c := NewCollector(f, testAssets)
	c.RetryDelay = time.Millisecond
	return c
}

func TestCollect_MapsFeedIDsAndSkipsMissing(t *testing.T) {
	mock := &MockFetcher{Script: []map[string]model.Quote{{
		"bitcoin":       {Price: 100, Change24h: 1},
		"matic-network": {Price: 50, Change24h: -2},
	}}}
	quotes, err := newTestCollector(mock).Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}
	if quotes["polygon"].Price != 50 {
		t.Errorf("expected polygon mapped from matic-network, got %+v", quotes["polygon"])
	}
	if _, ok := quotes["oasys"]; ok {
		t.Error("missing asset should be absent, not zeroed")
	}
}

func TestCollect_RetriesThenSucceeds(t *testing.T) {
	boom := errors.New("boom")
	mock := &MockFetcher{
		Errs:   []error{boom, boom},
		Script: []map[string]model.Quote{{"bitcoin": {Price: 1}}},
	}
	quotes, err := newTestCollector(mock).Collect(context.Background())
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if mock.Calls != 3 || quotes["bitcoin"].Price != 1 {
		t.Errorf("calls=%d quotes=%+v", mock.Calls, quotes)
	}
}

func TestCollect_Exhausted(t *testing.T) {
	boom := errors.New("timeout")
	mock := &MockFetcher{Errs: []error{boom, boom, boom, boom}}
	_, err := newTestCollector(mock).Collect(context.Background())

	var ex *ExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if ex.Attempts != 3 || mock.Calls != 3 {
		t.Errorf("expected 3 attempts, got attempts=%d calls=%d", ex.Attempts, mock.Calls)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected last cause to unwrap, got %v", err)
	}
}

func TestCollect_EmptyResponseCountsAsFailure(t *testing.T) {
	mock := &MockFetcher{Script: []map[string]model.Quote{{"tezos": {Price: 1}}}}
	_, err := newTestCollector(mock).Collect(context.Background())
	if !errors.Is(err, ErrNoUsableQuotes) {
		t.Fatalf("expected ErrNoUsableQuotes, got %v", err)
	}
	if mock.Calls != 3 {
		t.Errorf("expected all attempts used, got %d", mock.Calls)
	}
}

func TestCollect_ContextCancelledDuringBackoff(t *testing.T) {
	mock := &MockFetcher{Errs: []error{errors.New("x"), errors.New("x"), errors.New("x")}}
	c := newTestCollector(mock)
	c.RetryDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := c.Collect(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.Calls != 1 {
		t.Errorf("expected a single attempt before cancel, got %d", mock.Calls)
	}
}

func TestNewDemoFetcher(t *testing.T) {
	assets := []model.Asset{{ID: "bitcoin"}, {ID: "polygon", FeedID: "matic-network"}}
	f := NewDemoFetcher(assets, 5, 7)
	if len(f.Script) != 5 {
		t.Fatalf("script len = %d", len(f.Script))
	}
	for i, step := range f.Script {
		for _, id := range []string{"bitcoin", "matic-network"} {
			if q, ok := step[id]; !ok || q.Price <= 0 {
				t.Errorf("step %d: missing or non-positive quote for %s", i, id)
			}
		}
	}
	again := NewDemoFetcher(assets, 5, 7)
	if again.Script[4]["bitcoin"].Price != f.Script[4]["bitcoin"].Price {
		t.Error("same seed should produce the same walk")
	}
}

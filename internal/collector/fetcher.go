package collector

import (
	"context"

	"CoinSentinel/internal/model"
)

// Fetcher defines the interface for fetching quotes from a price feed.
// The returned map is keyed by feed id; ids the feed did not return are
// simply absent.
type Fetcher interface {
	FetchQuotes(ctx context.Context, feedIDs []string) (map[string]model.Quote, error)
	Name() string
}

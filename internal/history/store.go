// Package history keeps a bounded rolling price series per asset.
package history

import "sort"

// DefaultCapacity is the number of observations kept per asset.
const DefaultCapacity = 100

// Store holds per-asset FIFO price buffers. It is owned by a single
// pipeline context and is not safe for concurrent use.
type Store struct {
	capacity int
	series   map[string][]float64
}

// NewStore creates a Store. A non-positive capacity uses DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{capacity: capacity, series: make(map[string][]float64)}
}

// Record appends price to the asset's series, evicting the oldest entry
// once the series exceeds capacity.
func (s *Store) Record(assetID string, price float64) {
	buf := append(s.series[assetID], price)
	if len(buf) > s.capacity {
		// Copy down instead of reslicing so the backing array does not grow forever.
		n := copy(buf, buf[len(buf)-s.capacity:])
		buf = buf[:n]
	}
	s.series[assetID] = buf
}

// Series returns a copy of the asset's prices, oldest first.
func (s *Store) Series(assetID string) []float64 {
	buf := s.series[assetID]
	out := make([]float64, len(buf))
	copy(out, buf)
	return out
}

// Tail returns a copy of at most the last n prices.
func (s *Store) Tail(assetID string, n int) []float64 {
	buf := s.series[assetID]
	if n < len(buf) {
		buf = buf[len(buf)-n:]
	}
	out := make([]float64, len(buf))
	copy(out, buf)
	return out
}

// Len returns the number of stored prices for the asset.
func (s *Store) Len(assetID string) int { return len(s.series[assetID]) }

// Capacity returns the per-asset bound.
func (s *Store) Capacity() int { return s.capacity }

// Assets returns the ids that have a series, sorted.
func (s *Store) Assets() []string {
	ids := make([]string, 0, len(s.series))
	for id := range s.series {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

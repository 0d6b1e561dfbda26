package collector

import (
	"math"
	"math/rand/v2"

	"CoinSentinel/internal/model"
)

// NewDemoFetcher scripts a seeded random walk of steps quotes per asset,
// used for offline runs. Starting prices are spread between 10 and 10M.
func NewDemoFetcher(assets []model.Asset, steps int, seed uint64) *MockFetcher {
	if steps <= 0 {
		steps = 1
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	price := make(map[string]float64, len(assets))
	open := make(map[string]float64, len(assets))
	for _, a := range assets {
		p := math.Pow(10, 1+rng.Float64()*6)
		price[feedID(a)] = p
		open[feedID(a)] = p
	}

	script := make([]map[string]model.Quote, steps)
	for i := range script {
		step := make(map[string]model.Quote, len(assets))
		for _, a := range assets {
			id := feedID(a)
			price[id] *= 1 + rng.NormFloat64()*0.004
			step[id] = model.Quote{
				Price:     price[id],
				Change24h: (price[id]/open[id] - 1) * 100,
				Volume24h: price[id] * (1000 + rng.Float64()*9000),
			}
		}
		script[i] = step
	}
	return &MockFetcher{Script: script}
}

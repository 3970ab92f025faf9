package handlers

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/avvvet/companion/internal/prompts"
)

// lockedChooser serializes access to a *rand.Rand, which is not goroutine safe.
type lockedChooser struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewChooser returns a concurrency-safe random source for reply selection.
// A zero seed seeds from the clock.
func NewChooser(seed uint64) prompts.Chooser {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedChooser{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (c *lockedChooser) IntN(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.IntN(n)
}

package simulator

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shubham-shewale/market-terminal/pkg/models"
)

// for deterministic testing
type Clock interface {
	Now() time.Time
}

// for deterministic values
type Rand interface {
	Float64() float64
}

// BasePriceSource supplies the reference price an order book is built around.
type BasePriceSource interface {
	BasePrice(pair string) float64
}

// TickListener receives the full ordered snapshot after every price tick.
type TickListener func(points []models.PricePoint)

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// RealRand is safe for concurrent use, unlike a bare *rand.Rand.
type RealRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewRealRand(seed int64) *RealRand {
	return &RealRand{r: rand.New(rand.NewSource(seed))}
}

func (r *RealRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Float64()
}

func (r *RealRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Intn(n)
}

// uniform maps a [0,1) draw onto [lo,hi).
func uniform(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

package simulator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/market-terminal/pkg/config"
	"github.com/shubham-shewale/market-terminal/pkg/models"
)

// PriceFloor keeps the multiplicative walk from underflowing to zero.
const PriceFloor = 1e-8

// PriceSimulator owns the canonical price of every tracked pair and advances
// it with a bounded random walk. Tick is the only writer; readers get copies.
type PriceSimulator struct {
	logger     *zap.Logger
	rand       Rand
	clock      Clock
	interval   time.Duration
	volatility float64

	mu        sync.RWMutex
	points    []models.PricePoint // replaced wholesale on every tick
	index     map[string]int
	listeners []TickListener
}

func NewPriceSimulator(cfg config.SimulatorConfig, logger *zap.Logger, rnd Rand, clock Clock) *PriceSimulator {
	s := &PriceSimulator{
		logger:     logger,
		rand:       rnd,
		clock:      clock,
		interval:   cfg.PriceInterval,
		volatility: cfg.Volatility,
		index:      make(map[string]int, len(cfg.Pairs)),
	}

	now := clock.Now().UnixMilli()
	seed := StaticPrices{}
	for _, pair := range cfg.Pairs {
		if _, dup := s.index[pair]; dup {
			continue
		}
		s.index[pair] = len(s.points)
		s.points = append(s.points, models.PricePoint{
			Pair:      pair,
			Price:     seed.BasePrice(pair),
			Change24h: uniform(rnd, -5, 5),
			Volume24h: uniform(rnd, 0, 1e7),
			Timestamp: now,
		})
	}
	return s
}

// OnTick registers a listener called synchronously after every tick with the
// new snapshot. Listeners must treat the slice as read-only.
func (s *PriceSimulator) OnTick(l TickListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *PriceSimulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Price simulator started", zap.Int("pairs", len(s.index)), zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Price simulator stopped")
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick advances every pair by one random-walk step and notifies listeners.
func (s *PriceSimulator) Tick() []models.PricePoint {
	now := s.clock.Now().UnixMilli()

	s.mu.Lock()
	next := make([]models.PricePoint, len(s.points))
	for i, p := range s.points {
		delta := uniform(s.rand, -1, 1) * s.volatility
		p.Price *= 1 + delta
		if p.Price < PriceFloor {
			p.Price = PriceFloor
		}
		p.Change24h += delta * 100
		if now > p.Timestamp {
			p.Timestamp = now
		}
		next[i] = p
	}
	s.points = next
	listeners := s.listeners
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
	return next
}

// Snapshot returns every pair in seeding order.
func (s *PriceSimulator) Snapshot() []models.PricePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PricePoint(nil), s.points...)
}

func (s *PriceSimulator) Get(pair string) (models.PricePoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[pair]
	if !ok {
		return models.PricePoint{}, false
	}
	return s.points[i], true
}

func (s *PriceSimulator) Pairs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pairs := make([]string, len(s.points))
	for i, p := range s.points {
		pairs[i] = p.Pair
	}
	return pairs
}

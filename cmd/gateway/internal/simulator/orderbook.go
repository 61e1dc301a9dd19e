package simulator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/market-terminal/pkg/config"
	"github.com/shubham-shewale/market-terminal/pkg/models"
)

// OrderBookSimulator regenerates a synthetic depth ladder per pair on every tick.
type OrderBookSimulator struct {
	logger   *zap.Logger
	rand     Rand
	source   BasePriceSource
	pairs    []string
	depth    int
	step     float64
	interval time.Duration

	mu    sync.RWMutex
	books map[string]models.OrderBook
}

// NewOrderBookSimulator builds the first generation of books immediately so
// reads never miss before the first tick.
func NewOrderBookSimulator(cfg config.SimulatorConfig, logger *zap.Logger, source BasePriceSource, rnd Rand) *OrderBookSimulator {
	s := &OrderBookSimulator{
		logger:   logger,
		rand:     rnd,
		source:   source,
		pairs:    append([]string(nil), cfg.Pairs...),
		depth:    cfg.OrderBookDepth,
		step:     cfg.OrderBookStep,
		interval: cfg.OrderBookInterval,
	}
	s.Tick()
	return s
}

func (s *OrderBookSimulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Order book simulator started", zap.Int("pairs", len(s.pairs)), zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Order book simulator stopped")
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick rebuilds every book from the current base price and swaps the map in one step.
func (s *OrderBookSimulator) Tick() {
	books := make(map[string]models.OrderBook, len(s.pairs))
	for _, pair := range s.pairs {
		books[pair] = BuildOrderBook(s.rand, s.source.BasePrice(pair), s.depth, s.step)
	}

	s.mu.Lock()
	s.books = books
	s.mu.Unlock()
}

func (s *OrderBookSimulator) Get(pair string) (models.OrderBook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ob, ok := s.books[pair]
	if !ok {
		return models.OrderBook{}, false
	}
	return ob.Clone(), true
}

func (s *OrderBookSimulator) GetAll() map[string]models.OrderBook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.OrderBook, len(s.books))
	for pair, ob := range s.books {
		out[pair] = ob.Clone()
	}
	return out
}

// BuildOrderBook lays depth levels on each side of basePrice, step*basePrice apart.
// Amounts are uniform in [5,15).
func BuildOrderBook(rnd Rand, basePrice float64, depth int, step float64) models.OrderBook {
	bids := make([]models.OrderBookLevel, depth)
	asks := make([]models.OrderBookLevel, depth)
	offset := basePrice * step

	for i := range depth {
		price := basePrice - float64(i+1)*offset
		amount := uniform(rnd, 5, 15)
		bids[i] = models.OrderBookLevel{Price: price, Amount: amount, Total: price * amount}
	}
	for i := range depth {
		price := basePrice + float64(i+1)*offset
		amount := uniform(rnd, 5, 15)
		asks[i] = models.OrderBookLevel{Price: price, Amount: amount, Total: price * amount}
	}

	ob := models.OrderBook{Bids: bids, Asks: asks}
	if depth > 0 {
		ob.Spread = asks[0].Price - bids[0].Price
	}
	return ob
}

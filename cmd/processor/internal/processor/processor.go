package processor

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/market-terminal/pkg/config"
	"github.com/shubham-shewale/market-terminal/pkg/models"
)

const workerBuffer = 100

// LatestKey is the Redis key holding the most recent tick of a pair.
func LatestKey(pair string) string { return "price:" + pair }

// Channel is the Redis pub/sub channel every accepted tick of a pair is published on.
func Channel(pair string) string { return "prices." + pair }

// Processor consumes price ticks from Kafka and keeps the latest tick of every
// pair in Redis. Ticks are sharded by pair so each pair is handled in order by
// exactly one worker.
type Processor struct {
	logger     Logger
	rdb        RedisClient
	reader     KafkaReader
	numWorkers int
	ttl        time.Duration
}

func NewProcessor(cfg *config.Config, logger Logger, rdb RedisClient, reader KafkaReader) *Processor {
	return &Processor{
		logger:     logger,
		rdb:        rdb,
		reader:     reader,
		numWorkers: cfg.Processor.NumWorkers,
		ttl:        cfg.Redis.TTL,
	}
}

// Run blocks until ctx is done and every worker has drained its queue.
func (p *Processor) Run(ctx context.Context) error {
	workerChans := make([]chan []byte, p.numWorkers)
	var wg sync.WaitGroup

	for i := range p.numWorkers {
		workerChans[i] = make(chan []byte, workerBuffer)
		wg.Add(1)
		go p.worker(i, workerChans[i], &wg)
	}

	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		p.dispatch(ctx, workerChans)
	}()

	<-ctx.Done()
	p.logger.Info("Shutdown signal received, stopping processor...")

	// Channels close only once nothing can send on them.
	<-dispatched
	for _, ch := range workerChans {
		close(ch)
	}
	p.logger.Info("Waiting for workers to drain...")
	wg.Wait()

	return nil
}

func (p *Processor) dispatch(ctx context.Context, workerChans []chan []byte) {
	p.logger.Info("Processor Started", zap.Int("workers", p.numWorkers))
	for {
		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || isContextErr(err) {
				return
			}
			p.logger.Error("Kafka Read Error", zap.Error(err))
			continue
		}

		workerID := getWorkerID(m.Key, p.numWorkers)

		select {
		case workerChans[workerID] <- m.Value:
		case <-ctx.Done():
			return
		default:
			// A newer tick for the pair will follow shortly.
			p.logger.Warn("Dropping slow packet", zap.String("pair", string(m.Key)), zap.Int("worker_id", workerID))
		}
	}
}

func (p *Processor) worker(id int, msgs <-chan []byte, wg *sync.WaitGroup) {
	defer wg.Done()
	ctx := context.Background()

	// Safe without locking: a pair only ever reaches one worker.
	lastTs := make(map[string]int64)

	for payload := range msgs {
		var tick models.PricePoint
		if err := json.Unmarshal(payload, &tick); err != nil {
			p.logger.Error("JSON Unmarshal Error", zap.Error(err))
			continue
		}
		if tick.Pair == "" {
			p.logger.Warn("Tick without pair", zap.ByteString("payload", payload))
			continue
		}

		if last, seen := lastTs[tick.Pair]; seen && tick.Timestamp <= last {
			p.logger.Debug("Skipping stale tick", zap.String("pair", tick.Pair), zap.Int64("timestamp", tick.Timestamp), zap.Int64("last", last))
			continue
		}

		pipe := p.rdb.Pipeline()
		pipe.Set(ctx, LatestKey(tick.Pair), payload, p.ttl)
		pipe.Publish(ctx, Channel(tick.Pair), payload)

		if _, err := pipe.Exec(ctx); err != nil {
			p.logger.Error("Redis Pipeline Error", zap.Error(err), zap.String("pair", tick.Pair))
			continue
		}
		p.logger.Debug("Processed", zap.String("pair", tick.Pair), zap.Int("worker_id", id))
		lastTs[tick.Pair] = tick.Timestamp
	}
}

func getWorkerID(key []byte, numWorkers int) int {
	h := fnv.New32a()
	h.Write(key)
	return int(h.Sum32() % uint32(numWorkers))
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

package publisher

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shubham-shewale/market-terminal/pkg/models"
)

// TickPublisher forwards every price tick to Kafka, one message per pair keyed
// by the pair symbol.
type TickPublisher struct {
	logger *zap.Logger
	writer KafkaWriter
}

func NewTickPublisher(logger *zap.Logger, writer KafkaWriter) *TickPublisher {
	return &TickPublisher{logger: logger, writer: writer}
}

// Publish has the simulator's tick listener signature.
func (p *TickPublisher) Publish(points []models.PricePoint) {
	msgs := make([]kafka.Message, 0, len(points))
	for _, pt := range points {
		payload, err := json.Marshal(pt)
		if err != nil {
			p.logger.Error("JSON Marshal Error", zap.Error(err))
			continue
		}
		msgs = append(msgs, kafka.Message{Key: []byte(pt.Pair), Value: payload})
	}
	if len(msgs) == 0 {
		return
	}

	if err := p.writer.WriteMessages(context.Background(), msgs...); err != nil {
		p.logger.Error("Kafka Write Error", zap.Error(err))
	}
}

// Close flushes buffered messages.
func (p *TickPublisher) Close() error {
	return p.writer.Close()
}

package publisher_test

import (
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/publisher"
	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/testutils"
	"github.com/shubham-shewale/market-terminal/pkg/models"
)

func TestTickPublisher_OneMessagePerPair(t *testing.T) {
	writer := &testutils.MockKafkaWriter{}
	p := publisher.NewTickPublisher(zap.NewNop(), writer)

	p.Publish([]models.PricePoint{
		{Pair: "ETH/USDC", Price: 2450.5, Timestamp: 10},
		{Pair: "WBTC/USDC", Price: 48500, Timestamp: 10},
	})

	if writer.Calls != 1 {
		t.Errorf("Expected one batched write, got %d", writer.Calls)
	}
	if len(writer.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(writer.Messages))
	}
	if string(writer.Messages[0].Key) != "ETH/USDC" {
		t.Errorf("Expected key ETH/USDC, got %s", writer.Messages[0].Key)
	}

	var pt models.PricePoint
	if err := json.Unmarshal(writer.Messages[0].Value, &pt); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if pt.Price != 2450.5 || pt.Timestamp != 10 {
		t.Errorf("Unexpected payload %+v", pt)
	}
}

func TestTickPublisher_EmptyTickSkipsWrite(t *testing.T) {
	writer := &testutils.MockKafkaWriter{}
	p := publisher.NewTickPublisher(zap.NewNop(), writer)

	p.Publish(nil)

	if writer.Calls != 0 {
		t.Errorf("Expected no write, got %d", writer.Calls)
	}
}

func TestTickPublisher_WriteErrorDoesNotPanic(t *testing.T) {
	writer := &testutils.MockKafkaWriter{ShouldFail: true}
	p := publisher.NewTickPublisher(zap.NewNop(), writer)

	p.Publish([]models.PricePoint{{Pair: "ETH/USDC", Price: 1}})

	if len(writer.Messages) != 0 {
		t.Error("Failed write should not record messages")
	}
	if err := p.Close(); err != nil || !writer.Closed {
		t.Errorf("Close should close the writer, err=%v", err)
	}
}

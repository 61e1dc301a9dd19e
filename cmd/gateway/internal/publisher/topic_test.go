package publisher_test

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/publisher"
	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/testutils"
)

func TestTopicCreator_CreatesTopic(t *testing.T) {
	dialer := &testutils.MockKafkaDialer{}
	sleeper := &testutils.MockSleeper{}
	tc := publisher.NewTopicCreator(zap.NewNop(), dialer, sleeper)

	if err := tc.Create(t.Context(), []string{"broker:9092"}, "price_ticks"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	created := dialer.ConnSpy.CreatedTopics
	if len(created) != 1 || created[0].Topic != "price_ticks" {
		t.Fatalf("Expected price_ticks to be created, got %+v", created)
	}
	if created[0].NumPartitions < 1 {
		t.Errorf("Expected partitions, got %d", created[0].NumPartitions)
	}
	if len(dialer.Dialed) != 2 || dialer.Dialed[1] != "localhost:9092" {
		t.Errorf("Expected broker then controller dial, got %v", dialer.Dialed)
	}
	if sleeper.Calls != 0 {
		t.Errorf("Ready topic should not wait, slept %d times", sleeper.Calls)
	}
}

func TestTopicCreator_FallsBackToNextBroker(t *testing.T) {
	dialer := &testutils.MockKafkaDialer{FailAddrs: map[string]bool{"a:9092": true}}
	tc := publisher.NewTopicCreator(zap.NewNop(), dialer, &testutils.MockSleeper{})

	if err := tc.Create(t.Context(), []string{"a:9092", "b:9092"}, "price_ticks"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if dialer.Dialed[1] != "b:9092" {
		t.Errorf("Expected fallback to b:9092, got %v", dialer.Dialed)
	}
}

func TestTopicCreator_AllBrokersDown(t *testing.T) {
	dialer := &testutils.MockKafkaDialer{FailAddrs: map[string]bool{"a:9092": true}}
	tc := publisher.NewTopicCreator(zap.NewNop(), dialer, &testutils.MockSleeper{})

	if err := tc.Create(t.Context(), []string{"a:9092"}, "price_ticks"); err == nil {
		t.Error("Expected dial error")
	}
}

func TestTopicCreator_ExistingTopicWaitsForPartitions(t *testing.T) {
	conn := &testutils.MockKafkaConn{CreateErr: errors.New("topic already exists"), NotReadyFor: 2}
	dialer := &testutils.MockKafkaDialer{ConnSpy: conn}
	sleeper := &testutils.MockSleeper{}
	tc := publisher.NewTopicCreator(zap.NewNop(), dialer, sleeper)

	if err := tc.Create(t.Context(), []string{"broker:9092"}, "price_ticks"); err != nil {
		t.Fatalf("Already-existing topic should not fail: %v", err)
	}
	if sleeper.Calls != 2 {
		t.Errorf("Expected 2 backoffs, got %d", sleeper.Calls)
	}
}

func TestTopicCreator_NeverReady(t *testing.T) {
	conn := &testutils.MockKafkaConn{NotReadyFor: 100}
	dialer := &testutils.MockKafkaDialer{ConnSpy: conn}
	sleeper := &testutils.MockSleeper{}
	tc := publisher.NewTopicCreator(zap.NewNop(), dialer, sleeper)

	if err := tc.Create(t.Context(), []string{"broker:9092"}, "price_ticks"); err == nil {
		t.Error("Expected readiness timeout")
	}
	if sleeper.Calls != 5 {
		t.Errorf("Expected 5 backoffs, got %d", sleeper.Calls)
	}
}

package testutils

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/publisher"
)

type MockKafkaWriter struct {
	Messages   []kafka.Message
	Calls      int
	Closed     bool
	Mu         sync.Mutex
	ShouldFail bool
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Calls++
	if m.ShouldFail {
		return errors.New("kafka error")
	}
	m.Messages = append(m.Messages, msgs...)
	return nil
}

func (m *MockKafkaWriter) Close() error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closed = true
	return nil
}

type MockSleeper struct {
	Slept time.Duration
	Calls int
}

func (m *MockSleeper) Sleep(d time.Duration) {
	m.Slept += d
	m.Calls++
}

type MockKafkaConn struct {
	CreatedTopics []kafka.TopicConfig
	CreateErr     error
	// NotReadyFor is the number of ReadPartitions calls that report no partitions.
	NotReadyFor int
	Reads       int
	Closed      int
}

func (m *MockKafkaConn) Controller() (kafka.Broker, error) {
	return kafka.Broker{Host: "localhost", Port: 9092}, nil
}

func (m *MockKafkaConn) Close() error {
	m.Closed++
	return nil
}

func (m *MockKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	m.CreatedTopics = append(m.CreatedTopics, topics...)
	return m.CreateErr
}

func (m *MockKafkaConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	m.Reads++
	if m.Reads <= m.NotReadyFor {
		return nil, nil
	}
	return []kafka.Partition{{ID: 0}}, nil
}

type MockKafkaDialer struct {
	ConnSpy *MockKafkaConn
	// FailAddrs lists broker addresses whose dial fails.
	FailAddrs map[string]bool
	Dialed    []string
}

func (m *MockKafkaDialer) DialContext(ctx context.Context, network, address string) (publisher.KafkaConn, error) {
	m.Dialed = append(m.Dialed, address)
	if m.FailAddrs[address] {
		return nil, errors.New("connection refused")
	}
	if m.ConnSpy == nil {
		m.ConnSpy = &MockKafkaConn{}
	}
	return m.ConnSpy, nil
}

package testutils

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/protocol"
	"github.com/shubham-shewale/market-terminal/pkg/models"
)

// MockClient simulates a connected websocket client
type MockClient struct {
	IDVal    string
	Messages []protocol.ServerMessage // decoded frames, in send order
	RawBytes []string
	Closed   bool
	Mu       sync.Mutex
}

func NewMockClient(id string) *MockClient {
	return &MockClient{IDVal: id, Messages: make([]protocol.ServerMessage, 0)}
}

func (m *MockClient) ID() string { return m.IDVal }

func (m *MockClient) Close() {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closed = true
}

func (m *MockClient) SendJSON(v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	m.SendBytes(b)
}

func (m *MockClient) SendBytes(b []byte) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.Closed {
		return
	}
	m.RawBytes = append(m.RawBytes, string(b))

	var msg protocol.ServerMessage
	if err := json.Unmarshal(b, &msg); err == nil {
		m.Messages = append(m.Messages, msg)
	}
}

func (m *MockClient) LastMsgType() string {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if len(m.Messages) == 0 {
		return ""
	}
	return m.Messages[len(m.Messages)-1].Type
}

// MessagesOfType returns the received messages with the given type.
func (m *MockClient) MessagesOfType(typ string) []protocol.ServerMessage {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	var out []protocol.ServerMessage
	for _, msg := range m.Messages {
		if msg.Type == typ {
			out = append(out, msg)
		}
	}
	return out
}

func (m *MockClient) IsClosed() bool {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.Closed
}

type MockClock struct {
	CurrentTime time.Time
	Mu          sync.Mutex
}

func (m *MockClock) Now() time.Time {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.CurrentTime
}

func (m *MockClock) Advance(d time.Duration) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.CurrentTime = m.CurrentTime.Add(d)
}

// MockRand replays Values in a loop; with no Values it always returns ValFloat.
type MockRand struct {
	Values   []float64
	ValFloat float64
	ValInt   int
	pos      int
	Mu       sync.Mutex
}

func (m *MockRand) Float64() float64 {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if len(m.Values) == 0 {
		return m.ValFloat
	}
	v := m.Values[m.pos%len(m.Values)]
	m.pos++
	return v
}

func (m *MockRand) Intn(n int) int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.ValInt % n
}

// PairTable is a fixed pair -> PricePoint lookup.
type PairTable map[string]models.PricePoint

func (p PairTable) Get(pair string) (models.PricePoint, bool) {
	pt, ok := p[pair]
	return pt, ok
}

func (p PairTable) Snapshot() []models.PricePoint {
	out := make([]models.PricePoint, 0, len(p))
	for _, pt := range p {
		out = append(out, pt)
	}
	return out
}

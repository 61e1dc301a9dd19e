package protocol

import "github.com/shubham-shewale/market-terminal/pkg/models"

// Client -> Server
const (
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"
	TypePing        = "ping"
)

// Server -> Client
const (
	TypeSnapshot    = "snapshot"
	TypePriceUpdate = "price_update"
	TypePong        = "pong"
)

type ClientMessage struct {
	Type  string   `json:"type"`
	Pairs []string `json:"pairs,omitempty"`
}

type ServerMessage struct {
	Type      string              `json:"type"`
	Data      []models.PricePoint `json:"data,omitempty"`
	Timestamp int64               `json:"timestamp"` // unix millis
}

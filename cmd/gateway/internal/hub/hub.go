package hub

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/protocol"
	"github.com/shubham-shewale/market-terminal/pkg/models"
)

type ClientInterface interface {
	ID() string
	SendJSON(v interface{})
	SendBytes(b []byte)
	Close()
}

// PriceSource is the read side of the price simulator.
type PriceSource interface {
	Snapshot() []models.PricePoint
}

type Clock interface {
	Now() time.Time
}

// subscription is the per-connection state. An empty pair set means "all pairs".
type subscription struct {
	client ClientInterface
	pairs  map[string]struct{}
}

// Hub tracks connected clients by connection id and fans price ticks out to
// them according to their subscription sets.
type Hub struct {
	clients map[string]*subscription

	prices PriceSource
	clock  Clock
	logger *zap.Logger
	mu     sync.RWMutex

	// drained is set by Shutdown; late registrations are closed immediately.
	drained bool
}

func NewHub(prices PriceSource, clock Clock, logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*subscription),
		prices:  prices,
		clock:   clock,
		logger:  logger,
	}
}

// Register adds the client and pushes the full current snapshot to it. The
// snapshot is queued under the lock so it always precedes the first update.
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.drained {
		client.Close()
		h.logger.Debug("Rejecting client after shutdown", zap.String("client_id", client.ID()))
		return
	}

	h.clients[client.ID()] = &subscription{client: client, pairs: make(map[string]struct{})}
	client.SendJSON(protocol.ServerMessage{
		Type:      protocol.TypeSnapshot,
		Data:      h.prices.Snapshot(),
		Timestamp: h.now(),
	})
	h.logger.Info("Client connected", zap.String("client_id", client.ID()), zap.Int("clients", len(h.clients)))
}

// HandleMessage decodes one text frame. Malformed frames are logged and dropped.
func (h *Hub) HandleMessage(client ClientInterface, payload []byte) {
	var msg protocol.ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		h.logger.Warn("Ignoring malformed frame", zap.String("client_id", client.ID()), zap.Error(err))
		return
	}
	h.HandleCommand(client, msg)
}

func (h *Hub) HandleCommand(client ClientInterface, msg protocol.ClientMessage) {
	switch msg.Type {
	case protocol.TypeSubscribe:
		h.handleSubscribe(client, msg.Pairs)
	case protocol.TypeUnsubscribe:
		h.handleUnsubscribe(client, msg.Pairs)
	case protocol.TypePing:
		client.SendJSON(protocol.ServerMessage{Type: protocol.TypePong, Timestamp: h.now()})
	default:
		h.logger.Debug("Ignoring unknown message type", zap.String("client_id", client.ID()), zap.String("type", msg.Type))
	}
}

// Pairs are not validated; unknown symbols simply never match a tick.
func (h *Hub) handleSubscribe(client ClientInterface, pairs []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.clients[client.ID()]
	if !ok {
		return
	}
	for _, p := range normalize(pairs) {
		sub.pairs[p] = struct{}{}
	}
	h.logger.Debug("Subscribed", zap.String("client_id", client.ID()), zap.Strings("pairs", pairs))
}

// Removing the last pair re-arms the "all pairs" default.
func (h *Hub) handleUnsubscribe(client ClientInterface, pairs []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.clients[client.ID()]
	if !ok {
		return
	}
	for _, p := range normalize(pairs) {
		delete(sub.pairs, p)
	}
	h.logger.Debug("Unsubscribed", zap.String("client_id", client.ID()), zap.Strings("pairs", pairs))
}

// Unregister is the single teardown path for close and error alike. Only the
// call that actually removes the client closes it.
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID()]; !ok {
		return
	}
	delete(h.clients, client.ID())
	client.Close()
	h.logger.Info("Client disconnected", zap.String("client_id", client.ID()), zap.Int("clients", len(h.clients)))
}

// Broadcast pushes one price_update per client, filtered by its subscription
// set. Clients whose filter matches nothing get no message for this tick.
func (h *Hub) Broadcast(points []models.PricePoint) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return
	}

	ts := h.now()
	var full []byte
	for id, sub := range h.clients {
		if len(sub.pairs) == 0 {
			if full == nil {
				full = h.encode(points, ts)
			}
			if full != nil {
				sub.client.SendBytes(full)
			}
			continue
		}

		filtered := make([]models.PricePoint, 0, len(sub.pairs))
		for _, p := range points {
			if _, ok := sub.pairs[p.Pair]; ok {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) == 0 {
			continue
		}
		if b := h.encode(filtered, ts); b != nil {
			sub.client.SendBytes(b)
		} else {
			h.logger.Error("Dropping update", zap.String("client_id", id))
		}
	}
}

// Shutdown closes every client. Their write pumps send a close frame and exit.
// Clients registering afterwards are closed on arrival.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.drained = true
	for id, sub := range h.clients {
		sub.client.Close()
		delete(h.clients, id)
	}
	h.logger.Info("Hub drained")
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) encode(points []models.PricePoint, ts int64) []byte {
	b, err := json.Marshal(protocol.ServerMessage{Type: protocol.TypePriceUpdate, Data: points, Timestamp: ts})
	if err != nil {
		h.logger.Error("JSON Marshal Error", zap.Error(err))
		return nil
	}
	return b
}

func (h *Hub) now() int64 { return h.clock.Now().UnixMilli() }

func normalize(pairs []string) []string {
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package hub

import "sort"

// Subscriptions returns the client's explicit pairs, sorted. The bool is false
// for unknown clients.
func (h *Hub) Subscriptions(clientID string) ([]string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sub, ok := h.clients[clientID]
	if !ok {
		return nil, false
	}
	pairs := make([]string, 0, len(sub.pairs))
	for p := range sub.pairs {
		pairs = append(pairs, p)
	}
	sort.Strings(pairs)
	return pairs, true
}

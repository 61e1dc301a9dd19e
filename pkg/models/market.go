package models

// PricePoint is the latest simulated state of one trading pair.
type PricePoint struct {
	Pair      string  `json:"pair"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"` // percent
	Volume24h float64 `json:"volume24h"`
	Timestamp int64   `json:"timestamp"` // unix millis
}

type OrderBookLevel struct {
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`
	Total  float64 `json:"total"`
}

// OrderBook holds bids descending and asks ascending by price.
type OrderBook struct {
	Bids   []OrderBookLevel `json:"bids"`
	Asks   []OrderBookLevel `json:"asks"`
	Spread float64          `json:"spread"`
}

// Clone returns a deep copy so callers never share level slices with the simulator.
func (ob OrderBook) Clone() OrderBook {
	out := OrderBook{Spread: ob.Spread}
	out.Bids = append([]OrderBookLevel(nil), ob.Bids...)
	out.Asks = append([]OrderBookLevel(nil), ob.Asks...)
	return out
}

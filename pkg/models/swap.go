package models

// SwapRequest is the input of a simulated swap.
type SwapRequest struct {
	FromToken string  `json:"fromToken"`
	ToToken   string  `json:"toToken"`
	Amount    string  `json:"amount"`
	Slippage  float64 `json:"slippage"` // percent
}

// Quote is the lightweight answer of a quote lookup.
type Quote struct {
	Price    float64 `json:"price"`
	ToAmount string  `json:"toAmount"`
}

// SwapQuoteResult is the outcome of a simulated swap. Failures are reported
// through Success and Error, never as a Go error.
type SwapQuoteResult struct {
	FromAmount  string   `json:"fromAmount"`
	ToAmount    string   `json:"toAmount"`
	Price       float64  `json:"price"`
	PriceImpact float64  `json:"priceImpact"` // percent
	GasEstimate string   `json:"gasEstimate"`
	Route       []string `json:"route"`
	Success     bool     `json:"success"`
	TxHash      string   `json:"txHash,omitempty"`
	Error       string   `json:"error,omitempty"`
}

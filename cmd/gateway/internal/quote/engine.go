package quote

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shubham-shewale/market-terminal/pkg/models"
)

const (
	amountDecimals = 6
	gasMin         = 0.003
	gasSpread      = 0.002
	txHashLength   = 64
	hexDigits      = "0123456789abcdef"
)

// for deterministic values
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Engine computes swap quotes from a token price table. Neither entry point
// returns an error: bad input yields a zeroed or success=false result.
type Engine struct {
	prices          TokenPriceSource
	rand            Rand
	settlementDelay time.Duration
	logger          *zap.Logger
}

func NewEngine(prices TokenPriceSource, rnd Rand, settlementDelay time.Duration, logger *zap.Logger) *Engine {
	return &Engine{
		prices:          prices,
		rand:            rnd,
		settlementDelay: settlementDelay,
		logger:          logger,
	}
}

// PriceImpact is the cosmetic size penalty, in percent, for a trade worth usdValue.
func PriceImpact(usdValue float64) float64 {
	return math.Sqrt(usdValue/1000) * 0.1
}

// GetQuote returns the impact-adjusted rate and output amount. A non-finite or
// negative amount yields {0, "0"}.
func (e *Engine) GetQuote(fromToken, toToken, amount string) models.Quote {
	amt, ok := parseAmount(amount)
	if !ok || amt < 0 {
		return models.Quote{Price: 0, ToAmount: "0"}
	}

	fromPrice := e.tokenPrice(fromToken)
	rate := fromPrice / e.tokenPrice(toToken)
	impact := PriceImpact(amt * fromPrice)
	effectiveRate := rate * (1 - impact/100)
	toAmount := amt * effectiveRate
	if !finite(toAmount) {
		return models.Quote{Price: 0, ToAmount: "0"}
	}

	return models.Quote{
		Price:    effectiveRate,
		ToAmount: formatAmount(toAmount),
	}
}

// SimulateSwap prices the swap, then waits out the settlement delay. Prices are
// read before the wait, so the wait holds no shared state.
func (e *Engine) SimulateSwap(ctx context.Context, req models.SwapRequest) (result models.SwapQuoteResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Swap simulation panicked", zap.Any("panic", r))
			result = failed(req.Amount, fmt.Sprint(r))
		}
	}()

	if req.FromToken == "" || req.ToToken == "" || req.Amount == "" {
		return failed(req.Amount, "Invalid parameters")
	}

	amt, ok := parseAmount(req.Amount)
	if !ok || amt <= 0 {
		return failed(req.Amount, "Invalid amount")
	}

	fromPrice := e.tokenPrice(req.FromToken)
	baseRate := fromPrice / e.tokenPrice(req.ToToken)
	impact := PriceImpact(amt * fromPrice)
	effectiveRate := baseRate * (1 - impact/100)
	toAmount := amt * effectiveRate * (1 - req.Slippage/100)
	if !finite(toAmount) {
		return failed(req.Amount, "Invalid amount")
	}

	result = models.SwapQuoteResult{
		FromAmount:  req.Amount,
		ToAmount:    formatAmount(toAmount),
		Price:       effectiveRate,
		PriceImpact: impact,
		GasEstimate: formatAmount(gasMin + e.rand.Float64()*gasSpread),
		Route:       DetermineRoute(req.FromToken, req.ToToken),
		Success:     true,
		TxHash:      e.txHash(),
	}

	if e.settlementDelay > 0 {
		timer := time.NewTimer(e.settlementDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return failed(req.Amount, "settlement interrupted: "+ctx.Err().Error())
		}
	}

	e.logger.Debug("Swap simulated",
		zap.String("from", req.FromToken),
		zap.String("to", req.ToToken),
		zap.String("amount", req.Amount),
		zap.String("to_amount", result.ToAmount),
	)
	return result
}

// tokenPrice treats unknown and non-positive prices as 1.
func (e *Engine) tokenPrice(symbol string) float64 {
	if p, ok := e.prices.TokenPrice(symbol); ok && p > 0 {
		return p
	}
	return 1
}

func (e *Engine) txHash() string {
	var sb strings.Builder
	sb.Grow(2 + txHashLength)
	sb.WriteString("0x")
	for range txHashLength {
		sb.WriteByte(hexDigits[e.rand.Intn(16)])
	}
	return sb.String()
}

func failed(fromAmount, reason string) models.SwapQuoteResult {
	return models.SwapQuoteResult{
		FromAmount:  fromAmount,
		ToAmount:    "0",
		GasEstimate: "0",
		Route:       []string{},
		Success:     false,
		Error:       reason,
	}
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(amountDecimals)
}

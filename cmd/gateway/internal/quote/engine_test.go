package quote_test

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/quote"
	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/testutils"
	"github.com/shubham-shewale/market-terminal/pkg/models"
)

func newEngine(delay time.Duration) *quote.Engine {
	return quote.NewEngine(quote.DefaultTokenPrices, &testutils.MockRand{ValFloat: 0.5, ValInt: 10}, delay, zap.NewNop())
}

func mustFloat(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatalf("Not a number: %q", s)
	}
	return v
}

func TestGetQuote_EthToUsdc(t *testing.T) {
	q := newEngine(0).GetQuote("ETH", "USDC", "1")

	impact := math.Sqrt(2450.0/1000) * 0.1
	want := 2450 * (1 - impact/100)

	if math.Abs(q.Price-want) > 1e-9 {
		t.Errorf("Expected rate %v, got %v", want, q.Price)
	}
	if got := mustFloat(t, q.ToAmount); math.Abs(got-2446.165) > 0.01 {
		t.Errorf("Expected ~2446.165, got %s", q.ToAmount)
	}
	if parts := strings.Split(q.ToAmount, "."); len(parts) != 2 || len(parts[1]) != 6 {
		t.Errorf("toAmount should have 6 decimals, got %s", q.ToAmount)
	}
}

func TestGetQuote_UnknownTokensPriceAtOne(t *testing.T) {
	q := newEngine(0).GetQuote("FOO", "BAR", "1000")

	// rate 1, impact sqrt(1)*0.1 = 0.1%
	if q.ToAmount != "999.000000" {
		t.Errorf("Expected 999.000000, got %s", q.ToAmount)
	}
}

func TestGetQuote_DegenerateAmounts(t *testing.T) {
	e := newEngine(0)
	for _, amt := range []string{"abc", "", "NaN", "Inf", "1e400", "-3"} {
		q := e.GetQuote("ETH", "USDC", amt)
		if q.Price != 0 || q.ToAmount != "0" {
			t.Errorf("amount %q: expected zero quote, got %+v", amt, q)
		}
	}

	if q := e.GetQuote("ETH", "USDC", "0"); q.ToAmount != "0.000000" {
		t.Errorf("Zero amount should quote zero output, got %s", q.ToAmount)
	}
}

func TestSimulateSwap_Success(t *testing.T) {
	res := newEngine(0).SimulateSwap(context.Background(), models.SwapRequest{
		FromToken: "ETH", ToToken: "USDC", Amount: "1", Slippage: 0.5,
	})

	if !res.Success || res.Error != "" {
		t.Fatalf("Expected success, got %+v", res)
	}
	impact := quote.PriceImpact(2450)
	rate := 2450 * (1 - impact/100)
	if math.Abs(res.Price-rate) > 1e-9 || math.Abs(res.PriceImpact-impact) > 1e-12 {
		t.Errorf("Unexpected pricing: %+v", res)
	}
	if got := mustFloat(t, res.ToAmount); math.Abs(got-rate*0.995) > 1e-6 {
		t.Errorf("Expected toAmount %v after slippage, got %s", rate*0.995, res.ToAmount)
	}
	if res.FromAmount != "1" {
		t.Errorf("fromAmount should echo input, got %s", res.FromAmount)
	}
	if res.GasEstimate != "0.004000" {
		t.Errorf("Expected gas 0.004000, got %s", res.GasEstimate)
	}
	if len(res.Route) != 2 || res.Route[0] != "ETH" || res.Route[1] != "USDC" {
		t.Errorf("Unexpected route %v", res.Route)
	}
	if res.TxHash != "0x"+strings.Repeat("a", 64) {
		t.Errorf("Unexpected tx hash %s", res.TxHash)
	}
}

func TestSimulateSwap_GasAndHashShape(t *testing.T) {
	rnd := &testutils.MockRand{Values: []float64{0, 0.999999}, ValInt: 3}
	e := quote.NewEngine(quote.DefaultTokenPrices, rnd, 0, zap.NewNop())

	for i := 0; i < 4; i++ {
		res := e.SimulateSwap(context.Background(), models.SwapRequest{FromToken: "UNI", ToToken: "LINK", Amount: "10"})
		gas := mustFloat(t, res.GasEstimate)
		if gas < 0.003 || gas > 0.005 {
			t.Errorf("Gas out of range: %s", res.GasEstimate)
		}
		if len(res.TxHash) != 66 || !strings.HasPrefix(res.TxHash, "0x") {
			t.Errorf("Malformed tx hash %q", res.TxHash)
		}
	}
}

func TestSimulateSwap_ValidationFailures(t *testing.T) {
	e := newEngine(time.Hour) // failures must return before the settlement wait

	cases := []struct {
		name string
		req  models.SwapRequest
		err  string
	}{
		{"missing from", models.SwapRequest{ToToken: "USDC", Amount: "1"}, "Invalid parameters"},
		{"missing to", models.SwapRequest{FromToken: "ETH", Amount: "1"}, "Invalid parameters"},
		{"missing amount", models.SwapRequest{FromToken: "ETH", ToToken: "USDC"}, "Invalid parameters"},
		{"garbage amount", models.SwapRequest{FromToken: "ETH", ToToken: "USDC", Amount: "lots"}, "Invalid amount"},
		{"zero amount", models.SwapRequest{FromToken: "ETH", ToToken: "USDC", Amount: "0"}, "Invalid amount"},
		{"negative amount", models.SwapRequest{FromToken: "ETH", ToToken: "USDC", Amount: "-1"}, "Invalid amount"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := e.SimulateSwap(context.Background(), tc.req)
			if res.Success {
				t.Fatal("Expected failure")
			}
			if res.Error != tc.err {
				t.Errorf("Expected error %q, got %q", tc.err, res.Error)
			}
			if res.ToAmount != "0" || res.FromAmount != tc.req.Amount || res.Route == nil {
				t.Errorf("Unexpected failure payload %+v", res)
			}
		})
	}
}

func TestSimulateSwap_DelayDoesNotSerialize(t *testing.T) {
	e := newEngine(100 * time.Millisecond)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := e.SimulateSwap(context.Background(), models.SwapRequest{FromToken: "ETH", ToToken: "DAI", Amount: "2"})
			if !res.Success {
				t.Errorf("Expected success, got %+v", res)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	if elapsed < 100*time.Millisecond {
		t.Errorf("Settlement delay was skipped (%v)", elapsed)
	}
	if elapsed > 600*time.Millisecond {
		t.Errorf("Concurrent swaps look serialized (%v)", elapsed)
	}
}

func TestSimulateSwap_ContextCancelled(t *testing.T) {
	e := newEngine(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := e.SimulateSwap(ctx, models.SwapRequest{FromToken: "ETH", ToToken: "USDC", Amount: "1"})
	if res.Success || res.Error == "" {
		t.Errorf("Expected interrupted failure, got %+v", res)
	}
}

func TestLiveTokenPrices(t *testing.T) {
	live := quote.LiveTokenPrices{
		Prices:   testutils.PairTable{"ETH/USDC": {Pair: "ETH/USDC", Price: 3000}},
		Quote:    "USDC",
		Fallback: quote.DefaultTokenPrices,
	}
	e := quote.NewEngine(live, &testutils.MockRand{ValFloat: 0.5}, 0, zap.NewNop())

	q := e.GetQuote("ETH", "USDC", "1")
	want := 3000 * (1 - quote.PriceImpact(3000)/100)
	if math.Abs(q.Price-want) > 1e-9 {
		t.Errorf("Live ETH price should be used, got rate %v want %v", q.Price, want)
	}

	if p, _ := live.TokenPrice("UNI"); p != 12.5 {
		t.Errorf("Untracked token should use fallback, got %v", p)
	}
	if p, _ := live.TokenPrice("USDC"); p != 1 {
		t.Errorf("Quote token should use fallback, got %v", p)
	}
}

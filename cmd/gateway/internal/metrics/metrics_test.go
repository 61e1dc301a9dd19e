package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/metrics"
	"github.com/shubham-shewale/market-terminal/pkg/models"
)

func TestObserveTick(t *testing.T) {
	m := metrics.New()

	m.ObserveTick([]models.PricePoint{{Pair: "ETH/USDC"}, {Pair: "UNI/USDC"}})
	m.ObserveTick([]models.PricePoint{{Pair: "ETH/USDC"}, {Pair: "UNI/USDC"}})

	if got := testutil.ToFloat64(m.PriceTicks); got != 2 {
		t.Errorf("Expected 2 ticks, got %v", got)
	}
	if got := testutil.ToFloat64(m.LastTickPairs); got != 2 {
		t.Errorf("Expected 2 pairs, got %v", got)
	}
}

func TestRecordSwap(t *testing.T) {
	m := metrics.New()

	m.RecordSwap(true)
	m.RecordSwap(false)
	m.RecordSwap(false)

	if got := testutil.ToFloat64(m.SwapSimulations.WithLabelValues("failure")); got != 2 {
		t.Errorf("Expected 2 failures, got %v", got)
	}
}

func TestHandler_ExposesClientGauge(t *testing.T) {
	m := metrics.New()
	m.WatchClients(func() int { return 3 })
	m.RecordRequest("GET", "", 404, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "market_stream_clients_connected 3") {
		t.Errorf("Missing client gauge in:\n%s", body)
	}
	if !strings.Contains(string(body), `route="unmatched"`) {
		t.Error("Unmatched routes should be labelled")
	}
}

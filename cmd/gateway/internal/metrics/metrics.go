package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shubham-shewale/market-terminal/pkg/models"
)

const namespace = "market"

// Metrics owns a private registry so several gateways (or tests) can coexist
// in one process.
type Metrics struct {
	registry *prometheus.Registry

	PriceTicks      prometheus.Counter
	LastTickPairs   prometheus.Gauge
	SwapSimulations *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PriceTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "price_ticks_total",
			Help:      "Price simulator ticks",
		}),
		LastTickPairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "tracked_pairs",
			Help:      "Pairs carried by the last tick",
		}),
		SwapSimulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "simulations_total",
			Help:      "Swap simulations by outcome",
		}, []string{"result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.PriceTicks,
		m.LastTickPairs,
		m.SwapSimulations,
		m.HTTPRequests,
		m.HTTPDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// WatchClients exports the live stream connection count.
func (m *Metrics) WatchClients(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "clients_connected",
		Help:      "Connected price stream clients",
	}, func() float64 { return float64(count()) }))
}

// ObserveTick has the simulator's tick listener signature.
func (m *Metrics) ObserveTick(points []models.PricePoint) {
	m.PriceTicks.Inc()
	m.LastTickPairs.Set(float64(len(points)))
}

func (m *Metrics) RecordSwap(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.SwapSimulations.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package api

import (
	"context"
	_ "embed"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/metrics"
	"github.com/shubham-shewale/market-terminal/pkg/config"
	"github.com/shubham-shewale/market-terminal/pkg/models"
)

const apiVersion = "v1.0.0"

//go:embed openapi.json
var openAPIDoc []byte

type PriceReader interface {
	Snapshot() []models.PricePoint
	Get(pair string) (models.PricePoint, bool)
}

type OrderBookReader interface {
	Get(pair string) (models.OrderBook, bool)
	GetAll() map[string]models.OrderBook
}

type QuoteService interface {
	GetQuote(fromToken, toToken, amount string) models.Quote
	SimulateSwap(ctx context.Context, req models.SwapRequest) models.SwapQuoteResult
}

// Server is the request/response facade over the simulators and the quote
// engine. It also mounts the price stream handler.
type Server struct {
	cfg     *config.Config
	prices  PriceReader
	books   OrderBookReader
	quotes  QuoteService
	metrics *metrics.Metrics
	logger  *zap.Logger

	engine  *gin.Engine
	server  *http.Server
	started time.Time
}

// NewServer wires the routes. stream and m may be nil.
func NewServer(cfg *config.Config, prices PriceReader, books OrderBookReader, quotes QuoteService, stream http.Handler, m *metrics.Metrics, logger *zap.Logger) *Server {
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		prices:  prices,
		books:   books,
		quotes:  quotes,
		metrics: m,
		logger:  logger,
		engine:  gin.New(),
		started: time.Now(),
	}
	s.engine.Use(recovery(logger), accessLog(logger, m), cors(cfg.App.CORSOrigin))
	s.registerRoutes(stream)

	s.server = &http.Server{
		Addr:              cfg.App.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes(stream http.Handler) {
	api := s.engine.Group("/api")
	{
		api.GET("", s.handleIndex)
		api.GET("/health", s.handleHealth)
		api.GET("/prices", s.handlePrices)
	}

	swap := api.Group("/swap")
	{
		swap.GET("/quote", s.handleQuote)
		swap.POST("/simulate", s.handleSimulate)
		swap.GET("/orderbook/*pair", s.handleOrderBook)
		swap.GET("/orderbooks", s.handleOrderBooks)
	}

	s.engine.GET("/api-docs", s.handleDocs)

	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	if stream != nil {
		s.engine.GET(s.cfg.Stream.Path, gin.WrapH(stream))
	}
}

// Handler exposes the routed engine, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.server.Addr), zap.String("stream", s.cfg.Stream.Path))
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests. Hijacked stream connections are drained by the hub.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

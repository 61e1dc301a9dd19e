package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/api"
	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/gateway"
	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/hub"
	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/metrics"
	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/publisher"
	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/quote"
	"github.com/shubham-shewale/market-terminal/cmd/gateway/internal/simulator"
	"github.com/shubham-shewale/market-terminal/pkg/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}
	defer logger.Sync()

	seed := time.Now().UnixNano()
	clock := simulator.RealClock{}

	prices := simulator.NewPriceSimulator(cfg.Simulator, logger, simulator.NewRealRand(seed), clock)

	var bookSource simulator.BasePriceSource = simulator.StaticPrices{}
	if cfg.Simulator.OrderBookSource == config.OrderBookSourceLive {
		bookSource = simulator.LivePrices{Prices: prices, Fallback: simulator.StaticPrices{}}
	}
	books := simulator.NewOrderBookSimulator(cfg.Simulator, logger, bookSource, simulator.NewRealRand(seed+1))

	var tokenPrices quote.TokenPriceSource = quote.DefaultTokenPrices
	if cfg.Swap.LivePrices {
		tokenPrices = quote.LiveTokenPrices{Prices: prices, Quote: "USDC", Fallback: quote.DefaultTokenPrices}
	}
	engine := quote.NewEngine(tokenPrices, simulator.NewRealRand(seed+2), cfg.Swap.SettlementDelay, logger)

	wsHub := hub.NewHub(prices, clock, logger)
	prices.OnTick(wsHub.Broadcast)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tickPublisher *publisher.TickPublisher
	if cfg.Kafka.Enabled {
		creator := publisher.NewTopicCreator(logger, &publisher.RealKafkaDialer{Dialer: &kafka.Dialer{Timeout: 5 * time.Second}}, publisher.RealSleeper{})
		if err := creator.Create(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic); err != nil {
			logger.Warn("Topic setup failed, publishing anyway", zap.Error(err))
		}
		tickPublisher = publisher.NewTickPublisher(logger, publisher.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		prices.OnTick(tickPublisher.Publish)
		logger.Info("Publishing ticks to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	m := metrics.New()
	m.WatchClients(wsHub.ClientCount)
	prices.OnTick(m.ObserveTick)

	srv := api.NewServer(cfg, prices, books, engine, gateway.Handler(wsHub, logger, cfg.Stream), m, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		prices.Run(gctx)
		return nil
	})
	g.Go(func() error {
		books.Run(gctx)
		return nil
	})
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		// Stop accepting upgrades first, then close the stream clients.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		wsHub.Shutdown()
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Gateway exited with error", zap.Error(err))
	}

	if tickPublisher != nil {
		if err := tickPublisher.Close(); err != nil {
			logger.Error("Kafka writer close failed", zap.Error(err))
		}
	}
	logger.Info("Shutdown Complete")
}

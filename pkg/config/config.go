package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	OrderBookSourceLive   = "live"
	OrderBookSourceStatic = "static"
)

// Config holds all configuration for the gateway and the processor.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Stream    StreamConfig    `mapstructure:"stream"`
	Swap      SwapConfig      `mapstructure:"swap"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Processor ProcessorConfig `mapstructure:"processor"`
}

type AppConfig struct {
	Port       string `mapstructure:"port"`
	Env        string `mapstructure:"env"` // e.g., "local", "prod"
	CORSOrigin string `mapstructure:"cors_origin"`
}

type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type SimulatorConfig struct {
	Pairs             []string      `mapstructure:"pairs"`
	PriceInterval     time.Duration `mapstructure:"price_interval"`
	Volatility        float64       `mapstructure:"volatility"`
	OrderBookInterval time.Duration `mapstructure:"orderbook_interval"`
	OrderBookDepth    int           `mapstructure:"orderbook_depth"`
	OrderBookStep     float64       `mapstructure:"orderbook_step"`
	OrderBookSource   string        `mapstructure:"orderbook_source"` // "live" or "static"
}

type StreamConfig struct {
	Path           string        `mapstructure:"path"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

type SwapConfig struct {
	SettlementDelay time.Duration `mapstructure:"settlement_delay"`
	DefaultSlippage float64       `mapstructure:"default_slippage"`
	LivePrices      bool          `mapstructure:"live_prices"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type ProcessorConfig struct {
	NumWorkers int `mapstructure:"num_workers"`
}

// LoadConfig reads configuration from .env file, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	// Load .env into the process environment first so viper sees APP_PORT etc.
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, relying on System Env Vars")
	}

	v := viper.New()
	SetDefaults(v)

	// "app.port" -> "APP_PORT"
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not populate nested structs on Unmarshal.
	bindEnv(v, "app.port", "app.env", "app.cors_origin")
	bindEnv(v, "logger.level", "logger.development")
	bindEnv(v, "simulator.pairs", "simulator.price_interval", "simulator.volatility",
		"simulator.orderbook_interval", "simulator.orderbook_depth", "simulator.orderbook_step",
		"simulator.orderbook_source")
	bindEnv(v, "stream.path", "stream.write_wait", "stream.pong_wait", "stream.ping_period",
		"stream.send_buffer", "stream.max_message_size")
	bindEnv(v, "swap.settlement_delay", "swap.default_slippage", "swap.live_prices")
	bindEnv(v, "redis.addr", "redis.password", "redis.db", "redis.ttl")
	bindEnv(v, "kafka.enabled", "kafka.brokers", "kafka.topic", "kafka.group_id")
	bindEnv(v, "processor.num_workers")

	return decode(v)
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.port", ":3001")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.cors_origin", "http://localhost:5173")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.development", false)

	v.SetDefault("simulator.pairs", []string{"ETH/USDC", "ETH/USDT", "WBTC/USDC", "UNI/USDC", "LINK/USDC"})
	v.SetDefault("simulator.price_interval", 100*time.Millisecond)
	v.SetDefault("simulator.volatility", 0.001)
	v.SetDefault("simulator.orderbook_interval", 2*time.Second)
	v.SetDefault("simulator.orderbook_depth", 20)
	v.SetDefault("simulator.orderbook_step", 0.0002)
	v.SetDefault("simulator.orderbook_source", OrderBookSourceLive)

	v.SetDefault("stream.path", "/ws/prices")
	v.SetDefault("stream.write_wait", 5*time.Second)
	v.SetDefault("stream.pong_wait", 60*time.Second)
	v.SetDefault("stream.ping_period", 50*time.Second)
	v.SetDefault("stream.send_buffer", 256)
	v.SetDefault("stream.max_message_size", 512*1024)

	v.SetDefault("swap.settlement_delay", 500*time.Millisecond)
	v.SetDefault("swap.default_slippage", 0.5)
	v.SetDefault("swap.live_prices", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", time.Hour)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "price_ticks")
	v.SetDefault("kafka.group_id", "market-processor-group")

	v.SetDefault("processor.num_workers", 4)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the simulators or the processor cannot run with.
func (c *Config) Validate() error {
	if len(c.Simulator.Pairs) == 0 {
		return fmt.Errorf("simulator pairs cannot be empty")
	}
	if c.Simulator.PriceInterval <= 0 || c.Simulator.OrderBookInterval <= 0 {
		return fmt.Errorf("simulator intervals must be positive")
	}
	if c.Simulator.OrderBookDepth <= 0 {
		return fmt.Errorf("orderbook depth must be positive, got %d", c.Simulator.OrderBookDepth)
	}
	switch c.Simulator.OrderBookSource {
	case OrderBookSourceLive, OrderBookSourceStatic:
	default:
		return fmt.Errorf("unknown orderbook source %q", c.Simulator.OrderBookSource)
	}
	if c.Stream.SendBuffer <= 0 || c.Stream.MaxMessageSize <= 0 {
		return fmt.Errorf("stream send buffer and max message size must be positive")
	}
	if c.Stream.WriteWait <= 0 || c.Stream.PongWait <= 0 || c.Stream.PingPeriod <= 0 {
		return fmt.Errorf("stream timeouts must be positive")
	}
	if c.Stream.PingPeriod >= c.Stream.PongWait {
		return fmt.Errorf("stream ping period (%s) must be shorter than pong wait (%s)", c.Stream.PingPeriod, c.Stream.PongWait)
	}
	if c.Processor.NumWorkers <= 0 {
		return fmt.Errorf("processor workers must be positive, got %d", c.Processor.NumWorkers)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka brokers cannot be empty")
	}
	return nil
}

// bindEnv is a helper to bind multiple keys at once
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}
}

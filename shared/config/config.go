package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BookStoreMemory   = "memory"
	BookStorePebble   = "pebble"
	BookStorePostgres = "postgres"
)

type ExchangeConfig struct {
	HTTPAddress   string `yaml:"http_address"   env:"EXCHANGE_HTTP_ADDRESS"   env-default:":8080"`
	HealthAddress string `yaml:"health_address" env:"EXCHANGE_HEALTH_ADDRESS" env-default:":50051"`
	LogLevel      string `yaml:"log_level"      env:"EXCHANGE_LOG_LEVEL"      env-default:"info"`
	LogFormat     string `yaml:"log_format"     env:"EXCHANGE_LOG_FORMAT"     env-default:"json"`
	// DBURI is optional; without it ledger and trades live in memory.
	DBURI     string `yaml:"db_uri"     env:"EXCHANGE_DB_URI"`
	BookStore string `yaml:"book_store" env:"EXCHANGE_BOOK_STORE" env-default:"memory"`
	PebbleDir string `yaml:"pebble_dir" env:"EXCHANGE_PEBBLE_DIR" env-default:"./data/book"`

	CreateTimeout      time.Duration `yaml:"create_timeout"      env:"EXCHANGE_CREATE_TIMEOUT"      env-default:"5s"`
	CheckTimeout       time.Duration `yaml:"check_timeout"       env:"EXCHANGE_CHECK_TIMEOUT"       env-default:"2s"`
	ActivationInterval time.Duration `yaml:"activation_interval" env:"EXCHANGE_ACTIVATION_INTERVAL" env-default:"1s"`
	// OrderRetention is how long filled and cancelled orders stay queryable.
	OrderRetention time.Duration `yaml:"order_retention" env:"EXCHANGE_ORDER_RETENTION" env-default:"720h"`
	PurgeInterval  time.Duration `yaml:"purge_interval"  env:"EXCHANGE_PURGE_INTERVAL"  env-default:"1h"`

	Redis          RedisConfig          `yaml:"redis"`
	RateLimiter    RateLimiterConfig    `yaml:"rate_limiter"`
	Kafka          KafkaConfig          `yaml:"kafka"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	Publication    PublicationConfig    `yaml:"publication"`
	Tracing        TracingConfig        `yaml:"tracing"`
}

type RedisConfig struct {
	Enabled           bool          `yaml:"enabled"            env:"REDIS_ENABLED"            env-default:"false"`
	Host              string        `yaml:"host"               env:"REDIS_HOST"               env-default:"localhost"`
	Port              int           `yaml:"port"               env:"REDIS_PORT"               env-default:"6379"`
	Password          string        `yaml:"password"           env:"REDIS_PASSWORD"`
	DB                int           `yaml:"db"                 env:"REDIS_DB"                 env-default:"0"`
	PoolSize          int           `yaml:"pool_size"          env:"REDIS_POOL_SIZE"          env-default:"10"`
	MinIdleConns      int           `yaml:"min_idle_conns"     env:"REDIS_MIN_IDLE_CONNS"     env-default:"2"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout" env:"REDIS_CONNECTION_TIMEOUT" env-default:"3s"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"       env:"REDIS_IDLE_TIMEOUT"       env-default:"5m"`
}

func (c RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type RateLimiterConfig struct {
	CreateOrder int64         `yaml:"create_order" env:"RATE_LIMIT_CREATE_ORDER" env-default:"50"`
	CancelOrder int64         `yaml:"cancel_order" env:"RATE_LIMIT_CANCEL_ORDER" env-default:"100"`
	Window      time.Duration `yaml:"window"       env:"RATE_LIMIT_WINDOW"       env-default:"1m"`
	KeyPrefix   string        `yaml:"key_prefix"   env:"RATE_LIMIT_KEY_PREFIX"   env-default:"rate:order:"`
}

type KafkaConfig struct {
	Enabled     bool     `yaml:"enabled"      env:"KAFKA_ENABLED"      env-default:"false"`
	Brokers     []string `yaml:"brokers"      env:"KAFKA_BROKERS"      env-default:"localhost:9092" env-separator:","`
	TradesTopic string   `yaml:"trades_topic" env:"KAFKA_TRADES_TOPIC" env-default:"exchange.trades"`
}

type CircuitBreakerConfig struct {
	MaxRequests uint32        `yaml:"max_requests" env:"CB_MAX_REQUESTS" env-default:"3"`
	Interval    time.Duration `yaml:"interval"     env:"CB_INTERVAL"     env-default:"10s"`
	Timeout     time.Duration `yaml:"timeout"      env:"CB_TIMEOUT"      env-default:"5s"`
	MaxFailures uint32        `yaml:"max_failures" env:"CB_MAX_FAILURES" env-default:"5"`
}

type PublicationConfig struct {
	PollInterval time.Duration `yaml:"poll_interval" env:"PUBLICATION_POLL_INTERVAL" env-default:"2s"`
	Timeout      time.Duration `yaml:"timeout"       env:"PUBLICATION_TIMEOUT"       env-default:"10m"`
	Retention    time.Duration `yaml:"retention"     env:"PUBLICATION_RETENTION"     env-default:"24h"`
}

type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint"     env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string  `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"exchange"`
	SampleRatio float64 `yaml:"sample_ratio" env:"OTEL_SAMPLE_RATIO" env-default:"1"`
}

// Load reads path and applies env overrides. A missing file is not an error.
func Load(path string) (*ExchangeConfig, error) {
	config := &ExchangeConfig{}

	if path != "" {
		err := cleanenv.ReadConfig(path, config)
		if err == nil {
			return config, config.validate()
		}
		if !errors.Is(err, fs.ErrNotExist) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("cleanenv.ReadConfig: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("cleanenv.ReadEnv: %w", err)
	}

	return config, config.validate()
}

func (c *ExchangeConfig) validate() error {
	switch c.BookStore {
	case BookStoreMemory, BookStorePebble:
	case BookStorePostgres:
		if c.DBURI == "" {
			return errors.New("postgres book store requires db_uri")
		}
	default:
		return fmt.Errorf("unknown book store %q", c.BookStore)
	}

	if c.RateLimiter.CreateOrder <= 0 || c.RateLimiter.CancelOrder <= 0 || c.RateLimiter.Window <= 0 {
		return errors.New("rate limiter limits and window must be positive")
	}

	return nil
}

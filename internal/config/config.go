package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	PostgresDSN     string        `envconfig:"POSTGRES_DSN" required:"true"`
	ElasticURL      string        `envconfig:"ELASTIC_URL"`
	NatsURL         string        `envconfig:"NATS_URL"`
	RedisURL        string        `envconfig:"REDIS_URL"`
	AllowedOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	Debug           bool          `envconfig:"APP_DEBUG" default:"false"`
	SeedDemo        bool          `envconfig:"SEED_DEMO" default:"false"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	RollbackDelay      time.Duration `envconfig:"ROLLBACK_DELAY" default:"5s"`
	MutationMaxRetries int           `envconfig:"MUTATION_MAX_RETRIES" default:"5"`

	JobPollInterval    time.Duration `envconfig:"JOB_POLL_INTERVAL" default:"1s"`
	JobBatchSize       int           `envconfig:"JOB_BATCH_SIZE" default:"50"`
	JobMaxAttempts     int           `envconfig:"JOB_MAX_ATTEMPTS" default:"5"`
	OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"1s"`
	DLQRetryInterval   time.Duration `envconfig:"DLQ_RETRY_INTERVAL" default:"30s"`

	MessageRateLimit  int           `envconfig:"MESSAGE_RATE_LIMIT" default:"5"`
	MessageRateWindow time.Duration `envconfig:"MESSAGE_RATE_WINDOW" default:"2s"`

	UploadDir      string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	UploadBaseURL  string `envconfig:"UPLOAD_BASE_URL" default:"/uploads"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required")
	}
	if c.RollbackDelay <= 0 {
		return fmt.Errorf("ROLLBACK_DELAY must be positive")
	}
	if c.MutationMaxRetries < 1 {
		return fmt.Errorf("MUTATION_MAX_RETRIES must be at least 1")
	}
	if c.JobBatchSize < 1 {
		return fmt.Errorf("JOB_BATCH_SIZE must be at least 1")
	}
	if c.JobMaxAttempts < 1 {
		return fmt.Errorf("JOB_MAX_ATTEMPTS must be at least 1")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.HTTPPort
}

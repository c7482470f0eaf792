package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Model struct {
		Backend      string        `yaml:"backend"` // local or http
		Path         string        `yaml:"path"`
		EncodersPath string        `yaml:"encoders_path"`
		URL          string        `yaml:"url"`
		Timeout      time.Duration `yaml:"timeout"`
	} `yaml:"model"`
	Pricing struct {
		Weights struct {
			Demand      float64 `yaml:"demand"`
			Competition float64 `yaml:"competition"`
			Inventory   float64 `yaml:"inventory"`
			Time        float64 `yaml:"time"`
			Seasonality float64 `yaml:"seasonality"`
		} `yaml:"weights"`
		BatchParallelism int `yaml:"batch_parallelism"`
	} `yaml:"pricing"`
	Audit struct {
		Backend string `yaml:"backend"` // clickhouse, kafka, both or none
		Table   string `yaml:"table"`
	} `yaml:"audit"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		QuotesTopic  string   `yaml:"quotes_topic"`
		TicksTopic   string   `yaml:"ticks_topic"`
		LogsTopic    string   `yaml:"logs_topic"` // aggregated error logs, empty disables
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Market struct {
		SnapshotTTL    time.Duration `yaml:"snapshot_ttl"`
		SnapshotMaxAge time.Duration `yaml:"snapshot_max_age"`
		Redis          struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"market"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("MODEL_BACKEND"); v != "" {
		c.Model.Backend = v
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		c.Model.Path = v
	}
	if v := os.Getenv("MODEL_ENCODERS_PATH"); v != "" {
		c.Model.EncodersPath = v
	}
	if v := os.Getenv("MODEL_URL"); v != "" {
		c.Model.URL = v
	}
	if v := os.Getenv("AUDIT_BACKEND"); v != "" {
		c.Audit.Backend = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_QUOTES_TOPIC"); v != "" {
		c.Kafka.QuotesTopic = v
	}
	if v := os.Getenv("KAFKA_TICKS_TOPIC"); v != "" {
		c.Kafka.TicksTopic = v
	}
	if v := os.Getenv("KAFKA_LOGS_TOPIC"); v != "" {
		c.Kafka.LogsTopic = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Model.Backend {
	case "local":
		if c.Model.Path == "" {
			return fmt.Errorf("model.path is required for local backend")
		}
		if c.Model.EncodersPath == "" {
			return fmt.Errorf("model.encoders_path is required for local backend")
		}
	case "http":
		if c.Model.URL == "" {
			return fmt.Errorf("model.url is required for http backend")
		}
		if c.Model.EncodersPath == "" {
			return fmt.Errorf("model.encoders_path is required for http backend")
		}
	case "":
		return fmt.Errorf("model.backend is required")
	default:
		return fmt.Errorf("model.backend must be 'local' or 'http', got '%s'", c.Model.Backend)
	}
	switch c.Audit.Backend {
	case "", "none":
	case "clickhouse", "kafka", "both":
	default:
		return fmt.Errorf("audit.backend must be 'clickhouse', 'kafka', 'both' or 'none', got '%s'", c.Audit.Backend)
	}
	if w := c.Pricing.Weights; w.Demand < 0 || w.Competition < 0 || w.Inventory < 0 || w.Time < 0 || w.Seasonality < 0 {
		return fmt.Errorf("pricing.weights must be non-negative")
	}
	return nil
}

// FactorWeightsSet reports whether any pricing weight is configured.
func (c *Config) FactorWeightsSet() bool {
	w := c.Pricing.Weights
	return w.Demand != 0 || w.Competition != 0 || w.Inventory != 0 || w.Time != 0 || w.Seasonality != 0
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides, read after the YAML file and an optional .env.
const (
	EnvStorageDSN    = "JOBS_STORAGE_DSN"
	EnvRedisAddr     = "JOBS_REDIS_ADDR"
	EnvRedisPassword = "JOBS_REDIS_PASSWORD"
	EnvMode          = "JOBS_MODE"
	EnvMaxResults    = "JOBS_MAX_RESULTS"
)

func LoadConfig(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("Warning: failed to close config file: %v", closeErr)
		}
	}()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return cfg, nil
}

// Default is the configuration a YAML file is decoded over; keys absent from the
// file keep these values.
func Default() *Config {
	return &Config{
		Mode:                "conservative",
		MaxResults:          50,
		MaxRequestRetries:   3,
		EvaluationTimeoutMS: 10000,
		Engine:              "rod",
		Enrichment: EnrichmentConfig{
			NavigationTimeoutMS: 15000,
		},
		Rod: RodConfig{
			Headless:           true,
			NavigationTimeoutS: 60,
			WaitLoadTimeoutS:   10,
			MaxScrollSteps:     40,
		},
		HTTP: HttpConfig{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			AcceptLanguage: "en-US,en;q=0.9",
			TotalTimeoutMS: 30000,
			MaxRetries:     2,
		},
		Backoff: BackoffConfig{
			MinMS:     1000,
			MaxMS:     30000,
			JitterPct: 20,
		},
		Normalize: NormalizeConfig{
			TrimNBSP:       true,
			CollapseSpaces: true,
		},
		Storage: StorageConfig{
			Sink:             "stdout",
			Table:            "TblJobListings",
			CommandTimeoutMS: 30000,
			RedisQueue:       "jobs:listings",
		},
		Scheduler: SchedulerConfig{
			Mode: "oneshot",
		},
		Observability: ObservabilityConfig{
			LogLevel:   "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvStorageDSN); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Storage.RedisAddr = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		c.Storage.RedisPassword = v
	}
	if v := os.Getenv(EnvMode); v != "" {
		c.Mode = v
	}
	if v := os.Getenv(EnvMaxResults); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxResults, err)
		}
		c.MaxResults = n
	}
	return nil
}

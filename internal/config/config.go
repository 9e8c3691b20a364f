package config

import (
	"fmt"
	"time"

	"linkedin-jobs-scraper/internal/pacing"
)

type Config struct {
	Mode                string              `yaml:"mode"`
	IncludeCompanyURL   bool                `yaml:"include_company_url"`
	MaxResults          int                 `yaml:"max_results"`
	MaxRequestRetries   int                 `yaml:"max_request_retries"`
	// EvaluationTimeoutMS bounds every in-page evaluation (snapshot, scroll step).
	EvaluationTimeoutMS int                 `yaml:"evaluation_timeout_ms"`
	StartURLs           []string            `yaml:"start_urls"`
	Engine              string              `yaml:"engine"`
	SelectorsFile       string              `yaml:"selectors_file"`
	Acceptance          AcceptanceConfig    `yaml:"acceptance"`
	Enrichment          EnrichmentConfig    `yaml:"enrichment"`
	Rod                 RodConfig           `yaml:"rod"`
	HTTP                HttpConfig          `yaml:"http"`
	Backoff             BackoffConfig       `yaml:"backoff"`
	Pacing              PacingConfig        `yaml:"pacing"`
	Normalize           NormalizeConfig     `yaml:"normalize"`
	Storage             StorageConfig       `yaml:"storage"`
	Scheduler           SchedulerConfig     `yaml:"scheduler"`
	Observability       ObservabilityConfig `yaml:"observability"`
}

type AcceptanceConfig struct {
	TitleKeywords []string `yaml:"title_keywords"`
}

type EnrichmentConfig struct {
	// MaxDetailPages caps detail-page visits per listing page; 0 means no cap.
	MaxDetailPages      int `yaml:"max_detail_pages"`
	NavigationTimeoutMS int `yaml:"navigation_timeout_ms"`
}

type RodConfig struct {
	ChromePath         string `yaml:"chrome_path"`
	Headless           bool   `yaml:"headless"`
	NoSandbox          bool   `yaml:"no_sandbox"`
	NavigationTimeoutS int    `yaml:"navigation_timeout_s"`
	WaitLoadTimeoutS   int    `yaml:"wait_load_timeout_s"`
	MaxScrollSteps     int    `yaml:"max_scroll_steps"`
}

type HttpConfig struct {
	UserAgent      string `yaml:"user_agent"`
	AcceptLanguage string `yaml:"accept_language"`
	TotalTimeoutMS int    `yaml:"total_timeout_ms"`
	MaxRetries     int    `yaml:"max_retries"`
}

type BackoffConfig struct {
	MinMS     int `yaml:"min_ms"`
	MaxMS     int `yaml:"max_ms"`
	JitterPct int `yaml:"jitter_pct"`
}

type PacingConfig struct {
	// Disabled zeroes every wait window. Only meant for local fixture runs.
	Disabled bool `yaml:"disabled"`
}

type NormalizeConfig struct {
	TrimNBSP       bool `yaml:"trim_nbsp"`
	CollapseSpaces bool `yaml:"collapse_spaces"`
}

type StorageConfig struct {
	Sink             string `yaml:"sink"`
	DSN              string `yaml:"dsn"`
	Table            string `yaml:"table"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
	RedisAddr        string `yaml:"redis_addr"`
	RedisPassword    string `yaml:"redis_password"`
	RedisDB          int    `yaml:"redis_db"`
	RedisQueue       string `yaml:"redis_queue"`
}

type SchedulerConfig struct {
	Mode      string `yaml:"mode"`
	IntervalS int    `yaml:"interval_s"`
}

type ObservabilityConfig struct {
	LogPath    string `yaml:"log_path"`
	LogLevel   string `yaml:"log_level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Validation
func (c *Config) Validate() error {
	if _, err := pacing.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("mode: %w", err)
	}
	if len(c.StartURLs) == 0 {
		return fmt.Errorf("start_urls is required")
	}
	if c.MaxResults < 0 {
		return fmt.Errorf("max_results must be >= 0")
	}
	if c.MaxRequestRetries < 0 {
		return fmt.Errorf("max_request_retries must be >= 0")
	}
	if c.EvaluationTimeoutMS <= 0 {
		return fmt.Errorf("evaluation_timeout_ms must be > 0")
	}
	if c.Engine != "rod" && c.Engine != "http" {
		return fmt.Errorf("engine must be 'rod' or 'http'")
	}
	if c.Enrichment.MaxDetailPages < 0 {
		return fmt.Errorf("enrichment.max_detail_pages must be >= 0")
	}
	if c.Enrichment.NavigationTimeoutMS <= 0 {
		return fmt.Errorf("enrichment.navigation_timeout_ms must be > 0")
	}
	if c.Engine == "rod" {
		if c.Rod.NavigationTimeoutS <= 0 {
			return fmt.Errorf("rod.navigation_timeout_s must be > 0")
		}
		if c.Rod.WaitLoadTimeoutS <= 0 {
			return fmt.Errorf("rod.wait_load_timeout_s must be > 0")
		}
		if c.Rod.MaxScrollSteps < 0 {
			return fmt.Errorf("rod.max_scroll_steps must be >= 0")
		}
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.TotalTimeoutMS <= 0 {
		return fmt.Errorf("http.total_timeout_ms must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.Backoff.MinMS <= 0 {
		return fmt.Errorf("backoff.min_ms must be > 0")
	}
	if c.Backoff.MaxMS <= 0 {
		return fmt.Errorf("backoff.max_ms must be > 0")
	}
	if c.Backoff.MinMS > c.Backoff.MaxMS {
		return fmt.Errorf("backoff.min_ms must be <= backoff.max_ms")
	}
	if c.Backoff.JitterPct < 0 || c.Backoff.JitterPct > 100 {
		return fmt.Errorf("backoff.jitter_pct must be between 0 and 100")
	}
	switch c.Storage.Sink {
	case "stdout":
	case "mssql":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the mssql sink")
		}
		if c.Storage.CommandTimeoutMS <= 0 {
			return fmt.Errorf("storage.command_timeout_ms must be > 0")
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("storage.redis_addr is required for the redis sink")
		}
		if c.Storage.RedisQueue == "" {
			return fmt.Errorf("storage.redis_queue is required for the redis sink")
		}
	default:
		return fmt.Errorf("storage.sink must be 'stdout', 'mssql' or 'redis'")
	}
	if c.Scheduler.Mode != "oneshot" && c.Scheduler.Mode != "interval" {
		return fmt.Errorf("scheduler.mode must be 'oneshot' or 'interval'")
	}
	if c.Scheduler.Mode == "interval" && c.Scheduler.IntervalS <= 0 {
		return fmt.Errorf("scheduler.interval_s must be > 0 when mode is 'interval'")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	return nil
}

// Getters
func (c *Config) GetMode() pacing.Mode {
	mode, err := pacing.ParseMode(c.Mode)
	if err != nil {
		return pacing.ModeConservative
	}
	return mode
}

func (c *Config) GetTotalTimeout() time.Duration {
	return time.Duration(c.HTTP.TotalTimeoutMS) * time.Millisecond
}

func (c *Config) GetEvaluationTimeout() time.Duration {
	return time.Duration(c.EvaluationTimeoutMS) * time.Millisecond
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}

func (c *Config) GetSchedulerInterval() time.Duration {
	return time.Duration(c.Scheduler.IntervalS) * time.Second
}

// GetNavigationTimeout bounds the initial load of a listing page for the configured engine.
func (c *Config) GetNavigationTimeout() time.Duration {
	if c.Engine == "http" {
		return c.GetTotalTimeout()
	}
	return time.Duration(c.Rod.NavigationTimeoutS) * time.Second
}

func (c *Config) GetRodWaitLoadTimeout() time.Duration {
	return time.Duration(c.Rod.WaitLoadTimeoutS) * time.Second
}

func (c *Config) GetDetailNavigationTimeout() time.Duration {
	return time.Duration(c.Enrichment.NavigationTimeoutMS) * time.Millisecond
}

// GetTiming returns the visit cadence, or all-zero windows when pacing is disabled.
func (c *Config) GetTiming() pacing.Timing {
	if c.Pacing.Disabled {
		return pacing.Timing{}
	}
	return pacing.DefaultTiming()
}

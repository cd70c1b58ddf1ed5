package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/modtools/tubeguard/internal/logging"
)

// Config materialises process-level configuration: everything the bot needs
// before it can reach Reddit. Enforcement policy (subreddits, ratio,
// lookback, whitelist) is not here; it lives on the wiki page and reloads at
// runtime.
type Config struct {
	Collector   CollectorConfig   `mapstructure:"collector"`
	Wiki        WikiConfig        `mapstructure:"wiki"`
	Ingest      IngestConfig      `mapstructure:"ingest"`
	Engine      EngineConfig      `mapstructure:"engine"`
	Dedup       DedupConfig       `mapstructure:"dedup"`
	Dashboard   DashboardConfig   `mapstructure:"dashboard"`
	Enforcement EnforcementConfig `mapstructure:"enforcement"`
	Logging     logging.Config    `mapstructure:"logging"`
}

// CollectorConfig selects and tunes the platform client. Credentials stay in
// the environment (REDDIT_CLIENT_ID and friends), loaded via godotenv.
type CollectorConfig struct {
	Mode           string        `mapstructure:"mode"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RequestsPerSec float64       `mapstructure:"requests_per_sec"`
}

// WikiConfig locates the runtime configuration wiki page.
type WikiConfig struct {
	Page    string        `mapstructure:"page"`
	Refresh time.Duration `mapstructure:"refresh"`
}

// IngestConfig tunes the streaming feeds.
type IngestConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	PageSize     int           `mapstructure:"page_size"`
	RetryBudget  time.Duration `mapstructure:"retry_budget"`
	Overlap      time.Duration `mapstructure:"overlap"`
}

// EngineConfig tunes the enforcement worker pool.
type EngineConfig struct {
	Workers          int           `mapstructure:"workers"`
	FetchRetryBudget time.Duration `mapstructure:"fetch_retry_budget"`
	QueueSize        int           `mapstructure:"queue_size"`
}

// DedupConfig bounds the seen-set.
type DedupConfig struct {
	Capacity  int           `mapstructure:"capacity"`
	Retention time.Duration `mapstructure:"retention"`
}

// DashboardConfig governs the outcomes dashboard and metrics endpoint.
type DashboardConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Journal string `mapstructure:"journal"`
}

// EnforcementConfig holds action-side switches.
type EnforcementConfig struct {
	DryRun             bool `mapstructure:"dry_run"`
	SendRemovalMessage bool `mapstructure:"send_removal_message"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TUBEGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("collector.mode", "api")
	v.SetDefault("collector.request_timeout", "15s")
	v.SetDefault("collector.requests_per_sec", 1.0)

	v.SetDefault("wiki.page", "youtube_spam_bot_config")
	v.SetDefault("wiki.refresh", "5m")

	v.SetDefault("ingest.poll_interval", "15s")
	v.SetDefault("ingest.page_size", 100)
	v.SetDefault("ingest.retry_budget", "10m")
	v.SetDefault("ingest.overlap", "2m")

	v.SetDefault("engine.workers", 4)
	v.SetDefault("engine.fetch_retry_budget", "2m")
	v.SetDefault("engine.queue_size", 256)

	v.SetDefault("dedup.capacity", 65536)
	v.SetDefault("dedup.retention", "30m")

	v.SetDefault("dashboard.enabled", true)
	v.SetDefault("dashboard.addr", ":8080")
	v.SetDefault("dashboard.journal", "data/outcomes.ndjson")

	v.SetDefault("enforcement.dry_run", false)
	v.SetDefault("enforcement.send_removal_message", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	switch c.Collector.Mode {
	case "api", "mock":
	default:
		return fmt.Errorf("collector.mode must be 'api' or 'mock', got %q", c.Collector.Mode)
	}
	if c.Collector.RequestsPerSec <= 0 {
		return fmt.Errorf("collector.requests_per_sec must be positive")
	}
	if c.Wiki.Page == "" {
		return fmt.Errorf("wiki.page must not be empty")
	}
	if c.Wiki.Refresh <= 0 {
		return fmt.Errorf("wiki.refresh must be positive")
	}
	if c.Ingest.PollInterval <= 0 {
		return fmt.Errorf("ingest.poll_interval must be positive")
	}
	if c.Ingest.PageSize <= 0 || c.Ingest.PageSize > 100 {
		return fmt.Errorf("ingest.page_size must be in 1..100")
	}
	if c.Engine.Workers <= 0 {
		return fmt.Errorf("engine.workers must be positive")
	}
	if c.Engine.QueueSize <= 0 {
		return fmt.Errorf("engine.queue_size must be positive")
	}
	return nil
}

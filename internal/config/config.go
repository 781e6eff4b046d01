package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"fx-rates-pipeline/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Logging     logging.Config    `mapstructure:"logging"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Provider    ProviderConfig    `mapstructure:"provider"`
	Quality     QualityConfig     `mapstructure:"quality"`
	Aggregation AggregationConfig `mapstructure:"aggregation"`
	Insight     InsightConfig     `mapstructure:"insight"`
	Chart       ChartConfig       `mapstructure:"chart"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name            string `mapstructure:"name"`
	Environment     string `mapstructure:"environment"`
	BaseCurrency    string `mapstructure:"base_currency"`
	PipelineVersion string `mapstructure:"pipeline_version"`
}

// StorageConfig locates the flat-file data tiers.
type StorageConfig struct {
	Root       string `mapstructure:"root"`
	RawDir     string `mapstructure:"raw_dir"`
	SilverDir  string `mapstructure:"silver_dir"`
	GoldDir    string `mapstructure:"gold_dir"`
	ReportsDir string `mapstructure:"reports_dir"`
}

// ProviderConfig covers the upstream exchange-rate API.
type ProviderConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RetryAttempts  int           `mapstructure:"retry_attempts"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// QualityConfig tunes batch quality scoring.
type QualityConfig struct {
	OutlierSigma   float64 `mapstructure:"outlier_sigma"`
	ValidityWeight float64 `mapstructure:"validity_weight"`
	OutlierWeight  float64 `mapstructure:"outlier_weight"`
	ValidityFloor  float64 `mapstructure:"validity_floor"`
	MinUpdateYear  int     `mapstructure:"min_update_year"`
	MaxUpdateYear  int     `mapstructure:"max_update_year"`
}

// AggregationConfig governs the silver-to-gold metric computation.
type AggregationConfig struct {
	HistoryDays         int     `mapstructure:"history_days"`
	MovingAverageWindow int     `mapstructure:"moving_average_window"`
	TrendEpsilon        float64 `mapstructure:"trend_epsilon"`
	VolatilityLow       float64 `mapstructure:"volatility_low"`
	VolatilityHigh      float64 `mapstructure:"volatility_high"`
	BandWindow          int     `mapstructure:"band_window"`
}

// InsightConfig covers the LLM collaborator.
type InsightConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Temperature     float64       `mapstructure:"temperature"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	TopCurrencies   int           `mapstructure:"top_currencies"`
	TolerateFailure bool          `mapstructure:"tolerate_failure"`
}

// ChartConfig sets chart rendering dimensions.
type ChartConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// Load builds configuration from .env, file, environment, and defaults.
func Load(path string) (*Config, error) {
	// Secrets may live in a local .env next to the binary.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FXPIPELINE")
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
	v.SetDefault("app.name", "fxpipeline")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.base_currency", "USD")
	v.SetDefault("app.pipeline_version", "1.0.0")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("storage.root", "data")
	v.SetDefault("storage.raw_dir", "raw")
	v.SetDefault("storage.silver_dir", "silver")
	v.SetDefault("storage.gold_dir", "gold")
	v.SetDefault("storage.reports_dir", "reports")

	v.SetDefault("provider.base_url", "https://v6.exchangerate-api.com/v6")
	v.SetDefault("provider.request_timeout", "30s")
	v.SetDefault("provider.retry_attempts", 3)
	v.SetDefault("provider.retry_delay", "5s")
	v.SetDefault("provider.user_agent", "fxpipeline/1.0")

	v.SetDefault("quality.outlier_sigma", 3.0)
	v.SetDefault("quality.validity_weight", 0.5)
	v.SetDefault("quality.outlier_weight", 0.5)
	v.SetDefault("quality.validity_floor", 0.5)
	v.SetDefault("quality.min_update_year", 2000)
	v.SetDefault("quality.max_update_year", 2030)

	v.SetDefault("aggregation.history_days", 30)
	v.SetDefault("aggregation.moving_average_window", 7)
	v.SetDefault("aggregation.trend_epsilon", 0.005)
	v.SetDefault("aggregation.volatility_low", 0.01)
	v.SetDefault("aggregation.volatility_high", 0.05)
	v.SetDefault("aggregation.band_window", 30)

	v.SetDefault("insight.enabled", false)
	v.SetDefault("insight.base_url", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("insight.model", "gpt-4o-mini")
	v.SetDefault("insight.max_tokens", 1000)
	v.SetDefault("insight.temperature", 0.3)
	v.SetDefault("insight.request_timeout", "60s")
	v.SetDefault("insight.retry_attempts", 3)
	v.SetDefault("insight.retry_delay", "2s")
	v.SetDefault("insight.top_currencies", 15)
	v.SetDefault("insight.tolerate_failure", false)

	v.SetDefault("chart.width", 1280)
	v.SetDefault("chart.height", 720)
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
	if len(c.App.BaseCurrency) != 3 {
		return fmt.Errorf("app.base_currency must be a 3-letter code")
	}
	if c.Storage.Root == "" {
		return fmt.Errorf("storage.root cannot be empty")
	}
	if c.Provider.RetryAttempts <= 0 {
		return fmt.Errorf("provider.retry_attempts must be greater than zero")
	}
	if c.Quality.OutlierSigma <= 0 {
		return fmt.Errorf("quality.outlier_sigma must be greater than zero")
	}
	if c.Quality.ValidityFloor < 0 || c.Quality.ValidityFloor > 1 {
		return fmt.Errorf("quality.validity_floor must be within [0,1]")
	}
	if c.Quality.ValidityWeight < 0 || c.Quality.OutlierWeight < 0 {
		return fmt.Errorf("quality weights cannot be negative")
	}
	if c.Quality.ValidityWeight+c.Quality.OutlierWeight == 0 {
		return fmt.Errorf("quality weights cannot both be zero")
	}
	if c.Aggregation.MovingAverageWindow <= 0 {
		return fmt.Errorf("aggregation.moving_average_window must be greater than zero")
	}
	if c.Aggregation.HistoryDays <= 0 {
		return fmt.Errorf("aggregation.history_days must be greater than zero")
	}
	if c.Aggregation.VolatilityLow < 0 || c.Aggregation.VolatilityHigh < c.Aggregation.VolatilityLow {
		return fmt.Errorf("aggregation volatility thresholds must satisfy 0 <= low <= high")
	}
	if c.Insight.Enabled && c.Insight.Model == "" {
		return fmt.Errorf("insight.model must be configured when insight is enabled")
	}
	return nil
}

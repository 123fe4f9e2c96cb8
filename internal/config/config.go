package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pfrederiksen/agedcare-docs/internal/logger"
)

// envFile is loaded into the environment before configuration is read.
var envFile = ".env"

// Config holds all configuration for agedcare-docs
type Config struct {
	DataDir    string           `mapstructure:"data_dir"`
	LogLevel   string           `mapstructure:"log_level"`
	BatchLimit int              `mapstructure:"batch_limit"` // providers or locations per run, 0 for all
	Search     SearchConfig     `mapstructure:"search"`
	Fetch      FetchConfig      `mapstructure:"fetch"`
	Pricing    PricingConfig    `mapstructure:"pricing"`
	Matching   MatchingConfig   `mapstructure:"matching"`
	Dataset    DatasetConfig    `mapstructure:"dataset"`
	Compliance ComplianceConfig `mapstructure:"compliance"`
	Report     ReportConfig     `mapstructure:"report"`
}

// SearchConfig selects and tunes the web search provider
type SearchConfig struct {
	Provider      string        `mapstructure:"provider"` // "serpapi" or "brave"
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"` // 0 disables limiting
}

// FetchConfig tunes page loading and PDF downloads
type FetchConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	DownloadTimeout   time.Duration `mapstructure:"download_timeout"`
	GoldenKeywords    []string      `mapstructure:"golden_keywords"`
}

// PricingConfig tunes the pricing search chain
type PricingConfig struct {
	ResultLimit       int      `mapstructure:"result_limit"`
	FallbackKeywords  []string `mapstructure:"fallback_keywords"`
	RelevanceKeywords []string `mapstructure:"relevance_keywords"`
}

// MatchingConfig holds the fuzzy-match acceptance threshold
type MatchingConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

// DatasetConfig locates the input spreadsheets
type DatasetConfig struct {
	ServiceList  string   `mapstructure:"service_list"`
	Ratings      string   `mapstructure:"ratings"`
	RatingsSheet int      `mapstructure:"ratings_sheet"`
	CareTypes    []string `mapstructure:"care_types"`
}

// ComplianceConfig configures the regulator site client
type ComplianceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ReportConfig configures the result log
type ReportConfig struct {
	Log string `mapstructure:"log"` // CSV file, relative to the data directory
}

// Load reads configuration. An empty configFile looks for an optional agedcare-docs.yaml
// in the working directory; a named file must exist.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("agedcare-docs")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment variable settings
	v.SetEnvPrefix("AGEDCARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("search.api_key", "AGEDCARE_SEARCH_API_KEY", "SEARCH_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding search api key: %w", err)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and environment only
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")
	v.SetDefault("log_level", "INFO")
	v.SetDefault("batch_limit", 30)

	v.SetDefault("search.provider", "serpapi")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.base_url", "")
	v.SetDefault("search.timeout", "30s")
	v.SetDefault("search.rate_per_second", 0)

	v.SetDefault("fetch.navigation_timeout", "15s")
	v.SetDefault("fetch.download_timeout", "10s")
	v.SetDefault("fetch.golden_keywords", []string{"cost", "price", "package", "fees", "charges"})

	v.SetDefault("pricing.result_limit", 5)
	v.SetDefault("pricing.fallback_keywords", []string{"pricing", "cost", "rates"})
	v.SetDefault("pricing.relevance_keywords", []string{"price", "package", "fee", "$"})

	v.SetDefault("matching.threshold", 90)

	v.SetDefault("dataset.service_list", "data/service-list.xlsx")
	v.SetDefault("dataset.ratings", "data/star-ratings.xlsx")
	v.SetDefault("dataset.ratings_sheet", 1)
	v.SetDefault("dataset.care_types", []string{"Residential Care", "Home Care"})

	v.SetDefault("compliance.base_url", "https://www.agedcarequality.gov.au")
	v.SetDefault("compliance.timeout", "30s")

	v.SetDefault("report.log", "results.csv")
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch strings.ToLower(c.Search.Provider) {
	case "serpapi", "brave":
	default:
		return fmt.Errorf("search provider must be 'serpapi' or 'brave', got: %s", c.Search.Provider)
	}

	if c.Matching.Threshold <= 0 || c.Matching.Threshold > 100 {
		return fmt.Errorf("matching threshold must be in (0, 100], got: %v", c.Matching.Threshold)
	}
	if c.Pricing.ResultLimit <= 0 {
		return fmt.Errorf("pricing result limit must be positive, got: %d", c.Pricing.ResultLimit)
	}
	if c.Search.RatePerSecond < 0 {
		return fmt.Errorf("search rate must not be negative, got: %v", c.Search.RatePerSecond)
	}
	if c.BatchLimit < 0 {
		return fmt.Errorf("batch limit must not be negative, got: %d", c.BatchLimit)
	}
	if c.DataDir == "" {
		return errors.New("data directory is required")
	}

	return nil
}

// RequireSearchKey reports a missing search API key.
func (c *Config) RequireSearchKey() error {
	if c.Search.APIKey == "" {
		return errors.New("search API key is required (set SEARCH_API_KEY or AGEDCARE_SEARCH_API_KEY)")
	}
	return nil
}

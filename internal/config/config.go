package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kainuguru/ingestion-core/internal/database"
)

// Config is the process-level configuration for one ingestion run: where the database
// lives, how the run is logged, and which retailer adapter it drives.
type Config struct {
	Database database.Config `mapstructure:"database"`
	Logging  LoggingConfig   `mapstructure:"logging"`
	Sentry   SentryConfig    `mapstructure:"sentry"`
	App      AppConfig       `mapstructure:"app"`
	Retailer RetailerConfig  `mapstructure:"retailer"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type SentryConfig struct {
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// RetailerConfig is the per-retailer adapter configuration (spec §6). One of these drives
// exactly one ingestion run for exactly one retailer.
type RetailerConfig struct {
	Slug               string        `mapstructure:"slug"`
	BaseURL            string        `mapstructure:"base_url"`
	SitemapSeeds       []string      `mapstructure:"sitemap_seeds"`
	IncludeURLPatterns []string      `mapstructure:"include_url_patterns"`
	ExcludeURLPatterns []string      `mapstructure:"exclude_url_patterns"`
	RequireFileSuffix  string        `mapstructure:"require_file_suffix"`
	Vertical           string        `mapstructure:"vertical"`
	MaxProducts        int           `mapstructure:"max_products"`
	Timeout            time.Duration `mapstructure:"timeout"`
	RequestDelay       time.Duration `mapstructure:"request_delay"`
	MaxFetchRetries    int           `mapstructure:"max_fetch_retries"`
	RetryBackoff       time.Duration `mapstructure:"retry_backoff"`
	UseFixtureFallback bool          `mapstructure:"use_fixture_fallback"`
	ProxyURL           string        `mapstructure:"proxy_url"`
	BrowserFallback    bool          `mapstructure:"browser_fallback"`
	BrowserTimeout     time.Duration `mapstructure:"browser_timeout"`
	BrowserProxyURL    string        `mapstructure:"browser_proxy_url"`
	FallbackFixture    string        `mapstructure:"fallback_fixture"`
	Schedule           string        `mapstructure:"schedule"`
}

// Load reads configuration for one retailer run. YAML under ./configs/retailers/<slug>.yaml
// supplies adapter defaults; a .env file and then real environment variables override it,
// in that order, matching the teacher's layering.
func Load(retailerSlug string) (*Config, error) {
	v := viper.New()

	v.SetConfigName(retailerSlug)
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs/retailers")
	v.AddConfigPath("../configs/retailers")
	v.AddConfigPath("../../configs/retailers")

	if err := v.ReadInConfig(); err != nil {
		v.SetConfigType("env")
	}

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.MergeInConfig(); err != nil {
		envFile := fmt.Sprintf(".env.%s", retailerSlug)
		v.SetConfigFile(envFile)
		_ = v.MergeInConfig()
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvironmentVariables(v)
	setDefaults(v, retailerSlug)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if includes := v.GetString("retailer.include_url_patterns"); includes != "" {
		cfg.Retailer.IncludeURLPatterns = splitTrim(includes)
	}
	if excludes := v.GetString("retailer.exclude_url_patterns"); excludes != "" {
		cfg.Retailer.ExcludeURLPatterns = splitTrim(excludes)
	}
	if seeds := v.GetString("retailer.sitemap_seeds"); seeds != "" {
		cfg.Retailer.SitemapSeeds = splitTrim(seeds)
	}

	if cfg.Retailer.Slug == "" {
		cfg.Retailer.Slug = retailerSlug
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := ParseSchedule(cfg.Retailer.Schedule); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func splitTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func bindEnvironmentVariables(v *viper.Viper) {
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.ssl_mode", "DB_SSLMODE")
	v.BindEnv("database.dsn", "DB_DSN")

	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")

	v.BindEnv("sentry.dsn", "SENTRY_DSN")
	v.BindEnv("sentry.environment", "SENTRY_ENVIRONMENT")

	v.BindEnv("app.environment", "APP_ENV")

	v.BindEnv("retailer.base_url", "RETAILER_BASE_URL")
	v.BindEnv("retailer.max_products", "RETAILER_MAX_PRODUCTS")
	v.BindEnv("retailer.request_delay", "RETAILER_REQUEST_DELAY")
	v.BindEnv("retailer.max_fetch_retries", "RETAILER_MAX_FETCH_RETRIES")
	v.BindEnv("retailer.retry_backoff", "RETAILER_RETRY_BACKOFF")
	v.BindEnv("retailer.use_fixture_fallback", "RETAILER_USE_FIXTURE_FALLBACK")
	v.BindEnv("retailer.proxy_url", "RETAILER_PROXY_URL")
	v.BindEnv("retailer.browser_fallback", "RETAILER_BROWSER_FALLBACK")
	v.BindEnv("retailer.browser_proxy_url", "RETAILER_BROWSER_PROXY_URL")
}

func setDefaults(v *viper.Viper, retailerSlug string) {
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_idle_time", "15m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("sentry.sample_rate", 1.0)

	v.SetDefault("app.name", "ingestion-core")
	v.SetDefault("app.environment", "development")

	v.SetDefault("retailer.slug", retailerSlug)
	v.SetDefault("retailer.vertical", "tech")
	v.SetDefault("retailer.max_products", 500)
	v.SetDefault("retailer.timeout", "15s")
	v.SetDefault("retailer.request_delay", "0s")
	v.SetDefault("retailer.max_fetch_retries", 2)
	v.SetDefault("retailer.retry_backoff", "1s")
	v.SetDefault("retailer.use_fixture_fallback", true)
	v.SetDefault("retailer.browser_fallback", false)
	v.SetDefault("retailer.browser_timeout", "30s")
}

func validateConfig(cfg *Config) error {
	if cfg.Retailer.Slug == "" {
		return fmt.Errorf("retailer slug is required")
	}
	if cfg.Retailer.BaseURL == "" {
		return fmt.Errorf("retailer base_url is required")
	}
	if cfg.App.Environment != "test" && cfg.App.Environment != "testing" {
		if cfg.Database.Host == "" && cfg.Database.DSN == "" {
			return fmt.Errorf("database host or dsn is required")
		}
	}
	return nil
}

package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/city-insights/internal/insights"
	"github.com/sells-group/city-insights/internal/resilience"
	"github.com/sells-group/city-insights/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Feeds   FeedsConfig   `yaml:"feeds" mapstructure:"feeds"`
	FRED    FREDConfig    `yaml:"fred" mapstructure:"fred"`
	Census  CensusConfig  `yaml:"census" mapstructure:"census"`
	Region  RegionConfig  `yaml:"region" mapstructure:"region"`
	Retry   RetryConfig   `yaml:"retry" mapstructure:"retry"`
	Circuit CircuitConfig `yaml:"circuit" mapstructure:"circuit"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// CacheConfig selects the snapshot store and the freshness window per feed.
type CacheConfig struct {
	Driver        string `yaml:"driver" mapstructure:"driver"`
	Dir           string `yaml:"dir" mapstructure:"dir"`
	DSN           string `yaml:"dsn" mapstructure:"dsn"`
	RedisAddr     string `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int    `yaml:"redis_db" mapstructure:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix" mapstructure:"redis_prefix"`
	MaxConns      int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns      int32  `yaml:"min_conns" mapstructure:"min_conns"`

	TTL TTLConfig `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// TTLConfig holds per-feed freshness windows in hours.
type TTLConfig struct {
	Residential int `yaml:"residential" mapstructure:"residential"`
	Commercial  int `yaml:"commercial" mapstructure:"commercial"`
	Pipeline    int `yaml:"pipeline" mapstructure:"pipeline"`
	Economy     int `yaml:"economy" mapstructure:"economy"`
	County      int `yaml:"county" mapstructure:"county"`
	Zones       int `yaml:"zones" mapstructure:"zones"`
	Metro       int `yaml:"metro" mapstructure:"metro"`
}

// FeedsConfig configures the open-data permit feeds.
type FeedsConfig struct {
	BuildingPermitsURL string `yaml:"building_permits_url" mapstructure:"building_permits_url"`
	ADUPermitsURL      string `yaml:"adu_permits_url" mapstructure:"adu_permits_url"`
	AreaPlansURL       string `yaml:"area_plans_url" mapstructure:"area_plans_url"`
	TimeoutSecs        int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	PageSize           int    `yaml:"page_size" mapstructure:"page_size"`
	MaxRecords         int    `yaml:"max_records" mapstructure:"max_records"`
	StartYear          int    `yaml:"start_year" mapstructure:"start_year"`
	Concurrency        int    `yaml:"concurrency" mapstructure:"concurrency"`
	UserAgent          string `yaml:"user_agent" mapstructure:"user_agent"`
}

// FREDConfig configures the FRED economic data client.
type FREDConfig struct {
	APIKey              string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL             string `yaml:"base_url" mapstructure:"base_url"`
	StartYear           int    `yaml:"start_year" mapstructure:"start_year"`
	TimeseriesStartYear int    `yaml:"timeseries_start_year" mapstructure:"timeseries_start_year"`
}

// CensusConfig configures the Census business patterns client.
type CensusConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Year    int    `yaml:"year" mapstructure:"year"`
}

// RegionConfig holds the local reference data.
type RegionConfig struct {
	Timezone         string `yaml:"timezone" mapstructure:"timezone"`
	DemographicsPath string `yaml:"demographics_path" mapstructure:"demographics_path"`
	AreaPlanSource   string `yaml:"area_plan_source" mapstructure:"area_plan_source"`
	AreaPlanField    string `yaml:"area_plan_field" mapstructure:"area_plan_field"`
}

// RetryConfig configures upstream retries.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// CircuitConfig configures the per-host circuit breaker.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// Load reads configuration from .env, file and environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load(".env")

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INSIGHTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The upstream services document these bare names.
	_ = v.BindEnv("fred.api_key", "INSIGHTS_FRED_API_KEY", "FRED_API_KEY")
	_ = v.BindEnv("census.api_key", "INSIGHTS_CENSUS_API_KEY", "CENSUS_API_KEY")

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("cache.driver", "file")
	v.SetDefault("cache.dir", "data/cache")
	v.SetDefault("cache.redis_prefix", "insights:")
	v.SetDefault("cache.ttl_hours.residential", 24)
	v.SetDefault("cache.ttl_hours.commercial", 12)
	v.SetDefault("cache.ttl_hours.pipeline", 6)
	v.SetDefault("cache.ttl_hours.economy", 24)
	v.SetDefault("cache.ttl_hours.county", 168)
	v.SetDefault("cache.ttl_hours.zones", 168)
	v.SetDefault("cache.ttl_hours.metro", 24)
	v.SetDefault("feeds.timeout_secs", 60)
	v.SetDefault("feeds.page_size", 2000)
	v.SetDefault("feeds.max_records", 50000)
	v.SetDefault("feeds.start_year", 2020)
	v.SetDefault("feeds.concurrency", 4)
	v.SetDefault("fred.start_year", 2015)
	v.SetDefault("fred.timeseries_start_year", 2010)
	v.SetDefault("census.year", 2021)
	v.SetDefault("region.timezone", "America/New_York")
	v.SetDefault("region.demographics_path", "data/demographics.json")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 10000)
	v.SetDefault("circuit.failure_threshold", 5)
	v.SetDefault("circuit.reset_timeout_secs", 30)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// StoreOptions returns the snapshot store settings.
func (c *Config) StoreOptions() store.Options {
	opts := store.Options{
		Driver:        c.Cache.Driver,
		Dir:           c.Cache.Dir,
		DSN:           c.Cache.DSN,
		RedisAddr:     c.Cache.RedisAddr,
		RedisPassword: c.Cache.RedisPassword,
		RedisDB:       c.Cache.RedisDB,
		RedisPrefix:   c.Cache.RedisPrefix,
	}
	if c.Cache.MaxConns > 0 || c.Cache.MinConns > 0 {
		opts.Pool = &store.PoolConfig{MaxConns: c.Cache.MaxConns, MinConns: c.Cache.MinConns}
	}
	return opts
}

// Resilience returns the retry and breaker settings for upstream calls.
func (c *Config) Resilience() resilience.Settings {
	return resilience.Settings{
		MaxAttempts:      c.Retry.MaxAttempts,
		InitialBackoffMs: c.Retry.InitialBackoffMs,
		MaxBackoffMs:     c.Retry.MaxBackoffMs,
		Multiplier:       c.Retry.Multiplier,
		JitterFraction:   c.Retry.JitterFraction,
		FailureThreshold: c.Circuit.FailureThreshold,
		ResetTimeoutSecs: c.Circuit.ResetTimeoutSecs,
	}
}

// Location loads the region timezone. An empty name means UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Region.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Region.Timezone)
	if err != nil {
		return nil, eris.Wrapf(err, "config: load timezone %s", c.Region.Timezone)
	}
	return loc, nil
}

// FeedTimeout is the per-request upstream timeout.
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.Feeds.TimeoutSecs) * time.Second
}

// InsightsOptions returns the service options. loc comes from Location.
func (c *Config) InsightsOptions(loc *time.Location) insights.Options {
	return insights.Options{
		BuildingPermitsURL:  c.Feeds.BuildingPermitsURL,
		ADUPermitsURL:       c.Feeds.ADUPermitsURL,
		PermitStartYear:     c.Feeds.StartYear,
		EconomyStartYear:    c.FRED.StartYear,
		TimeseriesStartYear: c.FRED.TimeseriesStartYear,
		Concurrency:         c.Feeds.Concurrency,
		Location:            loc,
		TTL: insights.TTLs{
			Residential: hours(c.Cache.TTL.Residential),
			Commercial:  hours(c.Cache.TTL.Commercial),
			Pipeline:    hours(c.Cache.TTL.Pipeline),
			Economy:     hours(c.Cache.TTL.Economy),
			County:      hours(c.Cache.TTL.County),
			Zones:       hours(c.Cache.TTL.Zones),
			Metro:       hours(c.Cache.TTL.Metro),
		},
	}
}

func hours(n int) time.Duration { return time.Duration(n) * time.Hour }

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// Package config loads the application configuration from an optional YAML
// file and the environment.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Dilicom DilicomConfig `yaml:"dilicom" mapstructure:"dilicom"`
	Reviews ReviewsConfig `yaml:"reviews" mapstructure:"reviews"`
	Enrich  EnrichConfig  `yaml:"enrich" mapstructure:"enrich"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// FetchConfig configures the outgoing HTTP requests.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the request timeout as a duration.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// CacheConfig configures the on-disk HTTP response cache.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Path     string `yaml:"path" mapstructure:"path"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// TTL returns the cache lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// DilicomConfig holds the FEL à la demande credentials. User is the GLN of
// the bookstore, Emet its emitter id on the consultation pages.
type DilicomConfig struct {
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Emet     string `yaml:"emet" mapstructure:"emet"`
}

// Configured reports whether credentials are present.
func (c DilicomConfig) Configured() bool {
	return c.User != "" && c.Password != ""
}

// ReviewsConfig configures the press review search.
type ReviewsConfig struct {
	SearchURL string `yaml:"search_url" mapstructure:"search_url"`
}

// EnrichConfig configures the detail-page enrichment pass.
type EnrichConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BOOKSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The Dilicom credentials historically live in unprefixed variables.
	_ = v.BindEnv("dilicom.user", "BOOKSCOUT_DILICOM_USER", "DILICOM_USER")
	_ = v.BindEnv("dilicom.password", "BOOKSCOUT_DILICOM_PASSWORD", "DILICOM_PASSWORD")
	_ = v.BindEnv("dilicom.emet", "BOOKSCOUT_DILICOM_EMET", "DILICOM_EMET")

	// Defaults
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "bookscout-http-cache.db")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("enrich.workers", 8)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

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

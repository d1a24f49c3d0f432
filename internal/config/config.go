package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Geocode   GeocodeConfig   `yaml:"geocode" mapstructure:"geocode"`
	Typeahead TypeaheadConfig `yaml:"typeahead" mapstructure:"typeahead"`
	Location  LocationConfig  `yaml:"location" mapstructure:"location"`
	Catalog   CatalogConfig   `yaml:"catalog" mapstructure:"catalog"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// GeocodeConfig configures the suggestion provider.
type GeocodeConfig struct {
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent" validate:"required"`
	Language     string        `yaml:"language" mapstructure:"language"`
	CountryCodes []string      `yaml:"country_codes" mapstructure:"country_codes" validate:"dive,len=2"`
	Limit        int           `yaml:"limit" mapstructure:"limit" validate:"min=1,max=50"`
	RateLimit    float64       `yaml:"rate_limit" mapstructure:"rate_limit" validate:"gt=0"`
	TimeoutSecs  int           `yaml:"timeout_secs" mapstructure:"timeout_secs" validate:"min=1"`
	Retry        RetryConfig   `yaml:"retry" mapstructure:"retry"`
	Circuit      CircuitConfig `yaml:"circuit" mapstructure:"circuit"`
	Cache        CacheConfig   `yaml:"cache" mapstructure:"cache"`
}

// Timeout returns the HTTP timeout for one provider request.
func (c GeocodeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// RetryConfig configures retries of transient provider failures.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts" validate:"min=1"`
	BaseDelayMS int `yaml:"base_delay_ms" mapstructure:"base_delay_ms" validate:"min=0"`
	MaxDelayMS  int `yaml:"max_delay_ms" mapstructure:"max_delay_ms" validate:"min=0"`
}

// CircuitConfig configures the provider circuit breaker. A zero threshold
// disables the breaker.
type CircuitConfig struct {
	Threshold    int `yaml:"threshold" mapstructure:"threshold" validate:"min=0"`
	CooldownSecs int `yaml:"cooldown_secs" mapstructure:"cooldown_secs" validate:"min=0"`
}

// CacheConfig configures the Postgres suggestion cache. An empty
// DatabaseURL disables it.
type CacheConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Table       string `yaml:"table" mapstructure:"table"`
	TTLHours    int    `yaml:"ttl_hours" mapstructure:"ttl_hours" validate:"min=0"`
}

// TTL returns how long cached responses stay valid.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// TypeaheadConfig configures the debounced fetcher.
type TypeaheadConfig struct {
	DebounceMS  int `yaml:"debounce_ms" mapstructure:"debounce_ms" validate:"min=1"`
	MinLength   int `yaml:"min_length" mapstructure:"min_length" validate:"min=1"`
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs" validate:"min=0"`
	MaxSessions int `yaml:"max_sessions" mapstructure:"max_sessions" validate:"min=1"`
	// SessionTTLSecs closes remote sessions idle this long. Zero disables it.
	SessionTTLSecs int `yaml:"session_ttl_secs" mapstructure:"session_ttl_secs" validate:"min=0"`
}

// Delay returns the debounce window.
func (c TypeaheadConfig) Delay() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// SessionTTL returns how long an unused remote session is kept.
func (c TypeaheadConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSecs) * time.Second
}

// LocationConfig configures the classifier data.
type LocationConfig struct {
	// GazetteerPath replaces the embedded gazetteer when set.
	GazetteerPath string `yaml:"gazetteer_path" mapstructure:"gazetteer_path"`
}

// CatalogConfig configures where listing locations are read from.
type CatalogConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver" validate:"omitempty,oneof=postgres sqlite"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Table       string `yaml:"table" mapstructure:"table" validate:"required"`
	Column      string `yaml:"column" mapstructure:"column" validate:"required"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns" validate:"min=0"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port" validate:"min=1,max=65535"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PLACEFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "placefinder/1.0")
	v.SetDefault("geocode.language", "en")
	v.SetDefault("geocode.country_codes", []string{"in"})
	v.SetDefault("geocode.limit", 5)
	v.SetDefault("geocode.rate_limit", 1.0)
	v.SetDefault("geocode.timeout_secs", 10)
	v.SetDefault("geocode.retry.max_attempts", 2)
	v.SetDefault("geocode.retry.base_delay_ms", 250)
	v.SetDefault("geocode.retry.max_delay_ms", 2000)
	v.SetDefault("geocode.circuit.threshold", 5)
	v.SetDefault("geocode.circuit.cooldown_secs", 30)
	v.SetDefault("geocode.cache.database_url", "")
	v.SetDefault("geocode.cache.table", "geocode_suggestion_cache")
	v.SetDefault("geocode.cache.ttl_hours", 168)
	v.SetDefault("typeahead.debounce_ms", 300)
	v.SetDefault("typeahead.min_length", 3)
	v.SetDefault("typeahead.timeout_secs", 15)
	v.SetDefault("typeahead.max_sessions", 1000)
	v.SetDefault("typeahead.session_ttl_secs", 600)
	v.SetDefault("location.gazetteer_path", "")
	v.SetDefault("catalog.driver", "")
	v.SetDefault("catalog.database_url", "")
	v.SetDefault("catalog.table", "listings")
	v.SetDefault("catalog.column", "location")
	v.SetDefault("catalog.max_conns", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints plus the settings a given mode needs.
// Modes: "serve", "suggest", "classify", "catalog".
func (c *Config) Validate(mode string) error {
	var errs []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return eris.Wrap(err, "config: validate")
		}
		for _, fe := range verrs {
			// Drop the leading "Config." from the namespace.
			_, field, _ := strings.Cut(fe.Namespace(), ".")
			errs = append(errs, fmt.Sprintf("%s failed %q", field, fe.Tag()))
		}
	}

	switch mode {
	case "serve", "suggest", "classify":
	case "catalog":
		if c.Catalog.Driver == "" {
			errs = append(errs, "catalog.driver is required")
		}
		if c.Catalog.DatabaseURL == "" {
			errs = append(errs, "catalog.database_url is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
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

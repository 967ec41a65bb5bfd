package config

import (
	"fmt"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Stage       string
	Port        string

	Log      LogConfig
	Alerting AlertingConfig
	Metrics  MetricsConfig

	// ExposeErrorDetails puts the message of unexpected errors into 500
	// responses.
	ExposeErrorDetails    bool
	DefaultRedirectStatus int
	RateLimit             RateLimitConfig
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// AlertingConfig holds alerting configuration
type AlertingConfig struct {
	Enabled bool
}

// MetricsConfig holds Prometheus configuration
type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

// RateLimitConfig holds the development server's rate limit
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// newViper reads the environment, and a .env file if it exists, with the
// defaults applied
func newViper() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("STAGE", "dev")
	v.SetDefault("PORT", "8081")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ALERTING_ENABLED", true)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_NAMESPACE", "lambda_jsonapi")
	v.SetDefault("DEFAULT_REDIRECT_STATUS", http.StatusTemporaryRedirect)
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("EXPOSE_ERROR_DETAILS", v.GetString("ENVIRONMENT") != "production")
	return v
}

// Load loads configuration from environment variables and a .env file
func Load() (*Config, error) {
	return fromViper(newViper())
}

func fromViper(v *viper.Viper) (*Config, error) {
	config := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Stage:       v.GetString("STAGE"),
		Port:        v.GetString("PORT"),
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Alerting: AlertingConfig{
			Enabled: v.GetBool("ALERTING_ENABLED"),
		},
		Metrics: MetricsConfig{
			Enabled:   v.GetBool("METRICS_ENABLED"),
			Namespace: v.GetString("METRICS_NAMESPACE"),
		},
		ExposeErrorDetails:    v.GetBool("EXPOSE_ERROR_DETAILS"),
		DefaultRedirectStatus: v.GetInt("DEFAULT_REDIRECT_STATUS"),
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that would otherwise fail at request time
func (c *Config) Validate() error {
	if c.DefaultRedirectStatus < 300 || c.DefaultRedirectStatus > 399 || http.StatusText(c.DefaultRedirectStatus) == "" {
		return fmt.Errorf("DEFAULT_REDIRECT_STATUS %d is not a 3xx status", c.DefaultRedirectStatus)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT %q must be json or text", c.Log.Format)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// IsProduction reports whether the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"30m"`

	GoogleAPIKey string `envconfig:"GOOGLE_API_KEY"`

	DirectoryBaseURL string `envconfig:"DIRECTORY_BASE_URL" default:"https://api.apiaim.mibot.cl"`
	BoardBaseURL     string `envconfig:"BOARD_BASE_URL" default:"https://intranet.onbotgo.cl"`

	// MibotSession is the serialized session forwarded to the directory
	// backend on every request.
	MibotSession string `envconfig:"MIBOT_SESSION"`

	// SearchColumns lists the board columns scanned by task search.
	SearchColumns []int `envconfig:"BOARD_SEARCH_COLUMNS" default:"149,150"`

	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	RatePerMinute int `envconfig:"RATE_PER_MINUTE" default:"60"`

	// TempGrantExtend makes temporary permission grants extend an existing
	// expiry instead of overwriting it.
	TempGrantExtend bool `envconfig:"AUTHZ_TEMP_GRANT_EXTEND" default:"false"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

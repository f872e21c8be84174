package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete terminal configuration, loadable from
// environment variables (POSCART_ prefix), flags, or YAML config files.
type Config struct {
	Addr           string        `default:"127.0.0.1:8188" usage:"Facade listen address (localhost only)"`
	BackendURL     string        `usage:"Ordering backend base URL (POSCART_BACKEND_URL)" flag:"backend-url"`
	DataDir        string        `default:"" usage:"Directory for the local store file" flag:"data-dir"`
	BackendTimeout time.Duration `default:"10s" usage:"Backend request timeout" flag:"backend-timeout"`
	RateLimit      RateLimitConfig
	CORS           CORSConfig
	Graceful       GracefulConfig
}

// RateLimitConfig controls the per-client rate limiter on the facade.
type RateLimitConfig struct {
	Max    int           `default:"300" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers for the UI
// shell's webview origin.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ShutdownTimeout time.Duration `default:"10s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// StorePath returns the bbolt file location.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "poscart.db")
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and flags.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "POSCART",
		Files:     []string{"config.yaml", "/etc/poscart/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	if cfg.BackendURL == "" {
		return nil, errors.New("backend URL is required: set POSCART_BACKEND_URL")
	}
	if cfg.DataDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, errors.Wrap(err, "resolve cache dir")
		}
		cfg.DataDir = filepath.Join(base, "poscart")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}

	return &cfg, nil
}

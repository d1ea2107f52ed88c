package types

import "time"

// ServerConfig holds settings for talking to the prediction service.
type ServerConfig struct {
	// BaseURL is the scheme, host and port of the service
	// (e.g. "http://10.0.2.2:5000"). Endpoint paths are appended to it.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// ConnectTimeout bounds connection establishment for /predict (default 10s).
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout" mapstructure:"connect_timeout"`

	// ReadTimeout bounds waiting for and reading the /predict response (default 10s).
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`

	// HealthTimeout bounds the whole /health probe (default 3s). It must be
	// shorter than both classify timeouts.
	HealthTimeout time.Duration `json:"health_timeout" yaml:"health_timeout" mapstructure:"health_timeout"`

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// FamiliesTTL is how long the /familias catalog is cached (default 10m).
	FamiliesTTL time.Duration `json:"families_ttl" yaml:"families_ttl" mapstructure:"families_ttl"`

	// APIToken, when set, is sent as a bearer token on every request.
	// It is never written out with the rest of the configuration.
	APIToken string `json:"-" yaml:"-" mapstructure:"api_token"`
}

// HistoryBackend selects the history store implementation.
type HistoryBackend string

const (
	HistoryMemory HistoryBackend = "memory"
	HistorySQLite HistoryBackend = "sqlite"
)

// HistoryConfig holds settings for the classification history.
type HistoryConfig struct {
	// Backend is memory (session only) or sqlite (persisted).
	Backend HistoryBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Path is the SQLite database file. Ignored by the memory backend.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all sporeid settings.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

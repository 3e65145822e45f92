package config

import "time"

// Config is the root configuration for a plausch server instance.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Weather  WeatherConfig  `yaml:"weather"`
}

// ServerConfig holds the HTTP transport settings.
type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxMessageSize int64    `yaml:"max_message_size"`

	// LongPollTimeout bounds how long a poll may wait for a message.
	// Zero means no server-side timeout; only peer disconnect releases
	// the wait.
	LongPollTimeout time.Duration `yaml:"long_poll_timeout"`

	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines per-sender message throttling.
type RateLimitConfig struct {
	Burst          int           `yaml:"burst"`
	RefillInterval time.Duration `yaml:"refill_interval"`
}

// DatabaseConfig holds the statistics database connection. When disabled the
// server falls back to an in-memory counter.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// GeocoderConfig holds Nominatim client settings.
type GeocoderConfig struct {
	BaseURL   string        `yaml:"base_url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// WeatherConfig holds Open-Meteo client settings.
type WeatherConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

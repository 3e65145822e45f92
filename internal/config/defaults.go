package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPort            = ":8080"
	DefaultMaxMessageSize  = 4096
	DefaultLongPollTimeout = 0 // no server-side timeout
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRateLimitBurst  = 5
	DefaultRefillInterval  = time.Second
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultMaxConns        = 10
	DefaultMinConns        = 2
	DefaultProviderTimeout = 10 * time.Second
)

// ApplyDefaults fills unset fields with their default values.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.MaxMessageSize <= 0 {
		c.Server.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Server.RateLimit.Burst <= 0 {
		c.Server.RateLimit.Burst = DefaultRateLimitBurst
	}
	if c.Server.RateLimit.RefillInterval <= 0 {
		c.Server.RateLimit.RefillInterval = DefaultRefillInterval
	}

	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	if c.Geocoder.Timeout == 0 {
		c.Geocoder.Timeout = DefaultProviderTimeout
	}
	if c.Weather.Timeout == 0 {
		c.Weather.Timeout = DefaultProviderTimeout
	}
}

package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if c.Server.MaxMessageSize < 1 {
		return errors.New("server.max_message_size must be >= 1")
	}
	if c.Server.LongPollTimeout < 0 {
		return errors.New("server.long_poll_timeout must not be negative")
	}
	if c.Server.RateLimit.Burst < 1 {
		return errors.New("server.rate_limit.burst must be >= 1")
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return errors.New("database.host is required")
		}
		if c.Database.Name == "" {
			return errors.New("database.name is required")
		}
		if c.Database.User == "" {
			return errors.New("database.user is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("database.port must be between 1 and 65535, got %d", c.Database.Port)
		}
		if c.Database.MinConns > c.Database.MaxConns {
			return fmt.Errorf("database.min_conns (%d) must not exceed database.max_conns (%d)",
				c.Database.MinConns, c.Database.MaxConns)
		}
	}

	return nil
}

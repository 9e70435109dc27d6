package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.Updater == "" {
		return errors.New("instance.updater is required")
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if len(c.Providers.Order) == 0 {
		return errors.New("providers.order must list at least one provider")
	}
	seen := make(map[string]bool, len(c.Providers.Order))
	for _, name := range c.Providers.Order {
		if seen[name] {
			return fmt.Errorf("providers.order lists %q twice", name)
		}
		seen[name] = true
		switch name {
		case "alpaca":
			if c.Providers.Alpaca.APIKey == "" || c.Providers.Alpaca.APISecret == "" {
				return errors.New("providers.alpaca.api_key and api_secret are required when alpaca is in providers.order")
			}
		case "polygon":
			if c.Providers.Polygon.APIKey == "" {
				return errors.New("providers.polygon.api_key is required when polygon is in providers.order")
			}
		default:
			return fmt.Errorf("providers.order: unknown provider %q", name)
		}
	}
	if c.Providers.CallTimeout < 0 {
		return errors.New("providers.call_timeout must be >= 0")
	}

	if c.Reconcile.Concurrency < 1 {
		return errors.New("reconcile.concurrency must be >= 1")
	}
	if c.Reconcile.Deadline < 0 {
		return errors.New("reconcile.deadline must be >= 0")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

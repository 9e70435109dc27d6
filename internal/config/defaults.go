package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultUpdater     = "bardata"
	DefaultDBPort      = 5432
	DefaultDBSSLMode   = "prefer"
	DefaultMaxConns    = 10
	DefaultMinConns    = 2
	DefaultCallTimeout = 30 * time.Second
	DefaultAlpacaFeed  = "sip"
	DefaultConcurrency = 4
	DefaultLogLevel    = "info"
)

// DefaultProviderOrder is the priority list used when none is configured.
var DefaultProviderOrder = []string{"alpaca", "polygon"}

func (c *Config) applyDefaults() {
	if c.Instance.Updater == "" {
		c.Instance.Updater = DefaultUpdater
	}

	applyDBDefaults(&c.Database)

	if len(c.Providers.Order) == 0 {
		c.Providers.Order = append([]string(nil), DefaultProviderOrder...)
	}
	if c.Providers.CallTimeout == 0 {
		c.Providers.CallTimeout = DefaultCallTimeout
	}
	if c.Providers.Alpaca.Feed == "" {
		c.Providers.Alpaca.Feed = DefaultAlpacaFeed
	}

	if c.Reconcile.Concurrency == 0 {
		c.Reconcile.Concurrency = DefaultConcurrency
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}

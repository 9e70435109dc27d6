package config

import "time"

// Config is the root configuration for a backfill instance.
type Config struct {
	Instance  InstanceConfig  `yaml:"instance"`
	Database  DBConfig        `yaml:"database"`
	Providers ProvidersConfig `yaml:"providers"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// InstanceConfig identifies this process in bar provenance.
type InstanceConfig struct {
	Updater string `yaml:"updater"`
}

// DBConfig holds the Postgres connection for the partitioned bar tables.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// ProvidersConfig holds upstream data-source settings. Order lists providers
// by priority; only listed providers are constructed.
type ProvidersConfig struct {
	Order       []string      `yaml:"order"`
	CallTimeout time.Duration `yaml:"call_timeout"`
	Alpaca      AlpacaConfig  `yaml:"alpaca"`
	Polygon     PolygonConfig `yaml:"polygon"`
}

// AlpacaConfig holds Alpaca market-data credentials.
type AlpacaConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	Feed      string `yaml:"feed"`
}

// PolygonConfig holds Polygon.io credentials.
type PolygonConfig struct {
	APIKey string `yaml:"api_key"`
}

// ReconcileConfig holds reconciliation run settings.
type ReconcileConfig struct {
	Concurrency int           `yaml:"concurrency"`
	SessionOnly bool          `yaml:"session_only"`
	Deadline    time.Duration `yaml:"deadline"` // 0 means no deadline
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

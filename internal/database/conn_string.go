package database

import (
	"fmt"
	"net/url"

	"github.com/tradehouse/bardata/internal/config"
)

// BuildConnString renders a pgx-compatible connection URL. User and password
// are URL-escaped; cfg is expected to have passed config defaulting, which
// owns the sslmode fallback.
func BuildConnString(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.Name,
		cfg.SSLMode,
	)
}

package partition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradehouse/bardata/internal/model"
)

// pgDuplicateTable is SQLSTATE 42P07: relation already exists. Raised when
// two writers race past IF NOT EXISTS; treated as success.
const pgDuplicateTable = "42P07"

const barColumns = `
	instrument_id      BIGINT           NOT NULL,
	ts                 BIGINT           NOT NULL,
	open               DOUBLE PRECISION NOT NULL,
	high               DOUBLE PRECISION NOT NULL,
	low                DOUBLE PRECISION NOT NULL,
	close              DOUBLE PRECISION,
	adjusted_close     DOUBLE PRECISION,
	volume             DOUBLE PRECISION NOT NULL,
	is_regular_session BOOLEAN          NOT NULL,
	source             TEXT             NOT NULL,
	fetched_at         BIGINT           NOT NULL,
	fetched_by         TEXT             NOT NULL,
	PRIMARY KEY (instrument_id, ts)`

// Ensurer creates partitions on first write. Creation is idempotent and safe
// under concurrent callers; a per-process cache suppresses repeat DDL.
type Ensurer struct {
	db     *pgxpool.Pool
	logger *slog.Logger

	mu    sync.Mutex
	known map[string]struct{}
}

// NewEnsurer creates an Ensurer over the given pool.
func NewEnsurer(db *pgxpool.Pool, logger *slog.Logger) *Ensurer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ensurer{
		db:     db,
		logger: logger,
		known:  make(map[string]struct{}),
	}
}

// EnsureParents creates the per-cadence parent partitioned tables. Safe to
// run at every startup.
func (e *Ensurer) EnsureParents(ctx context.Context) error {
	for c := range widths {
		sql := fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (%s) PARTITION BY RANGE (ts)",
			ParentTable(c), barColumns,
		)
		if _, err := e.db.Exec(ctx, sql); err != nil && !isDuplicateTable(err) {
			return fmt.Errorf("create parent table %s: %w", ParentTable(c), err)
		}
	}
	return nil
}

// Ensure creates the physical partition for id if absent. "Already exists"
// is success; any other failure is fatal for the caller's write batch.
func (e *Ensurer) Ensure(ctx context.Context, id ID) error {
	e.mu.Lock()
	_, ok := e.known[id.Name]
	e.mu.Unlock()
	if ok {
		return nil
	}

	sql := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s PARTITION OF %s FOR VALUES FROM (%d) TO (%d)",
		id.Name, id.Parent(), id.Start, id.End,
	)
	if _, err := e.db.Exec(ctx, sql); err != nil {
		if !isDuplicateTable(err) {
			return fmt.Errorf("create partition %s: %w", id.Name, err)
		}
		e.logger.Debug("partition already exists", "partition", id.Name)
	} else {
		e.logger.Info("created partition",
			"partition", id.Name,
			"cadence", id.Cadence.String(),
		)
	}

	e.mu.Lock()
	e.known[id.Name] = struct{}{}
	e.mu.Unlock()
	return nil
}

// Cadences returns every cadence with a partition policy. Used by parent
// bootstrap and tests.
func Cadences() []model.Cadence {
	out := make([]model.Cadence, 0, len(widths))
	for c := range widths {
		out = append(out, c)
	}
	return out
}

func isDuplicateTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgDuplicateTable
}

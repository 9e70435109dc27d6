package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradehouse/bardata/internal/model"
	"github.com/tradehouse/bardata/internal/partition"
)

// Compile-time interface check.
var _ BarStore = (*PostgresStore)(nil)

// PostgresStore implements BarStore against the partitioned bar tables.
// Writes are grouped by target partition and inserted with ON CONFLICT DO
// NOTHING, so racing writers for the same (instrument, timestamp) identity
// are harmless.
type PostgresStore struct {
	db      *pgxpool.Pool
	ensurer *partition.Ensurer
	logger  *slog.Logger
}

// NewPostgresStore creates a store over the given pool.
func NewPostgresStore(db *pgxpool.Pool, ensurer *partition.Ensurer, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{
		db:      db,
		ensurer: ensurer,
		logger:  logger,
	}
}

// ReadBars queries the parent table; Postgres prunes to the partitions
// overlapping rng.
func (s *PostgresStore) ReadBars(ctx context.Context, instrumentID int64, cadence model.Cadence, rng model.Range, sessionOnly bool) ([]model.Bar, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`
		SELECT instrument_id, ts, open, high, low, close, adjusted_close,
		       volume, is_regular_session, source, fetched_at, fetched_by
		FROM %s
		WHERE instrument_id = $1 AND ts >= $2 AND ts < $3`,
		partition.ParentTable(cadence),
	)
	if sessionOnly {
		sql += " AND is_regular_session"
	}
	sql += " ORDER BY ts"

	rows, err := s.db.Query(ctx, sql, instrumentID, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("read bars: %w", err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var b model.Bar
		if err := rows.Scan(
			&b.InstrumentID, &b.Timestamp, &b.Open, &b.High, &b.Low,
			&b.Close, &b.AdjustedClose, &b.Volume, &b.IsRegularSession,
			&b.Source, &b.FetchedAt, &b.FetchedBy,
		); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read bars: %w", err)
	}
	return bars, nil
}

// WriteBars routes bars to partitions, ensures each partition exists, then
// batch-inserts one batch per partition. A partition-create or insert failure
// aborts the remaining groups but the portion already written stays.
func (s *PostgresStore) WriteBars(ctx context.Context, cadence model.Cadence, bars []model.Bar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	groups := make(map[string][]model.Bar)
	ids := make(map[string]partition.ID)
	for _, b := range bars {
		id, err := partition.Route(cadence, b.Timestamp)
		if err != nil {
			return 0, err
		}
		groups[id.Name] = append(groups[id.Name], b)
		ids[id.Name] = id
	}

	written := 0
	for name, group := range groups {
		if err := s.ensurer.Ensure(ctx, ids[name]); err != nil {
			return written, err
		}

		n, conflicts, err := s.insertBatch(ctx, name, group)
		written += n
		if err != nil {
			return written, fmt.Errorf("write partition %s: %w", name, err)
		}

		s.logger.Debug("wrote bars",
			"partition", name,
			"count", n,
			"conflicts", conflicts,
		)
	}
	return written, nil
}

// insertBatch inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (s *PostgresStore) insertBatch(ctx context.Context, table string, bars []model.Bar) (written, conflicts int, err error) {
	start := time.Now()

	batch := &pgx.Batch{}
	sql := fmt.Sprintf(`
		INSERT INTO %s (instrument_id, ts, open, high, low, close, adjusted_close,
		                volume, is_regular_session, source, fetched_at, fetched_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (instrument_id, ts) DO NOTHING`, table)
	for _, b := range bars {
		batch.Queue(sql,
			b.InstrumentID, b.Timestamp, b.Open, b.High, b.Low, b.Close,
			b.AdjustedClose, b.Volume, b.IsRegularSession, b.Source,
			b.FetchedAt, b.FetchedBy,
		)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range bars {
		ct, execErr := results.Exec()
		if execErr != nil {
			return written, conflicts, execErr
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		} else {
			written++
		}
	}

	s.logger.Debug("batch insert",
		"table", table,
		"rows", len(bars),
		"duration", time.Since(start),
	)
	return written, conflicts, nil
}

package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"mercator-hq/tonecoach/pkg/config"
	"mercator-hq/tonecoach/pkg/processing/costs"
	"mercator-hq/tonecoach/pkg/usage"
)

// Store is a usage.Store backed by SQLite.
type Store struct {
	db     *sql.DB
	driver string
	path   string
	logger *slog.Logger
}

var _ usage.Store = (*Store)(nil)

// Open opens (creating if needed) the ledger database described by cfg and
// applies the schema.
func Open(cfg *config.LedgerConfig) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite"
	}
	if driver != "sqlite" && driver != "sqlite3" {
		return nil, NewStorageError(driver, "open", fmt.Errorf("unsupported driver %q", driver))
	}

	logger := slog.Default().With("component", "usage.ledger")

	db, err := sql.Open(driver, cfg.Path)
	if err != nil {
		return nil, NewStorageError(driver, "open", err)
	}

	// SQLite serializes writers; one connection avoids SQLITE_BUSY between
	// our own goroutines.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		driver: driver,
		path:   cfg.Path,
		logger: logger,
	}

	busyTimeout := cfg.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	if err := s.initialize(busyTimeout); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("usage ledger opened",
		"driver", driver,
		"path", cfg.Path,
	)

	return s, nil
}

// initialize sets pragmas and creates the schema.
func (s *Store) initialize(busyTimeout time.Duration) error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return NewStorageError(s.driver, "enable_wal", err)
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeout.Milliseconds())); err != nil {
		return NewStorageError(s.driver, "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError(s.driver, "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError(s.driver, "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStorageError(s.driver, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError(s.driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Driver returns the database/sql driver name in use.
func (s *Store) Driver() string {
	return s.driver
}

// Append inserts rec.
func (s *Store) Append(ctx context.Context, rec usage.Record) error {
	_, err := s.db.ExecContext(ctx, insertRecord,
		rec.ID,
		rec.RequestID,
		rec.Timestamp.UTC().UnixNano(),
		rec.Mode,
		rec.Provider,
		rec.Model,
		string(rec.Source),
		rec.PromptTokens,
		rec.CompletionTokens,
		rec.TotalTokens,
		rec.CostUSD,
		string(rec.PricingSource),
		rec.PricedAs,
		rec.Outcome,
	)
	if err != nil {
		return NewStorageError(s.driver, "append", err)
	}
	return nil
}

// Recent returns at most limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]usage.Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, selectRecent, limit)
	if err != nil {
		return nil, NewStorageError(s.driver, "recent", err)
	}
	defer rows.Close()

	var records []usage.Record
	for rows.Next() {
		var (
			rec           usage.Record
			recordedAt    int64
			source        string
			pricingSource string
			requestID     sql.NullString
			provider      sql.NullString
			pricedAs      sql.NullString
			outcome       sql.NullString
		)
		if err := rows.Scan(
			&rec.ID,
			&requestID,
			&recordedAt,
			&rec.Mode,
			&provider,
			&rec.Model,
			&source,
			&rec.PromptTokens,
			&rec.CompletionTokens,
			&rec.TotalTokens,
			&rec.CostUSD,
			&pricingSource,
			&pricedAs,
			&outcome,
		); err != nil {
			return nil, NewStorageError(s.driver, "scan", err)
		}
		rec.RequestID = requestID.String
		rec.Provider = provider.String
		rec.PricedAs = pricedAs.String
		rec.Outcome = outcome.String
		rec.Timestamp = time.Unix(0, recordedAt).UTC()
		rec.Source = usage.Source(source)
		rec.PricingSource = costs.PricingSource(pricingSource)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(s.driver, "recent", err)
	}

	return records, nil
}

// Summarize aggregates records at or after since, per model, most
// expensive first.
func (s *Store) Summarize(ctx context.Context, since time.Time) ([]usage.Summary, error) {
	rows, err := s.db.QueryContext(ctx, summarizeSince, since.UTC().UnixNano())
	if err != nil {
		return nil, NewStorageError(s.driver, "summarize", err)
	}
	defer rows.Close()

	var summaries []usage.Summary
	for rows.Next() {
		var sum usage.Summary
		if err := rows.Scan(
			&sum.Model,
			&sum.Requests,
			&sum.PromptTokens,
			&sum.CompletionTokens,
			&sum.CostUSD,
		); err != nil {
			return nil, NewStorageError(s.driver, "scan", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(s.driver, "summarize", err)
	}

	return summaries, nil
}

// DeleteBefore removes records older than cutoff and returns how many were
// removed.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, deleteBefore, cutoff.UTC().UnixNano())
	if err != nil {
		return 0, NewStorageError(s.driver, "delete", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, NewStorageError(s.driver, "rows_affected", err)
	}

	s.logger.Debug("deleted usage records", "cutoff", cutoff, "deleted", deleted)
	return deleted, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, countRecords).Scan(&count); err != nil {
		return 0, NewStorageError(s.driver, "count", err)
	}
	return count, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return NewStorageError(s.driver, "close", err)
	}
	s.logger.Info("usage ledger closed", "path", s.path)
	return nil
}

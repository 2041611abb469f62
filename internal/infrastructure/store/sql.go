package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLBackend stores records in a two-column table. It supports the
// "sqlite" (modernc.org/sqlite) and "postgres" (lib/pq) drivers; both
// accept $N placeholders and ON CONFLICT upserts.
type SQLBackend struct {
	db     *sql.DB
	driver string

	putQuery    string
	getQuery    string
	deleteQuery string
}

// NewSQLBackend opens dsn with driver, creates table if missing and
// verifies the connection.
func NewSQLBackend(ctx context.Context, driver, dsn, table string) (*SQLBackend, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	var valueType string
	switch driver {
	case "sqlite":
		valueType = "BLOB"
	case "postgres":
		valueType = "BYTEA"
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	configureConnectionPool(db, driver)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	balance_key TEXT PRIMARY KEY,
	record %s NOT NULL
)`, table, valueType)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	upsert := fmt.Sprintf(`INSERT INTO %s (balance_key, record) VALUES ($1, $2)
ON CONFLICT (balance_key) DO UPDATE SET record = excluded.record`, table)

	return &SQLBackend{
		db:          db,
		driver:      driver,
		putQuery:    upsert,
		getQuery:    fmt.Sprintf(`SELECT record FROM %s WHERE balance_key = $1`, table),
		deleteQuery: fmt.Sprintf(`DELETE FROM %s WHERE balance_key = $1`, table),
	}, nil
}

// configureConnectionPool limits SQLite to a single writer connection.
func configureConnectionPool(db *sql.DB, driver string) {
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		return
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
}

func (s *SQLBackend) Name() string { return s.driver }

func (s *SQLBackend) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.putQuery, key, value)
	return err
}

func (s *SQLBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, s.getQuery, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *SQLBackend) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.deleteQuery, key)
	return err
}

func (s *SQLBackend) Close() error {
	return s.db.Close()
}

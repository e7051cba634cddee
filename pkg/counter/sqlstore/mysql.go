package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // registers the "mysql" driver

	"github.com/matzehuels/labelsheet/pkg/counter"
	lserrors "github.com/matzehuels/labelsheet/pkg/errors"
)

// MySQL is a MySQL backed counter.
type MySQL struct {
	db    *sql.DB
	table string
	name  string
}

// NewMySQL opens a database handle and verifies it.
func NewMySQL(ctx context.Context, cfg Config) (*MySQL, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, lserrors.Wrap(lserrors.ErrCodeConfiguration, err, "parse mysql dsn")
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(4)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, lserrors.Wrap(lserrors.ErrCodePersistence, err, "mysql ping failed")
	}

	s := &MySQL{db: db, table: cfg.Table, name: cfg.Name}
	if cfg.CreateTable {
		if err := s.createTable(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *MySQL) createTable(ctx context.Context) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	name        VARCHAR(64) PRIMARY KEY,
	next_number BIGINT NOT NULL,
	updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return lserrors.Wrap(lserrors.ErrCodePersistence, err, "create table %s", s.table)
	}
	return nil
}

// Load implements counter.Store.
func (s *MySQL) Load(ctx context.Context) (counter.Snapshot, error) {
	var next int64
	q := fmt.Sprintf(`SELECT next_number FROM %s WHERE name = ?`, s.table)
	err := s.db.QueryRowContext(ctx, q, s.name).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return counter.Snapshot{}, nil
	}
	if err != nil {
		return counter.Snapshot{}, lserrors.Wrap(lserrors.ErrCodePersistence, err, "read counter %s", s.name)
	}
	return counter.Snapshot{Value: int(next), Exists: true}, nil
}

// Commit implements counter.Store.
//
// MySQL reports zero affected rows for an UPDATE that matches but does not
// change anything. next always differs from seen.Value for a real run, so
// zero rows means the condition did not match.
func (s *MySQL) Commit(ctx context.Context, seen counter.Snapshot, next int) error {
	var q string
	var args []any
	if seen.Exists {
		q = fmt.Sprintf(`UPDATE %s SET next_number = ?, updated_at = CURRENT_TIMESTAMP WHERE name = ? AND next_number = ?`, s.table)
		args = []any{int64(next), s.name, int64(seen.Value)}
	} else {
		q = fmt.Sprintf(`INSERT IGNORE INTO %s (name, next_number, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`, s.table)
		args = []any{s.name, int64(next)}
	}

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return lserrors.Wrap(lserrors.ErrCodePersistence, err, "write counter %s", s.name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return lserrors.Wrap(lserrors.ErrCodePersistence, err, "write counter %s", s.name)
	}
	if n == 0 {
		return conflict(ctx, s, seen)
	}
	return nil
}

// Close implements counter.Store.
func (s *MySQL) Close() error {
	return s.db.Close()
}

var _ counter.Store = (*MySQL)(nil)

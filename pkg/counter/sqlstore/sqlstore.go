// Package sqlstore stores label counters in a SQL table.
//
// PostgreSQL is reached through a pgx connection pool, MySQL through
// database/sql and go-sql-driver/mysql. Both use the same table layout:
//
//	name        varchar(64) primary key
//	next_number bigint not null
//	updated_at  timestamp not null
//
// A commit is a single conditional UPDATE (or INSERT for the first commit)
// and reports a conflict when no row was affected.
package sqlstore

import (
	"context"

	"github.com/matzehuels/labelsheet/pkg/counter"
	lserrors "github.com/matzehuels/labelsheet/pkg/errors"
)

// DefaultTable is the table used when none is configured.
const DefaultTable = "label_counters"

// Config holds the connection settings.
type Config struct {
	DSN   string
	Table string
	Name  string

	// CreateTable creates the table if it does not exist.
	CreateTable bool
}

func (c *Config) validate() error {
	if c.Table == "" {
		c.Table = DefaultTable
	}
	if err := lserrors.ValidateTableName(c.Table); err != nil {
		return err
	}
	if c.DSN == "" {
		return lserrors.New(lserrors.ErrCodeConfiguration, "sql store needs a dsn")
	}
	return lserrors.ValidateCounterName(c.Name)
}

// conflict builds the error for a commit that affected no row.
func conflict(ctx context.Context, s counter.Store, seen counter.Snapshot) error {
	cur, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return &lserrors.ConflictError{Expected: seen.Value, Actual: cur.Value, Missing: !cur.Exists}
}

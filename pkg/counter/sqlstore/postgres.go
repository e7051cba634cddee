package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matzehuels/labelsheet/pkg/counter"
	lserrors "github.com/matzehuels/labelsheet/pkg/errors"
)

// Postgres is a PostgreSQL backed counter.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
	name  string
}

// NewPostgres opens a connection pool and verifies it.
func NewPostgres(ctx context.Context, cfg Config) (*Postgres, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, lserrors.Wrap(lserrors.ErrCodeConfiguration, err, "parse postgres dsn")
	}
	pcfg.MaxConns = 4
	pcfg.MaxConnLifetime = 3 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, lserrors.Wrap(lserrors.ErrCodePersistence, err, "open postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, lserrors.Wrap(lserrors.ErrCodePersistence, err, "postgres ping failed")
	}

	s := &Postgres{pool: pool, table: cfg.Table, name: cfg.Name}
	if cfg.CreateTable {
		if err := s.createTable(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Postgres) createTable(ctx context.Context) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	name        varchar(64) PRIMARY KEY,
	next_number bigint NOT NULL,
	updated_at  timestamptz NOT NULL DEFAULT now()
)`, s.table)
	if _, err := s.pool.Exec(ctx, q); err != nil {
		return lserrors.Wrap(lserrors.ErrCodePersistence, err, "create table %s", s.table)
	}
	return nil
}

// Load implements counter.Store.
func (s *Postgres) Load(ctx context.Context) (counter.Snapshot, error) {
	var next int64
	q := fmt.Sprintf(`SELECT next_number FROM %s WHERE name = $1`, s.table)
	err := s.pool.QueryRow(ctx, q, s.name).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		return counter.Snapshot{}, nil
	}
	if err != nil {
		return counter.Snapshot{}, lserrors.Wrap(lserrors.ErrCodePersistence, err, "read counter %s", s.name)
	}
	return counter.Snapshot{Value: int(next), Exists: true}, nil
}

// Commit implements counter.Store.
func (s *Postgres) Commit(ctx context.Context, seen counter.Snapshot, next int) error {
	var q string
	var args []any
	if seen.Exists {
		q = fmt.Sprintf(`UPDATE %s SET next_number = $1, updated_at = now() WHERE name = $2 AND next_number = $3`, s.table)
		args = []any{int64(next), s.name, int64(seen.Value)}
	} else {
		q = fmt.Sprintf(`INSERT INTO %s (name, next_number, updated_at) VALUES ($1, $2, now()) ON CONFLICT (name) DO NOTHING`, s.table)
		args = []any{s.name, int64(next)}
	}

	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return lserrors.Wrap(lserrors.ErrCodePersistence, err, "write counter %s", s.name)
	}
	if tag.RowsAffected() == 0 {
		return conflict(ctx, s, seen)
	}
	return nil
}

// Close implements counter.Store.
func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

var _ counter.Store = (*Postgres)(nil)

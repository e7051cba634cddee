// Package backend opens the counter store selected by the configuration.
package backend

import (
	"context"

	"github.com/matzehuels/labelsheet/pkg/config"
	"github.com/matzehuels/labelsheet/pkg/counter"
	"github.com/matzehuels/labelsheet/pkg/counter/mongo"
	"github.com/matzehuels/labelsheet/pkg/counter/redis"
	"github.com/matzehuels/labelsheet/pkg/counter/sqlstore"
	"github.com/matzehuels/labelsheet/pkg/errors"
)

// Open connects to the store named by cfg.Store.Backend. The file backend
// defaults to the configuration file itself.
func Open(ctx context.Context, cfg *config.Config) (counter.Store, error) {
	s := cfg.Store
	if err := s.Validate(); err != nil {
		return nil, err
	}

	switch s.Backend {
	case config.BackendFile:
		fs := counter.NewFileStore(cfg.StorePath())
		fs.SetLockTimeout(s.LockTimeout)
		return fs, nil
	case config.BackendMemory:
		return counter.NewMemoryStore(), nil
	case config.BackendRedis:
		return opened(redis.New(ctx, redis.Config{
			Addr:     s.Addr,
			Password: s.Password,
			DB:       s.DB,
			Name:     s.Name,
			LockTTL:  s.LockTTL,
		}))
	case config.BackendMongo:
		return opened(mongo.New(ctx, mongo.Config{
			URI:        s.URI,
			Database:   s.Database,
			Collection: s.Collection,
			Name:       s.Name,
		}))
	case config.BackendPostgres:
		return opened(sqlstore.NewPostgres(ctx, sqlConfig(s)))
	case config.BackendMySQL:
		return opened(sqlstore.NewMySQL(ctx, sqlConfig(s)))
	}
	return nil, errors.New(errors.ErrCodeConfiguration, "unknown store backend %q", s.Backend)
}

// Describe returns a short human-readable location of the store.
func Describe(cfg *config.Config) string {
	s := cfg.Store
	switch s.Backend {
	case config.BackendFile:
		return cfg.StorePath()
	case config.BackendMemory:
		return "memory"
	default:
		return s.Backend + ":" + s.Name
	}
}

// opened keeps a failed constructor from returning a typed nil store.
func opened[S counter.Store](s S, err error) (counter.Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

func sqlConfig(s config.Store) sqlstore.Config {
	return sqlstore.Config{
		DSN:         s.DSN,
		Table:       s.Table,
		Name:        s.Name,
		CreateTable: s.CreateTable,
	}
}

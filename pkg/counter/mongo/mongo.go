// Package mongo stores the label counter in a MongoDB collection.
//
// Each counter is one document keyed by its name. Commits are conditional
// updates filtered on the value the run started from; a first commit
// inserts the document and relies on the unique _id to detect a race.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/labelsheet/pkg/counter"
	lserrors "github.com/matzehuels/labelsheet/pkg/errors"
)

const (
	DefaultDatabase   = "labelsheet"
	DefaultCollection = "counters"
)

// Config holds the connection settings.
type Config struct {
	URI        string
	Database   string
	Collection string
	Name       string
}

type counterDoc struct {
	ID        string    `bson:"_id"`
	Next      int64     `bson:"next"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store is a MongoDB backed counter.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	name   string
}

// New connects to MongoDB and verifies the connection.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := lserrors.ValidateCounterName(cfg.Name); err != nil {
		return nil, err
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, lserrors.Wrap(lserrors.ErrCodePersistence, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, lserrors.Wrap(lserrors.ErrCodePersistence, err, "ping mongodb")
	}
	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		name:   cfg.Name,
	}, nil
}

// Load implements counter.Store.
func (s *Store) Load(ctx context.Context) (counter.Snapshot, error) {
	var doc counterDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": s.name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return counter.Snapshot{}, nil
	}
	if err != nil {
		return counter.Snapshot{}, lserrors.Wrap(lserrors.ErrCodePersistence, err, "read counter %s", s.name)
	}
	return counter.Snapshot{Value: int(doc.Next), Exists: true}, nil
}

// Commit implements counter.Store.
func (s *Store) Commit(ctx context.Context, seen counter.Snapshot, next int) error {
	now := time.Now().UTC()
	if !seen.Exists {
		_, err := s.coll.InsertOne(ctx, counterDoc{ID: s.name, Next: int64(next), UpdatedAt: now})
		if mongo.IsDuplicateKeyError(err) {
			return s.conflict(ctx, seen)
		}
		if err != nil {
			return lserrors.Wrap(lserrors.ErrCodePersistence, err, "create counter %s", s.name)
		}
		return nil
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": s.name, "next": int64(seen.Value)},
		bson.M{"$set": bson.M{"next": int64(next), "updated_at": now}},
	)
	if err != nil {
		return lserrors.Wrap(lserrors.ErrCodePersistence, err, "write counter %s", s.name)
	}
	if res.MatchedCount == 0 {
		return s.conflict(ctx, seen)
	}
	return nil
}

func (s *Store) conflict(ctx context.Context, seen counter.Snapshot) error {
	cur, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return &lserrors.ConflictError{Expected: seen.Value, Actual: cur.Value, Missing: !cur.Exists}
}

// Close implements counter.Store.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ counter.Store = (*Store)(nil)

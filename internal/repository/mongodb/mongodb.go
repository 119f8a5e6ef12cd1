package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/msomdec/devconnector/internal/domain"
)

// DB is a MongoDB database holding one collection per entity.
type DB struct {
	db     *mongo.Database
	logger *slog.Logger
}

// Connect dials the server at uri and selects the named database.
func Connect(ctx context.Context, uri, database string, logger *slog.Logger) (*DB, error) {
	client, err := mongo.Connect(ctx,
		options.Client().ApplyURI(uri),
		options.Client().SetConnectTimeout(10*time.Second),
		options.Client().SetServerSelectionTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &DB{db: client.Database(database), logger: logger}, nil
}

// Migrate creates the unique indexes the store relies on. Existing indexes
// with the same keys are left alone by the server.
func (d *DB) Migrate(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[domain.Collection]mongo.IndexModel{
		domain.CollectionUsers:    {Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		domain.CollectionProfiles: {Keys: bson.D{{Key: "user", Value: 1}}, Options: unique},
		domain.CollectionPosts:    {Keys: bson.D{{Key: "date", Value: -1}}},
	}
	for coll, idx := range indexes {
		name, err := d.db.Collection(string(coll)).Indexes().CreateOne(ctx, idx)
		if err != nil {
			return fmt.Errorf("create index on %s: %w", coll, err)
		}
		d.logger.Info("index ensured", "collection", coll, "index", name)
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.Client().Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (d *DB) Close() error {
	return d.db.Client().Disconnect(context.Background())
}

// Documents returns the document store backed by this database.
func (d *DB) Documents() *DocumentStore {
	return &DocumentStore{db: d.db}
}

package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures a MongoDB backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// mongoDoc is the stored document. The key is the document id.
type mongoDoc struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Mongo stores one document per key.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects to MongoDB and pings the primary.
func NewMongo(ctx context.Context, cfg MongoConfig) (*Mongo, error) {
	if cfg.Database == "" {
		cfg.Database = "graphedit"
	}
	if cfg.Collection == "" {
		cfg.Collection = "kv"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Mongo{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Get returns the value under key.
func (m *Mongo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc mongoDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, mongoErr(err)
	}
	return doc.Data, true, nil
}

// Set upserts the document for key.
func (m *Mongo) Set(ctx context.Context, key string, data []byte) error {
	doc := mongoDoc{Key: key, Data: data, UpdatedAt: time.Now().UTC()}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return mongoErr(err)
}

// Delete removes the document for key.
func (m *Mongo) Delete(ctx context.Context, key string) error {
	_, err := m.coll.DeleteOne(ctx, bson.M{"_id": key})
	return mongoErr(err)
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func mongoErr(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return Retryable(err)
	}
	return err
}

var _ Store = (*Mongo)(nil)

// Package docstore keeps storage slots in a MongoDB collection, one document per key.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const defaultCollection = "slots"

type slotDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// SlotStore implements storage.Slot on MongoDB.
type SlotStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

// Connect opens a client for uri and pings the primary.
func Connect(ctx context.Context, uri, database string, logger *zap.Logger) (*SlotStore, error) {
	clientOptions := options.Client().ApplyURI(uri).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	store := New(client.Database(database), logger)
	store.client = client
	return store, nil
}

// New wraps an existing database handle.
func New(db *mongo.Database, logger *zap.Logger) *SlotStore {
	return &SlotStore{
		collection: db.Collection(defaultCollection),
		logger:     logger.Named("docstore"),
	}
}

func (s *SlotStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc slotDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(doc.Value), nil
}

func (s *SlotStore) Put(ctx context.Context, key string, value []byte) error {
	doc := slotDocument{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return err
	}
	s.logger.Debug("slot written", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

// Close disconnects the client when the store owns it.
func (s *SlotStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

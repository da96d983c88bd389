// Package storage persists the whole record collection as one JSON array
// under a single string key of a Slot backend.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gartstein/companydesk/internal/company/models"
	"github.com/qri-io/jsonschema"
	"go.uber.org/zap"
)

// DefaultKey is the slot holding the collection.
const DefaultKey = "companies"

// Slot is a string-keyed blob store. Get returns nil, nil for a missing key.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

const collectionSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id"],
		"properties": {
			"id": {"type": "string"},
			"skills": {"type": ["array", "null"]},
			"education": {"type": ["array", "null"]}
		}
	}
}`

var jsonMarshal = json.Marshal

// Adapter reads and writes the collection through a Slot.
type Adapter struct {
	slot   Slot
	key    string
	schema *jsonschema.Schema
	logger *zap.Logger
}

// NewAdapter constructs an Adapter. An empty key falls back to DefaultKey.
func NewAdapter(slot Slot, key string, logger *zap.Logger) (*Adapter, error) {
	if key == "" {
		key = DefaultKey
	}
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(collectionSchema), rs); err != nil {
		return nil, fmt.Errorf("compile collection schema: %w", err)
	}
	return &Adapter{
		slot:   slot,
		key:    key,
		schema: rs,
		logger: logger.Named("storage"),
	}, nil
}

// Key returns the slot key in use.
func (a *Adapter) Key() string {
	return a.key
}

// LoadAll returns the persisted collection. A missing, empty, unreadable or
// malformed slot yields an empty collection; it never fails.
func (a *Adapter) LoadAll(ctx context.Context) []models.Record {
	raw, err := a.slot.Get(ctx, a.key)
	if err != nil {
		a.logger.Warn("Failed to read slot, using empty collection",
			zap.String("key", a.key),
			zap.Error(err),
		)
		return []models.Record{}
	}
	if len(raw) == 0 {
		return []models.Record{}
	}

	keyErrs, err := a.schema.ValidateBytes(ctx, raw)
	if err != nil || len(keyErrs) > 0 {
		fields := []zap.Field{zap.String("key", a.key), zap.Int("violations", len(keyErrs))}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		a.logger.Warn("Malformed slot content, using empty collection", fields...)
		return []models.Record{}
	}

	var records []models.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		a.logger.Warn("Failed to decode slot, using empty collection",
			zap.String("key", a.key),
			zap.Error(err),
		)
		return []models.Record{}
	}
	if records == nil {
		return []models.Record{}
	}
	return records
}

// SaveAll overwrites the slot with the full collection.
func (a *Adapter) SaveAll(ctx context.Context, records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}
	value, err := jsonMarshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	if err := a.slot.Put(ctx, a.key, value); err != nil {
		return fmt.Errorf("failed to write slot %q: %w", a.key, err)
	}
	return nil
}

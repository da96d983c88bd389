// Package views holds the list view: the searchable table of records with
// per-row delete behind an injected confirmation.
package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/gartstein/companydesk/internal/company/models"
	"github.com/gartstein/companydesk/internal/company/repository"
	"go.uber.org/zap"
)

const (
	EmptyMessage  = "No companies added yet."
	DeletePrompt  = "Are you sure you want to delete this company?"
	ListPageTitle = "Company List"
)

// Store is the record access the list view needs.
type Store interface {
	Search(ctx context.Context, query string, fields ...repository.Field) ([]models.Record, error)
	Remove(ctx context.Context, id string) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Row is one table line.
type Row struct {
	ID           string
	CompanyName  string
	CompanyEmail string
	CompanyPhone string
	CreatedAt    string
}

// ListView renders the collection filtered by the current query.
type ListView struct {
	mu        sync.Mutex
	store     Store
	confirmer Confirmer
	logger    *zap.Logger

	query string
	rows  []Row
}

func NewListView(store Store, confirmer Confirmer, logger *zap.Logger) *ListView {
	return &ListView{
		store:     store,
		confirmer: confirmer,
		logger:    logger.Named("list_view"),
	}
}

// Activate resets the search and loads the full collection.
func (v *ListView) Activate(ctx context.Context) error {
	return v.Search(ctx, "")
}

// Search filters rows by company name, email or phone.
func (v *ListView) Search(ctx context.Context, query string) error {
	records, err := v.store.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to search records: %w", err)
	}
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			ID:           r.ID,
			CompanyName:  r.CompanyName,
			CompanyEmail: r.CompanyEmail,
			CompanyPhone: r.CompanyPhone,
			CreatedAt:    r.CreatedAt,
		})
	}

	v.mu.Lock()
	v.query = query
	v.rows = rows
	v.mu.Unlock()
	return nil
}

// Delete removes the record after confirmation. It reports whether it deleted.
// The view reloads with the search reset, as a fresh activation would.
func (v *ListView) Delete(ctx context.Context, id string) (bool, error) {
	if v.confirmer == nil || !v.confirmer.Confirm(ctx, DeletePrompt) {
		v.logger.Debug("delete declined", zap.String("record_id", id))
		return false, nil
	}
	if err := v.store.Remove(ctx, id); err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}
	v.logger.Info("record deleted", zap.String("record_id", id))
	return true, v.Activate(ctx)
}

func (v *ListView) Rows() []Row {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Row(nil), v.rows...)
}

func (v *ListView) Query() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

// Reset drops the loaded rows and query.
func (v *ListView) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rows = nil
	v.query = ""
}

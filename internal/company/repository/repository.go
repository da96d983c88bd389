// Package repository exposes the record collection as a list of records
// addressed by id. Every call reads through the storage adapter; nothing is
// cached between calls.
package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	e "github.com/gartstein/companydesk/internal/company/errors"
	"github.com/gartstein/companydesk/internal/company/models"
)

// Collection is the whole-collection persistence the repository relies on.
type Collection interface {
	LoadAll(ctx context.Context) []models.Record
	SaveAll(ctx context.Context, records []models.Record) error
}

// Field selects a Record field for Search.
type Field int

const (
	CompanyName Field = iota
	CompanyEmail
	CompanyPhone
	EmployeeName
	EmpEmail
	EmpPhone
)

// DefaultSearchFields are the fields the list view searches.
var DefaultSearchFields = []Field{CompanyName, CompanyEmail, CompanyPhone}

func (f Field) value(r *models.Record) string {
	switch f {
	case CompanyName:
		return r.CompanyName
	case CompanyEmail:
		return r.CompanyEmail
	case CompanyPhone:
		return r.CompanyPhone
	case EmployeeName:
		return r.EmployeeName
	case EmpEmail:
		return r.EmpEmail
	case EmpPhone:
		return r.EmpPhone
	default:
		return ""
	}
}

type Repository struct {
	store Collection
	// mu serializes read-modify-write cycles on the single slot.
	mu sync.Mutex
}

func New(store Collection) *Repository {
	return &Repository{store: store}
}

// FindByID returns the first record with id, or ErrNotFound.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.Record, error) {
	for _, rec := range r.store.LoadAll(ctx) {
		if rec.ID == id {
			found := rec.Clone()
			return &found, nil
		}
	}
	return nil, fmt.Errorf("record %q: %w", id, e.ErrNotFound)
}

// Insert appends record to the collection.
func (r *Repository) Insert(ctx context.Context, record models.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.store.LoadAll(ctx)
	all = append(all, record.Clone())
	return r.store.SaveAll(ctx, all)
}

// Replace overwrites the record with id in place. A missing id yields ErrNotFound
// and leaves the collection untouched.
func (r *Repository) Replace(ctx context.Context, id string, record models.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.store.LoadAll(ctx)
	for i := range all {
		if all[i].ID == id {
			all[i] = record.Clone()
			return r.store.SaveAll(ctx, all)
		}
	}
	return fmt.Errorf("record %q: %w", id, e.ErrNotFound)
}

// Remove drops the record with id. Removing an absent id is a no-op.
func (r *Repository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.store.LoadAll(ctx)
	kept := make([]models.Record, 0, len(all))
	for _, rec := range all {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(all) {
		return nil
	}
	return r.store.SaveAll(ctx, kept)
}

// Search returns the records whose fields contain query, case-insensitively,
// in stored order. No fields means DefaultSearchFields; an empty query matches all.
func (r *Repository) Search(ctx context.Context, query string, fields ...Field) ([]models.Record, error) {
	all := r.store.LoadAll(ctx)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all, nil
	}
	if len(fields) == 0 {
		fields = DefaultSearchFields
	}

	out := make([]models.Record, 0, len(all))
	for i := range all {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f.value(&all[i])), q) {
				out = append(out, all[i])
				break
			}
		}
	}
	return out, nil
}

// List returns the full collection.
func (r *Repository) List(ctx context.Context) ([]models.Record, error) {
	return r.Search(ctx, "")
}

// Package controller implements the service layer for company records:
// it validates input, delegates persistence to the repository and
// publishes lifecycle events.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	e "github.com/gartstein/companydesk/internal/company/errors"
	"github.com/gartstein/companydesk/internal/company/events"
	"github.com/gartstein/companydesk/internal/company/form"
	"github.com/gartstein/companydesk/internal/company/models"
	"github.com/gartstein/companydesk/internal/company/repository"
	"github.com/gartstein/companydesk/internal/company/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventProducer interface {
	Produce(eventType events.EventType, record *models.Record)
}

// Repository defines the storage operations the service relies on.
type Repository interface {
	FindByID(ctx context.Context, id string) (*models.Record, error)
	Insert(ctx context.Context, record models.Record) error
	Replace(ctx context.Context, id string, record models.Record) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query string, fields ...repository.Field) ([]models.Record, error)
}

// RecordService manages records via repository operations and event
// production. It also satisfies the store interfaces of the form and list
// views so every front-end emits the same events.
type RecordService struct {
	repo      Repository
	producer  EventProducer
	validator *validation.Validator
	catalog   *models.Catalog
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// Option customizes a RecordService.
type Option func(*RecordService)

// WithClock overrides the clock used for createdAt stamps and validation.
func WithClock(now func() time.Time) Option {
	return func(s *RecordService) { s.now = now }
}

// WithCatalog sets the selectable skill names. The default is
// models.DefaultSkillCatalog.
func WithCatalog(catalog *models.Catalog) Option {
	return func(s *RecordService) { s.catalog = catalog }
}

// WithIDGenerator overrides the id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *RecordService) { s.newID = newID }
}

func NewRecordService(repo Repository, producer EventProducer, logger *zap.Logger, opts ...Option) *RecordService {
	s := &RecordService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("record_service"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.producer == nil {
		s.producer = events.NopProducer{}
	}
	if s.catalog == nil {
		s.catalog = models.NewCatalog(nil)
	}
	s.validator = validation.New(s.now)
	return s
}

// CreateRecord validates the input, assigns an id and creation time, stores
// the record and publishes record_created.
func (s *RecordService) CreateRecord(ctx context.Context, input models.Record) (*models.Record, error) {
	record := normalize(input)
	if err := s.checkEntries(&record, nil); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&record).Err(); err != nil {
		return nil, err
	}

	record.ID = s.newID()
	record.CreatedAt = s.now().UTC().Format(models.CreatedAtLayout)
	if err := s.repo.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}
	s.publish(events.RecordCreated, record)
	return &record, nil
}

// GetRecord retrieves a record by id, returning ErrNotFound when absent.
func (s *RecordService) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// UpdateRecord overwrites the record with id, keeping its id and creation
// time, and publishes record_updated.
func (s *RecordService) UpdateRecord(ctx context.Context, id string, input models.Record) (*models.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: invalid record ID", e.ErrInvalidInput)
	}
	stored, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	record := normalize(input)
	if err := s.checkEntries(&record, stored.Skills); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&record).Err(); err != nil {
		return nil, err
	}
	record.ID = stored.ID
	record.CreatedAt = stored.CreatedAt

	if err := s.repo.Replace(ctx, id, record); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update record: %w", err)
	}
	s.publish(events.RecordUpdated, record)
	return &record, nil
}

// DeleteRecord removes a record and publishes record_deleted. Deleting an
// absent id is a no-op.
func (s *RecordService) DeleteRecord(ctx context.Context, id string) error {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			s.logger.Debug("delete of absent record ignored", zap.String("record_id", id))
			return nil
		}
		return fmt.Errorf("failed to get record for deletion: %w", err)
	}

	if err := s.repo.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	s.publish(events.RecordDeleted, *record)
	return nil
}

// SearchRecords filters by company name, email or phone.
func (s *RecordService) SearchRecords(ctx context.Context, query string) ([]models.Record, error) {
	records, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}
	return records, nil
}

// FindByID, Insert, Replace, Remove and Search back the form and list views.
// The views validate and stamp records themselves.

func (s *RecordService) FindByID(ctx context.Context, id string) (*models.Record, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *RecordService) Insert(ctx context.Context, record models.Record) error {
	if err := s.repo.Insert(ctx, record); err != nil {
		return err
	}
	s.publish(events.RecordCreated, record)
	return nil
}

func (s *RecordService) Replace(ctx context.Context, id string, record models.Record) error {
	if err := s.repo.Replace(ctx, id, record); err != nil {
		return err
	}
	s.publish(events.RecordUpdated, record)
	return nil
}

func (s *RecordService) Remove(ctx context.Context, id string) error {
	return s.DeleteRecord(ctx, id)
}

func (s *RecordService) Search(ctx context.Context, query string, fields ...repository.Field) ([]models.Record, error) {
	return s.repo.Search(ctx, query, fields...)
}

func (s *RecordService) publish(eventType events.EventType, record models.Record) {
	snapshot := record.Clone()
	go func() {
		s.producer.Produce(eventType, &snapshot)
	}()
}

// checkEntries applies the form editors' rules to the sub-entities: skill
// names must come from the catalog, a later skill replaces an earlier one of
// the same name, and education rows need every field. Names in known are
// accepted outside the catalog so an update keeps skills dropped from it.
func (s *RecordService) checkEntries(record *models.Record, known []models.Skill) error {
	catalog := s.catalog
	if len(known) > 0 {
		names := s.catalog.Names()
		for _, sk := range known {
			names = append(names, sk.Name)
		}
		catalog = models.NewCatalog(names)
	}

	skills := form.NewSkillsEditor(catalog)
	for i, sk := range record.Skills {
		if err := skills.Add(sk.Name, strconv.Itoa(sk.Rating)); err != nil {
			return fmt.Errorf("skill %d: %w", i+1, err)
		}
	}
	education := form.NewEducationEditor()
	for i, row := range record.Education {
		if err := education.Add(row.School, row.Course, string(row.CompletedYear)); err != nil {
			return fmt.Errorf("education %d: %w", i+1, err)
		}
	}
	record.Skills = skills.Entries()
	record.Education = education.Entries()
	return nil
}

// normalize trims every scalar field except the designation, which is kept
// as entered.
func normalize(r models.Record) models.Record {
	out := r.Clone()
	for _, f := range []*string{
		&out.CompanyName, &out.CompanyAddress, &out.CompanyEmail, &out.CompanyPhone,
		&out.EmployeeName, &out.JoinDate, &out.EmpEmail, &out.EmpPhone,
	} {
		*f = strings.TrimSpace(*f)
	}
	return out
}

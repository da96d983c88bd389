// Package form implements one create/edit form session: scalar fields, the
// skills and education sub-entity editors, validation on submit, persistence
// through a record store, transient input errors and the delayed return to
// the list view after a successful save.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	e "github.com/gartstein/companydesk/internal/company/errors"
	"github.com/gartstein/companydesk/internal/company/models"
	"github.com/gartstein/companydesk/internal/company/router"
	"github.com/gartstein/companydesk/internal/company/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultFlashDuration = 2 * time.Second
	DefaultNavigateDelay = 800 * time.Millisecond

	SavedMessage = "Saved successfully."
)

// Mode tells whether the session creates a record or edits an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Store is the record persistence a session needs.
type Store interface {
	FindByID(ctx context.Context, id string) (*models.Record, error)
	Insert(ctx context.Context, record models.Record) error
	Replace(ctx context.Context, id string, record models.Record) error
}

// Navigator switches the active view.
type Navigator interface {
	Navigate(ctx context.Context, raw string) error
}

// Deps are the collaborators of a session. Zero durations, a nil Scheduler,
// Now or NewID fall back to the defaults.
type Deps struct {
	Store         Store
	Validator     *validation.Validator
	Catalog       *models.Catalog
	Navigator     Navigator
	Scheduler     Scheduler
	Logger        *zap.Logger
	Now           func() time.Time
	NewID         func() string
	FlashDuration time.Duration
	NavigateDelay time.Duration
}

func (d *Deps) withDefaults() {
	if d.Scheduler == nil {
		d.Scheduler = RealScheduler{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.Validator == nil {
		d.Validator = validation.New(d.Now)
	}
	if d.Catalog == nil {
		d.Catalog = models.NewCatalog(nil)
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.FlashDuration <= 0 {
		d.FlashDuration = DefaultFlashDuration
	}
	if d.NavigateDelay <= 0 {
		d.NavigateDelay = DefaultNavigateDelay
	}
}

// State is a snapshot of a session for rendering.
type State struct {
	Mode         Mode
	ID           string
	Title        string
	Fields       Fields
	Skills       []models.Skill
	Chips        []string
	Education    []models.Education
	Rows         []string
	Violations   []string
	Flash        string
	Confirmation string
	Saved        *models.Record
}

// Session is one activation of the form view. It is safe for use from the
// UI goroutine and the timer goroutines it schedules.
type Session struct {
	mu     sync.Mutex
	deps   Deps
	logger *zap.Logger

	mode      Mode
	id        string
	loaded    *models.Record
	fields    Fields
	skills    *SkillsEditor
	education *EducationEditor

	violations   validation.Violations
	flash        string
	flashGen     int
	flashTimer   Timer
	navTimer     Timer
	confirmation string
	saved        *models.Record
	closed       bool
	onChange     func()
}

// NewSession activates the form. A non-empty editID binds the session to that
// record; if it cannot be loaded the form starts empty and no error surfaces.
func NewSession(ctx context.Context, deps Deps, editID string) *Session {
	deps.withDefaults()
	s := &Session{
		deps:      deps,
		logger:    deps.Logger.Named("form_session"),
		skills:    NewSkillsEditor(deps.Catalog),
		education: NewEducationEditor(),
	}
	if editID == "" {
		return s
	}

	s.mode = ModeEdit
	s.id = editID
	rec, err := deps.Store.FindByID(ctx, editID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			s.logger.Debug("edit target not found, starting empty", zap.String("record_id", editID))
		} else {
			s.logger.Warn("failed to load edit target, starting empty",
				zap.String("record_id", editID),
				zap.Error(err),
			)
		}
		return s
	}

	s.loaded = rec
	s.fields = fieldsFrom(rec)
	s.skills.Load(rec.Skills)
	s.education.Load(rec.Education)
	return s
}

// OnChange registers fn to run after state changes made by timers.
func (s *Session) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetField sets the raw text of a scalar field.
func (s *Session) SetField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.fields.ptr(name)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

// Fields returns the current scalar field values.
func (s *Session) Fields() Fields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields
}

// AddSkill upserts a skill chip. A rejected entry also raises a flash message.
func (s *Session) AddSkill(name, rating string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.skills.Add(name, rating)
	s.flashOnInputError(err)
	return err
}

// RemoveSkill drops the chip called name; absent names are ignored.
func (s *Session) RemoveSkill(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skills.Remove(name)
}

// FilterCatalog returns the catalog names matching query.
func (s *Session) FilterCatalog(query string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skills.Filter(query)
}

// AddEducation appends an education row. A rejected entry also raises a flash message.
func (s *Session) AddEducation(school, course, completedYear string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.education.Add(school, course, completedYear)
	s.flashOnInputError(err)
	return err
}

// RemoveEducation drops the row at index; out-of-range indexes are ignored.
func (s *Session) RemoveEducation(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.education.Remove(index)
}

func (s *Session) flashOnInputError(err error) {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		s.showFlash(inputErr.Message)
	}
}

// showFlash replaces the current flash and schedules its dismissal. Callers hold mu.
func (s *Session) showFlash(msg string) {
	if s.flashTimer != nil {
		s.flashTimer.Stop()
	}
	s.flashGen++
	gen := s.flashGen
	s.flash = msg
	s.flashTimer = s.deps.Scheduler.AfterFunc(s.deps.FlashDuration, func() {
		s.dismissFlash(gen)
	})
}

func (s *Session) dismissFlash(gen int) {
	s.mu.Lock()
	if s.closed || gen != s.flashGen {
		s.mu.Unlock()
		return
	}
	s.flash = ""
	s.flashTimer = nil
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Submit validates the form and persists it. It reports false with a nil error
// when validation failed; the violations stay on the session until the next
// submit. After a successful save the session navigates to the list view once
// NavigateDelay has elapsed, unless it is closed first.
func (s *Session) Submit(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.saved != nil {
		return false, e.ErrSessionClosed
	}
	s.violations = nil
	s.confirmation = ""
	if s.flashTimer != nil {
		s.flashTimer.Stop()
		s.flashTimer = nil
	}
	s.flash = ""

	candidate := s.candidate()
	if v := s.deps.Validator.Validate(&candidate); len(v) > 0 {
		s.violations = v
		return false, nil
	}

	switch s.mode {
	case ModeCreate:
		candidate.ID = s.deps.NewID()
		candidate.CreatedAt = s.deps.Now().UTC().Format(models.CreatedAtLayout)
		if err := s.deps.Store.Insert(ctx, candidate); err != nil {
			return false, fmt.Errorf("failed to insert record: %w", err)
		}
	case ModeEdit:
		if s.loaded == nil {
			return false, fmt.Errorf("record %q: %w", s.id, e.ErrNotFound)
		}
		candidate.ID = s.loaded.ID
		candidate.CreatedAt = s.loaded.CreatedAt
		if err := s.deps.Store.Replace(ctx, candidate.ID, candidate); err != nil {
			return false, fmt.Errorf("failed to replace record: %w", err)
		}
	}

	s.saved = &candidate
	s.confirmation = SavedMessage
	s.logger.Info("record saved",
		zap.String("record_id", candidate.ID),
		zap.Stringer("mode", s.mode),
	)
	s.navTimer = s.deps.Scheduler.AfterFunc(s.deps.NavigateDelay, s.navigateToList)
	return true, nil
}

func (s *Session) candidate() models.Record {
	var r models.Record
	s.fields.apply(&r)
	r.Skills = s.skills.Entries()
	r.Education = s.education.Entries()
	return r
}

func (s *Session) navigateToList() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.navTimer = nil
	nav := s.deps.Navigator
	s.mu.Unlock()

	if nav == nil {
		return
	}
	if err := nav.Navigate(context.Background(), router.ListRoute.Hash()); err != nil {
		s.logger.Error("navigation after save failed", zap.Error(err))
	}
}

// Cancel discards the session and returns to the list view immediately.
func (s *Session) Cancel(ctx context.Context) error {
	s.Close()
	if s.deps.Navigator == nil {
		return nil
	}
	return s.deps.Navigator.Navigate(ctx, router.ListRoute.Hash())
}

// Close cancels pending timers. A closed session never navigates on its own.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.flashTimer != nil {
		s.flashTimer.Stop()
		s.flashTimer = nil
	}
	if s.navTimer != nil {
		s.navTimer.Stop()
		s.navTimer = nil
	}
}

// Closed reports whether Close or Cancel ran.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// State returns a snapshot for rendering.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Mode:         s.mode,
		ID:           s.id,
		Title:        "New Company",
		Fields:       s.fields,
		Skills:       s.skills.Entries(),
		Chips:        s.skills.Chips(),
		Education:    s.education.Entries(),
		Rows:         s.education.Rows(),
		Violations:   append([]string(nil), s.violations...),
		Flash:        s.flash,
		Confirmation: s.confirmation,
	}
	if s.mode == ModeEdit {
		st.Title = "Edit Company"
	}
	if s.saved != nil {
		saved := s.saved.Clone()
		st.Saved = &saved
	}
	return st
}

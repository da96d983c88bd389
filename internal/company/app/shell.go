// Package app wires the router, the list view and form sessions into one
// navigable application that front-ends drive.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/gartstein/companydesk/internal/company/form"
	"github.com/gartstein/companydesk/internal/company/router"
	"github.com/gartstein/companydesk/internal/company/views"
	"go.uber.org/zap"
)

// Store is the record access both views need.
type Store interface {
	form.Store
	views.Store
}

// Shell owns the active view. Exactly one of the list view or a form session
// is active at a time.
type Shell struct {
	mu       sync.Mutex
	router   *router.Router
	list     *views.ListView
	deps     form.Deps
	logger   *zap.Logger
	current  router.Route
	session  *form.Session
	onChange func(router.Route)
}

// New builds a shell. deps is the template for every form session; its
// Store and Navigator are replaced by store and the shell.
func New(store Store, confirmer views.Confirmer, deps form.Deps, logger *zap.Logger) *Shell {
	s := &Shell{
		router: router.NewRouter(),
		list:   views.NewListView(store, confirmer, logger),
		logger: logger.Named("shell"),
	}
	deps.Store = store
	deps.Navigator = s
	if deps.Logger == nil {
		deps.Logger = logger
	}
	s.deps = deps

	s.router.Handle(router.List, s.activateList)
	s.router.Handle(router.New, s.activateForm)
	s.router.Handle(router.Edit, s.activateForm)
	return s
}

// OnChange registers fn to run after the active view or its state changes,
// including changes made by timers. fn runs without the shell lock held.
func (s *Shell) OnChange(fn func(router.Route)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Start activates the initial route.
func (s *Shell) Start(ctx context.Context, raw string) error {
	return s.Navigate(ctx, raw)
}

// Navigate tears down the active view and activates the one raw names.
// Unknown routes fall back to the list.
func (s *Shell) Navigate(ctx context.Context, raw string) error {
	s.mu.Lock()
	if s.session != nil {
		s.session.Close()
		s.session = nil
	}
	route, err := s.router.Dispatch(ctx, raw)
	s.current = route
	fn := s.onChange
	s.mu.Unlock()

	s.logger.Debug("navigated", zap.String("route", route.String()))
	if fn != nil {
		fn(route)
	}
	if err != nil {
		return fmt.Errorf("failed to activate %s: %w", route, err)
	}
	return nil
}

// activateList and activateForm run with s.mu held.
func (s *Shell) activateList(ctx context.Context, _ router.Route) error {
	return s.list.Activate(ctx)
}

func (s *Shell) activateForm(ctx context.Context, r router.Route) error {
	s.list.Reset()
	session := form.NewSession(ctx, s.deps, r.ID)
	session.OnChange(s.notify)
	s.session = session
	return nil
}

func (s *Shell) notify() {
	s.mu.Lock()
	fn, route := s.onChange, s.current
	s.mu.Unlock()
	if fn != nil {
		fn(route)
	}
}

// Current returns the active route.
func (s *Shell) Current() router.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Shell) List() *views.ListView {
	return s.list
}

// Form returns the active session, or nil while the list is shown.
func (s *Shell) Form() *form.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Close closes the active session.
func (s *Shell) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		s.session.Close()
		s.session = nil
	}
}

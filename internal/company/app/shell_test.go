package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gartstein/companydesk/internal/company/form"
	"github.com/gartstein/companydesk/internal/company/models"
	"github.com/gartstein/companydesk/internal/company/repository"
	"github.com/gartstein/companydesk/internal/company/router"
	"github.com/gartstein/companydesk/internal/company/storage"
	"github.com/gartstein/companydesk/internal/company/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type manualTimer struct {
	mu      sync.Mutex
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (t *manualTimer) fire() {
	t.mu.Lock()
	stopped := t.stopped
	t.stopped = true
	t.mu.Unlock()
	if !stopped {
		t.fn()
	}
}

type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(_ time.Duration, fn func()) form.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) last() *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[len(s.timers)-1]
}

func newShell(t *testing.T, confirm bool) (*Shell, *repository.Repository, *manualScheduler) {
	t.Helper()
	adapter, err := storage.NewAdapter(storage.NewMemorySlot(), "", zaptest.NewLogger(t))
	require.NoError(t, err)
	repo := repository.New(adapter)
	sched := &manualScheduler{}
	confirmer := views.ConfirmFunc(func(context.Context, string) bool { return confirm })

	shell := New(repo, confirmer, form.Deps{
		Scheduler: sched,
		Now:       func() time.Time { return time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC) },
		NewID:     func() string { return "id-1" },
	}, zaptest.NewLogger(t))
	t.Cleanup(shell.Close)
	return shell, repo, sched
}

func fillForm(t *testing.T, s *form.Session) {
	t.Helper()
	for name, value := range map[string]string{
		form.FieldCompanyName:  "Acme",
		form.FieldCompanyEmail: "a@acme.com",
		form.FieldCompanyPhone: "12345",
		form.FieldEmployeeName: "Jo",
		form.FieldJoinDate:     "2020-01-01",
		form.FieldEmpEmail:     "jo@acme.com",
		form.FieldEmpPhone:     "555",
	} {
		require.NoError(t, s.SetField(name, value))
	}
	require.NoError(t, s.AddSkill("Go", "4"))
	require.NoError(t, s.AddEducation("MIT", "CS", "2015-06"))
}

func TestShellStartsOnList(t *testing.T) {
	shell, _, _ := newShell(t, true)

	require.NoError(t, shell.Start(context.Background(), ""))
	assert.Equal(t, router.ListRoute, shell.Current())
	assert.Nil(t, shell.Form())
	assert.Empty(t, shell.List().Rows())
}

func TestShellCreateThenReturnToList(t *testing.T) {
	shell, repo, sched := newShell(t, true)
	ctx := context.Background()

	var mu sync.Mutex
	var changes []router.Route
	shell.OnChange(func(r router.Route) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, r)
	})

	require.NoError(t, shell.Navigate(ctx, "#/new"))
	assert.Equal(t, router.Route{Name: router.New}, shell.Current())
	session := shell.Form()
	require.NotNil(t, session)
	assert.Equal(t, form.ModeCreate, session.Mode())

	fillForm(t, session)
	ok, err := session.Submit(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	sched.last().fire()

	assert.Equal(t, router.ListRoute, shell.Current())
	assert.Nil(t, shell.Form())
	assert.True(t, session.Closed())
	rows := shell.List().Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "id-1", rows[0].ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []router.Route{{Name: router.New}, router.ListRoute}, changes)
}

func TestShellEditLoadsRecord(t *testing.T) {
	shell, repo, _ := newShell(t, true)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, models.Record{ID: "r1", CompanyName: "Globex", CreatedAt: "t"}))

	require.NoError(t, shell.Navigate(ctx, "#/edit/r1"))
	session := shell.Form()
	require.NotNil(t, session)
	st := session.State()
	assert.Equal(t, form.ModeEdit, st.Mode)
	assert.Equal(t, "Globex", st.Fields.CompanyName)
	assert.Equal(t, "Edit Company", st.Title)
}

func TestShellNavigationClosesPendingSession(t *testing.T) {
	shell, _, sched := newShell(t, true)
	ctx := context.Background()

	require.NoError(t, shell.Navigate(ctx, "#/new"))
	first := shell.Form()
	fillForm(t, first)
	ok, err := first.Submit(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	pending := sched.last()

	require.NoError(t, shell.Navigate(ctx, "#/new"))
	second := shell.Form()
	assert.NotSame(t, first, second)
	assert.True(t, first.Closed())

	pending.fire()
	assert.Equal(t, router.Route{Name: router.New}, shell.Current())
	assert.Same(t, second, shell.Form())
}

func TestShellUnknownRouteFallsBackToList(t *testing.T) {
	shell, _, _ := newShell(t, true)
	ctx := context.Background()

	require.NoError(t, shell.Navigate(ctx, "#/new"))
	require.NoError(t, shell.Navigate(ctx, "#/bogus"))
	assert.Equal(t, router.ListRoute, shell.Current())
	assert.Nil(t, shell.Form())
}

func TestShellListResetsOnFormActivation(t *testing.T) {
	shell, repo, _ := newShell(t, true)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, models.Record{ID: "r1", CompanyName: "Acme"}))

	require.NoError(t, shell.Navigate(ctx, "#/list"))
	require.NoError(t, shell.List().Search(ctx, "acme"))
	require.Len(t, shell.List().Rows(), 1)

	require.NoError(t, shell.Navigate(ctx, "#/new"))
	assert.Empty(t, shell.List().Rows())
	assert.Empty(t, shell.List().Query())
}

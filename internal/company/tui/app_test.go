package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gartstein/companydesk/internal/company/app"
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

type heldTimer struct{ fn func() }

func (*heldTimer) Stop() bool { return true }

// heldScheduler never fires on its own.
type heldScheduler struct{ timers []*heldTimer }

func (s *heldScheduler) AfterFunc(_ time.Duration, fn func()) form.Timer {
	t := &heldTimer{fn: fn}
	s.timers = append(s.timers, t)
	return t
}

type fixture struct {
	app   *App
	shell *app.Shell
	repo  *repository.Repository
	sched *heldScheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	adapter, err := storage.NewAdapter(storage.NewMemorySlot(), "", logger)
	require.NoError(t, err)
	repo := repository.New(adapter)
	sched := &heldScheduler{}
	confirmer := NewConfirmer()
	shell := app.New(repo, confirmer, form.Deps{
		Scheduler: sched,
		Now:       func() time.Time { return time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC) },
		NewID:     func() string { return "id-1" },
	}, logger)
	t.Cleanup(shell.Close)

	ctx := context.Background()
	require.NoError(t, shell.Start(ctx, ""))
	a := NewApp(ctx, shell, confirmer, logger)
	a.Init()
	return &fixture{app: a, shell: shell, repo: repo, sched: sched}
}

func (f *fixture) key(s string) {
	var msg tea.KeyMsg
	switch s {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		msg = tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+x":
		msg = tea.KeyMsg{Type: tea.KeyCtrlX}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	f.app.Update(msg)
}

func (f *fixture) typeText(s string) {
	for _, r := range s {
		f.app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestListShowsEmptyMessage(t *testing.T) {
	f := newFixture(t)

	view := f.app.View()
	assert.Contains(t, view, views.ListPageTitle)
	assert.Contains(t, view, views.EmptyMessage)
}

func TestCreateRecordThroughForm(t *testing.T) {
	f := newFixture(t)

	f.key("n")
	require.NotNil(t, f.shell.Form())
	assert.Contains(t, f.app.View(), "New Company")

	values := map[string]string{
		form.FieldCompanyName:  "Acme",
		form.FieldCompanyEmail: "a@acme.com",
		form.FieldCompanyPhone: "12345",
		form.FieldEmployeeName: "Jo",
		form.FieldJoinDate:     "2020-01-01",
		form.FieldEmpEmail:     "jo@acme.com",
		form.FieldEmpPhone:     "555",
	}
	for _, name := range form.FieldOrder {
		f.typeText(values[name])
		f.key("tab")
	}

	f.typeText("go")
	f.key("enter")
	f.typeText("4")
	f.key("enter")
	f.key("tab")
	f.key("tab")

	f.typeText("MIT")
	f.key("tab")
	f.typeText("CS")
	f.key("tab")
	f.typeText("2015-06")
	f.key("enter")

	st := f.shell.Form().State()
	assert.Equal(t, []models.Skill{{Name: "Go", Rating: 4}}, st.Skills)
	require.Len(t, st.Education, 1)
	assert.Equal(t, "Acme", st.Fields.CompanyName)

	f.key("ctrl+s")
	assert.Contains(t, f.app.View(), form.SavedMessage)

	require.Len(t, f.sched.timers, 1)
	f.sched.timers[0].fn()
	f.app.Update(routeChangedMsg{route: router.ListRoute})

	assert.Nil(t, f.shell.Form())
	view := f.app.View()
	assert.Contains(t, view, "Acme")
	assert.NotContains(t, view, views.EmptyMessage)
}

func TestSubmitShowsViolations(t *testing.T) {
	f := newFixture(t)

	f.key("n")
	f.key("ctrl+s")

	view := f.app.View()
	assert.Contains(t, view, "Company Name is required.")
	assert.Contains(t, view, "Add at least one education entry.")
}

func TestRejectedSkillRaisesFlash(t *testing.T) {
	f := newFixture(t)

	f.key("n")
	for range form.FieldOrder {
		f.key("tab")
	}
	f.typeText("zzz")
	f.key("enter")
	f.key("enter")

	assert.Contains(t, f.app.View(), "Select a skill name.")
}

func TestRemoveSelectedSkill(t *testing.T) {
	f := newFixture(t)

	f.key("n")
	for range form.FieldOrder {
		f.key("tab")
	}
	f.typeText("Go")
	f.key("enter")
	f.typeText("5")
	f.key("enter")
	require.Len(t, f.shell.Form().State().Skills, 1)

	f.key("ctrl+x")
	assert.Empty(t, f.shell.Form().State().Skills)
}

func TestEscCancelsForm(t *testing.T) {
	f := newFixture(t)

	f.key("n")
	session := f.shell.Form()
	f.key("esc")

	assert.True(t, session.Closed())
	assert.Equal(t, router.ListRoute, f.shell.Current())
	assert.Contains(t, f.app.View(), views.EmptyMessage)
}

func TestDeleteWithConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Insert(ctx, models.Record{ID: "r1", CompanyName: "Acme"}))
	require.NoError(t, f.shell.Navigate(ctx, "#/list"))

	f.key("d")
	assert.Contains(t, f.app.View(), views.DeletePrompt)
	f.key("n")
	all, err := f.repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	f.key("d")
	f.key("y")
	all, err = f.repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Contains(t, f.app.View(), views.EmptyMessage)
}

func TestSearchFiltersRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Insert(ctx, models.Record{ID: "r1", CompanyName: "Acme"}))
	require.NoError(t, f.repo.Insert(ctx, models.Record{ID: "r2", CompanyName: "Globex"}))
	require.NoError(t, f.shell.Navigate(ctx, "#/list"))

	f.key("/")
	f.typeText("glob")
	f.key("enter")

	rows := f.shell.List().Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "r2", rows[0].ID)
}

func TestEditOpensLoadedRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Insert(ctx, models.Record{ID: "r1", CompanyName: "Acme"}))
	require.NoError(t, f.shell.Navigate(ctx, "#/list"))

	f.key("e")
	require.NotNil(t, f.shell.Form())
	assert.Equal(t, router.Route{Name: router.Edit, ID: "r1"}, f.shell.Current())
	assert.Contains(t, f.app.View(), "Edit Company")
}

func TestConfirmerAnswersOnce(t *testing.T) {
	c := NewConfirmer()
	assert.False(t, c.Confirm(context.Background(), "?"))
	c.Arm(true)
	assert.True(t, c.Confirm(context.Background(), "?"))
	assert.False(t, c.Confirm(context.Background(), "?"))
}

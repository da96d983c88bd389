// Package tui is the terminal front-end: a bubbletea program that renders the
// shell's active view and feeds key presses back into it.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gartstein/companydesk/internal/company/app"
	"github.com/gartstein/companydesk/internal/company/form"
	"github.com/gartstein/companydesk/internal/company/router"
	"go.uber.org/zap"
)

// routeChangedMsg reports a shell change made outside Update, by a timer.
type routeChangedMsg struct {
	route router.Route
}

type App struct {
	ctx    context.Context
	shell  *app.Shell
	logger *zap.Logger
	width  int
	height int

	list    *listScreen
	form    *formScreen
	session *form.Session
}

func NewApp(ctx context.Context, shell *app.Shell, confirmer *Confirmer, logger *zap.Logger) *App {
	a := &App{
		ctx:    ctx,
		shell:  shell,
		logger: logger.Named("tui"),
	}
	a.list = newListScreen(ctx, shell.List(), confirmer, a.navigate)
	return a
}

// Run blocks until the user quits or ctx is done.
func Run(ctx context.Context, shell *app.Shell, confirmer *Confirmer, logger *zap.Logger) error {
	a := NewApp(ctx, shell, confirmer, logger)
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(ctx))

	// Send must not run on the Update goroutine.
	shell.OnChange(func(r router.Route) {
		go p.Send(routeChangedMsg{route: r})
	})
	defer shell.OnChange(nil)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}

func (a *App) Init() tea.Cmd {
	a.sync()
	return textinput.Blink
}

func (a *App) navigate(raw string) {
	if err := a.shell.Navigate(a.ctx, raw); err != nil {
		a.logger.Error("navigation failed", zap.String("route", raw), zap.Error(err))
	}
}

// sync rebuilds the form screen when the shell switched sessions.
func (a *App) sync() {
	session := a.shell.Form()
	if session == a.session {
		return
	}
	a.session = session
	a.form = nil
	if session != nil {
		a.form = newFormScreen(a.ctx, session)
		return
	}
	a.list.reset()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil
	case routeChangedMsg:
		a.logger.Debug("route changed", zap.String("route", msg.route.String()))
		a.sync()
		return a, nil
	}

	a.sync()
	var cmd tea.Cmd
	if a.form != nil {
		cmd = a.form.Update(msg)
	} else {
		cmd = a.list.Update(msg)
	}
	a.sync()
	return a, cmd
}

func (a *App) View() string {
	a.sync()
	if a.form != nil {
		return BoxStyle.Render(a.form.View())
	}
	return BoxStyle.Render(a.list.View())
}

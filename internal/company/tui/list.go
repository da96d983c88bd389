package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gartstein/companydesk/internal/company/router"
	"github.com/gartstein/companydesk/internal/company/views"
)

type listMode int

const (
	listModeBrowse listMode = iota
	listModeSearch
	listModeDelete
)

type listScreen struct {
	ctx       context.Context
	view      *views.ListView
	confirmer *Confirmer
	navigate  func(raw string)

	search  textinput.Model
	cursor  int
	mode    listMode
	err     error
	message string
}

func newListScreen(ctx context.Context, view *views.ListView, confirmer *Confirmer, navigate func(string)) *listScreen {
	ti := textinput.New()
	ti.Placeholder = "Search by name, email or phone"
	ti.CharLimit = 100
	ti.Width = 40
	ti.Prompt = "/ "

	return &listScreen{
		ctx:       ctx,
		view:      view,
		confirmer: confirmer,
		navigate:  navigate,
		search:    ti,
	}
}

func (l *listScreen) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		return l.handleKey(msg)
	}
	if l.mode == listModeSearch {
		var cmd tea.Cmd
		l.search, cmd = l.search.Update(msg)
		return cmd
	}
	return nil
}

func (l *listScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch l.mode {
	case listModeSearch:
		return l.handleSearchKey(msg)
	case listModeDelete:
		return l.handleDeleteKey(msg)
	}
	return l.handleBrowseKey(msg)
}

func (l *listScreen) handleBrowseKey(msg tea.KeyMsg) tea.Cmd {
	rows := l.view.Rows()
	switch msg.String() {
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < len(rows)-1 {
			l.cursor++
		}
	case "/":
		l.mode = listModeSearch
		return l.search.Focus()
	case "n":
		l.navigate(router.Route{Name: router.New}.Hash())
	case "e", "enter":
		if len(rows) > 0 {
			l.navigate(router.Route{Name: router.Edit, ID: rows[l.cursor].ID}.Hash())
		}
	case "d":
		if len(rows) > 0 {
			l.mode = listModeDelete
		}
	case "q":
		return tea.Quit
	}
	return nil
}

func (l *listScreen) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc":
		l.mode = listModeBrowse
		l.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	l.search, cmd = l.search.Update(msg)
	if err := l.view.Search(l.ctx, l.search.Value()); err != nil {
		l.err = err
	}
	l.cursor = 0
	return cmd
}

func (l *listScreen) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	var answer bool
	switch msg.String() {
	case "y", "Y":
		answer = true
	case "n", "N", "esc":
	default:
		return nil
	}

	rows := l.view.Rows()
	l.mode = listModeBrowse
	if l.cursor >= len(rows) {
		return nil
	}
	row := rows[l.cursor]
	l.confirmer.Arm(answer)
	deleted, err := l.view.Delete(l.ctx, row.ID)
	switch {
	case err != nil:
		l.err = err
	case deleted:
		l.message = fmt.Sprintf("Deleted company: %s", row.CompanyName)
		l.search.SetValue("")
	}
	l.clampCursor()
	return nil
}

// reset matches a fresh list activation: no query, cursor at the top.
func (l *listScreen) reset() {
	l.search.SetValue("")
	l.search.Blur()
	l.mode = listModeBrowse
	l.cursor = 0
}

func (l *listScreen) clampCursor() {
	if n := len(l.view.Rows()); l.cursor >= n {
		l.cursor = max(0, n-1)
	}
}

func (l *listScreen) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(views.ListPageTitle))
	b.WriteString("\n\n")

	if l.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", l.err)))
		b.WriteString("\n\n")
		l.err = nil
	}
	if l.message != "" {
		b.WriteString(SuccessStyle.Render(l.message))
		b.WriteString("\n\n")
		l.message = ""
	}

	b.WriteString(l.search.View())
	b.WriteString("\n\n")

	rows := l.view.Rows()
	l.clampCursor()
	if len(rows) == 0 {
		b.WriteString(DimStyle.Render(views.EmptyMessage))
		b.WriteString("\n")
	} else {
		b.WriteString(HeaderStyle.Render(fmt.Sprintf("  %-24s %-28s %-16s %s", "Company", "Email", "Phone", "Created")))
		b.WriteString("\n")
		for i, row := range rows {
			cursor := "  "
			style := NormalStyle
			if i == l.cursor {
				cursor = "> "
				style = SelectedStyle
			}
			line := fmt.Sprintf("%s%-24s %-28s %-16s %s",
				cursor, row.CompanyName, row.CompanyEmail, row.CompanyPhone, row.CreatedAt)
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
	}

	if l.mode == listModeDelete && l.cursor < len(rows) {
		b.WriteString("\n")
		b.WriteString(WarningStyle.Render(views.DeletePrompt + " (y/n)"))
		b.WriteString("\n")
	}

	help := "[n] New  [e/enter] Edit  [d] Delete  [/] Search  [q] Quit"
	if l.mode == listModeSearch {
		help = "[enter/esc] Done"
	}
	b.WriteString(HelpStyle.Render(help))
	return b.String()
}

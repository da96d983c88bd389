package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gartstein/companydesk/internal/company/form"
)

// Input slots: the scalar fields in form.FieldOrder, then the skill and
// education controls.
var (
	slotSkillName   = len(form.FieldOrder)
	slotSkillRating = slotSkillName + 1
	slotSchool      = slotSkillName + 2
	slotCourse      = slotSkillName + 3
	slotYear        = slotSkillName + 4
	slotCount       = slotSkillName + 5
)

var fieldLabels = map[string]string{
	form.FieldCompanyName:    "Company Name",
	form.FieldCompanyAddress: "Company Address",
	form.FieldCompanyEmail:   "Company Email",
	form.FieldCompanyPhone:   "Company Phone",
	form.FieldEmployeeName:   "Employee Name",
	form.FieldDesignation:    "Designation",
	form.FieldJoinDate:       "Join Date",
	form.FieldEmpEmail:       "Employee Email",
	form.FieldEmpPhone:       "Employee Phone",
}

const maxSuggestions = 6

type formScreen struct {
	ctx     context.Context
	session *form.Session

	inputs   []textinput.Model
	focus    int
	skillSel int
	eduSel   int
	err      error
}

func newFormScreen(ctx context.Context, session *form.Session) *formScreen {
	st := session.State()
	f := &formScreen{
		ctx:     ctx,
		session: session,
		inputs:  make([]textinput.Model, slotCount),
	}
	for i, name := range form.FieldOrder {
		ti := textinput.New()
		ti.CharLimit = 200
		ti.Width = 40
		ti.Prompt = ""
		ti.SetValue(st.Fields.Get(name))
		f.inputs[i] = ti
	}
	placeholders := map[int]string{
		slotSkillName:   "Skill (type to filter)",
		slotSkillRating: "Rating 1-5",
		slotSchool:      "School",
		slotCourse:      "Course",
		slotYear:        "YYYY-MM",
	}
	for slot, ph := range placeholders {
		ti := textinput.New()
		ti.Placeholder = ph
		ti.CharLimit = 100
		ti.Width = 30
		ti.Prompt = ""
		f.inputs[slot] = ti
	}
	f.inputs[slotSkillRating].CharLimit = 1
	f.inputs[slotYear].CharLimit = 7
	f.inputs[0].Focus()
	return f
}

func (f *formScreen) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		return f.handleKey(msg)
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *formScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+s":
		if _, err := f.session.Submit(f.ctx); err != nil {
			f.err = err
		}
		return nil
	case "esc":
		if err := f.session.Cancel(f.ctx); err != nil {
			f.err = err
		}
		return nil
	case "tab", "down":
		return f.setFocus((f.focus + 1) % slotCount)
	case "shift+tab", "up":
		return f.setFocus((f.focus + slotCount - 1) % slotCount)
	case "ctrl+n":
		f.moveSelection(1)
		return nil
	case "ctrl+p":
		f.moveSelection(-1)
		return nil
	case "ctrl+x":
		f.removeSelected()
		return nil
	case "enter":
		return f.handleEnter()
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	if f.focus < len(form.FieldOrder) {
		if err := f.session.SetField(form.FieldOrder[f.focus], f.inputs[f.focus].Value()); err != nil {
			f.err = err
		}
	}
	return cmd
}

func (f *formScreen) handleEnter() tea.Cmd {
	switch f.focus {
	case slotSkillName:
		if suggestions := f.session.FilterCatalog(f.inputs[slotSkillName].Value()); len(suggestions) > 0 {
			f.inputs[slotSkillName].SetValue(suggestions[0])
		}
		return f.setFocus(slotSkillRating)
	case slotSkillRating:
		err := f.session.AddSkill(f.inputs[slotSkillName].Value(), f.inputs[slotSkillRating].Value())
		if err != nil {
			return nil
		}
		f.inputs[slotSkillName].SetValue("")
		f.inputs[slotSkillRating].SetValue("")
		return f.setFocus(slotSkillName)
	case slotYear:
		err := f.session.AddEducation(
			f.inputs[slotSchool].Value(),
			f.inputs[slotCourse].Value(),
			f.inputs[slotYear].Value(),
		)
		if err != nil {
			return nil
		}
		for _, slot := range []int{slotSchool, slotCourse, slotYear} {
			f.inputs[slot].SetValue("")
		}
		return f.setFocus(slotSchool)
	}
	return f.setFocus((f.focus + 1) % slotCount)
}

func (f *formScreen) setFocus(slot int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = slot
	return f.inputs[f.focus].Focus()
}

func (f *formScreen) inSkills() bool {
	return f.focus == slotSkillName || f.focus == slotSkillRating
}

func (f *formScreen) inEducation() bool {
	return f.focus >= slotSchool && f.focus <= slotYear
}

func (f *formScreen) moveSelection(delta int) {
	st := f.session.State()
	switch {
	case f.inSkills():
		f.skillSel = clamp(f.skillSel+delta, len(st.Skills))
	case f.inEducation():
		f.eduSel = clamp(f.eduSel+delta, len(st.Education))
	}
}

func (f *formScreen) removeSelected() {
	st := f.session.State()
	switch {
	case f.inSkills() && f.skillSel < len(st.Skills):
		f.session.RemoveSkill(st.Skills[f.skillSel].Name)
		f.skillSel = clamp(f.skillSel, len(st.Skills)-1)
	case f.inEducation() && f.eduSel < len(st.Education):
		f.session.RemoveEducation(f.eduSel)
		f.eduSel = clamp(f.eduSel, len(st.Education)-1)
	}
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	return max(0, i)
}

func (f *formScreen) View() string {
	st := f.session.State()
	var b strings.Builder

	b.WriteString(TitleStyle.Render(st.Title))
	b.WriteString("\n\n")

	if f.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", f.err)))
		b.WriteString("\n\n")
		f.err = nil
	}

	for i, name := range form.FieldOrder {
		b.WriteString(f.label(i, fieldLabels[name]))
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HeaderStyle.Render("Skills"))
	b.WriteString("\n")
	b.WriteString(f.label(slotSkillName, "Skill"))
	b.WriteString(f.inputs[slotSkillName].View())
	b.WriteString("\n")
	if f.focus == slotSkillName {
		suggestions := f.session.FilterCatalog(f.inputs[slotSkillName].Value())
		if len(suggestions) > maxSuggestions {
			suggestions = suggestions[:maxSuggestions]
		}
		b.WriteString(DimStyle.Render("  " + strings.Join(suggestions, ", ")))
		b.WriteString("\n")
	}
	b.WriteString(f.label(slotSkillRating, "Rating"))
	b.WriteString(f.inputs[slotSkillRating].View())
	b.WriteString("\n")
	b.WriteString(f.renderItems(st.Chips, f.skillSel, f.inSkills()))

	b.WriteString("\n")
	b.WriteString(HeaderStyle.Render("Education"))
	b.WriteString("\n")
	for _, slot := range []struct {
		idx   int
		label string
	}{{slotSchool, "School"}, {slotCourse, "Course"}, {slotYear, "Completed"}} {
		b.WriteString(f.label(slot.idx, slot.label))
		b.WriteString(f.inputs[slot.idx].View())
		b.WriteString("\n")
	}
	b.WriteString(f.renderItems(st.Rows, f.eduSel, f.inEducation()))

	if len(st.Violations) > 0 {
		b.WriteString("\n")
		for _, v := range st.Violations {
			b.WriteString(ErrorStyle.Render("• " + v))
			b.WriteString("\n")
		}
	}
	if st.Flash != "" {
		b.WriteString("\n")
		b.WriteString(WarningStyle.Render(st.Flash))
		b.WriteString("\n")
	}
	if st.Confirmation != "" {
		b.WriteString("\n")
		b.WriteString(SuccessStyle.Render(st.Confirmation))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("[tab] Next  [enter] Add  [ctrl+n/p] Select  [ctrl+x] Remove  [ctrl+s] Save  [esc] Cancel"))
	return b.String()
}

func (f *formScreen) label(slot int, text string) string {
	if slot == f.focus {
		return FocusedLabelStyle.Render(text + ":")
	}
	return LabelStyle.Render(text + ":")
}

func (f *formScreen) renderItems(items []string, sel int, active bool) string {
	if len(items) == 0 {
		return DimStyle.Render("  (none)") + "\n"
	}
	var b strings.Builder
	for i, item := range items {
		if active && i == sel {
			b.WriteString(SelectedStyle.Render("> " + item + "  ×"))
		} else {
			b.WriteString(NormalStyle.Render("  " + item))
		}
		b.WriteString("\n")
	}
	return b.String()
}

package form

import (
	"fmt"
	"strings"

	"github.com/gartstein/companydesk/internal/company/models"
)

// EducationEditor holds the education rows of one form session in insertion order.
type EducationEditor struct {
	entries []models.Education
}

func NewEducationEditor() *EducationEditor {
	return &EducationEditor{}
}

// Add appends a row. Every field is required and completedYear must be YYYY-MM.
func (ed *EducationEditor) Add(school, course, completedYear string) error {
	school = strings.TrimSpace(school)
	course = strings.TrimSpace(course)
	completedYear = strings.TrimSpace(completedYear)
	if school == "" || course == "" || completedYear == "" {
		return &InputError{Message: "Education: all fields are required."}
	}
	ym, err := models.ParseYearMonth(completedYear)
	if err != nil {
		return &InputError{Message: "Education: completed year must be YYYY-MM."}
	}
	ed.entries = append(ed.entries, models.Education{School: school, Course: course, CompletedYear: ym})
	return nil
}

// Remove drops the row at index and reports whether it existed.
func (ed *EducationEditor) Remove(index int) bool {
	if index < 0 || index >= len(ed.entries) {
		return false
	}
	ed.entries = append(ed.entries[:index], ed.entries[index+1:]...)
	return true
}

func (ed *EducationEditor) Load(rows []models.Education) {
	ed.entries = append([]models.Education(nil), rows...)
}

func (ed *EducationEditor) Entries() []models.Education {
	return append([]models.Education(nil), ed.entries...)
}

func (ed *EducationEditor) Len() int {
	return len(ed.entries)
}

// Rows renders each entry as "school - course - Mon YYYY".
func (ed *EducationEditor) Rows() []string {
	out := make([]string, 0, len(ed.entries))
	for _, row := range ed.entries {
		out = append(out, fmt.Sprintf("%s - %s - %s", row.School, row.Course, row.CompletedYear.Display()))
	}
	return out
}

func (ed *EducationEditor) Reset() {
	ed.entries = nil
}

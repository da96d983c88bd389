package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gartstein/companydesk/internal/company/models"
)

const (
	MinRating = 1
	MaxRating = 5
)

// SkillsEditor holds the skill chips of one form session, unique by name.
type SkillsEditor struct {
	catalog *models.Catalog
	entries []models.Skill
}

func NewSkillsEditor(catalog *models.Catalog) *SkillsEditor {
	return &SkillsEditor{catalog: catalog}
}

// Add validates name and ratingText and upserts the skill: an entry with the
// same name is removed before the new one is appended.
func (s *SkillsEditor) Add(name, ratingText string) error {
	name = strings.TrimSpace(name)
	if name == "" || !s.catalog.Contains(name) {
		return &InputError{Message: "Select a skill name."}
	}
	rating, err := strconv.Atoi(strings.TrimSpace(ratingText))
	if err != nil || rating < MinRating || rating > MaxRating {
		return &InputError{Message: "Enter rating 1–5."}
	}
	s.put(models.Skill{Name: name, Rating: rating})
	return nil
}

func (s *SkillsEditor) put(skill models.Skill) {
	s.Remove(skill.Name)
	s.entries = append(s.entries, skill)
}

// Remove drops the skill called name and reports whether it was present.
func (s *SkillsEditor) Remove(name string) bool {
	for i, sk := range s.entries {
		if sk.Name == name {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Load replaces the chips with stored skills. Names are not checked against
// the catalog so that an edit keeps skills dropped from it since.
func (s *SkillsEditor) Load(skills []models.Skill) {
	s.Reset()
	for _, sk := range skills {
		s.put(sk)
	}
}

// Filter returns the selectable catalog names matching query.
func (s *SkillsEditor) Filter(query string) []string {
	return s.catalog.Filter(query)
}

func (s *SkillsEditor) Entries() []models.Skill {
	return append([]models.Skill(nil), s.entries...)
}

func (s *SkillsEditor) Len() int {
	return len(s.entries)
}

// Chips renders each entry for display.
func (s *SkillsEditor) Chips() []string {
	out := make([]string, 0, len(s.entries))
	for _, sk := range s.entries {
		out = append(out, fmt.Sprintf("%s - Rating: %d", sk.Name, sk.Rating))
	}
	return out
}

func (s *SkillsEditor) Reset() {
	s.entries = nil
}

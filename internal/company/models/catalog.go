package models

import "strings"

// DefaultSkillCatalog is used when no catalog is configured.
var DefaultSkillCatalog = []string{
	"Go", "Java", "Python", "JavaScript", "TypeScript", "C#", "C++", "Rust",
	"Kotlin", "Swift", "SQL", "HTML", "CSS", "React", "Angular", "Vue",
	"Node.js", "Docker", "Kubernetes", "AWS", "Azure", "GCP", "Linux", "Git",
}

// Catalog is the fixed, ordered list of selectable skill names.
type Catalog struct {
	names []string
	index map[string]struct{}
}

// NewCatalog builds a catalog from names, dropping blanks and duplicates.
// An empty list falls back to DefaultSkillCatalog.
func NewCatalog(names []string) *Catalog {
	if len(names) == 0 {
		names = DefaultSkillCatalog
	}
	c := &Catalog{index: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := c.index[n]; ok {
			continue
		}
		c.index[n] = struct{}{}
		c.names = append(c.names, n)
	}
	return c
}

// Contains reports whether name is selectable.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Names returns a copy of the catalog in order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Filter returns the names containing query, case-insensitively.
// An empty query returns the full catalog.
func (c *Catalog) Filter(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.Names()
	}
	out := make([]string, 0, len(c.names))
	for _, n := range c.names {
		if strings.Contains(strings.ToLower(n), q) {
			out = append(out, n)
		}
	}
	return out
}

// Package models defines the core domain models for the company record entity.
// It includes definitions for Record, its Skill and Education sub-entities,
// the YearMonth value and the selectable skill catalog.
package models

import (
	"strings"
	"time"
)

const (
	// DateLayout is the layout of Record.JoinDate.
	DateLayout = "2006-01-02"
	// YearMonthLayout is the layout of Education.CompletedYear.
	YearMonthLayout = "2006-01"
	// CreatedAtLayout is the layout of Record.CreatedAt.
	CreatedAtLayout = time.RFC3339
)

// Record pairs one company with one employee.
type Record struct {
	// ID is the opaque unique identifier, assigned at creation.
	ID string `json:"id"`
	// CompanyName is the company's name.
	CompanyName string `json:"companyName"`
	// CompanyAddress is the company's postal address.
	CompanyAddress string `json:"companyAddress"`
	// CompanyEmail is the company's contact email.
	CompanyEmail string `json:"companyEmail"`
	// CompanyPhone is the company's contact phone number.
	CompanyPhone string `json:"companyPhone"`
	// EmployeeName is the employee's full name.
	EmployeeName string `json:"employeeName"`
	// Designation is the employee's job title.
	Designation string `json:"designation"`
	// JoinDate is the day the employee joined, formatted with DateLayout.
	JoinDate string `json:"joinDate"`
	// EmpEmail is the employee's email.
	EmpEmail string `json:"empEmail"`
	// EmpPhone is the employee's phone number.
	EmpPhone string `json:"empPhone"`
	// Skills lists the employee's rated skills, unique by name.
	Skills []Skill `json:"skills"`
	// Education lists the employee's completed courses.
	Education []Education `json:"education"`
	// CreatedAt is set once when the record is created and never rewritten.
	CreatedAt string `json:"createdAt"`
}

// Skill is a named skill with a 1..5 rating.
type Skill struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

// Education is one completed course.
type Education struct {
	School        string    `json:"school"`
	Course        string    `json:"course"`
	CompletedYear YearMonth `json:"completedYear"`
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	if r.Skills != nil {
		out.Skills = append([]Skill(nil), r.Skills...)
	}
	if r.Education != nil {
		out.Education = append([]Education(nil), r.Education...)
	}
	return out
}

// YearMonth is a "YYYY-MM" value.
type YearMonth string

// ParseYearMonth validates s and returns it as a YearMonth.
func ParseYearMonth(s string) (YearMonth, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(YearMonthLayout, s); err != nil {
		return "", err
	}
	return YearMonth(s), nil
}

// Time returns the first day of the month in UTC.
func (y YearMonth) Time() (time.Time, error) {
	return time.Parse(YearMonthLayout, string(y))
}

// Display renders the value as an abbreviated month and full year, e.g. "Mar 2021".
// An empty value renders as "", an unparseable one verbatim.
func (y YearMonth) Display() string {
	if y == "" {
		return ""
	}
	t, err := y.Time()
	if err != nil {
		return string(y)
	}
	return t.Format("Jan 2006")
}

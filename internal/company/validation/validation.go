// Package validation checks a candidate record and reports every violation
// in a fixed, user-facing order.
package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	e "github.com/gartstein/companydesk/internal/company/errors"
	"github.com/gartstein/companydesk/internal/company/models"
)

// Violations is the ordered list of messages for one candidate.
type Violations []string

// Err returns nil for no violations, otherwise a *errors.ValidationError.
func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}
	return &e.ValidationError{Violations: append([]string(nil), v...)}
}

type field struct {
	label string
	value func(*models.Record) string
	max   int
}

var (
	companyName  = field{"Company Name", func(r *models.Record) string { return r.CompanyName }, 50}
	companyEmail = field{"Company Email", func(r *models.Record) string { return r.CompanyEmail }, 100}
	companyPhone = field{"Company Phone", func(r *models.Record) string { return r.CompanyPhone }, 15}
	employeeName = field{"Employee Name", func(r *models.Record) string { return r.EmployeeName }, 25}
	joinDate     = field{"Join Date", func(r *models.Record) string { return r.JoinDate }, 0}
	empEmail     = field{"Employee Email", func(r *models.Record) string { return r.EmpEmail }, 100}
	empPhone     = field{"Employee Phone", func(r *models.Record) string { return r.EmpPhone }, 15}

	required = []field{companyName, companyEmail, companyPhone, employeeName, joinDate, empEmail, empPhone}
	bounded  = []field{companyName, companyEmail, companyPhone, employeeName, empEmail, empPhone}
)

// Validator is side-effect free; now supplies "today" for the join date check.
type Validator struct {
	now func() time.Time
}

func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// Validate returns every violation of r. An empty result means r is acceptable.
func (v *Validator) Validate(r *models.Record) Violations {
	out := Violations{}

	for _, f := range required {
		if strings.TrimSpace(f.value(r)) == "" {
			out = append(out, fmt.Sprintf("%s is required.", f.label))
		}
	}
	for _, f := range bounded {
		if utf8.RuneCountInString(strings.TrimSpace(f.value(r))) > f.max {
			out = append(out, fmt.Sprintf("%s max length %d", f.label, f.max))
		}
	}

	if jd := strings.TrimSpace(r.JoinDate); jd != "" {
		if msg := v.checkJoinDate(jd); msg != "" {
			out = append(out, msg)
		}
	}

	if len(r.Skills) == 0 {
		out = append(out, "Add at least one skill.")
	}
	if len(r.Education) == 0 {
		out = append(out, "Add at least one education entry.")
	}
	return out
}

// checkJoinDate compares calendar days in the clock's location.
func (v *Validator) checkJoinDate(value string) string {
	now := v.now()
	day, err := time.ParseInLocation(models.DateLayout, value, now.Location())
	if err != nil {
		return "Join Date must be a valid date."
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if day.After(today) {
		return "Join Date must be a past date."
	}
	return ""
}

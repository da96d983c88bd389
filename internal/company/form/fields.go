package form

import (
	"fmt"
	"strings"

	e "github.com/gartstein/companydesk/internal/company/errors"
	"github.com/gartstein/companydesk/internal/company/models"
)

// Field names accepted by Session.SetField. They match the record's JSON names.
const (
	FieldCompanyName    = "companyName"
	FieldCompanyAddress = "companyAddress"
	FieldCompanyEmail   = "companyEmail"
	FieldCompanyPhone   = "companyPhone"
	FieldEmployeeName   = "employeeName"
	FieldDesignation    = "designation"
	FieldJoinDate       = "joinDate"
	FieldEmpEmail       = "empEmail"
	FieldEmpPhone       = "empPhone"
)

// FieldOrder is the display order of the editable fields.
var FieldOrder = []string{
	FieldCompanyName, FieldCompanyAddress, FieldCompanyEmail, FieldCompanyPhone,
	FieldEmployeeName, FieldDesignation, FieldJoinDate, FieldEmpEmail, FieldEmpPhone,
}

// Fields holds the raw text of every editable scalar field.
type Fields struct {
	CompanyName    string
	CompanyAddress string
	CompanyEmail   string
	CompanyPhone   string
	EmployeeName   string
	Designation    string
	JoinDate       string
	EmpEmail       string
	EmpPhone       string
}

func (f *Fields) ptr(name string) (*string, error) {
	switch name {
	case FieldCompanyName:
		return &f.CompanyName, nil
	case FieldCompanyAddress:
		return &f.CompanyAddress, nil
	case FieldCompanyEmail:
		return &f.CompanyEmail, nil
	case FieldCompanyPhone:
		return &f.CompanyPhone, nil
	case FieldEmployeeName:
		return &f.EmployeeName, nil
	case FieldDesignation:
		return &f.Designation, nil
	case FieldJoinDate:
		return &f.JoinDate, nil
	case FieldEmpEmail:
		return &f.EmpEmail, nil
	case FieldEmpPhone:
		return &f.EmpPhone, nil
	default:
		return nil, fmt.Errorf("%w: unknown field %q", e.ErrInvalidInput, name)
	}
}

// Get returns the value of the named field, or "" for an unknown name.
func (f Fields) Get(name string) string {
	p, err := f.ptr(name)
	if err != nil {
		return ""
	}
	return *p
}

func fieldsFrom(r *models.Record) Fields {
	return Fields{
		CompanyName:    r.CompanyName,
		CompanyAddress: r.CompanyAddress,
		CompanyEmail:   r.CompanyEmail,
		CompanyPhone:   r.CompanyPhone,
		EmployeeName:   r.EmployeeName,
		Designation:    r.Designation,
		JoinDate:       r.JoinDate,
		EmpEmail:       r.EmpEmail,
		EmpPhone:       r.EmpPhone,
	}
}

// apply copies the fields into r, trimmed. Designation is kept verbatim.
func (f Fields) apply(r *models.Record) {
	r.CompanyName = strings.TrimSpace(f.CompanyName)
	r.CompanyAddress = strings.TrimSpace(f.CompanyAddress)
	r.CompanyEmail = strings.TrimSpace(f.CompanyEmail)
	r.CompanyPhone = strings.TrimSpace(f.CompanyPhone)
	r.EmployeeName = strings.TrimSpace(f.EmployeeName)
	r.Designation = f.Designation
	r.JoinDate = strings.TrimSpace(f.JoinDate)
	r.EmpEmail = strings.TrimSpace(f.EmpEmail)
	r.EmpPhone = strings.TrimSpace(f.EmpPhone)
}

// InputError is a malformed sub-entry. Its message is shown to the user as is.
type InputError struct {
	Message string
}

func (i *InputError) Error() string {
	return i.Message
}

func (i *InputError) Unwrap() error {
	return e.ErrInvalidInput
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	e "github.com/gartstein/companydesk/internal/company/errors"
	"github.com/gartstein/companydesk/internal/company/models"
	"go.uber.org/zap"
)

// recordPayload is the writable part of a record as clients send it.
type recordPayload struct {
	CompanyName    string             `json:"companyName"`
	CompanyAddress string             `json:"companyAddress"`
	CompanyEmail   string             `json:"companyEmail"`
	CompanyPhone   string             `json:"companyPhone"`
	EmployeeName   string             `json:"employeeName"`
	Designation    string             `json:"designation"`
	JoinDate       string             `json:"joinDate"`
	EmpEmail       string             `json:"empEmail"`
	EmpPhone       string             `json:"empPhone"`
	Skills         []models.Skill     `json:"skills"`
	Education      []models.Education `json:"education"`
}

type recordsResponse struct {
	Records []models.Record `json:"records"`
}

type catalogResponse struct {
	Skills []string `json:"skills"`
}

type errorResponse struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
}

// payloadToModel converts a decoded payload into a record candidate.
func payloadToModel(p *recordPayload) (models.Record, error) {
	if p == nil {
		return models.Record{}, errors.New("nil record data")
	}
	for _, s := range p.Skills {
		if s.Rating < 1 || s.Rating > 5 {
			return models.Record{}, fmt.Errorf("%w: skill %q rating must be 1-5", e.ErrInvalidInput, s.Name)
		}
	}
	for _, ed := range p.Education {
		if _, err := models.ParseYearMonth(string(ed.CompletedYear)); err != nil {
			return models.Record{}, fmt.Errorf("%w: completed year must be YYYY-MM", e.ErrInvalidInput)
		}
	}
	return models.Record{
		CompanyName:    p.CompanyName,
		CompanyAddress: p.CompanyAddress,
		CompanyEmail:   p.CompanyEmail,
		CompanyPhone:   p.CompanyPhone,
		EmployeeName:   p.EmployeeName,
		Designation:    p.Designation,
		JoinDate:       p.JoinDate,
		EmpEmail:       p.EmpEmail,
		EmpPhone:       p.EmpPhone,
		Skills:         p.Skills,
		Education:      p.Education,
	}, nil
}

// modelToResponse renders absent sub-entity lists as empty arrays.
func modelToResponse(r models.Record) models.Record {
	out := r.Clone()
	if out.Skills == nil {
		out.Skills = []models.Skill{}
	}
	if out.Education == nil {
		out.Education = []models.Education{}
	}
	return out
}

func decodePayload(r *http.Request) (models.Record, error) {
	var p recordPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return models.Record{}, fmt.Errorf("%w: malformed JSON body", e.ErrInvalidInput)
	}
	return payloadToModel(&p)
}

func (h *RecordHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// mapServiceError maps domain or repository errors to HTTP statuses.
func (h *RecordHandler) mapServiceError(w http.ResponseWriter, err error) {
	var verr *e.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: e.ErrInvalidInput.Error(), Violations: verr.Violations})
	case errors.Is(err, e.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, e.ErrInvalidInput):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, e.ErrNotConfirmed):
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gartstein/companydesk/internal/company/auth"
	e "github.com/gartstein/companydesk/internal/company/errors"
	"github.com/gartstein/companydesk/internal/company/models"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RecordController defines the business logic the HTTP handlers invoke.
type RecordController interface {
	CreateRecord(ctx context.Context, input models.Record) (*models.Record, error)
	GetRecord(ctx context.Context, id string) (*models.Record, error)
	UpdateRecord(ctx context.Context, id string, input models.Record) (*models.Record, error)
	DeleteRecord(ctx context.Context, id string) error
	SearchRecords(ctx context.Context, query string) ([]models.Record, error)
}

// RecordHandler maps HTTP requests to a RecordController.
type RecordHandler struct {
	service RecordController
	catalog *models.Catalog
	logger  *zap.Logger
}

func NewRecordHandler(service RecordController, catalog *models.Catalog, logger *zap.Logger) *RecordHandler {
	if catalog == nil {
		catalog = models.NewCatalog(nil)
	}
	return &RecordHandler{
		service: service,
		catalog: catalog,
		logger:  logger.Named("http_handler"),
	}
}

// NewRouter builds the API routes with request ids, real client IPs, request
// logging, panic recovery and bearer auth on mutations.
func NewRouter(h *RecordHandler, jwtSecret string, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return auth.HTTPMiddleware(next, jwtSecret)
	})

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/records", h.SearchRecords).Methods(http.MethodGet)
	v1.HandleFunc("/records", h.CreateRecord).Methods(http.MethodPost)
	v1.HandleFunc("/records/{id}", h.GetRecord).Methods(http.MethodGet)
	v1.HandleFunc("/records/{id}", h.UpdateRecord).Methods(http.MethodPut)
	v1.HandleFunc("/records/{id}", h.DeleteRecord).Methods(http.MethodDelete)
	v1.HandleFunc("/catalog/skills", h.SkillCatalog).Methods(http.MethodGet)
	return r
}

// LoggingMiddleware logs one line per request with its status and latency.
func LoggingMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote", r.RemoteAddr),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
			)
		})
	}
}

func (h *RecordHandler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SearchRecords lists records matching the q parameter; no q lists all.
func (h *RecordHandler) SearchRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.SearchRecords(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	out := make([]models.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, modelToResponse(rec))
	}
	h.writeJSON(w, http.StatusOK, recordsResponse{Records: out})
}

func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.GetRecord(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, modelToResponse(*record))
}

func (h *RecordHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	input, err := decodePayload(r)
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	created, err := h.service.CreateRecord(r.Context(), input)
	if err != nil {
		h.logger.Debug("Create record failed", zap.Error(err))
		h.mapServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, modelToResponse(*created))
}

func (h *RecordHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	input, err := decodePayload(r)
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	updated, err := h.service.UpdateRecord(r.Context(), mux.Vars(r)["id"], input)
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, modelToResponse(*updated))
}

// DeleteRecord requires confirm=true, the API form of the delete prompt.
func (h *RecordHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if !confirmed {
		h.mapServiceError(w, fmt.Errorf("delete %w", e.ErrNotConfirmed))
		return
	}
	if err := h.service.DeleteRecord(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.mapServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SkillCatalog returns catalog names containing q.
func (h *RecordHandler) SkillCatalog(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, catalogResponse{Skills: h.catalog.Filter(r.URL.Query().Get("q"))})
}

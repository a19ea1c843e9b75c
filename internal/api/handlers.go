package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/abelzeko/petrodata/internal/entities"
	"github.com/abelzeko/petrodata/internal/report"
	"github.com/abelzeko/petrodata/internal/usecases"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler holds the HTTP handlers for the report API.
type Handler struct {
	useCase *usecases.ReportUseCase
}

// NewHandler creates a new Handler.
func NewHandler(useCase *usecases.ReportUseCase) *Handler {
	return &Handler{useCase: useCase}
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// AuditRequest selects the period to audit.
type AuditRequest struct {
	Kind       string `json:"kind"`
	Date       string `json:"date"`
	Structured bool   `json:"structured"`
}

// AuditResponse carries the audit text, or the structured analysis when requested.
type AuditResponse struct {
	Result          string   `json:"result"`
	AuditFlags      []string `json:"auditFlags,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListReports returns every report in storage order.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports := h.useCase.List(r.Context())
	if reports == nil {
		reports = []entities.DailyReport{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// SubmitReport creates or overwrites a report.
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var in usecases.SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	saved, err := h.useCase.Submit(r.Context(), in)
	if err != nil {
		var verr *usecases.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message, nil)
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to submit report")
		writeError(w, http.StatusInternalServerError, "Failed to save report", err)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// DeleteReport removes a report by ID. Unknown IDs still succeed.
func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.useCase.Delete(r.Context(), id); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to delete report")
		writeError(w, http.StatusInternalServerError, "Failed to delete report", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PeriodReport returns the filtered reports and aggregates for ?kind=&date=.
func (h *Handler) PeriodReport(w http.ResponseWriter, r *http.Request) {
	kind, anchor, err := periodParams(r.URL.Query().Get("kind"), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	writeJSON(w, http.StatusOK, h.useCase.Report(r.Context(), kind, anchor))
}

// GetDashboard returns the all-time overview.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.useCase.Dashboard(r.Context()))
}

// Export downloads the whole store as CSV.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	name, content := h.useCase.Export(r.Context())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

// Audit runs the AI audit for a period. Service problems come back as text
// with status 200.
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	var req AuditRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	kind, anchor, err := periodParams(req.Kind, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	if req.Structured {
		analysis := h.useCase.AuditAnalysis(r.Context(), kind, anchor)
		writeJSON(w, http.StatusOK, AuditResponse{
			Result:          analysis.Summary,
			AuditFlags:      analysis.AuditFlags,
			Recommendations: analysis.Recommendations,
		})
		return
	}
	writeJSON(w, http.StatusOK, AuditResponse{Result: h.useCase.Audit(r.Context(), kind, anchor)})
}

// periodParams parses the period kind and optional anchor date. An empty kind
// means all-time and an empty date means today.
func periodParams(kind, date string) (report.PeriodKind, entities.Date, error) {
	k := report.ParsePeriodKind(kind)
	if date == "" {
		return k, entities.Date{}, nil
	}
	anchor, err := entities.ParseDate(date)
	if err != nil {
		return k, entities.Date{}, err
	}
	return k, anchor, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

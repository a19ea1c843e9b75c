package api

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/abelzeko/petrodata/internal/entities"
	"github.com/abelzeko/petrodata/internal/report"
	"github.com/abelzeko/petrodata/internal/usecases"
	"github.com/rs/zerolog"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"qty": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}).ParseFS(templateFS, "templates/dashboard.html"))

type dashboardPage struct {
	Dashboard usecases.Dashboard
	Period    report.PeriodReport
	Kinds     []report.PeriodKind
	Weather   []entities.WeatherCondition
	Today     string
	Notice    string
	Audit     string
}

// DashboardPage renders the HTML overview. ?kind= and ?date= select the period
// section, which defaults to the current month.
func (h *Handler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	h.renderDashboard(w, r, http.StatusOK, dashboardPage{Notice: r.URL.Query().Get("notice")})
}

// AuditForm runs the AI audit for the period posted by the dashboard and shows
// the result on the page.
func (h *Handler) AuditForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderDashboard(w, r, http.StatusBadRequest, dashboardPage{Notice: "Invalid form submission."})
		return
	}
	kind, anchor := pagePeriod(r)
	h.renderDashboard(w, r, http.StatusOK, dashboardPage{Audit: h.useCase.Audit(r.Context(), kind, anchor)})
}

// SubmitForm handles the HTML entry form. Validation problems are shown as a
// notice on the page and nothing is stored.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderDashboard(w, r, http.StatusBadRequest, dashboardPage{Notice: "Invalid form submission."})
		return
	}

	in, err := submitInputFromForm(r.PostForm)
	if err != nil {
		h.renderDashboard(w, r, http.StatusUnprocessableEntity, dashboardPage{Notice: "Quantities must be numbers."})
		return
	}

	if _, err := h.useCase.Submit(r.Context(), in); err != nil {
		var verr *usecases.ValidationError
		if errors.As(err, &verr) {
			h.renderDashboard(w, r, http.StatusUnprocessableEntity, dashboardPage{Notice: verr.Message})
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to submit report")
		h.renderDashboard(w, r, http.StatusInternalServerError, dashboardPage{Notice: "Failed to save report."})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// pagePeriod reads kind and date from the query or posted form. The period
// defaults to the month containing today.
func pagePeriod(r *http.Request) (report.PeriodKind, entities.Date) {
	kind := report.PeriodMonth
	if k := r.FormValue("kind"); k != "" {
		kind = report.ParsePeriodKind(k)
	}
	anchor, err := entities.ParseDate(r.FormValue("date"))
	if err != nil {
		anchor = entities.Date{}
	}
	return kind, anchor
}

func (h *Handler) renderDashboard(w http.ResponseWriter, r *http.Request, status int, page dashboardPage) {
	kind, anchor := pagePeriod(r)

	page.Dashboard = h.useCase.Dashboard(r.Context())
	page.Period = h.useCase.Report(r.Context(), kind, anchor)
	page.Kinds = []report.PeriodKind{report.PeriodDay, report.PeriodWeek, report.PeriodMonth, report.PeriodAll}
	page.Weather = entities.WeatherConditions
	page.Today = h.useCase.Today().String()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := dashboardTemplate.Execute(w, page); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to render dashboard")
	}
}

func submitInputFromForm(form url.Values) (usecases.SubmitInput, error) {
	in := usecases.SubmitInput{
		Date:             form.Get("date"),
		FieldName:        form.Get("fieldName"),
		WellID:           form.Get("wellId"),
		WeatherCondition: form.Get("weatherCondition"),
		Notes:            form.Get("notes"),
	}

	var err error
	if in.OilProducedBbl, err = formFloat(form, "oilProducedBbl"); err != nil {
		return in, err
	}
	if in.GasProducedMcf, err = formFloat(form, "gasProducedMcf"); err != nil {
		return in, err
	}
	if in.WaterProducedBbl, err = formFloat(form, "waterProducedBbl"); err != nil {
		return in, err
	}
	in.EmployeesAffected, err = formInt(form, "employeesAffected")
	return in, err
}

func formFloat(form url.Values, key string) (float64, error) {
	v := strings.TrimSpace(form.Get(key))
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

func formInt(form url.Values, key string) (int, error) {
	v := strings.TrimSpace(form.Get(key))
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// Package usecases contains the application's business logic
package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abelzeko/petrodata/internal/audit"
	"github.com/abelzeko/petrodata/internal/entities"
	"github.com/abelzeko/petrodata/internal/export"
	"github.com/abelzeko/petrodata/internal/report"
	"github.com/abelzeko/petrodata/internal/repository"
	"github.com/abelzeko/petrodata/internal/seed"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// RecentLimit is the number of reports shown as recent field activity.
const RecentLimit = 5

// Safety status shown next to the all-time incident count.
const (
	SafetyGoalMet        = "Safety Goal Met"
	SafetyNeedsAttention = "Requires Attention"
)

// Auditor produces the natural-language audit of a set of reports.
// *audit.Requestor is the production implementation.
type Auditor interface {
	RequestAudit(ctx context.Context, reports []entities.DailyReport) string
	RequestAnalysis(ctx context.Context, reports []entities.DailyReport) audit.Analysis
}

// ValidationError is returned by Submit when the input cannot be stored.
// Message is safe to show to the user.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

// SubmitInput is a report as entered by an operator.
type SubmitInput struct {
	Date              string  `json:"date"`
	FieldName         string  `json:"fieldName"`
	WellID            string  `json:"wellId"`
	OilProducedBbl    float64 `json:"oilProducedBbl"`
	GasProducedMcf    float64 `json:"gasProducedMcf"`
	WaterProducedBbl  float64 `json:"waterProducedBbl"`
	EmployeesAffected int     `json:"employeesAffected"`
	WeatherCondition  string  `json:"weatherCondition"`
	Notes             string  `json:"notes"`
}

// Dashboard is the operational overview over the whole store.
type Dashboard struct {
	TotalOil               float64                `json:"totalOilBbl"`
	ActiveWellCount        int                    `json:"activeWells"`
	TotalEmployeesAffected int                    `json:"totalEmployeesAffected"`
	SafetyStatus           string                 `json:"safetyStatus"`
	CurrentWeather         string                 `json:"currentWeather"`
	Recent                 []entities.DailyReport `json:"recent"`
	Records                int                    `json:"records"`
}

// ReportUseCase handles business logic related to daily well reports
type ReportUseCase struct {
	repo    repository.ReportRepository
	auditor Auditor
	clock   clockwork.Clock
}

// NewReportUseCase creates a new report use case. A nil clock uses the real clock.
func NewReportUseCase(repo repository.ReportRepository, auditor Auditor, clock clockwork.Clock) *ReportUseCase {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ReportUseCase{
		repo:    repo,
		auditor: auditor,
		clock:   clock,
	}
}

// Today is the current calendar day.
func (uc *ReportUseCase) Today() entities.Date {
	return entities.DateOf(uc.clock.Now())
}

// Submit validates the input, derives its ID and upserts it.
func (uc *ReportUseCase) Submit(ctx context.Context, in SubmitInput) (entities.DailyReport, error) {
	if strings.TrimSpace(in.Date) == "" || strings.TrimSpace(in.FieldName) == "" || strings.TrimSpace(in.WellID) == "" {
		return entities.DailyReport{}, &ValidationError{Message: entities.ErrMissingIdentity.Error(), Err: entities.ErrMissingIdentity}
	}

	date, err := entities.ParseDate(in.Date)
	if err != nil {
		return entities.DailyReport{}, &ValidationError{Message: fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD.", in.Date), Err: err}
	}

	weather := entities.WeatherSunny
	if strings.TrimSpace(in.WeatherCondition) != "" {
		weather, err = entities.ParseWeatherCondition(in.WeatherCondition)
		if err != nil {
			return entities.DailyReport{}, &ValidationError{Message: fmt.Sprintf("Unknown weather condition %q.", in.WeatherCondition), Err: err}
		}
	}

	fieldName := strings.TrimSpace(in.FieldName)
	wellID := strings.TrimSpace(in.WellID)
	r := entities.DailyReport{
		ID:                entities.ReportID(fieldName, wellID, date),
		Date:              date,
		FieldName:         fieldName,
		WellID:            wellID,
		OilProducedBbl:    in.OilProducedBbl,
		GasProducedMcf:    in.GasProducedMcf,
		WaterProducedBbl:  in.WaterProducedBbl,
		EmployeesAffected: in.EmployeesAffected,
		WeatherCondition:  weather,
		Notes:             in.Notes,
		Timestamp:         uc.clock.Now().UnixMilli(),
	}
	if err := r.Validate(); err != nil {
		msg := "Quantities must not be negative."
		if !errors.Is(err, entities.ErrNegativeQuantity) {
			msg = err.Error()
		}
		return entities.DailyReport{}, &ValidationError{Message: msg, Err: err}
	}

	if err := uc.repo.Upsert(ctx, r); err != nil {
		return entities.DailyReport{}, fmt.Errorf("failed to save report %s: %w", r.ID, err)
	}
	log.Info().Str("id", r.ID).Msg("Report saved")
	return r, nil
}

// List returns every stored report in storage order.
func (uc *ReportUseCase) List(ctx context.Context) []entities.DailyReport {
	return uc.repo.List(ctx)
}

// Delete removes the report with id. Unknown IDs are not an error.
func (uc *ReportUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete report %s: %w", id, err)
	}
	log.Info().Str("id", id).Msg("Report deleted")
	return nil
}

// Recent returns up to n reports, most recently submitted first.
func (uc *ReportUseCase) Recent(ctx context.Context, n int) []entities.DailyReport {
	return report.Recent(uc.repo.List(ctx), n)
}

// SeedIfEmpty fills an empty store with 60 days of synthetic history.
func (uc *ReportUseCase) SeedIfEmpty(ctx context.Context) (bool, error) {
	seeded, err := repository.SeedIfEmpty(ctx, uc.repo, seed.NewGenerator(uc.clock).Generate)
	if err != nil {
		return false, fmt.Errorf("failed to seed report store: %w", err)
	}
	if seeded {
		log.Info().Msg("Seeded empty report store with synthetic history")
	}
	return seeded, nil
}

// Report builds the period report for kind at anchor. A zero anchor means today.
func (uc *ReportUseCase) Report(ctx context.Context, kind report.PeriodKind, anchor entities.Date) report.PeriodReport {
	if anchor.IsZero() {
		anchor = uc.Today()
	}
	return report.Build(uc.repo.List(ctx), kind, anchor)
}

// Dashboard computes the all-time overview.
func (uc *ReportUseCase) Dashboard(ctx context.Context) Dashboard {
	reports := uc.repo.List(ctx)
	recent := report.Recent(reports, RecentLimit)

	d := Dashboard{
		TotalOil:               report.TotalOil(reports),
		ActiveWellCount:        report.ActiveWellCount(reports),
		TotalEmployeesAffected: report.TotalEmployeesAffected(reports),
		SafetyStatus:           SafetyGoalMet,
		CurrentWeather:         report.NotApplicable,
		Recent:                 recent,
		Records:                len(reports),
	}
	if d.TotalEmployeesAffected > 0 {
		d.SafetyStatus = SafetyNeedsAttention
	}
	if len(recent) > 0 {
		d.CurrentWeather = string(recent[0].WeatherCondition)
	}
	return d
}

// Export encodes the whole store as CSV and returns it with its download name.
func (uc *ReportUseCase) Export(ctx context.Context) (name, content string) {
	return export.FileName(uc.clock.Now()), export.EncodeCSV(uc.repo.List(ctx))
}

// ExportToDir writes the CSV export into dir and returns the file path.
func (uc *ReportUseCase) ExportToDir(ctx context.Context, dir string) (string, error) {
	reports := uc.repo.List(ctx)
	path, err := export.WriteFile(dir, uc.clock.Now(), reports)
	if err != nil {
		return "", err
	}
	log.Info().Msgf("Exported %d reports to %s", len(reports), path)
	return path, nil
}

// Audit returns the AI audit text for the reports in the period. It never fails;
// problems come back as advisory text.
func (uc *ReportUseCase) Audit(ctx context.Context, kind report.PeriodKind, anchor entities.Date) string {
	pr := uc.Report(ctx, kind, anchor)
	log.Info().Msgf("Requesting audit of %d reports (%s, %s)", len(pr.Reports), pr.Kind, pr.Anchor)
	if uc.auditor == nil {
		return audit.MsgMissingKey
	}
	return uc.auditor.RequestAudit(ctx, pr.Reports)
}

// AuditAnalysis is Audit in structured form.
func (uc *ReportUseCase) AuditAnalysis(ctx context.Context, kind report.PeriodKind, anchor entities.Date) audit.Analysis {
	pr := uc.Report(ctx, kind, anchor)
	if uc.auditor == nil {
		return audit.Analysis{Summary: audit.MsgMissingKey}
	}
	return uc.auditor.RequestAnalysis(ctx, pr.Reports)
}

// FormatReport formats a period report for chat and terminal display
func (uc *ReportUseCase) FormatReport(pr report.PeriodReport) string {
	var result strings.Builder

	if pr.Kind == report.PeriodAll {
		result.WriteString("All-time Report\n\n")
	} else {
		result.WriteString(fmt.Sprintf("%s Report: %s to %s\n\n", pr.Kind.Label(), pr.From, pr.To))
	}

	s := pr.Summary
	result.WriteString(fmt.Sprintf("🛢️ Total Oil: %s BBL\n", formatQuantity(s.TotalOil)))
	result.WriteString(fmt.Sprintf("🔥 Total Gas: %s MCF\n", formatQuantity(s.TotalGas)))
	result.WriteString(fmt.Sprintf("💧 Total Water: %s BBL\n", formatQuantity(s.TotalWater)))
	result.WriteString(fmt.Sprintf("⚠️ Employees Affected: %d\n", s.TotalEmployeesAffected))
	result.WriteString(fmt.Sprintf("📍 Active Wells: %d\n", s.ActiveWellCount))
	result.WriteString(fmt.Sprintf("🌤️ Dominant Weather: %s\n", s.DominantWeather))
	result.WriteString(fmt.Sprintf("📄 Records: %d", s.Records))

	return result.String()
}

// FormatReports lists reports one per line.
func (uc *ReportUseCase) FormatReports(reports []entities.DailyReport) string {
	if len(reports) == 0 {
		return "No reports available."
	}

	var result strings.Builder
	for i, r := range reports {
		if i > 0 {
			result.WriteString("\n")
		}
		result.WriteString(fmt.Sprintf("%s %s/%s: %s BBL, %d affected, %s",
			r.Date, r.FieldName, r.WellID, formatQuantity(r.OilProducedBbl), r.EmployeesAffected, r.WeatherCondition))
	}
	return result.String()
}

func formatQuantity(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

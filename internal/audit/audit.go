// Package audit turns a set of reports into a natural-language audit using an
// external text-generation service. Failures never reach the caller: every
// path ends in a text result.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abelzeko/petrodata/internal/entities"
	"github.com/abelzeko/petrodata/internal/observability"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Fixed advisory strings returned instead of errors.
const (
	MsgMissingKey = "AI Service Unavailable: Missing API Key."
	MsgFailed     = "Failed to generate AI audit report. Please try again later."
	MsgNoAnalysis = "No analysis generated."
)

// DefaultTimeout bounds a single call to the generation service.
const DefaultTimeout = 60 * time.Second

// ErrServiceUnavailable is wrapped by generators for any failure to obtain text.
var ErrServiceUnavailable = errors.New("text generation service unavailable")

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Analysis is the structured form of an audit.
type Analysis struct {
	Summary         string   `json:"summary" jsonschema_description:"Markdown audit covering production, safety, weather impact and a conclusion"`
	AuditFlags      []string `json:"auditFlags" jsonschema_description:"Specific dates, wells or figures that need attention"`
	Recommendations []string `json:"recommendations" jsonschema_description:"Concrete operational recommendations"`
}

// StructuredGenerator is implemented by generators able to return an Analysis directly.
type StructuredGenerator interface {
	Analyze(ctx context.Context, prompt string) (*Analysis, error)
}

// Requestor formats report subsets into prompts and calls the generator.
type Requestor struct {
	generator Generator
	timeout   time.Duration
	metrics   *observability.Metrics
	// inflight collapses identical concurrent requests into one service call.
	inflight singleflight.Group
}

// Option configures a Requestor.
type Option func(*Requestor)

// WithTimeout sets the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Requestor) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithMetrics records request outcomes and latency.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Requestor) { r.metrics = m }
}

// NewRequestor creates a requestor. A nil generator means no credentials are
// configured; every request then returns MsgMissingKey.
func NewRequestor(generator Generator, opts ...Option) *Requestor {
	r := &Requestor{generator: generator, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RequestAudit returns the generated audit for reports, or one of the fixed
// advisory strings. Identical output for identical input is not guaranteed.
func (r *Requestor) RequestAudit(ctx context.Context, reports []entities.DailyReport) string {
	if r.generator == nil {
		log.Error().Msg("AI audit requested but API key is missing")
		r.observe("unavailable")
		return MsgMissingKey
	}

	prompt, err := BuildPrompt(reports)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build audit prompt")
		r.observe("failed")
		return MsgFailed
	}

	v, ok := r.share(ctx, "text:"+prompt, func(callCtx context.Context) any {
		return r.generate(callCtx, prompt)
	})
	if !ok {
		return MsgFailed
	}
	return v.(string)
}

// share runs call once for all concurrent requests with the same key. The call
// is bounded by the requestor timeout only, so one caller giving up does not
// fail the others; that caller alone gets ok == false.
func (r *Requestor) share(ctx context.Context, key string, call func(context.Context) any) (any, bool) {
	ch := r.inflight.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		start := time.Now()
		v := call(callCtx)
		if r.metrics != nil {
			r.metrics.AuditDuration.Observe(time.Since(start).Seconds())
		}
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			log.Debug().Msg("Audit request shared with an identical in-flight request")
		}
		return res.Val, true
	case <-ctx.Done():
		log.Warn().Err(ctx.Err()).Msg("Audit request abandoned by caller")
		r.observe("failed")
		return nil, false
	}
}

func (r *Requestor) generate(ctx context.Context, prompt string) string {
	text, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("Error generating AI audit")
		r.observe("failed")
		return MsgFailed
	}
	if text == "" {
		r.observe("empty")
		return MsgNoAnalysis
	}
	r.observe("success")
	return text
}

// RequestAnalysis returns a structured audit when the generator supports it.
// Otherwise, and on any failure, the text audit is returned as the summary.
func (r *Requestor) RequestAnalysis(ctx context.Context, reports []entities.DailyReport) Analysis {
	structured, ok := r.generator.(StructuredGenerator)
	if !ok {
		return Analysis{Summary: r.RequestAudit(ctx, reports)}
	}

	prompt, err := BuildPrompt(reports)
	if err != nil {
		r.observe("failed")
		return Analysis{Summary: MsgFailed}
	}

	v, ok := r.share(ctx, "analysis:"+prompt, func(callCtx context.Context) any {
		return r.analyze(callCtx, structured, prompt)
	})
	if !ok {
		return Analysis{Summary: MsgFailed}
	}
	return v.(Analysis)
}

func (r *Requestor) analyze(ctx context.Context, structured StructuredGenerator, prompt string) Analysis {
	analysis, err := structured.Analyze(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("Error generating structured AI audit")
		r.observe("failed")
		return Analysis{Summary: MsgFailed}
	}
	if analysis == nil || analysis.Summary == "" {
		r.observe("empty")
		return Analysis{Summary: MsgNoAnalysis}
	}
	r.observe("success")
	return *analysis
}

func (r *Requestor) observe(outcome string) {
	if r.metrics != nil {
		r.metrics.AuditRequests.WithLabelValues(outcome).Inc()
	}
}

// auditRow is the compact projection of a report sent to the service.
type auditRow struct {
	Date              string  `json:"date"`
	Field             string  `json:"field"`
	Well              string  `json:"well"`
	Oil               float64 `json:"oil"`
	EmployeesAffected int     `json:"employeesAffected"`
	Weather           string  `json:"weather"`
}

const promptTemplate = `
You are an AI Auditor for an Oil & Gas company.
Review the following operational data for the selected period and generate a formal Audit Report.

Data Provided (JSON):
%s

REQUIREMENTS:
1. **Oil Production**: Summarize total production. Identify trends (rising/falling).
2. **Safety Report**: Answer "How many employees were affected by an accident?". List specific dates and Wells if any accidents occurred.
3. **Weather Impact**: Answer "How was the weather?". Analyze if weather (e.g., Stormy, Windy) had any correlation with lower production or accidents.
4. **Conclusion**: Is the operation efficient and safe?

Keep the tone professional and factual. Use Markdown formatting.
`

// BuildPrompt embeds the compact projection of reports in the audit instructions.
func BuildPrompt(reports []entities.DailyReport) (string, error) {
	rows := make([]auditRow, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, auditRow{
			Date:              r.Date.String(),
			Field:             r.FieldName,
			Well:              r.WellID,
			Oil:               r.OilProducedBbl,
			EmployeesAffected: r.EmployeesAffected,
			Weather:           string(r.WeatherCondition),
		})
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("failed to encode audit data: %w", err)
	}
	return fmt.Sprintf(promptTemplate, data), nil
}

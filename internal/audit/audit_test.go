package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abelzeko/petrodata/internal/entities"
	"github.com/abelzeko/petrodata/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

type structuredGenerator struct {
	fakeGenerator
	analysis *Analysis
}

func (s *structuredGenerator) Analyze(_ context.Context, prompt string) (*Analysis, error) {
	s.prompts = append(s.prompts, prompt)
	return s.analysis, s.err
}

func sampleReports() []entities.DailyReport {
	d := entities.MustParseDate("2024-03-01")
	return []entities.DailyReport{{
		ID:                entities.ReportID("East Mesa", "W-1001", d),
		Date:              d,
		FieldName:         "East Mesa",
		WellID:            "W-1001",
		OilProducedBbl:    812,
		GasProducedMcf:    1200,
		EmployeesAffected: 1,
		WeatherCondition:  entities.WeatherStormy,
		Notes:             "not sent",
	}}
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(sampleReports())
	require.NoError(t, err)

	assert.Contains(t, prompt, "AI Auditor for an Oil & Gas company")
	assert.Contains(t, prompt, `{"date":"2024-03-01","field":"East Mesa","well":"W-1001","oil":812,"employeesAffected":1,"weather":"Stormy"}`)
	assert.NotContains(t, prompt, "not sent")
	assert.NotContains(t, prompt, "1200")

	empty, err := BuildPrompt(nil)
	require.NoError(t, err)
	assert.Contains(t, empty, "[]")
}

func TestBuildPrompt_ProjectionIsJSON(t *testing.T) {
	prompt, err := BuildPrompt(sampleReports())
	require.NoError(t, err)

	start := strings.Index(prompt, "[")
	end := strings.LastIndex(prompt, "]")
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(prompt[start:end+1]), &rows))
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 6)
}

func TestRequestAudit(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		m := observability.NewMetricsForTesting()
		r := NewRequestor(nil, WithMetrics(m))
		assert.Equal(t, MsgMissingKey, r.RequestAudit(ctx, sampleReports()))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditRequests.WithLabelValues("unavailable")))
	})

	t.Run("service failure", func(t *testing.T) {
		gen := &fakeGenerator{err: fmt.Errorf("%w: boom", ErrServiceUnavailable)}
		assert.Equal(t, MsgFailed, NewRequestor(gen).RequestAudit(ctx, sampleReports()))
	})

	t.Run("empty response", func(t *testing.T) {
		gen := &fakeGenerator{}
		assert.Equal(t, MsgNoAnalysis, NewRequestor(gen).RequestAudit(ctx, sampleReports()))
	})

	t.Run("success is verbatim", func(t *testing.T) {
		m := observability.NewMetricsForTesting()
		gen := &fakeGenerator{text: "## Audit\nAll good."}
		assert.Equal(t, "## Audit\nAll good.", NewRequestor(gen, WithMetrics(m)).RequestAudit(ctx, sampleReports()))
		require.Len(t, gen.prompts, 1)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditRequests.WithLabelValues("success")))
	})

	t.Run("zero reports still returns text", func(t *testing.T) {
		for _, gen := range []Generator{nil, &fakeGenerator{}, &fakeGenerator{text: "ok"}, &fakeGenerator{err: errors.New("x")}} {
			assert.NotEmpty(t, NewRequestor(gen).RequestAudit(ctx, nil))
		}
	})
}

type deadlineGenerator struct{}

func (deadlineGenerator) Generate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, ctx.Err())
}

func TestRequestAudit_Timeout(t *testing.T) {
	r := NewRequestor(deadlineGenerator{}, WithTimeout(20*time.Millisecond))
	assert.Equal(t, MsgFailed, r.RequestAudit(context.Background(), sampleReports()))
}

type blockingGenerator struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (b *blockingGenerator) Generate(_ context.Context, _ string) (string, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
	}
	<-b.release
	return "shared audit", nil
}

func TestRequestAudit_CollapsesDuplicates(t *testing.T) {
	gen := &blockingGenerator{started: make(chan struct{}), release: make(chan struct{})}
	r := NewRequestor(gen)

	var wg sync.WaitGroup
	results := make([]string, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = r.RequestAudit(context.Background(), sampleReports())
	}()
	<-gen.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1] = r.RequestAudit(context.Background(), sampleReports())
	}()
	time.Sleep(100 * time.Millisecond)
	close(gen.release)
	wg.Wait()

	assert.Equal(t, int32(1), gen.calls.Load())
	assert.Equal(t, []string{"shared audit", "shared audit"}, results)
}

func TestRequestAudit_CancelledCallerDoesNotFailOthers(t *testing.T) {
	gen := &blockingGenerator{started: make(chan struct{}), release: make(chan struct{})}
	r := NewRequestor(gen)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	var wg sync.WaitGroup
	results := make([]string, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = r.RequestAudit(firstCtx, sampleReports())
	}()
	<-gen.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1] = r.RequestAudit(context.Background(), sampleReports())
	}()
	time.Sleep(100 * time.Millisecond)

	cancelFirst()
	time.Sleep(50 * time.Millisecond)
	close(gen.release)
	wg.Wait()

	assert.Equal(t, int32(1), gen.calls.Load())
	assert.Equal(t, MsgFailed, results[0], "the caller that gave up gets the failure advisory")
	assert.Equal(t, "shared audit", results[1], "the other caller still gets the audit")
}

type blockingStructuredGenerator struct {
	blockingGenerator
}

func (b *blockingStructuredGenerator) Analyze(ctx context.Context, prompt string) (*Analysis, error) {
	text, err := b.Generate(ctx, prompt)
	return &Analysis{Summary: text, AuditFlags: []string{"W-1001"}}, err
}

func TestRequestAnalysis_CollapsesDuplicatesAndRecordsDuration(t *testing.T) {
	gen := &blockingStructuredGenerator{blockingGenerator{started: make(chan struct{}), release: make(chan struct{})}}
	m := observability.NewMetricsForTesting()
	r := NewRequestor(gen, WithMetrics(m))

	var wg sync.WaitGroup
	results := make([]Analysis, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = r.RequestAnalysis(context.Background(), sampleReports())
	}()
	<-gen.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1] = r.RequestAnalysis(context.Background(), sampleReports())
	}()
	time.Sleep(100 * time.Millisecond)
	close(gen.release)
	wg.Wait()

	assert.Equal(t, int32(1), gen.calls.Load())
	for _, a := range results {
		assert.Equal(t, "shared audit", a.Summary)
		assert.Equal(t, []string{"W-1001"}, a.AuditFlags)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditRequests.WithLabelValues("success")))

	var sample dto.Metric
	require.NoError(t, m.AuditDuration.Write(&sample))
	assert.Equal(t, uint64(1), sample.GetHistogram().GetSampleCount())
}

func TestRequestAnalysis(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to text audit", func(t *testing.T) {
		a := NewRequestor(&fakeGenerator{text: "plain"}).RequestAnalysis(ctx, sampleReports())
		assert.Equal(t, Analysis{Summary: "plain"}, a)
	})

	t.Run("missing key", func(t *testing.T) {
		a := NewRequestor(nil).RequestAnalysis(ctx, sampleReports())
		assert.Equal(t, MsgMissingKey, a.Summary)
	})

	t.Run("structured success", func(t *testing.T) {
		want := &Analysis{Summary: "ok", AuditFlags: []string{"W-1001 incident"}, Recommendations: []string{"Check pump"}}
		a := NewRequestor(&structuredGenerator{analysis: want}).RequestAnalysis(ctx, sampleReports())
		assert.Equal(t, *want, a)
	})

	t.Run("structured failure", func(t *testing.T) {
		gen := &structuredGenerator{fakeGenerator: fakeGenerator{err: ErrServiceUnavailable}}
		assert.Equal(t, MsgFailed, NewRequestor(gen).RequestAnalysis(ctx, sampleReports()).Summary)
	})

	t.Run("structured empty", func(t *testing.T) {
		gen := &structuredGenerator{analysis: &Analysis{}}
		assert.Equal(t, MsgNoAnalysis, NewRequestor(gen).RequestAnalysis(ctx, sampleReports()).Summary)
	})
}

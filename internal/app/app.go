// Package app wires configuration, storage, the AI backend and the use case
// shared by every binary.
package app

import (
	"context"
	"fmt"

	"github.com/abelzeko/petrodata/internal/audit"
	"github.com/abelzeko/petrodata/internal/config"
	"github.com/abelzeko/petrodata/internal/entities"
	"github.com/abelzeko/petrodata/internal/integration/gemini"
	"github.com/abelzeko/petrodata/internal/integration/openai"
	"github.com/abelzeko/petrodata/internal/observability"
	"github.com/abelzeko/petrodata/internal/report"
	"github.com/abelzeko/petrodata/internal/repository"
	"github.com/abelzeko/petrodata/internal/usecases"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// App holds the long-lived components of a process.
type App struct {
	Config  *config.Config
	Metrics *observability.Metrics
	Repo    repository.ReportRepository
	UseCase *usecases.ReportUseCase
	Clock   clockwork.Clock
}

// New opens the report store and builds the use case. metrics may come from
// observability.NewMetrics or NewMetricsForTesting.
func New(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, clock clockwork.Clock) (*App, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	store, err := repository.NewSQLiteReportRepository(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}
	repo := repository.WithMetrics(store, metrics)

	generator, err := NewGenerator(ctx, cfg)
	if err != nil {
		repo.Close()
		return nil, err
	}

	requestor := audit.NewRequestor(generator, audit.WithTimeout(cfg.AuditTimeout), audit.WithMetrics(metrics))
	a := &App{
		Config:  cfg,
		Metrics: metrics,
		Repo:    repo,
		UseCase: usecases.NewReportUseCase(repo, requestor, clock),
		Clock:   clock,
	}

	if cfg.SeedOnStart {
		if _, err := a.UseCase.SeedIfEmpty(ctx); err != nil {
			repo.Close()
			return nil, err
		}
	}
	return a, nil
}

// Close releases the report store.
func (a *App) Close() error {
	return a.Repo.Close()
}

// NewGenerator builds the configured AI backend. Without an API key it returns
// a nil generator and audits answer with the missing-key advisory.
func NewGenerator(ctx context.Context, cfg *config.Config) (audit.Generator, error) {
	if cfg.APIKey == "" {
		log.Warn().Msg("No AI API key configured; audits will be unavailable")
		return nil, nil
	}

	switch cfg.AIProvider {
	case config.ProviderOpenAI:
		svc, err := openai.NewOpenAIService(cfg.APIKey, cfg.AIModel)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI service: %w", err)
		}
		log.Info().Msg("Using OpenAI audit backend")
		return svc, nil
	case config.ProviderGemini, "":
		svc, err := gemini.NewGeminiService(ctx, cfg.APIKey, cfg.AIModel, "")
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini service: %w", err)
		}
		log.Info().Msg("Using Gemini audit backend")
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider)
	}
}

// DailyAudit audits the previous calendar day and logs the result.
func (a *App) DailyAudit(ctx context.Context) string {
	day := entities.DateOf(a.Clock.Now()).AddDays(-1)
	log.Info().Msgf("Running scheduled audit for %s", day)

	result := a.UseCase.Audit(ctx, report.PeriodDay, day)
	log.Info().Str("date", day.String()).Str("result", result).Msg("Scheduled audit finished")
	return result
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abelzeko/petrodata/internal/app"
	"github.com/abelzeko/petrodata/internal/config"
	"github.com/abelzeko/petrodata/internal/logging"
	"github.com/abelzeko/petrodata/internal/observability"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Scheduler exited")
	}
}

// run owns every deferred cleanup so a failed start still closes the store.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("PETRODATA_CONFIG"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	log.Info().Msg("Starting PetroData Scheduler...")

	// Seeds the store when empty and SEED_ON_START is set.
	a, err := app.New(ctx, cfg, observability.NewMetrics(), nil)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer a.Close()

	c, err := newScheduler(cfg.AuditSchedule, func() { a.DailyAudit(ctx) })
	if err != nil {
		return err
	}

	log.Info().Msgf("Daily audit has been scheduled with spec %q", cfg.AuditSchedule)
	c.Start()

	<-ctx.Done()
	log.Info().Msg("Stopping scheduler, waiting for running jobs")
	<-c.Stop().Done()
	return nil
}

// newScheduler registers job at spec. Overlapping runs are skipped.
func newScheduler(spec string, job func()) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, job); err != nil {
		return nil, fmt.Errorf("invalid audit schedule %q: %w", spec, err)
	}
	return c, nil
}

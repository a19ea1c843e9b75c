package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/abelzeko/petrodata/internal/app"
	"github.com/abelzeko/petrodata/internal/config"
	"github.com/abelzeko/petrodata/internal/entities"
	"github.com/abelzeko/petrodata/internal/logging"
	"github.com/abelzeko/petrodata/internal/observability"
	"github.com/abelzeko/petrodata/internal/report"
	"github.com/spf13/cobra"
)

// The default Prometheus registry only accepts one set of collectors per process.
var processMetrics = sync.OnceValue(observability.NewMetrics)

type cli struct {
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "petrodata",
		Short:         "Oil-field daily reporting: production, safety and weather",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logging.Setup(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			c.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "Path to a config file (yaml, toml or json)")

	root.AddCommand(
		c.submitCmd(),
		c.listCmd(),
		c.deleteCmd(),
		c.dashboardCmd(),
		c.reportCmd(),
		c.exportCmd(),
		c.auditCmd(),
		c.seedCmd(),
		c.serveCmd(),
	)
	return root
}

func (c *cli) open(ctx context.Context) (*app.App, error) {
	return app.New(ctx, c.cfg, processMetrics(), nil)
}

// periodArgs reads "<kind> [date]"; the date defaults to today.
func periodArgs(args []string) (report.PeriodKind, entities.Date, error) {
	kind := report.PeriodDay
	if len(args) > 0 {
		kind = report.ParsePeriodKind(args[0])
	}
	if len(args) < 2 {
		return kind, entities.Date{}, nil
	}
	anchor, err := entities.ParseDate(args[1])
	if err != nil {
		return kind, entities.Date{}, err
	}
	return kind, anchor, nil
}

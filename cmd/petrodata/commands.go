package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abelzeko/petrodata/internal/api"
	"github.com/abelzeko/petrodata/internal/usecases"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (c *cli) submitCmd() *cobra.Command {
	var in usecases.SubmitInput

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Save a daily well report, replacing any report for the same field, well and date",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if in.Date == "" {
				in.Date = a.UseCase.Today().String()
			}
			saved, err := a.UseCase.Submit(cmd.Context(), in)
			if err != nil {
				var verr *usecases.ValidationError
				if errors.As(err, &verr) {
					return errors.New(verr.Message)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved report %s\n", saved.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Date, "date", "", "Report date, YYYY-MM-DD (default today)")
	f.StringVar(&in.FieldName, "field", "", "Field name")
	f.StringVar(&in.WellID, "well", "", "Well ID")
	f.Float64Var(&in.OilProducedBbl, "oil", 0, "Oil produced (BBL)")
	f.Float64Var(&in.GasProducedMcf, "gas", 0, "Gas produced (MCF)")
	f.Float64Var(&in.WaterProducedBbl, "water", 0, "Water produced (BBL)")
	f.IntVar(&in.EmployeesAffected, "employees-affected", 0, "Employees affected by accidents")
	f.StringVar(&in.WeatherCondition, "weather", "Sunny", "Weather condition")
	f.StringVar(&in.Notes, "notes", "", "Free-text notes")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every stored report",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			reports := a.UseCase.List(cmd.Context())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.UseCase.FormatReports(reports))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a report by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.UseCase.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted report %s\n", args[0])
			return nil
		},
	}
}

func (c *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the all-time operational overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			d := a.UseCase.Dashboard(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total Oil (All Time): %.0f BBL\n", d.TotalOil)
			fmt.Fprintf(out, "Active Wells:         %d\n", d.ActiveWellCount)
			fmt.Fprintf(out, "Employees Affected:   %d (%s)\n", d.TotalEmployeesAffected, d.SafetyStatus)
			fmt.Fprintf(out, "Current Weather:      %s\n\n", d.CurrentWeather)
			fmt.Fprintln(out, "Recent Field Activity:")
			fmt.Fprintln(out, a.UseCase.FormatReports(d.Recent))
			return nil
		},
	}
}

func (c *cli) reportCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report <daily|weekly|monthly|all> [YYYY-MM-DD]",
		Short: "Aggregate reports for a period",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, anchor, err := periodArgs(args)
			if err != nil {
				return err
			}

			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			pr := a.UseCase.Report(cmd.Context(), kind, anchor)
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(pr)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.UseCase.FormatReport(pr))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every report to a dated CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if dir == "" {
				dir = c.cfg.ExportDir
			}
			path, err := a.UseCase.ExportToDir(cmd.Context(), dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default EXPORT_DIR)")
	return cmd
}

func (c *cli) auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <daily|weekly|monthly|all> [YYYY-MM-DD]",
		Short: "Ask the AI service to audit the reports of a period",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, anchor, err := periodArgs(args)
			if err != nil {
				return err
			}

			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintln(cmd.OutOrStdout(), a.UseCase.Audit(cmd.Context(), kind, anchor))
			return nil
		},
	}
}

func (c *cli) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty store with 60 days of synthetic history",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Seed explicitly below so the result can be reported.
			c.cfg.SeedOnStart = false
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			seeded, err := a.UseCase.SeedIfEmpty(cmd.Context())
			if err != nil {
				return err
			}
			if seeded {
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d reports\n", len(a.UseCase.List(cmd.Context())))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Store already has data; nothing seeded")
			}
			return nil
		},
	}
}

func (c *cli) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = c.cfg.HTTPAddr
			}
			web := api.NewWebAPI(log.Logger, a.UseCase, api.Config{
				Addr:            addr,
				ShutdownTimeout: c.cfg.ShutdownTimeout,
			})
			return web.Start(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default HTTP_ADDR)")
	return cmd
}

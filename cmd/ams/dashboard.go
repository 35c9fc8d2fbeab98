package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ams-studio/ams/pkg/aggregate"
	"github.com/ams-studio/ams/pkg/screen"
)

func newDashboardCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the monthly trend, completion split and annual volume",
		RunE: run(flags, true, func(cmd *cobra.Command, a *app, _ []string) error {
			p := a.printer(cmd)
			d := screen.NewDashboard(a.client, p, a.cfg.Dashboard.TrendMonths, a.cfg.Dashboard.VolumeYears, screen.WithClock(p.Now))
			return shown(d.Load(cmd.Context()))
		}),
	}
}

func newReportCmd(flags *rootFlags) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize audits within a date range",
		RunE: run(flags, true, func(cmd *cobra.Command, a *app, _ []string) error {
			start, err := parseDay(from)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			end, err := parseDay(to)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}
			p := a.printer(cmd)
			r := screen.NewReport(a.client, p, aggregate.ReportOptions{
				TrendMonths: aggregate.DefaultWindow,
				Recent:      a.cfg.Report.Recent,
			}, screen.WithClock(p.Now))
			return shown(r.Generate(cmd.Context(), start, end))
		}),
	}

	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD, inclusive")
	return cmd
}

// parseDay parses an optional YYYY-MM-DD flag in local time.
func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

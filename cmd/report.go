package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/elchinm/attendance-gate/internal/config"
	"github.com/elchinm/attendance-gate/internal/database/postgres"
	"github.com/elchinm/attendance-gate/internal/salary"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a salary report as an XLSX file",
	Long:  "Computes days present per worker over the period and writes a salary spreadsheet. Defaults to the current calendar month.",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := reportPeriod(cmd)
		if err != nil {
			return err
		}

		cfg := config.Load()
		if cfg.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		pool, err := postgres.Initialize(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer pool.Close()

		calculator := salary.NewCalculator(
			postgres.NewWorkerRepository(pool),
			postgres.NewEventRepository(pool),
			postgres.NewSalaryRuleRepository(pool),
		)
		summary, err := calculator.Compute(cmd.Context(), from, to)
		if err != nil {
			return fmt.Errorf("failed to compute salary summary: %w", err)
		}

		out := mustGetString(cmd, "out")
		if out == "" {
			out = fmt.Sprintf("salary-%s.xlsx", from.Format("2006-01"))
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("could not create %s: %w", out, err)
		}
		defer f.Close()

		if err := summary.WriteXLSX(f); err != nil {
			return fmt.Errorf("could not write %s: %w", out, err)
		}

		fmt.Printf("Wrote %s: %d workers, total %.2f\n", out, len(summary.Lines), summary.Total)
		return nil
	},
}

func reportPeriod(cmd *cobra.Command) (time.Time, time.Time, error) {
	month := mustGetString(cmd, "month")
	fromFlag := mustGetString(cmd, "from")
	toFlag := mustGetString(cmd, "to")

	if month != "" {
		start, err := time.ParseInLocation("2006-01", month, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --month %q, expected YYYY-MM", month)
		}
		return start, start.AddDate(0, 1, 0).Add(-time.Second), nil
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0).Add(-time.Second)

	if fromFlag != "" {
		parsed, err := time.ParseInLocation("2006-01-02", fromFlag, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from %q, expected YYYY-MM-DD", fromFlag)
		}
		from = parsed
	}
	if toFlag != "" {
		parsed, err := time.ParseInLocation("2006-01-02", toFlag, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to %q, expected YYYY-MM-DD", toFlag)
		}
		to = parsed.AddDate(0, 0, 1).Add(-time.Second)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to must not be before --from")
	}
	return from, to, nil
}

func init() {
	reportCmd.Flags().String("month", "", "report month as YYYY-MM (overrides --from/--to)")
	reportCmd.Flags().String("from", "", "period start as YYYY-MM-DD")
	reportCmd.Flags().String("to", "", "period end as YYYY-MM-DD (inclusive)")
	reportCmd.Flags().String("out", "", "output file (default salary-YYYY-MM.xlsx)")

	rootCmd.AddCommand(reportCmd)
}

package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"reshape/internal/calendar"
	"reshape/internal/export"
	"reshape/internal/models"
)

// calendarLayout is the output directory of the standalone date dimension.
const calendarLayout = "calendar"

var calendarFlags struct {
	start int
	end   int
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Write the date dimension for a year range in the configured formats",
	RunE:  runCalendar,
}

func init() {
	calendarCmd.Flags().IntVar(&calendarFlags.start, "start", 0, "First year (defaults to pipeline.calendar.start_year)")
	calendarCmd.Flags().IntVar(&calendarFlags.end, "end", 0, "Last year (defaults to pipeline.calendar.end_year)")

	rootCmd.AddCommand(calendarCmd)
}

func runCalendar(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	start, end := cfg.Pipeline.Calendar.StartYear, cfg.Pipeline.Calendar.EndYear
	if calendarFlags.start != 0 {
		start = calendarFlags.start
	}

	if calendarFlags.end != 0 {
		end = calendarFlags.end
	}

	rows, err := calendar.NewBuilder().Build(start, end)
	if err != nil {
		return err
	}

	out := cfg.Pipeline.Output
	exp := export.New(out.BasePath, uuid.NewString(), out.Formats, out.PrettyPrint, export.WithLogger(newLogger(cfg)))

	written, err := exp.Export(calendarLayout, []models.Table{models.NewTable("dim_date", rows)})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "📅 %d days (%d-%d), %d files in %s\n", len(rows), start, end, len(written), exp.Dir(calendarLayout))

	return nil
}

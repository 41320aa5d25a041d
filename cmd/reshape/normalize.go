package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"reshape/internal/config"
	"reshape/internal/export"
	"reshape/internal/formatter"
	"reshape/internal/logger"
	"reshape/internal/models"
	"reshape/internal/normalizer"
	"reshape/internal/pipeline"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize raw data into 3NF tables and write them as JSON",
	RunE:  runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

// normalize fetches the configured source and normalizes it.
func normalize(ctx context.Context, cfg *config.Config, log *logger.Logger) (*models.TableSet, error) {
	raw, err := pipeline.NewSource(cfg, log).Fetch(ctx)
	if err != nil {
		return nil, err
	}

	return normalizer.NewProcessor(
		normalizer.WithSeed(cfg.Pipeline.Normalize.Seed),
		normalizer.WithLogger(log),
	).Process(raw)
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ts, err := normalize(cmd.Context(), cfg, newLogger(cfg))
	if err != nil {
		return err
	}

	exp := export.New(cfg.Pipeline.Output.BasePath, uuid.NewString(), []string{export.FormatJSON}, cfg.Pipeline.Output.PrettyPrint)

	if _, err := exp.Export(models.LayoutNormalized, ts.Tables()); err != nil {
		return err
	}

	tables := ts.Tables()
	rows := make([][]string, 0, len(tables))

	for _, t := range tables {
		rows = append(rows, []string{t.Name, fmt.Sprint(t.Len())})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, formatter.Table([]string{"Table", "Rows"}, rows))
	fmt.Fprintf(out, "\n✅ Saved to: %s\n", exp.Dir(models.LayoutNormalized))

	if len(ts.Issues) > 0 {
		fmt.Fprintf(out, "⚠️  %d input issues, run validate for details\n", len(ts.Issues))
	}

	return nil
}

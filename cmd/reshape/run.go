package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reshape/internal/formatter"
	"reshape/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: extract, normalize, project, validate, export and load",
	RunE:  runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := pipeline.Connect(ctx, &cfg.Stores, log)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := stores.Close(); closeErr != nil {
			log.Warn("failed to close stores", "error", closeErr)
		}
	}()

	opts := append([]pipeline.Option{pipeline.WithLogger(log)}, stores.Options(log)...)
	runner := pipeline.New(cfg, opts...)

	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, formatter.Report(res.Reports, cfg.Pipeline.Validation.MaxReported))

	if len(res.Loads) > 0 {
		fmt.Fprintf(out, "## Loads\n\n%s\n", formatter.Loads(res.Loads))
	}

	for _, loadErr := range res.LoadErrors {
		fmt.Fprintf(out, "- %v\n", loadErr)
	}

	if cfg.Metrics.Textfile != "" {
		if err := runner.Metrics().WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn("failed to write metrics", "path", cfg.Metrics.Textfile, "error", err)
		}
	}

	fmt.Fprintf(out, "\nRun %s written to %s\n", res.RunID, cfg.Pipeline.Output.BasePath)

	if !res.Passed {
		return errNotPassed
	}

	return nil
}

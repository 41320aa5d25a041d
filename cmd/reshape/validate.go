package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reshape/internal/formatter"
	"reshape/internal/integrity"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Normalize raw data and print the integrity report without writing anything",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ts, err := normalize(cmd.Context(), cfg, newLogger(cfg))
	if err != nil {
		return err
	}

	report := integrity.NewChecker(cfg.Pipeline.Validation.FailOnWarnings).CheckTableSet(ts)

	fmt.Fprintln(cmd.OutOrStdout(), formatter.Report([]*integrity.Report{report}, cfg.Pipeline.Validation.MaxReported))

	if !report.Passed() {
		return errNotPassed
	}

	return nil
}

// Package main provides the seed command-line tool for load testing.
// It scales a raw dataset to N records per entity and writes it as raw source files.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"reshape/internal/extract"
	"reshape/internal/fixtures"
	"reshape/internal/logger"
	"reshape/internal/models"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
)

// Config holds the seeder configuration.
type Config struct {
	InputDir  string
	OutputDir string
	Count     int
	Seed      uint64
}

func logInfo(msg string) {
	fmt.Printf("%s[SEEDER]%s %s\n", colorGreen, colorReset, msg)
}

func logWarn(msg string) {
	fmt.Printf("%s[SEEDER]%s %s\n", colorYellow, colorReset, msg)
}

func logError(msg string) {
	fmt.Printf("%s[SEEDER]%s %s\n", colorRed, colorReset, msg)
}

func main() {
	cfg := parseConfig()

	if cfg.Count < 1 {
		logError("-count must be at least 1")
		flag.PrintDefaults()
		os.Exit(1)
	}

	src, err := loadSource(cfg)
	if err != nil {
		logError(fmt.Sprintf("Failed to read source data: %v", err))
		os.Exit(1)
	}

	logInfo(fmt.Sprintf("Source: %d users, %d products, %d carts", len(src.Users), len(src.Products), len(src.Carts)))

	if src.Users == nil || src.Products == nil || src.Carts == nil {
		logWarn("Some source collections are missing; they stay missing in the output")
	}

	start := time.Now()
	scaled := fixtures.Scale(src, cfg.Count, rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)))

	if err := extract.SaveRaw(cfg.OutputDir, scaled); err != nil {
		logError(fmt.Sprintf("Failed to write %s: %v", cfg.OutputDir, err))
		os.Exit(1)
	}

	logInfo(fmt.Sprintf("Generated %d users, %d products, %d carts in %v",
		len(scaled.Users), len(scaled.Products), len(scaled.Carts), time.Since(start)))
	logInfo(fmt.Sprintf("Saved to %s", cfg.OutputDir))
}

func parseConfig() Config {
	inputDir := flag.String("in", "", "Raw data directory to replicate (default: built-in sample)")
	outputDir := flag.String("out", "./data/test", "Output directory for users.json, products.json and carts.json")
	count := flag.Int("count", 10000, "Records to generate per entity")
	seed := flag.Uint64("seed", 42, "Random seed for perturbed fields")
	flag.Parse()

	return Config{
		InputDir:  *inputDir,
		OutputDir: *outputDir,
		Count:     *count,
		Seed:      *seed,
	}
}

func loadSource(cfg Config) (*models.RawDataset, error) {
	if cfg.InputDir == "" {
		return fixtures.Raw(), nil
	}

	return extract.NewFileSource(cfg.InputDir, logger.NewLogger("warn")).Fetch(context.Background())
}

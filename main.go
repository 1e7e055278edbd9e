package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"greymarket-pipeline/config"
	"greymarket-pipeline/report"
	"greymarket-pipeline/services"
	"greymarket-pipeline/storage"
	"greymarket-pipeline/utils"
)

var (
	flagInput    string
	flagOutput   string
	flagCharts   string
	flagNoCharts bool
	flagDebug    bool
)

var rootCmd = &cobra.Command{
	Use:   "greymarket-pipeline",
	Short: "Clean and analyze grey-market e-commerce listings",
	Long: `greymarket-pipeline ingests a CSV of e-commerce listings, repairs
malformed numeric and text fields, derives pricing and review features,
writes the processed table back to CSV and renders SVG charts summarizing
data quality and business signals.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&flagInput, "input", "", "Input CSV path (overrides INPUT_PATH)")
	rootCmd.Flags().StringVar(&flagOutput, "output", "", "Output CSV path (overrides OUTPUT_PATH)")
	rootCmd.Flags().StringVar(&flagCharts, "charts-dir", "", "Charts directory (overrides CHARTS_DIR)")
	rootCmd.Flags().BoolVar(&flagNoCharts, "no-charts", false, "Skip chart rendering")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	logger := utils.NewLogger()
	cfg := config.Load()
	applyFlags(cfg)
	logger.SetDebug(cfg.Debug)

	logger.Info("=== Grey Market Preprocessing Pipeline starting ===")
	logger.Info("Config — input: %s | output: %s | charts: %s",
		cfg.InputPath, cfg.OutputPath, cfg.ChartsDir)

	// Stage 1: load. The only fatal path in the pipeline; nothing is
	// written if the input cannot be read as a table.
	logger.Stage("STEP 1: LOADING DATA")
	table, err := storage.NewCSVReader(cfg.InputPath).Load()
	if err != nil {
		logger.Error("Failed to load input: %v", err)
		return err
	}
	logger.Info("Initial data shape: %d rows × %d columns", len(table.Records), len(table.Columns))
	logger.Info("Columns: %s", strings.Join(table.Columns, ", "))
	for i := 0; i < cfg.PreviewRows && i < len(table.Records); i++ {
		logger.Info("  row %d: %s", i, strings.Join(table.Row(i), " | "))
	}

	// Stage 2: clean base columns, then derive features. Per-cell failures
	// degrade to absent values; nothing here aborts the run.
	logger.Stage("STEP 2: DATA PREPROCESSING")
	cleaner := services.NewCleaner(logger)
	ds, summary := cleaner.Clean(table)

	deriver := services.NewFeatureDeriver(logger)
	deriver.Derive(ds, summary)

	// Stage 3: write the processed table.
	logger.Stage("STEP 3: SAVING PROCESSED DATA")
	if err := storage.NewCSVWriter(cfg.OutputPath).Write(ds); err != nil {
		logger.Error("Failed to write output: %v", err)
		return err
	}
	logger.Info("Processed data saved to %s", cfg.OutputPath)

	insightSvc := services.NewInsightService(logger)
	qualityReport := insightSvc.Generate(ds, summary)
	insightSvc.Print(qualityReport)

	if cfg.RenderCharts {
		renderer := report.NewRenderer(cfg.ChartsDir, report.DefaultStyle(), logger)
		if err := renderer.RenderAll(ds, qualityReport); err != nil {
			logger.Error("Chart rendering failed: %v", err)
		}
	}

	logger.Info("Done. Processed CSV → %s | Charts → %s", cfg.OutputPath, cfg.ChartsDir)
	return nil
}

func applyFlags(cfg *config.Config) {
	if flagInput != "" {
		cfg.InputPath = flagInput
	}
	if flagOutput != "" {
		cfg.OutputPath = flagOutput
	}
	if flagCharts != "" {
		cfg.ChartsDir = flagCharts
	}
	if flagNoCharts {
		cfg.RenderCharts = false
	}
	if flagDebug {
		cfg.Debug = true
	}
}

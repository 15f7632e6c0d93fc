package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"statatab/adapters/excel"
	"statatab/adapters/postgres"
	"statatab/app"
	"statatab/domain/table"
	"statatab/internal/bootstrap"
	"statatab/internal/config"
	"statatab/internal/logging"
	"statatab/internal/summary"
	"statatab/ports"
)

func main() {
	// Missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "statatab",
		Short: "Export variables from a statistical session into a table",
	}

	rootCmd.AddCommand(
		newValidateCmd(),
		newExportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config.json]",
		Short: "Validate an export configuration without touching the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readRawConfig(args[0])
			if err != nil {
				return err
			}
			spec, err := config.Validate(raw)
			if err != nil {
				return err
			}
			fmt.Printf("configuration OK: rows=%v cols=%v value=%s\n",
				spec.RowVars, spec.ColVars, spec.ValueVar)
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var driver string
	var runtimePath string
	var edition string
	var valueLabels bool
	var head int
	var showSummary bool
	var outFile string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "export [config.json]",
		Short: "Load the configured variables from the session",
		Long: `Load the configured variables from the session and print the result.

The session backend is selected with --driver:
  excel     runtime path is a .xlsx workbook, edition is the sheet name
  postgres  runtime path is a connection string, edition is the dataset relation

Example: statatab export config.json --driver excel --runtime-path data.xlsx --edition Sheet1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := logging.NewLogger(level)

			raw, err := readRawConfig(args[0])
			if err != nil {
				return err
			}

			bootCfg := config.BootstrapFromEnv()
			if runtimePath != "" {
				bootCfg.RuntimePath = runtimePath
			}
			if edition != "" {
				bootCfg.Edition = edition
			}

			opener, err := openerFor(driver)
			if err != nil {
				return err
			}

			ctx := context.Background()
			service := app.NewExportService(bootstrap.New(bootCfg, opener, logger), logger)
			result, err := service.Run(ctx, raw, valueLabels)
			if err != nil {
				return err
			}

			printTable(result.Head(head))
			fmt.Printf("(%d rows, %d columns)\n", result.NumRows(), result.NumCols())

			if showSummary {
				if err := printSummary(result, raw); err != nil {
					return err
				}
			}
			if outFile != "" {
				if err := excel.WriteTable(result, outFile, ""); err != nil {
					return err
				}
				logger.Info("wrote workbook", "path", outFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&driver, "driver", getenvDefault("SESSION_DRIVER", "excel"), "session backend (excel or postgres)")
	cmd.Flags().StringVar(&runtimePath, "runtime-path", "", "override SESSION_RUNTIME_PATH")
	cmd.Flags().StringVar(&edition, "edition", "", "override SESSION_EDITION")
	cmd.Flags().BoolVar(&valueLabels, "value-labels", true, "ask the source for value labels")
	cmd.Flags().IntVar(&head, "head", 10, "number of rows to print")
	cmd.Flags().BoolVar(&showSummary, "summary", false, "print per-column statistics")
	cmd.Flags().StringVar(&outFile, "out", "", "write the result to an .xlsx file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func openerFor(driver string) (bootstrap.Opener, error) {
	switch driver {
	case "excel":
		return func(ctx context.Context, cfg config.Bootstrap) (ports.Session, error) {
			return excel.OpenSession(cfg.RuntimePath, cfg.Edition)
		}, nil
	case "postgres":
		return func(ctx context.Context, cfg config.Bootstrap) (ports.Session, error) {
			return postgres.OpenSession(ctx, cfg.RuntimePath, cfg.Edition)
		}, nil
	default:
		return nil, fmt.Errorf("unknown session driver %q (want excel or postgres)", driver)
	}
}

func readRawConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return raw, nil
}

func printTable(t *table.Table) {
	for _, name := range t.ColumnNames() {
		fmt.Printf("%-14s", name)
	}
	fmt.Println()
	for i := 0; i < t.NumRows(); i++ {
		for _, c := range t.Columns {
			fmt.Printf("%-14v", c.Values[i])
		}
		fmt.Println()
	}
}

func printSummary(t *table.Table, raw map[string]any) error {
	weightVar, _ := raw["pweight"].(string)
	sums, err := summary.Summarize(t, weightVar)
	if err != nil {
		return err
	}
	for _, s := range sums {
		fmt.Printf("%s: n=%d missing=%d mean=%.4g sd=%.4g min=%.4g max=%.4g median=%.4g",
			s.Name, s.Count, s.MissingCount, s.Mean, s.StdDev, s.Min, s.Max, s.Median)
		if s.WeightedMean != nil {
			fmt.Printf(" wmean=%.4g", *s.WeightedMean)
		}
		fmt.Println()
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

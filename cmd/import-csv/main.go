package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"mealplan/internal/backend"
	"mealplan/internal/cli"
	"mealplan/internal/config"
	"mealplan/internal/core"
	"mealplan/internal/importer"
	applog "mealplan/internal/log"
	"mealplan/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).Validate)

	var (
		file      = flag.String("file", "-", "CSV file to import, - for stdin")
		dbPath    = flag.String("db", cfg.SQLiteDBPath, "SQLite database path")
		replace   = flag.Bool("replace", false, "replace the current plan instead of appending")
		weekStart = flag.String("week-starts-on", cfg.WeekStartsOn, "sunday or monday")
		refDate   = flag.String("reference-date", "", "any date of the target week (YYYY-MM-DD), default today")
		dryRun    = flag.Bool("dry-run", false, "validate and report without writing")
	)
	flag.Parse()

	logger := cli.SetupLogger(cfg, applog.ComponentImport)
	if err := run(cfg, logger, *file, *dbPath, *replace, *weekStart, *refDate, *dryRun); err != nil {
		logger.Error("Import failed", applog.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *applog.Logger, file, dbPath string, replace bool, weekStart, refDate string, dryRun bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	opts := importer.Options{ReferenceDate: time.Now()}
	ws, err := core.ParseWeekStart(weekStart)
	if err != nil {
		return err
	}
	opts.WeekStartsOn = ws
	if refDate != "" {
		if opts.ReferenceDate, err = core.ParseISODate(refDate); err != nil {
			return err
		}
	}

	in, err := openInput(file)
	if err != nil {
		return err
	}
	defer in.Close()

	result := importer.ParseCSV(in, opts)
	for _, w := range result.Warnings {
		logger.Warn("Import warning", "warning", w)
	}
	for _, e := range result.Errors {
		logger.Error("Invalid row", "row", e.Row, "field", e.Field, "message", e.Message)
	}
	if !result.Success {
		return fmt.Errorf("%d invalid rows in %s, nothing imported", len(result.Errors), file)
	}
	if dryRun {
		logger.Info("Dry run complete", applog.FieldMealCount, len(result.Meals), applog.FieldWarnings, len(result.Warnings))
		return nil
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	backendCfg.Type = backend.SQLiteBackend
	backendCfg.SQLiteDBPath = dbPath
	backendCfg.SeedSample = false

	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	svc := services.NewMealPlanService(res.Store, res.Publisher, nil, logger, ws)
	if err := svc.ImportMeals(ctx, result.Meals, replace); err != nil {
		return err
	}
	applog.NewStructuredLogger(logger).LogImport(ctx, "csv_file", len(result.Meals), 0, len(result.Warnings), replace)
	return nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

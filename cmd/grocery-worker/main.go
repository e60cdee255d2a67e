package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"mealplan/internal/amqp"
	"mealplan/internal/cli"
	"mealplan/internal/config"
	applog "mealplan/internal/log"
	"mealplan/internal/services"
	ports "mealplan/internal/sheets"
	gsheet "mealplan/internal/sheets/google"
	memsheet "mealplan/internal/sheets/memory"
	"mealplan/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).ValidateWorker)
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	logger.Info("Starting grocery-worker", applog.FieldOperation, applog.OpStartup)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	exporter, err := newExporter(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize grocery exporter", applog.FieldError, err)
		os.Exit(1)
	}

	// The worker only reads the plan, so nothing is published from here.
	svc := services.NewMealPlanService(repo, nil, nil, logger, cfg.WeekStart())
	exportWorker := worker.NewExportWorker(svc, exporter, logger)

	// A missed message must not leave the sheet stale across restarts.
	if err := exportWorker.StartupExport(ctx); err != nil {
		logger.Error("Startup export failed", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return amqpClient.ConsumePlanChanged(gctx, exportWorker.HandlePlanChanged)
		})
	} else {
		logger.Info("AMQP disabled, relying on periodic export", "interval", cfg.ExportInterval)
	}

	g.Go(func() error {
		return exportWorker.RunPeriodic(gctx, cfg.ExportInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete", applog.FieldOperation, applog.OpShutdown)
}

func newExporter(ctx context.Context, cfg *config.Config, logger *applog.Logger) (ports.GroceryExporter, error) {
	sheetsLogger := logger.WithComponent(applog.ComponentSheets)
	if cfg.ExportDryRun {
		sheetsLogger.Info("Dry run: grocery sheet is logged, not written")
		return memsheet.New(sheetsLogger.Logger), nil
	}
	exporter, err := gsheet.NewExporter(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleGrocerySheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, err
	}
	sheetsLogger.Info("Google Sheets exporter ready", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return exporter, nil
}

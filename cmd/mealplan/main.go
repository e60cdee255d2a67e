package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"mealplan/internal/backend"
	"mealplan/internal/cache"
	"mealplan/internal/cli"
	"mealplan/internal/config"
	"mealplan/internal/core"
	apphttp "mealplan/internal/http"
	applog "mealplan/internal/log"
	"mealplan/internal/middleware/ratelimit"
	"mealplan/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).Validate)
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	groceryCache := cache.NewLRUCache[[]core.GroceryItem](cfg.GroceryCacheSize, cfg.GroceryCacheTTL)
	cacheManager := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	cacheManager.Register(groceryCache)
	cacheManager.StartCleanup(cfg.GroceryCacheTTL)
	defer cacheManager.Stop()

	svc := services.NewMealPlanService(res.Store, res.Publisher, groceryCache, logger, cfg.WeekStart())

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger: logger,
		RateLimit: ratelimit.Config{
			Requests: cfg.RateLimitRequests,
			Window:   cfg.RateLimitWindow,
		},
	})
	srv.MaxHeaderBytes = 1 << 16

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	}()

	logger.Info("Starting mealplan server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"week_starts_on", cfg.WeekStart(),
		"amqp", res.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/config"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/db"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/handler"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/middleware"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/repository"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/router"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/service"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "pricewatch")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	// Repositories
	reportRepo := repository.NewReportRepo(pool)
	dispositionRepo := repository.NewDispositionRepo(pool)
	contributorRepo := repository.NewContributorRepo(pool)
	attemptRepo := repository.NewAttemptRepo(pool)
	suggestionRepo := repository.NewSuggestionRepo(pool)

	// Services
	lifecycle := service.LifecyclePolicy{
		ReportTTL:        cfg.ReportTTL,
		ConfirmThreshold: cfg.ConfirmThreshold,
		FlagThreshold:    cfg.FlagThreshold,
		FlagRatio:        cfg.FlagRatio,
	}
	trustSvc := service.NewTrustService()
	statsSvc := service.NewStatsService()
	rateSvc := service.NewRateLimitService(attemptRepo)
	reportSvc := service.NewReportService(reportRepo, rateSvc, trustSvc, statsSvc, cache, lifecycle)
	dispositionSvc := service.NewDispositionService(dispositionRepo, rateSvc, trustSvc, cache, lifecycle)
	contributorSvc := service.NewContributorService(contributorRepo, trustSvc)
	suggestionSvc := service.NewSuggestionService(suggestionRepo, rateSvc)

	handler.InitMetrics(pool)

	// Background workers
	statsWorker := service.NewStatsWorker(pool, reportSvc, cache, cfg.StatsBatchWindow)
	go statsWorker.Start(ctx)

	maintenanceWorker := service.NewMaintenanceWorker(reportSvc, attemptRepo, cfg.AttemptRetention, cfg.MaintenanceInterval)
	go maintenanceWorker.Start(ctx)
	defer maintenanceWorker.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "PriceWatch API",
		ServerHeader: "PriceWatch",
	})

	router.Setup(app, &router.Handlers{
		Report:      handler.NewReportHandler(reportSvc, cfg.IPSalt),
		Disposition: handler.NewDispositionHandler(dispositionSvc),
		Stats:       handler.NewStatsHandler(reportSvc),
		Contributor: handler.NewContributorHandler(contributorSvc),
		Suggestion:  handler.NewSuggestionHandler(suggestionSvc),
		Health:      handler.NewHealthHandler(pool, cache.Client()),
	}, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Println("shutdown signal received, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("PriceWatch backend starting on :%s (env=%s)", cfg.Port, cfg.Environment)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ovasconcelos/viveiro/internal/config"
	"github.com/ovasconcelos/viveiro/internal/engine"
	"github.com/ovasconcelos/viveiro/internal/repository/mongodb"
	"github.com/ovasconcelos/viveiro/internal/repository/sheets"
	"github.com/ovasconcelos/viveiro/internal/scheduler"
	"github.com/ovasconcelos/viveiro/internal/server/handlers"
	"github.com/ovasconcelos/viveiro/internal/server/router"
	cyclesvc "github.com/ovasconcelos/viveiro/internal/service/cycles"
	"github.com/ovasconcelos/viveiro/pkg/clients/notify"
	"github.com/ovasconcelos/viveiro/pkg/logger"
	"github.com/ovasconcelos/viveiro/pkg/quantity"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	repo, err := mongodb.NewRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	// Optional collaborators: alert webhook and spreadsheet export.
	var notifier notify.Client
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookClient(cfg.Notify.WebhookURL)
		baseLogger.Info("alert webhook enabled")
	} else {
		baseLogger.Warn("alert webhook url missing, harvest alerts disabled")
	}

	var exporter sheets.Exporter
	if cfg.Sheets.SpreadsheetID != "" {
		exporter, err = sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
	}

	metricsEngine := engine.New(repo, thresholdsFromConfig(cfg.Thresholds), priceCurveFromConfig(cfg.Pricing), baseLogger.Named("engine"))
	writeSvc := cyclesvc.NewService(repo, notifier, baseLogger.Named("svc.cycles"))

	cycleHandler := handlers.NewCycleHandler(writeSvc, metricsEngine, baseLogger.Named("handlers.cycles"))
	ginEngine := router.New(cycleHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting, metricsEngine, repo, exporter, notifier, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      ginEngine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func thresholdsFromConfig(t config.ThresholdsConfig) engine.Thresholds {
	return engine.Thresholds{
		SurvivalGoodPct:     t.SurvivalGoodPct,
		SurvivalModeratePct: t.SurvivalModeratePct,
		FCAGood:             t.FCAGood,
		FCAModerate:         t.FCAModerate,
		GrowthGoodGPerWeek:  t.GrowthGoodGPerWeek,
		GrowthModGPerWeek:   t.GrowthModGPerWeek,
		MarginGoodPct:       t.MarginGoodPct,
		MarginModeratePct:   t.MarginModeratePct,
	}
}

func priceCurveFromConfig(p config.PricingConfig) engine.PriceCurve {
	return engine.PriceCurve{
		BasePricePerKg:  decimal.NewFromFloat(p.BasePricePerKg),
		ReferenceWeight: quantity.Grams(p.ReferenceWeightG),
	}
}

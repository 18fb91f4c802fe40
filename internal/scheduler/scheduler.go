package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ovasconcelos/viveiro/internal/config"
	"github.com/ovasconcelos/viveiro/internal/domain/models"
	"github.com/ovasconcelos/viveiro/internal/engine"
	"github.com/ovasconcelos/viveiro/internal/repository/sheets"
	"github.com/ovasconcelos/viveiro/pkg/clients/notify"
)

// ReportStore persists nightly farm report snapshots.
type ReportStore interface {
	SaveFarmReport(ctx context.Context, report models.FarmReport) error
}

// Scheduler runs the nightly farm-wide report.
type Scheduler struct {
	cron     *cron.Cron
	engine   *engine.Engine
	store    ReportStore
	exporter sheets.Exporter
	notifier notify.Client
	cfg      config.ReportingConfig
	logger   *zap.Logger
}

// NewScheduler creates a scheduler instance. exporter and notifier may be
// nil; the corresponding steps are skipped.
func NewScheduler(cfg config.ReportingConfig, eng *engine.Engine, store ReportStore, exporter sheets.Exporter, notifier notify.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// robfig/cron/v3 default parser is standard 5-field cron. The report
	// runs in the farm's timezone, not the server's.
	opts := []cron.Option{}
	if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
		opts = append(opts, cron.WithLocation(loc))
	} else {
		logger.Warn("invalid timezone, scheduler falls back to local time", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	return &Scheduler{
		cron:     cron.New(opts...),
		engine:   eng,
		store:    store,
		exporter: exporter,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers and starts the nightly report job.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runFarmReport); err != nil {
		s.logger.Error("failed to schedule farm report", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runFarmReport() {
	s.logger.Info("generating farm report")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := s.engine.ComputeFarmMetrics(ctx)
	if err != nil {
		s.logger.Error("failed to compute farm report", zap.Error(err))
		return
	}

	if err := s.store.SaveFarmReport(ctx, report); err != nil {
		s.logger.Error("failed to persist farm report", zap.Error(err))
		return
	}

	s.exportRows(ctx, report)
	s.sendSummary(ctx, report)

	s.logger.Info("farm report completed",
		zap.Int("cycles", report.CycleCount),
		zap.Float64("total_biomass_kg", report.TotalBiomassKg))
}

func (s *Scheduler) exportRows(ctx context.Context, report models.FarmReport) {
	if s.exporter == nil {
		return
	}

	date := report.GeneratedAt.Format("2006-01-02")
	for _, m := range report.Cycles {
		row := []interface{}{
			date, m.CycleID, m.PondID, string(m.Status),
			m.DOC, m.SurvivalRatePct, int64(m.AverageWeight), m.BiomassKg,
			m.TotalFeedKg, m.FCA, m.Costs.TotalCost.StringFixed(2),
			m.Revenue.StringFixed(2), m.Profit.StringFixed(2), string(m.PerformanceRating),
		}
		if err := s.exporter.AppendReportRow(ctx, row); err != nil {
			s.logger.Error("failed to export report row", zap.String("cycle_id", m.CycleID), zap.Error(err))
		}
	}
}

func (s *Scheduler) sendSummary(ctx context.Context, report models.FarmReport) {
	if s.notifier == nil {
		return
	}

	alert := notify.Alert{
		Subject: "Relatório diário da fazenda",
		Message: fmt.Sprintf("%d viveiros ativos, biomassa total %.1f kg, custo acumulado %s.",
			report.CycleCount, report.TotalBiomassKg, report.TotalCost.StringFixed(2)),
		SentAt: report.GeneratedAt,
	}

	if err := s.notifier.SendAlert(ctx, alert); err != nil {
		s.logger.Error("failed to send report summary", zap.Error(err))
	}
}

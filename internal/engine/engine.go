// Package engine consolidates the per-cycle record streams of a shrimp
// production cycle into derived biological and financial metrics, plus the
// expected-vs-actual reconciliation at harvest time.
//
// Every computation re-aggregates from the record store and runs the pure
// calculator stages over that pinned snapshot, so results are idempotent
// and safe to compute concurrently for different cycles.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ovasconcelos/viveiro/internal/domain/models"
)

// Engine wires the calculator stages to a record store.
type Engine struct {
	store      RecordStore
	thresholds Thresholds
	prices     PriceCurve
	logger     *zap.Logger
	now        func() time.Time
}

// New constructs an engine instance.
func New(store RecordStore, thresholds Thresholds, prices PriceCurve, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:      store,
		thresholds: thresholds,
		prices:     prices,
		logger:     logger,
		now:        time.Now,
	}
}

// ComputeCycleMetrics aggregates one cycle and derives its full metrics
// set. The allocation denominator is taken from the currently active
// cycles, recomputed fresh on each call.
func (e *Engine) ComputeCycleMetrics(ctx context.Context, cycleID string) (models.CycleMetrics, error) {
	rec, err := Aggregate(ctx, e.store, cycleID)
	if err != nil {
		return models.CycleMetrics{}, err
	}

	active, err := e.store.ActiveCycles(ctx)
	if err != nil {
		return models.CycleMetrics{}, fmt.Errorf("fetch active cycles: %w", err)
	}

	return e.computeOne(ctx, rec, NewAllocationBase(active))
}

// computeOne finishes the pipeline for an already-pinned snapshot. The
// operational costs are fetched up front; everything after that is pure.
func (e *Engine) computeOne(ctx context.Context, rec CycleRecords, base AllocationBase) (models.CycleMetrics, error) {
	now := e.now().UTC()

	start := rec.Cycle.StockingDate
	end := now
	if rec.Cycle.Status == models.CycleCompleted {
		if last, ok := rec.LastHarvestDate(); ok {
			end = last.HarvestDate
		}
	}

	opCosts, err := e.store.OperationalCostsByPeriod(ctx, start, end)
	if err != nil {
		return models.CycleMetrics{}, fmt.Errorf("fetch operational costs: %w", err)
	}

	bio := ComputeBioMetrics(rec, now)
	costs := AllocateCosts(rec, opCosts, base)
	fin := Summarize(rec, bio, costs, e.prices)
	rating := Classify(e.thresholds, bio, fin)

	metrics := models.CycleMetrics{
		CycleID:           rec.Cycle.ID,
		PondID:            rec.Cycle.PondID,
		Status:            rec.Cycle.Status,
		DOC:               bio.DOC,
		SurvivalRatePct:   bio.SurvivalRatePct,
		AverageWeight:     bio.AverageWeight,
		WeightKnown:       bio.WeightKnown,
		BiomassKg:         bio.BiomassKg,
		WeeklyGrowthG:     bio.WeeklyGrowthG,
		GrowthKnown:       bio.GrowthKnown,
		DensityPerM2:      bio.DensityPerM2,
		TotalFeedKg:       fin.TotalFeedKg,
		BiomassProducedKg: fin.BiomassProducedKg,
		FCA:               fin.FCA,
		FCAKnown:          fin.FCAKnown,
		Costs:             costs,
		CostPerKg:         fin.CostPerKg,
		Revenue:           fin.Revenue,
		RevenueEstimated:  fin.RevenueEstimated,
		Profit:            fin.Profit,
		MarginPct:         fin.MarginPct,
		ROIPct:            fin.ROIPct,
		PerformanceRating: rating,
		ComputedAt:        now,
	}

	e.logger.Debug("cycle metrics computed",
		zap.String("cycle_id", rec.Cycle.ID),
		zap.Int("doc", metrics.DOC),
		zap.Float64("biomass_kg", metrics.BiomassKg),
		zap.String("rating", string(rating)))

	return metrics, nil
}

// ComputeFarmMetrics summarizes every active cycle in parallel. The
// allocation base is computed once and shared read-only across the batch,
// which keeps the proportional operational shares summing to the farm
// total.
func (e *Engine) ComputeFarmMetrics(ctx context.Context) (models.FarmReport, error) {
	active, err := e.store.ActiveCycles(ctx)
	if err != nil {
		return models.FarmReport{}, fmt.Errorf("fetch active cycles: %w", err)
	}

	base := NewAllocationBase(active)

	results := make([]models.CycleMetrics, len(active))
	errs := make([]error, len(active))

	var wg sync.WaitGroup
	for i, cycle := range active {
		wg.Add(1)
		go func(i int, cycleID string) {
			defer wg.Done()
			rec, err := Aggregate(ctx, e.store, cycleID)
			if err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = e.computeOne(ctx, rec, base)
		}(i, cycle.ID)
	}
	wg.Wait()

	report := models.FarmReport{
		GeneratedAt: e.now().UTC(),
		TotalCost:   decimal.Zero,
	}

	for i, metrics := range results {
		if errs[i] != nil {
			// One broken cycle must not sink the farm report.
			e.logger.Warn("skipping cycle in farm report", zap.String("cycle_id", active[i].ID), zap.Error(errs[i]))
			continue
		}
		report.Cycles = append(report.Cycles, metrics)
		report.TotalBiomassKg += metrics.BiomassKg
		report.TotalFeedKg += metrics.TotalFeedKg
		report.TotalCost = report.TotalCost.Add(metrics.Costs.TotalCost)
	}
	report.CycleCount = len(report.Cycles)

	return report, nil
}

// Package cycles is the write boundary for production-cycle events. It
// builds records from request payloads, enforces the population and
// quantity invariants before anything is persisted, and triggers the
// harvest reconciliation.
package cycles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ovasconcelos/viveiro/internal/domain/models"
	"github.com/ovasconcelos/viveiro/internal/engine"
	"github.com/ovasconcelos/viveiro/pkg/clients/notify"
	"github.com/ovasconcelos/viveiro/pkg/quantity"
)

// Validation sentinels surfaced to the HTTP layer.
var (
	ErrInvalidArguments    = errors.New("invalid arguments")
	ErrCycleNotActive      = errors.New("cycle is not active")
	ErrMortalityExceedsPop = errors.New("dead count exceeds current population")
)

// Store is the persistence contract the write service needs: the engine's
// read side plus the insert/update operations. Writes are serialized by
// the persistence layer; the service holds no locks of its own.
type Store interface {
	engine.RecordStore

	InsertCycle(ctx context.Context, cycle models.ProductionCycle) error
	InsertBiometry(ctx context.Context, sample models.BiometrySample) error
	InsertFeeding(ctx context.Context, event models.FeedingEvent) error
	InsertMortality(ctx context.Context, event models.MortalityEvent) error
	InsertInput(ctx context.Context, event models.InputApplicationEvent) error
	InsertHarvest(ctx context.Context, event models.HarvestEvent) error
	InsertOperationalCost(ctx context.Context, entry models.OperationalCostEntry) error
	UpdateCyclePopulation(ctx context.Context, cycleID string, population int64, status models.CycleStatus) error
}

// Service implements the write boundary.
type Service struct {
	store    Store
	notifier notify.Client
	logger   *zap.Logger
	now      func() time.Time
}

// NewService constructs the write service. notifier may be nil when no
// alert webhook is configured.
func NewService(store Store, notifier notify.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// StockPondRequest creates a new production cycle for a pond.
type StockPondRequest struct {
	PondID             string          `json:"pond_id" binding:"required"`
	PondAreaM2         float64         `json:"pond_area_m2" binding:"required"`
	BatchID            string          `json:"batch_id" binding:"required"`
	StockingDate       time.Time       `json:"stocking_date" binding:"required"`
	InitialPopulation  int64           `json:"initial_population" binding:"required"`
	PostLarvaeUnitCost decimal.Decimal `json:"post_larvae_unit_cost"`
	PreparationCost    decimal.Decimal `json:"preparation_cost"`
}

// StockPond opens a cycle with the full stocked population.
func (s *Service) StockPond(ctx context.Context, req StockPondRequest) (models.ProductionCycle, error) {
	if req.InitialPopulation <= 0 || req.PondAreaM2 <= 0 {
		return models.ProductionCycle{}, fmt.Errorf("%w: population and pond area must be positive", ErrInvalidArguments)
	}
	if req.PostLarvaeUnitCost.IsNegative() || req.PreparationCost.IsNegative() {
		return models.ProductionCycle{}, fmt.Errorf("%w: costs must not be negative", ErrInvalidArguments)
	}

	cycle := models.ProductionCycle{
		ID:                 uuid.NewString(),
		PondID:             req.PondID,
		PondAreaM2:         req.PondAreaM2,
		BatchID:            req.BatchID,
		StockingDate:       req.StockingDate.UTC(),
		InitialPopulation:  req.InitialPopulation,
		PostLarvaeUnitCost: req.PostLarvaeUnitCost,
		PreparationCost:    req.PreparationCost,
		CurrentPopulation:  req.InitialPopulation,
		Status:             models.CycleActive,
		CreatedAt:          s.now().UTC(),
	}

	if err := s.store.InsertCycle(ctx, cycle); err != nil {
		return models.ProductionCycle{}, fmt.Errorf("insert cycle: %w", err)
	}

	s.logger.Info("pond stocked",
		zap.String("cycle_id", cycle.ID),
		zap.String("pond_id", cycle.PondID),
		zap.Int64("population", cycle.InitialPopulation))

	return cycle, nil
}

// Cycle returns one production cycle by ID.
func (s *Service) Cycle(ctx context.Context, cycleID string) (models.ProductionCycle, error) {
	cycle, err := s.store.CycleByID(ctx, cycleID)
	if err != nil {
		return models.ProductionCycle{}, fmt.Errorf("fetch cycle: %w", err)
	}
	return cycle, nil
}

// BiometryRequest records a growth sampling.
type BiometryRequest struct {
	MeasurementDate time.Time `json:"measurement_date" binding:"required"`
	AverageWeightG  float64   `json:"average_weight_g" binding:"required"`
	UniformityPct   float64   `json:"uniformity_pct"`
	SampleSize      int       `json:"sample_size"`
}

// RecordBiometry appends a biometry sample to an active cycle.
func (s *Service) RecordBiometry(ctx context.Context, cycleID string, req BiometryRequest) (models.BiometrySample, error) {
	cycle, err := s.activeCycle(ctx, cycleID)
	if err != nil {
		return models.BiometrySample{}, err
	}

	weight, err := quantity.FromGrams(req.AverageWeightG)
	if err != nil {
		return models.BiometrySample{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	sample := models.BiometrySample{
		ID:              uuid.NewString(),
		CycleID:         cycle.ID,
		MeasurementDate: req.MeasurementDate.UTC(),
		AverageWeight:   weight,
		UniformityPct:   req.UniformityPct,
		SampleSize:      req.SampleSize,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.store.InsertBiometry(ctx, sample); err != nil {
		return models.BiometrySample{}, fmt.Errorf("insert biometry: %w", err)
	}
	return sample, nil
}

// FeedingRequest records one ration. AmountKg is the decimal-kilogram user
// input; it is canonicalized to grams on the way in.
type FeedingRequest struct {
	FeedingDate   time.Time       `json:"feeding_date" binding:"required"`
	FeedingTime   string          `json:"feeding_time"`
	AmountKg      float64         `json:"amount_kg" binding:"required"`
	UnitCostPerKg decimal.Decimal `json:"unit_cost_per_kg"`
	FeedType      string          `json:"feed_type"`
}

// RecordFeeding appends a feeding event.
func (s *Service) RecordFeeding(ctx context.Context, cycleID string, req FeedingRequest) (models.FeedingEvent, error) {
	cycle, err := s.activeCycle(ctx, cycleID)
	if err != nil {
		return models.FeedingEvent{}, err
	}

	amount, err := quantity.FromKilograms(req.AmountKg)
	if err != nil {
		return models.FeedingEvent{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if req.UnitCostPerKg.IsNegative() {
		return models.FeedingEvent{}, fmt.Errorf("%w: unit cost must not be negative", ErrInvalidArguments)
	}

	event := models.FeedingEvent{
		ID:            uuid.NewString(),
		CycleID:       cycle.ID,
		FeedingDate:   req.FeedingDate.UTC(),
		FeedingTime:   req.FeedingTime,
		Amount:        amount,
		UnitCostPerKg: req.UnitCostPerKg,
		FeedType:      req.FeedType,
		CreatedAt:     s.now().UTC(),
	}

	if err := s.store.InsertFeeding(ctx, event); err != nil {
		return models.FeedingEvent{}, fmt.Errorf("insert feeding: %w", err)
	}
	return event, nil
}

// MortalityRequest records observed deaths.
type MortalityRequest struct {
	RecordDate time.Time `json:"record_date" binding:"required"`
	DeadCount  int64     `json:"dead_count" binding:"required"`
}

// RecordMortality appends a mortality event and decrements the live
// population at recording time. The population can never go below zero.
func (s *Service) RecordMortality(ctx context.Context, cycleID string, req MortalityRequest) (models.MortalityEvent, error) {
	cycle, err := s.activeCycle(ctx, cycleID)
	if err != nil {
		return models.MortalityEvent{}, err
	}

	if req.DeadCount <= 0 {
		return models.MortalityEvent{}, fmt.Errorf("%w: dead count must be positive", ErrInvalidArguments)
	}
	if req.DeadCount > cycle.CurrentPopulation {
		return models.MortalityEvent{}, fmt.Errorf("%w: %d > %d", ErrMortalityExceedsPop, req.DeadCount, cycle.CurrentPopulation)
	}

	event := models.MortalityEvent{
		ID:         uuid.NewString(),
		CycleID:    cycle.ID,
		RecordDate: req.RecordDate.UTC(),
		DeadCount:  req.DeadCount,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.store.InsertMortality(ctx, event); err != nil {
		return models.MortalityEvent{}, fmt.Errorf("insert mortality: %w", err)
	}

	remaining := cycle.CurrentPopulation - req.DeadCount
	if err := s.store.UpdateCyclePopulation(ctx, cycle.ID, remaining, cycle.Status); err != nil {
		return models.MortalityEvent{}, fmt.Errorf("update population: %w", err)
	}

	return event, nil
}

// InputRequest records a fertilizer or probiotic application.
type InputRequest struct {
	ApplicationDate time.Time       `json:"application_date" binding:"required"`
	QuantityKg      float64         `json:"quantity_kg" binding:"required"`
	UnitCostPerKg   decimal.Decimal `json:"unit_cost_per_kg"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	Purpose         string          `json:"purpose"`
}

// RecordInput appends an input application. When no total cost is given it
// is derived from quantity and unit cost.
func (s *Service) RecordInput(ctx context.Context, cycleID string, req InputRequest) (models.InputApplicationEvent, error) {
	cycle, err := s.activeCycle(ctx, cycleID)
	if err != nil {
		return models.InputApplicationEvent{}, err
	}

	qty, err := quantity.FromKilograms(req.QuantityKg)
	if err != nil {
		return models.InputApplicationEvent{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	total := req.TotalCost
	if total.IsZero() {
		total = qty.Decimal().Mul(req.UnitCostPerKg)
	}
	if total.IsNegative() {
		return models.InputApplicationEvent{}, fmt.Errorf("%w: total cost must not be negative", ErrInvalidArguments)
	}

	event := models.InputApplicationEvent{
		ID:              uuid.NewString(),
		CycleID:         cycle.ID,
		ApplicationDate: req.ApplicationDate.UTC(),
		Quantity:        qty,
		UnitCostPerKg:   req.UnitCostPerKg,
		TotalCost:       total,
		Purpose:         req.Purpose,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.store.InsertInput(ctx, event); err != nil {
		return models.InputApplicationEvent{}, fmt.Errorf("insert input application: %w", err)
	}
	return event, nil
}

// HarvestRequest records a partial or total harvest.
type HarvestRequest struct {
	HarvestDate         time.Time          `json:"harvest_date" binding:"required"`
	Type                models.HarvestType `json:"type" binding:"required"`
	BiomassKg           float64            `json:"biomass_kg" binding:"required"`
	PopulationHarvested int64              `json:"population_harvested" binding:"required"`
	AverageWeightG      float64            `json:"average_weight_g"`
	PricePerKg          *decimal.Decimal   `json:"price_per_kg,omitempty"`
}

// RecordHarvest validates the harvest against the pre-harvest snapshot,
// persists it with the projected figures, updates the population (a total
// harvest zeroes it and completes the cycle) and returns the
// reconciliation report. The alert webhook is best-effort.
func (s *Service) RecordHarvest(ctx context.Context, cycleID string, req HarvestRequest) (models.ReconciliationReport, error) {
	cycle, err := s.store.CycleByID(ctx, cycleID)
	if err != nil {
		return models.ReconciliationReport{}, fmt.Errorf("fetch cycle: %w", err)
	}

	biomass, err := quantity.FromKilograms(req.BiomassKg)
	if err != nil {
		return models.ReconciliationReport{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	avgWeight, err := quantity.FromGrams(req.AverageWeightG)
	if err != nil {
		return models.ReconciliationReport{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	if err := engine.ValidateHarvest(cycle, req.Type, req.PopulationHarvested, biomass); err != nil {
		return models.ReconciliationReport{}, err
	}

	samples, err := s.store.BiometryByCycle(ctx, cycleID)
	if err != nil {
		return models.ReconciliationReport{}, fmt.Errorf("fetch biometry: %w", err)
	}
	preWeight, weightKnown := latestWeight(samples)

	expectedPop := cycle.CurrentPopulation
	event := models.HarvestEvent{
		ID:                     uuid.NewString(),
		CycleID:                cycle.ID,
		HarvestDate:            req.HarvestDate.UTC(),
		Type:                   req.Type,
		BiomassHarvested:       biomass,
		PopulationHarvested:    req.PopulationHarvested,
		AverageWeightAtHarvest: avgWeight,
		PricePerKg:             req.PricePerKg,
		ExpectedPopulation:     expectedPop,
		ExpectedBiomassKg:      engine.ExpectedBiomassKg(expectedPop, preWeight, weightKnown),
		MortalityDetected:      expectedPop - req.PopulationHarvested,
		CreatedAt:              s.now().UTC(),
	}

	report := engine.Reconcile(cycle, event, preWeight, weightKnown)

	if err := s.store.InsertHarvest(ctx, event); err != nil {
		return models.ReconciliationReport{}, fmt.Errorf("insert harvest: %w", err)
	}

	remaining := cycle.CurrentPopulation - req.PopulationHarvested
	status := cycle.Status
	if req.Type == models.HarvestTotal {
		// A total harvest always empties the pond, even when fewer animals
		// came out than tracked.
		remaining = 0
		status = models.CycleCompleted
	}
	if err := s.store.UpdateCyclePopulation(ctx, cycle.ID, remaining, status); err != nil {
		return models.ReconciliationReport{}, fmt.Errorf("update population: %w", err)
	}

	s.logger.Info("harvest recorded",
		zap.String("cycle_id", cycle.ID),
		zap.String("type", string(req.Type)),
		zap.Int64("population_harvested", req.PopulationHarvested),
		zap.Int64("mortality_detected", report.MortalityDetected))

	s.sendHarvestAlert(ctx, cycle, report)

	return report, nil
}

// OperationalCostRequest records a farm-scoped or cycle-scoped cost entry.
type OperationalCostRequest struct {
	CycleID  *string         `json:"cycle_id,omitempty"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Category string          `json:"category" binding:"required"`
	CostDate time.Time       `json:"cost_date" binding:"required"`
}

// RecordOperationalCost appends a running cost entry.
func (s *Service) RecordOperationalCost(ctx context.Context, req OperationalCostRequest) (models.OperationalCostEntry, error) {
	if !req.Amount.IsPositive() {
		return models.OperationalCostEntry{}, fmt.Errorf("%w: amount must be positive", ErrInvalidArguments)
	}

	entry := models.OperationalCostEntry{
		ID:       uuid.NewString(),
		CycleID:  req.CycleID,
		Amount:   req.Amount,
		Category: req.Category,
		CostDate: req.CostDate.UTC(),
	}

	if err := s.store.InsertOperationalCost(ctx, entry); err != nil {
		return models.OperationalCostEntry{}, fmt.Errorf("insert operational cost: %w", err)
	}
	return entry, nil
}

func (s *Service) activeCycle(ctx context.Context, cycleID string) (models.ProductionCycle, error) {
	cycle, err := s.store.CycleByID(ctx, cycleID)
	if err != nil {
		return models.ProductionCycle{}, fmt.Errorf("fetch cycle: %w", err)
	}
	if !cycle.Active() {
		return models.ProductionCycle{}, ErrCycleNotActive
	}
	return cycle, nil
}

func (s *Service) sendHarvestAlert(ctx context.Context, cycle models.ProductionCycle, report models.ReconciliationReport) {
	if s.notifier == nil {
		return
	}

	alert := notify.Alert{
		CycleID: cycle.ID,
		PondID:  cycle.PondID,
		Subject: "Despesca registrada",
		Message: report.Notes,
		SentAt:  s.now().UTC(),
	}

	if err := s.notifier.SendAlert(ctx, alert); err != nil {
		s.logger.Warn("harvest alert delivery failed", zap.String("cycle_id", cycle.ID), zap.Error(err))
	}
}

func latestWeight(samples []models.BiometrySample) (quantity.Grams, bool) {
	if len(samples) == 0 {
		return 0, false
	}
	latest := samples[0]
	for _, s := range samples[1:] {
		if s.MeasurementDate.After(latest.MeasurementDate) ||
			(s.MeasurementDate.Equal(latest.MeasurementDate) && s.CreatedAt.After(latest.CreatedAt)) {
			latest = s
		}
	}
	return latest.AverageWeight, true
}

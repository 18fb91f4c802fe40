package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovasconcelos/viveiro/internal/domain/models"
)

type fakeStore struct {
	cycles      map[string]models.ProductionCycle
	biometry    map[string][]models.BiometrySample
	feedings    map[string][]models.FeedingEvent
	mortalities map[string][]models.MortalityEvent
	inputs      map[string][]models.InputApplicationEvent
	harvests    map[string][]models.HarvestEvent
	opCosts     []models.OperationalCostEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cycles:      map[string]models.ProductionCycle{},
		biometry:    map[string][]models.BiometrySample{},
		feedings:    map[string][]models.FeedingEvent{},
		mortalities: map[string][]models.MortalityEvent{},
		inputs:      map[string][]models.InputApplicationEvent{},
		harvests:    map[string][]models.HarvestEvent{},
	}
}

func (f *fakeStore) CycleByID(_ context.Context, id string) (models.ProductionCycle, error) {
	cycle, ok := f.cycles[id]
	if !ok {
		return models.ProductionCycle{}, errors.New("cycle not found")
	}
	return cycle, nil
}

func (f *fakeStore) BiometryByCycle(_ context.Context, id string) ([]models.BiometrySample, error) {
	return f.biometry[id], nil
}

func (f *fakeStore) FeedingsByCycle(_ context.Context, id string) ([]models.FeedingEvent, error) {
	return f.feedings[id], nil
}

func (f *fakeStore) MortalitiesByCycle(_ context.Context, id string) ([]models.MortalityEvent, error) {
	return f.mortalities[id], nil
}

func (f *fakeStore) InputsByCycle(_ context.Context, id string) ([]models.InputApplicationEvent, error) {
	return f.inputs[id], nil
}

func (f *fakeStore) HarvestsByCycle(_ context.Context, id string) ([]models.HarvestEvent, error) {
	return f.harvests[id], nil
}

func (f *fakeStore) ActiveCycles(_ context.Context) ([]models.ProductionCycle, error) {
	var active []models.ProductionCycle
	for _, c := range f.cycles {
		if c.Active() {
			active = append(active, c)
		}
	}
	return active, nil
}

func (f *fakeStore) OperationalCostsByPeriod(_ context.Context, start, end time.Time) ([]models.OperationalCostEntry, error) {
	var out []models.OperationalCostEntry
	for _, e := range f.opCosts {
		if e.CostDate.Before(start) || e.CostDate.After(end) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func seededStore() *fakeStore {
	store := newFakeStore()
	cycle := activeCycleFixture()
	cycle.PostLarvaeUnitCost = dec("15.0")
	cycle.PreparationCost = dec("320")
	store.cycles[cycle.ID] = cycle
	store.biometry[cycle.ID] = []models.BiometrySample{
		{CycleID: cycle.ID, MeasurementDate: day(30), AverageWeight: 6, CreatedAt: day(30)},
		{CycleID: cycle.ID, MeasurementDate: day(60), AverageWeight: 12, CreatedAt: day(60)},
	}
	store.feedings[cycle.ID] = []models.FeedingEvent{
		{CycleID: cycle.ID, FeedingDate: day(20), Amount: 300_000, UnitCostPerKg: dec("6.80")},
		{CycleID: cycle.ID, FeedingDate: day(50), Amount: 276_000, UnitCostPerKg: dec("6.80")},
	}
	store.opCosts = []models.OperationalCostEntry{
		{Amount: dec("900"), Category: "energy", CostDate: day(40)},
	}
	return store
}

func testEngine(store RecordStore, now time.Time) *Engine {
	e := New(store, DefaultThresholds(), testPrices(), nil)
	e.now = func() time.Time { return now }
	return e
}

func TestComputeCycleMetricsIsIdempotent(t *testing.T) {
	store := seededStore()
	e := testEngine(store, day(60))

	first, err := e.ComputeCycleMetrics(context.Background(), "c1")
	require.NoError(t, err)
	second, err := e.ComputeCycleMetrics(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, first, second, "same snapshot must yield identical results")
}

func TestComputeCycleMetricsEndToEnd(t *testing.T) {
	store := seededStore()
	e := testEngine(store, day(60))

	m, err := e.ComputeCycleMetrics(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, "c1", m.CycleID)
	assert.Equal(t, models.CycleActive, m.Status)
	assert.Equal(t, 60, m.DOC)
	assert.InDelta(t, 96.0, m.SurvivalRatePct, 1e-9)
	assert.InDelta(t, 576.0, m.BiomassKg, 1e-9)
	assert.True(t, m.GrowthKnown)
	assert.InDelta(t, 1.4, m.WeeklyGrowthG, 1e-9)
	assert.InDelta(t, 576.0, m.TotalFeedKg, 1e-9)
	assert.InDelta(t, 1.0, m.FCA, 1e-9)
	assert.True(t, m.Costs.PLCost.Equal(dec("750")))
	// Single active cycle absorbs the whole farm-scoped cost.
	assert.True(t, m.Costs.OperationalCost.Equal(dec("900")), "got %s", m.Costs.OperationalCost)
	assert.True(t, m.RevenueEstimated)
	assert.Equal(t, models.RatingGood, m.PerformanceRating)
}

func TestComputeCycleMetricsUnknownCycle(t *testing.T) {
	e := testEngine(newFakeStore(), day(10))

	_, err := e.ComputeCycleMetrics(context.Background(), "nope")
	assert.Error(t, err)
}

func TestComputeFarmMetricsSharesAllocationBase(t *testing.T) {
	store := newFakeStore()
	farmTotal := dec("600.00")
	store.opCosts = []models.OperationalCostEntry{{Amount: farmTotal, Category: "labor", CostDate: day(10)}}

	areas := map[string]float64{"c1": 1000, "c2": 2000, "c3": 3000}
	for id, area := range areas {
		c := activeCycleFixture()
		c.ID = id
		c.PondID = "pond-" + id
		c.PondAreaM2 = area
		store.cycles[id] = c
	}

	e := testEngine(store, day(20))
	report, err := e.ComputeFarmMetrics(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, report.CycleCount)

	allocated := decimal.Zero
	for _, m := range report.Cycles {
		allocated = allocated.Add(m.Costs.OperationalCost)
	}

	diff := allocated.Sub(farmTotal).Abs()
	assert.True(t, diff.LessThanOrEqual(dec("0.03")), "allocated %s vs farm total %s", allocated, farmTotal)
}

func TestComputeFarmMetricsEmptyFarm(t *testing.T) {
	e := testEngine(newFakeStore(), day(5))

	report, err := e.ComputeFarmMetrics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.CycleCount)
	assert.True(t, report.TotalCost.IsZero())
}

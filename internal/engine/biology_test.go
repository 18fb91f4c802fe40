package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ovasconcelos/viveiro/internal/domain/models"
	"github.com/ovasconcelos/viveiro/pkg/quantity"
)

func day(offset int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func activeCycleFixture() models.ProductionCycle {
	return models.ProductionCycle{
		ID:                "c1",
		PondID:            "pond-3",
		PondAreaM2:        2400,
		BatchID:           "b1",
		StockingDate:      day(0),
		InitialPopulation: 50000,
		CurrentPopulation: 48000,
		Status:            models.CycleActive,
	}
}

func TestComputeBioMetricsScenario(t *testing.T) {
	// 50k stocked, 48k alive, one 12 g sample at day 60.
	rec := CycleRecords{
		Cycle: activeCycleFixture(),
		Biometry: []models.BiometrySample{
			{MeasurementDate: day(60), AverageWeight: 12, CreatedAt: day(60)},
		},
	}

	bio := ComputeBioMetrics(rec, day(60))

	assert.True(t, bio.WeightKnown)
	assert.Equal(t, quantity.Grams(12), bio.AverageWeight)
	assert.InDelta(t, 576.0, bio.BiomassKg, 1e-9)
	assert.InDelta(t, 96.0, bio.SurvivalRatePct, 1e-9)
	assert.Equal(t, 60, bio.DOC)
	assert.InDelta(t, 20.0, bio.DensityPerM2, 1e-9)
	assert.False(t, bio.GrowthKnown, "one sample is not enough for a growth rate")
	assert.Zero(t, bio.WeeklyGrowthG)
}

func TestComputeBioMetricsNoBiometryMeansUnknownNotZero(t *testing.T) {
	rec := CycleRecords{Cycle: activeCycleFixture()}

	bio := ComputeBioMetrics(rec, day(10))

	assert.False(t, bio.WeightKnown)
	assert.Zero(t, bio.BiomassKg)
	assert.InDelta(t, 96.0, bio.SurvivalRatePct, 1e-9, "survival does not depend on biometry")
}

func TestWeeklyGrowthLinearRate(t *testing.T) {
	rec := CycleRecords{
		Cycle: activeCycleFixture(),
		Biometry: []models.BiometrySample{
			{MeasurementDate: day(30), AverageWeight: 5, CreatedAt: day(30)},
			{MeasurementDate: day(44), AverageWeight: 9, CreatedAt: day(44)},
		},
	}

	bio := ComputeBioMetrics(rec, day(44))

	assert.True(t, bio.GrowthKnown)
	assert.InDelta(t, 2.0, bio.WeeklyGrowthG, 1e-9)
}

func TestWeeklyGrowthSameDaySamplesIsUndefined(t *testing.T) {
	rec := CycleRecords{
		Cycle: activeCycleFixture(),
		Biometry: []models.BiometrySample{
			{MeasurementDate: day(30), AverageWeight: 5, CreatedAt: day(30)},
			{MeasurementDate: day(30), AverageWeight: 6, CreatedAt: day(30).Add(time.Hour)},
		},
	}

	bio := ComputeBioMetrics(rec, day(31))
	assert.False(t, bio.GrowthKnown)
}

func TestLatestBiometryTieBrokenByCreatedAt(t *testing.T) {
	rec := CycleRecords{
		Cycle: activeCycleFixture(),
		Biometry: []models.BiometrySample{
			{MeasurementDate: day(30), AverageWeight: 8, CreatedAt: day(30).Add(2 * time.Hour)},
			{MeasurementDate: day(30), AverageWeight: 7, CreatedAt: day(30).Add(time.Hour)},
		},
	}
	rec.sortStreams()

	latest, ok := rec.LatestBiometry()
	assert.True(t, ok)
	assert.Equal(t, quantity.Grams(8), latest.AverageWeight)
}

func TestDOCCompletedCycleEndsAtLastHarvest(t *testing.T) {
	cycle := activeCycleFixture()
	cycle.Status = models.CycleCompleted
	cycle.CurrentPopulation = 0

	rec := CycleRecords{
		Cycle: cycle,
		Harvests: []models.HarvestEvent{
			{HarvestDate: day(70), Type: models.HarvestPartial, PopulationHarvested: 10000},
			{HarvestDate: day(90), Type: models.HarvestTotal, PopulationHarvested: 35000},
		},
	}

	// "now" long after completion must not inflate DOC.
	assert.Equal(t, 90, DaysOfCulture(rec, day(400)))
}

func TestSurvivalRateCompletedUsesHarvestedPopulation(t *testing.T) {
	cycle := activeCycleFixture()
	cycle.Status = models.CycleCompleted
	cycle.CurrentPopulation = 0

	rec := CycleRecords{
		Cycle: cycle,
		Harvests: []models.HarvestEvent{
			{HarvestDate: day(70), PopulationHarvested: 10000},
			{HarvestDate: day(90), PopulationHarvested: 35000},
		},
	}

	bio := ComputeBioMetrics(rec, day(90))
	assert.InDelta(t, 90.0, bio.SurvivalRatePct, 1e-9)
}

func TestDOCRoundsUpPartialDays(t *testing.T) {
	rec := CycleRecords{Cycle: activeCycleFixture()}
	assert.Equal(t, 11, DaysOfCulture(rec, day(10).Add(6*time.Hour)))
	assert.Equal(t, 0, DaysOfCulture(rec, day(0)))
}

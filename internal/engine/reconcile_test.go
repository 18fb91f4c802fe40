package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovasconcelos/viveiro/internal/domain/models"
)

func TestReconcileAdditionalMortality(t *testing.T) {
	// Expected 48k, harvested 45k: 3k untracked deaths.
	cycle := activeCycleFixture()
	h := models.HarvestEvent{
		ID:                     "h1",
		CycleID:                cycle.ID,
		HarvestDate:            day(90),
		Type:                   models.HarvestTotal,
		ExpectedPopulation:     48000,
		PopulationHarvested:    45000,
		BiomassHarvested:       540_000,
		AverageWeightAtHarvest: 12,
		ExpectedBiomassKg:      576,
	}

	report := Reconcile(cycle, h, 12, true)

	assert.Equal(t, int64(3000), report.MortalityDetected)
	assert.Contains(t, report.Notes, "Mortalidade adicional detectada: 3000")
	assert.InDelta(t, -36.0, report.BiomassVarianceKg, 1e-9)
	assert.Zero(t, report.WeightVarianceG)
}

func TestReconcileSignConsistency(t *testing.T) {
	// More animals came out than tracked: mortality was over-reported or
	// biometry overestimated upstream. The note must not claim additional
	// mortality.
	cycle := activeCycleFixture()
	h := models.HarvestEvent{
		ExpectedPopulation:     48000,
		PopulationHarvested:    49500,
		BiomassHarvested:       594_000,
		AverageWeightAtHarvest: 12,
		ExpectedBiomassKg:      576,
	}

	report := Reconcile(cycle, h, 12, true)

	require.Negative(t, report.MortalityDetected)
	assert.NotContains(t, report.Notes, "Mortalidade adicional")
	assert.Contains(t, report.Notes, "acima do esperado")
}

func TestReconcileExactMatch(t *testing.T) {
	cycle := activeCycleFixture()
	h := models.HarvestEvent{
		ExpectedPopulation:     48000,
		PopulationHarvested:    48000,
		BiomassHarvested:       576_000,
		AverageWeightAtHarvest: 12,
		ExpectedBiomassKg:      576,
	}

	report := Reconcile(cycle, h, 12, true)

	assert.Zero(t, report.MortalityDetected)
	assert.Contains(t, report.Notes, "conforme o esperado")
}

func TestReconcileWeightVarianceThreshold(t *testing.T) {
	cycle := activeCycleFixture()
	base := models.HarvestEvent{
		ExpectedPopulation:  48000,
		PopulationHarvested: 48000,
		BiomassHarvested:    576_000,
		ExpectedBiomassKg:   576,
	}

	atThreshold := base
	atThreshold.AverageWeightAtHarvest = 12
	report := Reconcile(cycle, atThreshold, 12, true)
	assert.NotContains(t, report.Notes, "Peso médio", "zero variance appends nothing")

	above := base
	above.AverageWeightAtHarvest = 14
	report = Reconcile(cycle, above, 12, true)
	assert.Contains(t, report.Notes, "acima da última biometria")
	assert.InDelta(t, 2.0, report.WeightVarianceG, 1e-9)

	below := base
	below.AverageWeightAtHarvest = 10
	report = Reconcile(cycle, below, 12, true)
	assert.Contains(t, report.Notes, "abaixo da última biometria")
}

func TestReconcileIsDeterministic(t *testing.T) {
	cycle := activeCycleFixture()
	h := models.HarvestEvent{
		ExpectedPopulation:     48000,
		PopulationHarvested:    45000,
		BiomassHarvested:       540_000,
		AverageWeightAtHarvest: 13,
		ExpectedBiomassKg:      576,
	}

	first := Reconcile(cycle, h, 12, true)
	second := Reconcile(cycle, h, 12, true)
	assert.Equal(t, first, second)
}

func TestValidateHarvestInvariants(t *testing.T) {
	cycle := activeCycleFixture() // current population 48000

	assert.NoError(t, ValidateHarvest(cycle, models.HarvestTotal, 48000, 576_000))
	assert.NoError(t, ValidateHarvest(cycle, models.HarvestTotal, 45000, 540_000))
	assert.NoError(t, ValidateHarvest(cycle, models.HarvestPartial, 47999, 500_000))

	err := ValidateHarvest(cycle, models.HarvestTotal, 48001, 576_000)
	assert.ErrorIs(t, err, ErrHarvestExceedsPop)

	// Partial is strict: harvesting everything must be recorded as total.
	err = ValidateHarvest(cycle, models.HarvestPartial, 48000, 576_000)
	assert.ErrorIs(t, err, ErrPartialIsTotal)

	err = ValidateHarvest(cycle, models.HarvestTotal, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidHarvest)

	err = ValidateHarvest(cycle, models.HarvestType("moon"), 100, 100)
	assert.ErrorIs(t, err, ErrInvalidHarvest)

	completed := cycle
	completed.Status = models.CycleCompleted
	err = ValidateHarvest(completed, models.HarvestTotal, 0, 0)
	assert.ErrorIs(t, err, ErrCycleCompleted)
}

func TestExpectedBiomass(t *testing.T) {
	assert.InDelta(t, 576.0, ExpectedBiomassKg(48000, 12, true), 1e-9)
	assert.Zero(t, ExpectedBiomassKg(48000, 0, false), "no biometry means no projection")
}

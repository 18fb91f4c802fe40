package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ovasconcelos/viveiro/internal/domain/models"
	"github.com/ovasconcelos/viveiro/pkg/quantity"
)

// Validation failures surfaced at the harvest write boundary. The engine
// never repairs invalid input; the record is rejected before persisting.
var (
	ErrCycleCompleted    = errors.New("cycle already completed")
	ErrHarvestExceedsPop = errors.New("population harvested exceeds current population")
	ErrPartialIsTotal    = errors.New("partial harvest must leave population in the pond")
	ErrInvalidHarvest    = errors.New("invalid harvest figures")
)

// weightVarianceThresholdG controls whether the weight-variance sentence is
// appended to the reconciliation note.
const weightVarianceThresholdG = 0.5

// ValidateHarvest enforces the write invariants before a harvest record is
// persisted: a total harvest may take at most the current population, a
// partial harvest strictly less (so an accidental total harvest cannot be
// recorded as partial).
func ValidateHarvest(cycle models.ProductionCycle, harvestType models.HarvestType, populationHarvested int64, biomass quantity.Grams) error {
	if !cycle.Active() {
		return ErrCycleCompleted
	}
	if populationHarvested < 0 || biomass < 0 {
		return ErrInvalidHarvest
	}

	switch harvestType {
	case models.HarvestTotal:
		if populationHarvested > cycle.CurrentPopulation {
			return fmt.Errorf("%w: harvested %d, current %d", ErrHarvestExceedsPop, populationHarvested, cycle.CurrentPopulation)
		}
	case models.HarvestPartial:
		if populationHarvested >= cycle.CurrentPopulation {
			return fmt.Errorf("%w: harvested %d, current %d", ErrPartialIsTotal, populationHarvested, cycle.CurrentPopulation)
		}
	default:
		return fmt.Errorf("%w: unknown harvest type %q", ErrInvalidHarvest, harvestType)
	}

	return nil
}

// ExpectedBiomassKg projects the biomass a harvest should yield from the
// pre-harvest population and the latest biometry weight. Zero when no
// biometry exists yet.
func ExpectedBiomassKg(expectedPopulation int64, preHarvestWeight quantity.Grams, weightKnown bool) float64 {
	if !weightKnown {
		return 0
	}
	return float64(expectedPopulation) * float64(preHarvestWeight) / 1000
}

// Reconcile compares the pre-harvest projection against the actual harvest
// figures. Pure function of its inputs: the same variances always produce
// the same note.
func Reconcile(cycle models.ProductionCycle, h models.HarvestEvent, preHarvestWeight quantity.Grams, weightKnown bool) models.ReconciliationReport {
	report := models.ReconciliationReport{
		CycleID:             cycle.ID,
		HarvestID:           h.ID,
		HarvestDate:         h.HarvestDate,
		ExpectedPopulation:  h.ExpectedPopulation,
		PopulationHarvested: h.PopulationHarvested,
		MortalityDetected:   h.ExpectedPopulation - h.PopulationHarvested,
		ExpectedBiomassKg:   h.ExpectedBiomassKg,
		BiomassHarvestedKg:  h.BiomassHarvested.Kilograms(),
	}
	report.BiomassVarianceKg = report.BiomassHarvestedKg - report.ExpectedBiomassKg
	if weightKnown {
		report.WeightVarianceG = float64(h.AverageWeightAtHarvest - preHarvestWeight)
	}
	report.Notes = reconciliationNote(report, weightKnown)

	return report
}

// reconciliationNote builds the operator-facing explanation from fixed
// templates keyed on the sign and magnitude of each variance. Notes are in
// Portuguese, the operating language on the farms.
func reconciliationNote(r models.ReconciliationReport, weightKnown bool) string {
	var parts []string

	switch {
	case r.MortalityDetected > 0:
		parts = append(parts, fmt.Sprintf("Mortalidade adicional detectada: %d camarões a menos que o esperado.", r.MortalityDetected))
	case r.MortalityDetected < 0:
		parts = append(parts, fmt.Sprintf("População %d acima do esperado; possível erro de biometria nas amostragens anteriores.", -r.MortalityDetected))
	default:
		parts = append(parts, "População despescada conforme o esperado.")
	}

	if weightKnown && math.Abs(r.WeightVarianceG) > weightVarianceThresholdG {
		if r.WeightVarianceG > 0 {
			parts = append(parts, fmt.Sprintf("Peso médio na despesca %.1f g acima da última biometria.", r.WeightVarianceG))
		} else {
			parts = append(parts, fmt.Sprintf("Peso médio na despesca %.1f g abaixo da última biometria.", -r.WeightVarianceG))
		}
	}

	return strings.Join(parts, " ")
}

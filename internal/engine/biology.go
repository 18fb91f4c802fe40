package engine

import (
	"math"
	"time"

	"github.com/ovasconcelos/viveiro/internal/domain/models"
	"github.com/ovasconcelos/viveiro/pkg/quantity"
)

// BioMetrics holds the biological derivations for one cycle. WeightKnown
// and GrowthKnown flag missing biometry so callers render N/A instead of
// a silent zero.
type BioMetrics struct {
	DOC             int
	SurvivalRatePct float64
	AverageWeight   quantity.Grams
	WeightKnown     bool
	BiomassKg       float64
	WeeklyGrowthG   float64
	GrowthKnown     bool
	DensityPerM2    float64
}

// ComputeBioMetrics derives DOC, weight, biomass, survival, growth and
// density from an aggregated snapshot. Pure function; now is only consulted
// for active cycles.
func ComputeBioMetrics(rec CycleRecords, now time.Time) BioMetrics {
	cycle := rec.Cycle
	bio := BioMetrics{
		DOC: DaysOfCulture(rec, now),
	}

	if latest, ok := rec.LatestBiometry(); ok {
		bio.AverageWeight = latest.AverageWeight
		bio.WeightKnown = true
		bio.BiomassKg = float64(cycle.CurrentPopulation) * float64(latest.AverageWeight) / 1000
	}

	bio.SurvivalRatePct = survivalRate(rec)
	bio.WeeklyGrowthG, bio.GrowthKnown = weeklyGrowth(rec.Biometry)

	if cycle.PondAreaM2 > 0 {
		bio.DensityPerM2 = float64(cycle.CurrentPopulation) / cycle.PondAreaM2
	}

	return bio
}

// DaysOfCulture is the ceiling of elapsed days since stocking. The end of
// culture is now for active cycles and the last harvest date once the
// cycle has completed.
func DaysOfCulture(rec CycleRecords, now time.Time) int {
	end := now
	if rec.Cycle.Status == models.CycleCompleted {
		if last, ok := rec.LastHarvestDate(); ok {
			end = last.HarvestDate
		}
	}
	elapsed := end.Sub(rec.Cycle.StockingDate)
	if elapsed <= 0 {
		return 0
	}
	return int(math.Ceil(elapsed.Hours() / 24))
}

// survivalRate selects the formula by status: the live population against
// the stocked count while active, the cumulative harvested count against
// the stocked count once completed. One definition per status, applied
// uniformly.
func survivalRate(rec CycleRecords) float64 {
	initial := rec.Cycle.InitialPopulation
	if initial <= 0 {
		return 0
	}

	if rec.Cycle.Status == models.CycleCompleted {
		return float64(TotalHarvestedPopulation(rec.Harvests)) / float64(initial) * 100
	}
	return float64(rec.Cycle.CurrentPopulation) / float64(initial) * 100
}

// weeklyGrowth is the linear rate between the earliest and latest biometry
// sample, scaled to grams per week. It needs at least two samples on
// distinct dates; otherwise it reports 0 with ok=false rather than
// extrapolating.
func weeklyGrowth(samples []models.BiometrySample) (gPerWeek float64, ok bool) {
	if len(samples) < 2 {
		return 0, false
	}

	first := samples[0]
	last := samples[len(samples)-1]

	days := last.MeasurementDate.Sub(first.MeasurementDate).Hours() / 24
	if days <= 0 {
		return 0, false
	}

	return float64(last.AverageWeight-first.AverageWeight) / days * 7, true
}

// TotalHarvestedPopulation sums the animals removed across every harvest.
func TotalHarvestedPopulation(harvests []models.HarvestEvent) int64 {
	var total int64
	for _, h := range harvests {
		total += h.PopulationHarvested
	}
	return total
}

// TotalHarvestedBiomass sums harvested mass across every harvest.
func TotalHarvestedBiomass(harvests []models.HarvestEvent) quantity.Grams {
	var total quantity.Grams
	for _, h := range harvests {
		total += h.BiomassHarvested
	}
	return total
}

package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/ovasconcelos/viveiro/internal/domain/models"
)

// CycleRecords is the immutable snapshot of every record stream belonging
// to one production cycle. All downstream calculators are pure functions
// of this snapshot, so a computation never re-queries mid-flight.
type CycleRecords struct {
	Cycle       models.ProductionCycle
	Biometry    []models.BiometrySample
	Feedings    []models.FeedingEvent
	Mortalities []models.MortalityEvent
	Inputs      []models.InputApplicationEvent
	Harvests    []models.HarvestEvent
}

// Aggregate fetches the cycle and its five event streams in one pass.
// A missing stream is an empty slice, never an error; downstream
// calculators treat absence as unknown rather than zero.
func Aggregate(ctx context.Context, store RecordStore, cycleID string) (CycleRecords, error) {
	cycle, err := store.CycleByID(ctx, cycleID)
	if err != nil {
		return CycleRecords{}, fmt.Errorf("fetch cycle %s: %w", cycleID, err)
	}

	rec := CycleRecords{Cycle: cycle}

	if rec.Biometry, err = store.BiometryByCycle(ctx, cycleID); err != nil {
		return CycleRecords{}, fmt.Errorf("fetch biometry for cycle %s: %w", cycleID, err)
	}
	if rec.Feedings, err = store.FeedingsByCycle(ctx, cycleID); err != nil {
		return CycleRecords{}, fmt.Errorf("fetch feedings for cycle %s: %w", cycleID, err)
	}
	if rec.Mortalities, err = store.MortalitiesByCycle(ctx, cycleID); err != nil {
		return CycleRecords{}, fmt.Errorf("fetch mortalities for cycle %s: %w", cycleID, err)
	}
	if rec.Inputs, err = store.InputsByCycle(ctx, cycleID); err != nil {
		return CycleRecords{}, fmt.Errorf("fetch inputs for cycle %s: %w", cycleID, err)
	}
	if rec.Harvests, err = store.HarvestsByCycle(ctx, cycleID); err != nil {
		return CycleRecords{}, fmt.Errorf("fetch harvests for cycle %s: %w", cycleID, err)
	}

	rec.sortStreams()
	return rec, nil
}

// sortStreams enforces ascending date order even if a store implementation
// forgets to sort. Stable sorts keep insertion order for same-day records.
func (r *CycleRecords) sortStreams() {
	sort.SliceStable(r.Biometry, func(i, j int) bool {
		if r.Biometry[i].MeasurementDate.Equal(r.Biometry[j].MeasurementDate) {
			return r.Biometry[i].CreatedAt.Before(r.Biometry[j].CreatedAt)
		}
		return r.Biometry[i].MeasurementDate.Before(r.Biometry[j].MeasurementDate)
	})
	sort.SliceStable(r.Feedings, func(i, j int) bool {
		return r.Feedings[i].FeedingDate.Before(r.Feedings[j].FeedingDate)
	})
	sort.SliceStable(r.Mortalities, func(i, j int) bool {
		return r.Mortalities[i].RecordDate.Before(r.Mortalities[j].RecordDate)
	})
	sort.SliceStable(r.Inputs, func(i, j int) bool {
		return r.Inputs[i].ApplicationDate.Before(r.Inputs[j].ApplicationDate)
	})
	sort.SliceStable(r.Harvests, func(i, j int) bool {
		return r.Harvests[i].HarvestDate.Before(r.Harvests[j].HarvestDate)
	})
}

// LatestBiometry returns the most recent sample by measurement date, ties
// broken by latest created_at. ok is false when no sample exists yet.
func (r CycleRecords) LatestBiometry() (models.BiometrySample, bool) {
	if len(r.Biometry) == 0 {
		return models.BiometrySample{}, false
	}
	return r.Biometry[len(r.Biometry)-1], true
}

// LastHarvestDate returns the date of the final harvest, used as the end of
// culture for completed cycles.
func (r CycleRecords) LastHarvestDate() (t models.HarvestEvent, ok bool) {
	if len(r.Harvests) == 0 {
		return models.HarvestEvent{}, false
	}
	return r.Harvests[len(r.Harvests)-1], true
}

package engine

import (
	"context"
	"time"

	"github.com/ovasconcelos/viveiro/internal/domain/models"
)

// RecordStore is the read-only persistence contract the engine computes
// from. Implementations must return each stream sorted ascending by its
// date field (ties by created_at); empty streams are fine.
type RecordStore interface {
	CycleByID(ctx context.Context, cycleID string) (models.ProductionCycle, error)
	BiometryByCycle(ctx context.Context, cycleID string) ([]models.BiometrySample, error)
	FeedingsByCycle(ctx context.Context, cycleID string) ([]models.FeedingEvent, error)
	MortalitiesByCycle(ctx context.Context, cycleID string) ([]models.MortalityEvent, error)
	InputsByCycle(ctx context.Context, cycleID string) ([]models.InputApplicationEvent, error)
	HarvestsByCycle(ctx context.Context, cycleID string) ([]models.HarvestEvent, error)
	ActiveCycles(ctx context.Context) ([]models.ProductionCycle, error)
	OperationalCostsByPeriod(ctx context.Context, start, end time.Time) ([]models.OperationalCostEntry, error)
}

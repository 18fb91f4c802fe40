package engine

import (
	"github.com/shopspring/decimal"

	"github.com/ovasconcelos/viveiro/internal/domain/models"
)

var thousand = decimal.NewFromInt(1000)

// AllocationBase is the cross-cycle denominator for farm-scoped cost
// allocation. It must be computed once per batch of cycles and shared
// read-only, so the proportional shares of concurrently summarized cycles
// sum back to the farm total.
type AllocationBase struct {
	TotalActiveAreaM2 decimal.Decimal
}

// NewAllocationBase sums pond areas over the currently active cycles.
func NewAllocationBase(active []models.ProductionCycle) AllocationBase {
	total := decimal.Zero
	for _, c := range active {
		total = total.Add(decimal.NewFromFloat(c.PondAreaM2))
	}
	return AllocationBase{TotalActiveAreaM2: total}
}

// AllocateCosts computes the per-cycle cost breakdown from the aggregated
// records plus the operational cost entries overlapping the cycle period.
//
// Farm-scoped entries are allocated proportionally by pond area among the
// active cycles. This is an approximation, not a ledger: the share is
// recomputed fresh on every call and never persisted, so it rebalances as
// cycles start and end.
func AllocateCosts(rec CycleRecords, opCosts []models.OperationalCostEntry, base AllocationBase) models.CostBreakdown {
	cycle := rec.Cycle

	plCost := decimal.NewFromInt(cycle.InitialPopulation).
		Div(thousand).
		Mul(cycle.PostLarvaeUnitCost)

	feedCost := decimal.Zero
	for _, f := range rec.Feedings {
		feedCost = feedCost.Add(f.Amount.Decimal().Mul(f.UnitCostPerKg))
	}

	inputCost := decimal.Zero
	for _, in := range rec.Inputs {
		inputCost = inputCost.Add(in.TotalCost)
	}

	operational := operationalShare(cycle, opCosts, base)

	breakdown := models.CostBreakdown{
		PLCost:          plCost,
		PreparationCost: cycle.PreparationCost,
		FeedCost:        feedCost,
		InputCost:       inputCost,
		OperationalCost: operational,
	}
	breakdown.TotalCost = plCost.
		Add(cycle.PreparationCost).
		Add(feedCost).
		Add(inputCost).
		Add(operational)

	return breakdown
}

// operationalShare applies cycle-scoped entries in full and splits
// farm-scoped entries by pond-area proportion. A zero denominator (no
// active pond area) allocates nothing rather than failing.
func operationalShare(cycle models.ProductionCycle, opCosts []models.OperationalCostEntry, base AllocationBase) decimal.Decimal {
	direct := decimal.Zero
	farmTotal := decimal.Zero

	for _, entry := range opCosts {
		if entry.CycleID != nil {
			if *entry.CycleID == cycle.ID {
				direct = direct.Add(entry.Amount)
			}
			continue
		}
		farmTotal = farmTotal.Add(entry.Amount)
	}

	if farmTotal.IsZero() || base.TotalActiveAreaM2.IsZero() {
		return direct
	}

	share := farmTotal.
		Mul(decimal.NewFromFloat(cycle.PondAreaM2)).
		Div(base.TotalActiveAreaM2).
		Round(2)

	return direct.Add(share)
}

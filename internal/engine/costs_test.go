package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ovasconcelos/viveiro/internal/domain/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAllocateCostsPLCost(t *testing.T) {
	cycle := activeCycleFixture()
	cycle.PostLarvaeUnitCost = dec("15.0") // per thousand PL

	rec := CycleRecords{Cycle: cycle}
	breakdown := AllocateCosts(rec, nil, AllocationBase{})

	assert.True(t, breakdown.PLCost.Equal(dec("750")), "got %s", breakdown.PLCost)
}

func TestAllocateCostsFeedCostExactSum(t *testing.T) {
	cycle := activeCycleFixture()
	rec := CycleRecords{
		Cycle: cycle,
		Feedings: []models.FeedingEvent{
			{Amount: 25500, UnitCostPerKg: dec("6.80")},  // 25.5 kg
			{Amount: 30250, UnitCostPerKg: dec("6.80")},  // 30.25 kg
			{Amount: 12000, UnitCostPerKg: dec("7.10")},  // 12 kg
		},
	}

	breakdown := AllocateCosts(rec, nil, AllocationBase{})

	// 25.5*6.80 + 30.25*6.80 + 12*7.10 = 173.40 + 205.70 + 85.20
	assert.True(t, breakdown.FeedCost.Equal(dec("464.30")), "got %s", breakdown.FeedCost)
}

func TestAllocateCostsConservation(t *testing.T) {
	cycle := activeCycleFixture()
	cycle.PostLarvaeUnitCost = dec("15.0")
	cycle.PreparationCost = dec("320.55")

	cid := cycle.ID
	rec := CycleRecords{
		Cycle: cycle,
		Feedings: []models.FeedingEvent{
			{Amount: 100000, UnitCostPerKg: dec("6.33")},
		},
		Inputs: []models.InputApplicationEvent{
			{TotalCost: dec("88.10")},
			{TotalCost: dec("11.90")},
		},
	}
	opCosts := []models.OperationalCostEntry{
		{Amount: dec("500"), CostDate: day(5)},               // farm-scoped
		{CycleID: &cid, Amount: dec("75.25"), CostDate: day(6)}, // cycle-scoped
	}
	base := NewAllocationBase([]models.ProductionCycle{cycle})

	breakdown := AllocateCosts(rec, opCosts, base)

	sum := breakdown.PLCost.
		Add(breakdown.PreparationCost).
		Add(breakdown.FeedCost).
		Add(breakdown.InputCost).
		Add(breakdown.OperationalCost)
	assert.True(t, breakdown.TotalCost.Equal(sum), "total %s, parts %s", breakdown.TotalCost, sum)
	assert.True(t, breakdown.InputCost.Equal(dec("100")))
	// Single active cycle takes the whole farm-scoped amount.
	assert.True(t, breakdown.OperationalCost.Equal(dec("575.25")), "got %s", breakdown.OperationalCost)
}

func TestOperationalAllocationSumsToFarmTotal(t *testing.T) {
	mk := func(id string, area float64) models.ProductionCycle {
		c := activeCycleFixture()
		c.ID = id
		c.PondAreaM2 = area
		return c
	}
	cycles := []models.ProductionCycle{mk("c1", 1000), mk("c2", 2000), mk("c3", 3000)}
	base := NewAllocationBase(cycles)

	farmTotal := dec("300.00")
	opCosts := []models.OperationalCostEntry{{Amount: farmTotal, CostDate: day(3)}}

	allocated := decimal.Zero
	for _, c := range cycles {
		breakdown := AllocateCosts(CycleRecords{Cycle: c}, opCosts, base)
		allocated = allocated.Add(breakdown.OperationalCost)
	}

	// Within rounding tolerance of 1 cent per cycle.
	diff := allocated.Sub(farmTotal).Abs()
	tolerance := dec("0.03")
	assert.True(t, diff.LessThanOrEqual(tolerance), "allocated %s vs total %s", allocated, farmTotal)
}

func TestOperationalAllocationZeroDenominator(t *testing.T) {
	cycle := activeCycleFixture()
	opCosts := []models.OperationalCostEntry{{Amount: dec("250"), CostDate: day(3)}}

	breakdown := AllocateCosts(CycleRecords{Cycle: cycle}, opCosts, AllocationBase{TotalActiveAreaM2: decimal.Zero})

	assert.True(t, breakdown.OperationalCost.IsZero(), "no active area allocates nothing, got %s", breakdown.OperationalCost)
}

func TestOperationalCostsOfOtherCyclesIgnored(t *testing.T) {
	cycle := activeCycleFixture()
	other := "someone-else"
	opCosts := []models.OperationalCostEntry{
		{CycleID: &other, Amount: dec("999"), CostDate: day(3)},
	}
	base := NewAllocationBase([]models.ProductionCycle{cycle})

	breakdown := AllocateCosts(CycleRecords{Cycle: cycle}, opCosts, base)
	assert.True(t, breakdown.OperationalCost.IsZero())
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CycleStatus tracks whether a production cycle is still being farmed.
type CycleStatus string

const (
	CycleActive    CycleStatus = "active"
	CycleCompleted CycleStatus = "completed"
)

// ProductionCycle ties one pond to one batch of post-larvae for a single
// stocking-to-harvest run. CurrentPopulation is a materialized field kept in
// step by the write service (mortality, partial harvests); once a total
// harvest completes the cycle it becomes an immutable historical record.
type ProductionCycle struct {
	ID                 string          `bson:"_id" json:"cycle_id"`
	PondID             string          `bson:"pond_id" json:"pond_id"`
	PondAreaM2         float64         `bson:"pond_area_m2" json:"pond_area_m2"`
	BatchID            string          `bson:"batch_id" json:"batch_id"`
	StockingDate       time.Time       `bson:"stocking_date" json:"stocking_date"`
	InitialPopulation  int64           `bson:"initial_population" json:"initial_population"`
	PostLarvaeUnitCost decimal.Decimal `bson:"post_larvae_unit_cost" json:"post_larvae_unit_cost"` // per thousand PL
	PreparationCost    decimal.Decimal `bson:"preparation_cost" json:"preparation_cost"`
	CurrentPopulation  int64           `bson:"current_population" json:"current_population"`
	Status             CycleStatus     `bson:"status" json:"status"`
	CreatedAt          time.Time       `bson:"created_at" json:"created_at"`
}

// Active reports whether the cycle can still receive events.
func (c ProductionCycle) Active() bool {
	return c.Status == CycleActive
}

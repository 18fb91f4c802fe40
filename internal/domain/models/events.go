package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ovasconcelos/viveiro/pkg/quantity"
)

// BiometrySample captures a periodic growth sampling. Append-only; ordered
// by MeasurementDate with CreatedAt breaking ties.
type BiometrySample struct {
	ID              string         `bson:"_id" json:"id"`
	CycleID         string         `bson:"cycle_id" json:"cycle_id"`
	MeasurementDate time.Time      `bson:"measurement_date" json:"measurement_date"`
	AverageWeight   quantity.Grams `bson:"average_weight_g" json:"average_weight_g"`
	UniformityPct   float64        `bson:"uniformity_pct" json:"uniformity_pct"`
	SampleSize      int            `bson:"sample_size" json:"sample_size"`
	CreatedAt       time.Time      `bson:"created_at" json:"created_at"`
}

// FeedingEvent captures one ration delivered to the pond. Amount is stored
// in canonical grams; the unit cost stays per kilogram as purchased.
type FeedingEvent struct {
	ID            string          `bson:"_id" json:"id"`
	CycleID       string          `bson:"cycle_id" json:"cycle_id"`
	FeedingDate   time.Time       `bson:"feeding_date" json:"feeding_date"`
	FeedingTime   string          `bson:"feeding_time" json:"feeding_time"`
	Amount        quantity.Grams  `bson:"amount_g" json:"amount_g"`
	UnitCostPerKg decimal.Decimal `bson:"unit_cost_per_kg" json:"unit_cost_per_kg"`
	FeedType      string          `bson:"feed_type" json:"feed_type"`
	CreatedAt     time.Time       `bson:"created_at" json:"created_at"`
}

// MortalityEvent decrements the cycle population at recording time; it is
// never retroactively recomputed.
type MortalityEvent struct {
	ID         string    `bson:"_id" json:"id"`
	CycleID    string    `bson:"cycle_id" json:"cycle_id"`
	RecordDate time.Time `bson:"record_date" json:"record_date"`
	DeadCount  int64     `bson:"dead_count" json:"dead_count"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// InputApplicationEvent captures fertilizer or probiotic applied to the pond.
type InputApplicationEvent struct {
	ID              string          `bson:"_id" json:"id"`
	CycleID         string          `bson:"cycle_id" json:"cycle_id"`
	ApplicationDate time.Time       `bson:"application_date" json:"application_date"`
	Quantity        quantity.Grams  `bson:"quantity_g" json:"quantity_g"`
	UnitCostPerKg   decimal.Decimal `bson:"unit_cost_per_kg" json:"unit_cost_per_kg"`
	TotalCost       decimal.Decimal `bson:"total_cost" json:"total_cost"`
	Purpose         string          `bson:"purpose" json:"purpose"`
	CreatedAt       time.Time       `bson:"created_at" json:"created_at"`
}

// HarvestType distinguishes a partial fishery from the total harvest that
// closes the cycle.
type HarvestType string

const (
	HarvestPartial HarvestType = "partial"
	HarvestTotal   HarvestType = "total"
)

// HarvestEvent records actual harvest figures alongside the expectations
// projected from the pre-harvest snapshot, so the reconciliation stays
// reproducible after the population has been zeroed.
type HarvestEvent struct {
	ID                     string           `bson:"_id" json:"id"`
	CycleID                string           `bson:"cycle_id" json:"cycle_id"`
	HarvestDate            time.Time        `bson:"harvest_date" json:"harvest_date"`
	Type                   HarvestType      `bson:"type" json:"type"`
	BiomassHarvested       quantity.Grams   `bson:"biomass_harvested_g" json:"biomass_harvested_g"`
	PopulationHarvested    int64            `bson:"population_harvested" json:"population_harvested"`
	AverageWeightAtHarvest quantity.Grams   `bson:"average_weight_at_harvest_g" json:"average_weight_at_harvest_g"`
	PricePerKg             *decimal.Decimal `bson:"price_per_kg,omitempty" json:"price_per_kg,omitempty"`
	ExpectedPopulation     int64            `bson:"expected_population" json:"expected_population"`
	ExpectedBiomassKg      float64          `bson:"expected_biomass_kg" json:"expected_biomass_kg"`
	MortalityDetected      int64            `bson:"mortality_detected" json:"mortality_detected"`
	CreatedAt              time.Time        `bson:"created_at" json:"created_at"`
}

// OperationalCostEntry is a farm-scoped or cycle-scoped running cost.
// CycleID is nil for farm-scoped entries, which get allocated across the
// cycles active during the cost period.
type OperationalCostEntry struct {
	ID       string          `bson:"_id" json:"id"`
	CycleID  *string         `bson:"cycle_id,omitempty" json:"cycle_id,omitempty"`
	Amount   decimal.Decimal `bson:"amount" json:"amount"`
	Category string          `bson:"category" json:"category"`
	CostDate time.Time       `bson:"cost_date" json:"cost_date"`
}

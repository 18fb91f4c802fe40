package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ovasconcelos/viveiro/pkg/quantity"
)

// PerformanceRating is the coarse categorical outcome of a cycle.
type PerformanceRating string

const (
	RatingPoor     PerformanceRating = "poor"
	RatingModerate PerformanceRating = "moderate"
	RatingGood     PerformanceRating = "good"
)

// CostBreakdown is the per-cycle cost decomposition. TotalCost is always
// the exact sum of the five parts.
type CostBreakdown struct {
	PLCost          decimal.Decimal `bson:"pl_cost" json:"pl_cost"`
	PreparationCost decimal.Decimal `bson:"preparation_cost" json:"preparation_cost"`
	FeedCost        decimal.Decimal `bson:"feed_cost" json:"feed_cost"`
	InputCost       decimal.Decimal `bson:"input_cost" json:"input_cost"`
	OperationalCost decimal.Decimal `bson:"operational_cost" json:"operational_cost"`
	TotalCost       decimal.Decimal `bson:"total_cost" json:"total_cost"`
}

// CycleMetrics is the consolidated derived view of one production cycle.
// The *Known flags distinguish "no data yet" from a true zero so callers
// can render N/A instead of misleading numbers.
type CycleMetrics struct {
	CycleID string      `bson:"cycle_id" json:"cycle_id"`
	PondID  string      `bson:"pond_id" json:"pond_id"`
	Status  CycleStatus `bson:"status" json:"status"`

	DOC             int            `bson:"doc" json:"doc"`
	SurvivalRatePct float64        `bson:"survival_rate_pct" json:"survival_rate_pct"`
	AverageWeight   quantity.Grams `bson:"average_weight_g" json:"average_weight_g"`
	WeightKnown     bool           `bson:"weight_known" json:"weight_known"`
	BiomassKg       float64        `bson:"biomass_kg" json:"biomass_kg"`
	WeeklyGrowthG   float64        `bson:"weekly_growth_g" json:"weekly_growth_g"`
	GrowthKnown     bool           `bson:"growth_known" json:"growth_known"`
	DensityPerM2    float64        `bson:"density_per_m2" json:"density_per_m2"`

	TotalFeedKg       float64         `bson:"total_feed_kg" json:"total_feed_kg"`
	BiomassProducedKg float64         `bson:"biomass_produced_kg" json:"biomass_produced_kg"`
	FCA               float64         `bson:"fca" json:"fca"`
	FCAKnown          bool            `bson:"fca_known" json:"fca_known"`
	Costs             CostBreakdown   `bson:"costs" json:"costs"`
	CostPerKg         decimal.Decimal `bson:"cost_per_kg" json:"cost_per_kg"`
	Revenue           decimal.Decimal `bson:"revenue" json:"revenue"`
	RevenueEstimated  bool            `bson:"revenue_estimated" json:"revenue_estimated"`
	Profit            decimal.Decimal `bson:"profit" json:"profit"`
	MarginPct         float64         `bson:"margin_pct" json:"margin_pct"`
	ROIPct            float64         `bson:"roi_pct" json:"roi_pct"`

	PerformanceRating PerformanceRating `bson:"performance_rating" json:"performance_rating"`
	ComputedAt        time.Time         `bson:"computed_at" json:"computed_at"`
}

// ReconciliationReport compares pre-harvest projections against the actual
// harvest figures. A positive MortalityDetected means more animals died
// than the mortality log tracked.
type ReconciliationReport struct {
	CycleID             string    `bson:"cycle_id" json:"cycle_id"`
	HarvestID           string    `bson:"harvest_id" json:"harvest_id"`
	HarvestDate         time.Time `bson:"harvest_date" json:"harvest_date"`
	ExpectedPopulation  int64     `bson:"expected_population" json:"expected_population"`
	PopulationHarvested int64     `bson:"population_harvested" json:"population_harvested"`
	MortalityDetected   int64     `bson:"mortality_detected" json:"mortality_detected"`
	ExpectedBiomassKg   float64   `bson:"expected_biomass_kg" json:"expected_biomass_kg"`
	BiomassHarvestedKg  float64   `bson:"biomass_harvested_kg" json:"biomass_harvested_kg"`
	BiomassVarianceKg   float64   `bson:"biomass_variance_kg" json:"biomass_variance_kg"`
	WeightVarianceG     float64   `bson:"weight_variance_g" json:"weight_variance_g"`
	Notes               string    `bson:"notes" json:"notes"`
}

// FarmReport is the nightly snapshot across all active cycles.
type FarmReport struct {
	GeneratedAt    time.Time       `bson:"generated_at" json:"generated_at"`
	CycleCount     int             `bson:"cycle_count" json:"cycle_count"`
	TotalBiomassKg float64         `bson:"total_biomass_kg" json:"total_biomass_kg"`
	TotalFeedKg    float64         `bson:"total_feed_kg" json:"total_feed_kg"`
	TotalCost      decimal.Decimal `bson:"total_cost" json:"total_cost"`
	Cycles         []CycleMetrics  `bson:"cycles" json:"cycles"`
}

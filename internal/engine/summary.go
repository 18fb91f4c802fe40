package engine

import (
	"github.com/shopspring/decimal"

	"github.com/ovasconcelos/viveiro/internal/domain/models"
	"github.com/ovasconcelos/viveiro/pkg/quantity"
)

// PriceCurve estimates the farm-gate price per kilogram from the average
// animal weight: heavier shrimp fetch a premium over the base price,
// one currency unit per gram above the reference weight.
type PriceCurve struct {
	BasePricePerKg  decimal.Decimal
	ReferenceWeight quantity.Grams
}

// PriceFor returns the estimated price per kg for a given average weight.
func (p PriceCurve) PriceFor(weight quantity.Grams) decimal.Decimal {
	return p.BasePricePerKg.Add(decimal.NewFromInt(int64(weight - p.ReferenceWeight)))
}

// FinancialSummary combines biomass and cost outputs into feed conversion
// and the money-side figures. RevenueEstimated distinguishes a price-curve
// projection from realized harvest revenue.
type FinancialSummary struct {
	TotalFeedKg       float64
	BiomassProducedKg float64
	FCA               float64
	FCAKnown          bool
	CostPerKg         decimal.Decimal
	Revenue           decimal.Decimal
	RevenueEstimated  bool
	Profit            decimal.Decimal
	MarginPct         float64
	ROIPct            float64
}

// Summarize derives FCA, cost per kg, revenue, profit, margin and ROI.
//
// Biomass produced means cumulative harvested biomass for completed cycles
// and current standing biomass for active ones; the two definitions must
// never be mixed.
func Summarize(rec CycleRecords, bio BioMetrics, costs models.CostBreakdown, prices PriceCurve) FinancialSummary {
	var feed quantity.Grams
	for _, f := range rec.Feedings {
		feed += f.Amount
	}

	sum := FinancialSummary{TotalFeedKg: feed.Kilograms()}

	if rec.Cycle.Status == models.CycleCompleted {
		sum.BiomassProducedKg = TotalHarvestedBiomass(rec.Harvests).Kilograms()
	} else {
		sum.BiomassProducedKg = bio.BiomassKg
	}

	if sum.BiomassProducedKg > 0 {
		sum.FCA = sum.TotalFeedKg / sum.BiomassProducedKg
		sum.FCAKnown = true
		sum.CostPerKg = costs.TotalCost.Div(decimal.NewFromFloat(sum.BiomassProducedKg)).Round(2)
	} else {
		sum.CostPerKg = decimal.Zero
	}

	sum.Revenue, sum.RevenueEstimated = revenue(rec, bio, prices)
	sum.Profit = sum.Revenue.Sub(costs.TotalCost)

	if sum.Revenue.IsPositive() {
		margin, _ := sum.Profit.Div(sum.Revenue).Mul(decimal.NewFromInt(100)).Float64()
		sum.MarginPct = margin
	}
	if costs.TotalCost.IsPositive() {
		roi, _ := sum.Profit.Div(costs.TotalCost).Mul(decimal.NewFromInt(100)).Float64()
		sum.ROIPct = roi
	}

	return sum
}

// revenue sums realized harvest revenue; only harvests with a recorded
// price contribute. An active cycle with no harvests yet gets a standing
// estimate from the price curve, flagged as estimated.
func revenue(rec CycleRecords, bio BioMetrics, prices PriceCurve) (decimal.Decimal, bool) {
	realized := decimal.Zero
	priced := false

	for _, h := range rec.Harvests {
		if h.PricePerKg == nil {
			continue
		}
		realized = realized.Add(h.BiomassHarvested.Decimal().Mul(*h.PricePerKg))
		priced = true
	}

	if priced || rec.Cycle.Status == models.CycleCompleted || len(rec.Harvests) > 0 {
		return realized, false
	}

	if !bio.WeightKnown || bio.BiomassKg <= 0 {
		return decimal.Zero, false
	}

	estimate := decimal.NewFromFloat(bio.BiomassKg).
		Mul(prices.PriceFor(bio.AverageWeight)).
		Round(2)
	return estimate, true
}

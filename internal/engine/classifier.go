package engine

import (
	"github.com/ovasconcelos/viveiro/internal/domain/models"
)

// Thresholds centralizes the classifier cut-offs. They come from
// configuration so the same values apply everywhere a rating is shown.
type Thresholds struct {
	SurvivalGoodPct     float64
	SurvivalModeratePct float64
	FCAGood             float64
	FCAModerate         float64
	GrowthGoodGPerWeek  float64
	GrowthModGPerWeek   float64
	MarginGoodPct       float64
	MarginModeratePct   float64
}

// DefaultThresholds mirrors the config defaults; kept here so library
// callers without a config layer get sane ratings.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SurvivalGoodPct:     80,
		SurvivalModeratePct: 60,
		FCAGood:             1.5,
		FCAModerate:         2.0,
		GrowthGoodGPerWeek:  1.0,
		GrowthModGPerWeek:   0.5,
		MarginGoodPct:       20,
		MarginModeratePct:   5,
	}
}

// Classify maps survival, feed conversion and weekly growth onto a coarse
// rating. Dimensions without data are skipped rather than counted against
// the cycle; with no data at all the rating defaults to moderate.
func Classify(t Thresholds, bio BioMetrics, fin FinancialSummary) models.PerformanceRating {
	var score, dims float64

	dims++
	score += gradeHigh(bio.SurvivalRatePct, t.SurvivalGoodPct, t.SurvivalModeratePct)

	if fin.FCAKnown {
		dims++
		score += gradeLow(fin.FCA, t.FCAGood, t.FCAModerate)
	}
	if bio.GrowthKnown {
		dims++
		score += gradeHigh(bio.WeeklyGrowthG, t.GrowthGoodGPerWeek, t.GrowthModGPerWeek)
	}

	return ratingFromScore(score / dims)
}

// ClassifyByMargin is the simpler variant used where only the financial
// outcome matters (e.g. the farm-wide report table).
func ClassifyByMargin(t Thresholds, marginPct float64) models.PerformanceRating {
	return ratingFromScore(gradeHigh(marginPct, t.MarginGoodPct, t.MarginModeratePct))
}

// gradeHigh scores a higher-is-better dimension: 2 good, 1 moderate, 0 poor.
func gradeHigh(value, good, moderate float64) float64 {
	switch {
	case value >= good:
		return 2
	case value >= moderate:
		return 1
	default:
		return 0
	}
}

// gradeLow scores a lower-is-better dimension such as FCA.
func gradeLow(value, good, moderate float64) float64 {
	switch {
	case value <= good:
		return 2
	case value <= moderate:
		return 1
	default:
		return 0
	}
}

func ratingFromScore(avg float64) models.PerformanceRating {
	switch {
	case avg >= 1.5:
		return models.RatingGood
	case avg >= 0.75:
		return models.RatingModerate
	default:
		return models.RatingPoor
	}
}

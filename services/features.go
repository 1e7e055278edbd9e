package services

import (
	"math"
	"strings"

	"greymarket-pipeline/models"
	"greymarket-pipeline/utils"
)

// unknownLabel fills absent categorical cells.
const unknownLabel = "Unknown"

// suspiciousRatioThreshold flags listings priced below half of MRP.
const suspiciousRatioThreshold = 0.5

// FeatureDeriver computes the derived columns. It must run strictly after
// the base cleaning, since every feature reads cleaned values. All rules
// backfill only: a value that is already present is never overwritten, which
// makes the pass idempotent.
type FeatureDeriver struct {
	logger *utils.Logger
}

// NewFeatureDeriver creates a FeatureDeriver with the given logger.
func NewFeatureDeriver(logger *utils.Logger) *FeatureDeriver {
	return &FeatureDeriver{logger: logger}
}

// Derive fills the derived columns of every record in place and records the
// backfill counts in the summary.
func (d *FeatureDeriver) Derive(ds *models.Dataset, summary *models.CleaningSummary) {
	for _, rec := range ds.Records {
		d.deriveRecord(rec, summary)
	}

	d.logger.Info("[features] Derived price_mrp_ratio, suspicious_pricing, has_review, rating_quality_score")
	d.logger.Info("[features] Backfilled %d discount_percent and %d brand values",
		summary.DiscountBackfills, summary.BrandBackfills)
}

func (d *FeatureDeriver) deriveRecord(rec *models.Record, summary *models.CleaningSummary) {
	// Backfill discount only when it was absent; an inconsistent original
	// value stays untouched.
	if rec.DiscountPercent == nil && rec.Price != nil && rec.MRP != nil && *rec.MRP > 0 {
		pct := round2((*rec.MRP - *rec.Price) / *rec.MRP * 100)
		rec.DiscountPercent = &pct
		summary.DiscountBackfills++
	}

	if rec.Brand == "" && rec.ProductName != "" {
		rec.Brand = strings.Fields(rec.ProductName)[0]
		summary.BrandBackfills++
	}

	if rec.PriceMRPRatio == nil && rec.Price != nil && rec.MRP != nil && *rec.MRP > 0 {
		ratio := *rec.Price / *rec.MRP
		rec.PriceMRPRatio = &ratio
	}

	// An absent ratio maps to false, not to an absent flag.
	rec.SuspiciousPricing = rec.PriceMRPRatio != nil && *rec.PriceMRPRatio < suspiciousRatioThreshold

	rec.HasReview = rec.ReviewText != ""

	if rec.RatingQualityScore == nil && rec.ProductRating != nil && rec.NumRatings != nil {
		score := *rec.ProductRating * math.Log1p(float64(*rec.NumRatings))
		rec.RatingQualityScore = &score
	}

	if rec.Platform == "" {
		rec.Platform = unknownLabel
		summary.PlatformFills++
	}
	if rec.SellerName == "" {
		rec.SellerName = unknownLabel
		summary.SellerFills++
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greymarket-pipeline/models"
)

func deriveOne(t *testing.T, rec *models.Record) *models.CleaningSummary {
	t.Helper()
	ds := &models.Dataset{Records: []*models.Record{rec}}
	summary := models.NewCleaningSummary(1)
	NewFeatureDeriver(newTestLogger()).Derive(ds, summary)
	return summary
}

func TestDiscountBackfill(t *testing.T) {
	rec := &models.Record{Price: models.Float(80), MRP: models.Float(100)}
	summary := deriveOne(t, rec)

	require.NotNil(t, rec.DiscountPercent)
	assert.Equal(t, 20.0, *rec.DiscountPercent)
	assert.Equal(t, 1, summary.DiscountBackfills)
}

func TestDiscountNeverOverwritten(t *testing.T) {
	// Present but inconsistent with price/mrp: stays untouched.
	rec := &models.Record{
		Price:           models.Float(80),
		MRP:             models.Float(100),
		DiscountPercent: models.Float(55),
	}
	summary := deriveOne(t, rec)

	assert.Equal(t, 55.0, *rec.DiscountPercent)
	assert.Equal(t, 0, summary.DiscountBackfills)
}

func TestDiscountRounding(t *testing.T) {
	rec := &models.Record{Price: models.Float(70), MRP: models.Float(300)}
	deriveOne(t, rec)

	require.NotNil(t, rec.DiscountPercent)
	assert.Equal(t, 76.67, *rec.DiscountPercent)
}

func TestDiscountSkippedWithoutBothInputs(t *testing.T) {
	rec := &models.Record{Price: models.Float(80)}
	deriveOne(t, rec)
	assert.Nil(t, rec.DiscountPercent)

	rec = &models.Record{Price: models.Float(80), MRP: models.Float(0)}
	deriveOne(t, rec)
	assert.Nil(t, rec.DiscountPercent)
}

func TestBrandBackfill(t *testing.T) {
	rec := &models.Record{ProductName: "Acme Phone X"}
	summary := deriveOne(t, rec)

	assert.Equal(t, "Acme", rec.Brand)
	assert.Equal(t, 1, summary.BrandBackfills)
}

func TestBrandNotOverwritten(t *testing.T) {
	rec := &models.Record{ProductName: "Acme Phone X", Brand: "OtherBrand"}
	summary := deriveOne(t, rec)

	assert.Equal(t, "OtherBrand", rec.Brand)
	assert.Equal(t, 0, summary.BrandBackfills)
}

func TestPriceMRPRatioAndSuspiciousFlag(t *testing.T) {
	rec := &models.Record{Price: models.Float(40), MRP: models.Float(100)}
	deriveOne(t, rec)
	require.NotNil(t, rec.PriceMRPRatio)
	assert.Equal(t, 0.4, *rec.PriceMRPRatio)
	assert.True(t, rec.SuspiciousPricing)

	rec = &models.Record{Price: models.Float(60), MRP: models.Float(100)}
	deriveOne(t, rec)
	assert.Equal(t, 0.6, *rec.PriceMRPRatio)
	assert.False(t, rec.SuspiciousPricing)
}

func TestSuspiciousFalseWhenRatioAbsent(t *testing.T) {
	// Absence of the ratio maps to false, not to an absent flag.
	rec := &models.Record{MRP: models.Float(100)}
	deriveOne(t, rec)
	assert.Nil(t, rec.PriceMRPRatio)
	assert.False(t, rec.SuspiciousPricing)
}

func TestHasReview(t *testing.T) {
	rec := &models.Record{ReviewText: "solid product"}
	deriveOne(t, rec)
	assert.True(t, rec.HasReview)

	rec = &models.Record{}
	deriveOne(t, rec)
	assert.False(t, rec.HasReview)
}

func TestRatingQualityScore(t *testing.T) {
	rec := &models.Record{ProductRating: models.Float(4), NumRatings: models.Int(100)}
	deriveOne(t, rec)

	require.NotNil(t, rec.RatingQualityScore)
	assert.InDelta(t, 4*math.Log1p(100), *rec.RatingQualityScore, 1e-12)

	rec = &models.Record{ProductRating: models.Float(4)}
	deriveOne(t, rec)
	assert.Nil(t, rec.RatingQualityScore)
}

func TestUnknownFills(t *testing.T) {
	rec := &models.Record{}
	summary := deriveOne(t, rec)

	assert.Equal(t, "Unknown", rec.Platform)
	assert.Equal(t, "Unknown", rec.SellerName)
	assert.Equal(t, 1, summary.PlatformFills)
	assert.Equal(t, 1, summary.SellerFills)
}

func TestDeriveIdempotent(t *testing.T) {
	rec := &models.Record{
		ProductName:   "Acme Phone X",
		Price:         models.Float(40),
		MRP:           models.Float(100),
		ProductRating: models.Float(4.2),
		NumRatings:    models.Int(512),
		ReviewText:    "good",
	}
	deriveOne(t, rec)
	snapshot := *rec

	deriveOne(t, rec)
	assert.Equal(t, snapshot, *rec)
}

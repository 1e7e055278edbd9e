package models

// Known column names, case-sensitive, as they appear in the source header.
const (
	ColPrice           = "price"
	ColMRP             = "mrp"
	ColDiscountPercent = "discount_percent"
	ColProductRating   = "product_rating"
	ColNumRatings      = "num_ratings"
	ColReviewRating    = "review_rating"
	ColBrand           = "brand"
	ColProductName     = "product_name"
	ColReviewText      = "review_text"
	ColPlatform        = "platform"
	ColSellerName      = "seller_name"
)

// Derived column names, appended to the output in this order.
const (
	ColPriceMRPRatio      = "price_mrp_ratio"
	ColSuspiciousPricing  = "suspicious_pricing"
	ColHasReview          = "has_review"
	ColRatingQualityScore = "rating_quality_score"
)

// KnownColumns lists every column the cleaner understands. All of them must
// be present in the input header; anything else is passthrough.
var KnownColumns = []string{
	ColPrice, ColMRP, ColDiscountPercent,
	ColProductRating, ColNumRatings, ColReviewRating,
	ColBrand, ColProductName, ColReviewText,
	ColPlatform, ColSellerName,
}

// DerivedColumns lists the columns appended by the feature pass.
var DerivedColumns = []string{
	ColPriceMRPRatio, ColSuspiciousPricing, ColHasReview, ColRatingQualityScore,
}

// RawRecord holds one unprocessed row exactly as read from the input file.
// Every field is the raw cell text; an empty string means the cell was empty.
// Extras carries the cells of passthrough columns, aligned with
// RawTable.ExtraColumns.
type RawRecord struct {
	ProductName     string
	Brand           string
	Platform        string
	SellerName      string
	Price           string
	MRP             string
	DiscountPercent string
	ProductRating   string
	ReviewRating    string
	NumRatings      string
	ReviewText      string
	Extras          []string
}

// RawTable is the loaded input: source header order plus one RawRecord per
// data row. Row order is file order and is preserved through the pipeline.
type RawTable struct {
	Columns      []string // full header, source order
	ExtraColumns []string // passthrough column names, source order
	Records      []*RawRecord
}

// Known returns the raw cell for a known column name, or false for a
// passthrough column.
func (r *RawRecord) Known(col string) (string, bool) {
	switch col {
	case ColProductName:
		return r.ProductName, true
	case ColBrand:
		return r.Brand, true
	case ColPlatform:
		return r.Platform, true
	case ColSellerName:
		return r.SellerName, true
	case ColPrice:
		return r.Price, true
	case ColMRP:
		return r.MRP, true
	case ColDiscountPercent:
		return r.DiscountPercent, true
	case ColProductRating:
		return r.ProductRating, true
	case ColReviewRating:
		return r.ReviewRating, true
	case ColNumRatings:
		return r.NumRatings, true
	case ColReviewText:
		return r.ReviewText, true
	}
	return "", false
}

// Row reconstructs row i in source column order, passthrough cells included.
func (t *RawTable) Row(i int) []string {
	r := t.Records[i]
	out := make([]string, 0, len(t.Columns))
	extra := 0
	for _, col := range t.Columns {
		if v, ok := r.Known(col); ok {
			out = append(out, v)
			continue
		}
		out = append(out, r.Extras[extra])
		extra++
	}
	return out
}

// Record is one cleaned listing. Numeric fields use nil for absence; text
// fields use the empty string. Derived fields are filled by the feature
// pass, never by the base cleaner.
type Record struct {
	ProductName string
	Brand       string
	Platform    string
	SellerName  string
	ReviewText  string

	Price           *float64
	MRP             *float64
	DiscountPercent *float64
	ProductRating   *float64
	ReviewRating    *float64
	NumRatings      *int64

	PriceMRPRatio      *float64
	SuspiciousPricing  bool
	HasReview          bool
	RatingQualityScore *float64

	Extras []string
}

// Dataset is the cleaned table handed to the writer, the insight service
// and the chart reporter.
type Dataset struct {
	Columns      []string
	ExtraColumns []string
	Records      []*Record
}

// Rows returns the number of records.
func (d *Dataset) Rows() int { return len(d.Records) }

// Float returns a pointer to v. Convenience for building records by hand.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int64) *int64 { return &v }

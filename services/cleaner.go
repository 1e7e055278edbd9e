package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"greymarket-pipeline/models"
	"greymarket-pipeline/utils"
)

var (
	// nonNumericRegexp matches everything a numeric cell may not contain.
	nonNumericRegexp = regexp.MustCompile(`[^0-9.\-]`)
	// numberRegexp captures the first decimal-or-integer numeral in free text.
	numberRegexp = regexp.MustCompile(`\d+\.?\d*`)
	// digitRunRegexp captures the first run of digits.
	digitRunRegexp = regexp.MustCompile(`\d+`)
)

// Cleaner repairs the base columns of raw listings. Every transform is
// column-local: a cell that cannot be coerced degrades to absent and is
// counted in the summary, never raised as an error.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean converts the raw table into a typed dataset and reports per-column
// missing counts. Row count and order are preserved; no row is ever dropped.
func (c *Cleaner) Clean(table *models.RawTable) (*models.Dataset, *models.CleaningSummary) {
	summary := models.NewCleaningSummary(len(table.Records))

	ds := &models.Dataset{
		Columns:      table.Columns,
		ExtraColumns: table.ExtraColumns,
		Records:      make([]*models.Record, 0, len(table.Records)),
	}

	for _, raw := range table.Records {
		rec := &models.Record{
			ProductName: normaliseText(raw.ProductName),
			Brand:       normaliseText(raw.Brand),
			Platform:    normaliseText(raw.Platform),
			SellerName:  normaliseText(raw.SellerName),
			ReviewText:  normaliseText(raw.ReviewText),

			Price:           c.cleanNumeric(raw.Price, true),
			MRP:             c.cleanNumeric(raw.MRP, true),
			DiscountPercent: c.cleanNumeric(raw.DiscountPercent, false),
			ProductRating:   c.extractRating(raw.ProductRating),
			ReviewRating:    c.extractRating(raw.ReviewRating),
			NumRatings:      c.extractCount(raw.NumRatings),

			Extras: raw.Extras,
		}
		ds.Records = append(ds.Records, rec)

		countText(summary, models.ColProductName, raw.ProductName, rec.ProductName)
		countText(summary, models.ColBrand, raw.Brand, rec.Brand)
		countText(summary, models.ColPlatform, raw.Platform, rec.Platform)
		countText(summary, models.ColSellerName, raw.SellerName, rec.SellerName)
		countText(summary, models.ColReviewText, raw.ReviewText, rec.ReviewText)
		countFloat(summary, models.ColPrice, raw.Price, rec.Price)
		countFloat(summary, models.ColMRP, raw.MRP, rec.MRP)
		countFloat(summary, models.ColDiscountPercent, raw.DiscountPercent, rec.DiscountPercent)
		countFloat(summary, models.ColProductRating, raw.ProductRating, rec.ProductRating)
		countFloat(summary, models.ColReviewRating, raw.ReviewRating, rec.ReviewRating)
		if strings.TrimSpace(raw.NumRatings) == "" {
			summary.Stats(models.ColNumRatings).MissingBefore++
		}
		if rec.NumRatings == nil {
			summary.Stats(models.ColNumRatings).MissingAfter++
		}
	}

	c.logger.Info("[cleaner] Cleaned %d rows across %d columns", len(ds.Records), len(ds.Columns))
	for _, col := range models.KnownColumns {
		st := summary.Stats(col)
		if st.MissingAfter > 0 || st.MissingBefore > 0 {
			c.logger.Info("[cleaner] %s: missing %d → %d", col, st.MissingBefore, st.MissingAfter)
		}
	}

	return ds, summary
}

// cleanNumeric coerces an arbitrary cell to a float. Everything outside
// [0-9.-] is stripped before parsing; parse failure yields absent, and so
// does a negative value when removeNegative is set.
func (c *Cleaner) cleanNumeric(raw string, removeNegative bool) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = nonNumericRegexp.ReplaceAllString(s, "")
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if removeNegative && val < 0 {
		return nil
	}
	return &val
}

// extractRating pulls a 0-5 rating out of free text such as
// "4.5 out of 5 stars". Values above 5 are assumed to come from an
// out-of-10 or doubled scale and rescaled (/10 if >10, else /2). This is
// a heuristic about source units, not a guaranteed-correct conversion.
// Results outside [0,5] after rescaling are rejected as absent.
func (c *Cleaner) extractRating(raw string) *float64 {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	match := numberRegexp.FindString(raw)
	if match == "" {
		return nil
	}
	val, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	if val > 5 {
		if val > 10 {
			val = val / 10
		} else {
			val = val / 2
		}
	}
	if val < 0 || val > 5 {
		return nil
	}
	return &val
}

// extractCount pulls a non-negative integer out of cells like "12,345" or
// "-1,000": commas and minus signs are stripped, then the first digit run
// is parsed.
func (c *Cleaner) extractCount(raw string) *int64 {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	s := strings.ReplaceAll(raw, ",", "")
	s = strings.ReplaceAll(s, "-", "")
	match := digitRunRegexp.FindString(s)
	if match == "" {
		return nil
	}
	val, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return nil
	}
	return &val
}

// normaliseText strips leading/trailing whitespace and collapses internal
// whitespace. A cell that is empty afterwards is absent.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

func countText(s *models.CleaningSummary, col, raw, cleaned string) {
	if strings.TrimSpace(raw) == "" {
		s.Stats(col).MissingBefore++
	}
	if cleaned == "" {
		s.Stats(col).MissingAfter++
	}
}

func countFloat(s *models.CleaningSummary, col, raw string, cleaned *float64) {
	if strings.TrimSpace(raw) == "" {
		s.Stats(col).MissingBefore++
	}
	if cleaned == nil {
		s.Stats(col).MissingAfter++
	}
}

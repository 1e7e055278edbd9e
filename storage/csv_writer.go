package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"greymarket-pipeline/models"
)

// CSVWriter serializes the cleaned dataset to a CSV file: the source
// columns in their original order, then the four derived columns.
type CSVWriter struct {
	path string
}

// NewCSVWriter returns a writer targeting the given path. Intermediate
// directories are created on Write.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Write creates (or truncates) the output file and writes the header plus
// every record, row order preserved. Absent values become empty cells;
// booleans are written as 1/0.
func (c *CSVWriter) Write(ds *models.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", c.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := make([]string, 0, len(ds.Columns)+len(models.DerivedColumns))
	header = append(header, ds.Columns...)
	header = append(header, models.DerivedColumns...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, rec := range ds.Records {
		row, err := formatRow(ds.Columns, rec)
		if err != nil {
			return err
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func formatRow(columns []string, rec *models.Record) ([]string, error) {
	row := make([]string, 0, len(columns)+len(models.DerivedColumns))
	extra := 0
	for _, col := range columns {
		cell, known := formatKnown(rec, col)
		if known {
			row = append(row, cell)
			continue
		}
		if extra >= len(rec.Extras) {
			return nil, fmt.Errorf("csv: record has no cell for passthrough column %q", col)
		}
		row = append(row, rec.Extras[extra])
		extra++
	}

	row = append(row,
		floatCell(rec.PriceMRPRatio),
		boolCell(rec.SuspiciousPricing),
		boolCell(rec.HasReview),
		floatCell(rec.RatingQualityScore),
	)
	return row, nil
}

func formatKnown(rec *models.Record, col string) (string, bool) {
	switch col {
	case models.ColProductName:
		return rec.ProductName, true
	case models.ColBrand:
		return rec.Brand, true
	case models.ColPlatform:
		return rec.Platform, true
	case models.ColSellerName:
		return rec.SellerName, true
	case models.ColReviewText:
		return rec.ReviewText, true
	case models.ColPrice:
		return floatCell(rec.Price), true
	case models.ColMRP:
		return floatCell(rec.MRP), true
	case models.ColDiscountPercent:
		return floatCell(rec.DiscountPercent), true
	case models.ColProductRating:
		return floatCell(rec.ProductRating), true
	case models.ColReviewRating:
		return floatCell(rec.ReviewRating), true
	case models.ColNumRatings:
		return intCell(rec.NumRatings), true
	}
	return "", false
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func intCell(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func boolCell(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

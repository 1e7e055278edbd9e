package storage

import (
	"encoding/csv"
	"fmt"
	"os"

	"greymarket-pipeline/models"
)

// CSVReader loads the raw listings table from a delimited file.
type CSVReader struct {
	path string
}

// NewCSVReader returns a reader for the file at the given path.
func NewCSVReader(path string) *CSVReader {
	return &CSVReader{path: path}
}

// Load reads the whole file into a RawTable. Any structural problem
// (unreadable file, ragged rows, a known column missing from the header)
// is fatal and nothing downstream runs.
func (r *CSVReader) Load() (*models.RawTable, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", r.path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %q: %w", r.path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv: %q has no header row", r.path)
	}

	header := rows[0]
	index, err := indexColumns(header)
	if err != nil {
		return nil, fmt.Errorf("csv: %q: %w", r.path, err)
	}

	table := &models.RawTable{
		Columns: header,
		Records: make([]*models.RawRecord, 0, len(rows)-1),
	}
	for _, col := range header {
		if !isKnown(col) {
			table.ExtraColumns = append(table.ExtraColumns, col)
		}
	}

	for _, row := range rows[1:] {
		rec := &models.RawRecord{
			Price:           row[index[models.ColPrice]],
			MRP:             row[index[models.ColMRP]],
			DiscountPercent: row[index[models.ColDiscountPercent]],
			ProductRating:   row[index[models.ColProductRating]],
			NumRatings:      row[index[models.ColNumRatings]],
			ReviewRating:    row[index[models.ColReviewRating]],
			Brand:           row[index[models.ColBrand]],
			ProductName:     row[index[models.ColProductName]],
			ReviewText:      row[index[models.ColReviewText]],
			Platform:        row[index[models.ColPlatform]],
			SellerName:      row[index[models.ColSellerName]],
		}
		for i, col := range header {
			if !isKnown(col) {
				rec.Extras = append(rec.Extras, row[i])
			}
		}
		table.Records = append(table.Records, rec)
	}

	return table, nil
}

// indexColumns maps known column names to their header positions and
// rejects a header missing any of them.
func indexColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}

	var missing []string
	for _, col := range models.KnownColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns %v", missing)
	}
	return index, nil
}

func isKnown(col string) bool {
	for _, k := range models.KnownColumns {
		if col == k {
			return true
		}
	}
	return false
}

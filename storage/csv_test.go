package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greymarket-pipeline/models"
)

const sampleCSV = `product_name,brand,platform,seller_name,price,mrp,discount_percent,product_rating,num_ratings,review_rating,review_text,source_url
Acme Phone X,Acme,MarketA,StoreOne,999,"1,299",,4.5 out of 5 stars,"1,024",4.0,good phone,https://a.example/1
Gadget Mini,,MarketB,,-10,500,20,95,none,,,https://a.example/2
`

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCSVReaderLoad(t *testing.T) {
	table, err := NewCSVReader(writeSample(t, sampleCSV)).Load()
	require.NoError(t, err)

	assert.Len(t, table.Records, 2)
	assert.Len(t, table.Columns, 12)
	assert.Equal(t, []string{"source_url"}, table.ExtraColumns)

	rec := table.Records[0]
	assert.Equal(t, "Acme Phone X", rec.ProductName)
	assert.Equal(t, "1,299", rec.MRP)
	assert.Equal(t, []string{"https://a.example/1"}, rec.Extras)

	// Row reconstruction keeps source column order.
	row := table.Row(0)
	assert.Equal(t, "Acme Phone X", row[0])
	assert.Equal(t, "https://a.example/1", row[11])
}

func TestCSVReaderMissingColumnIsFatal(t *testing.T) {
	content := "product_name,price\nAcme Phone X,999\n"
	_, err := NewCSVReader(writeSample(t, content)).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestCSVReaderMissingFileIsFatal(t *testing.T) {
	_, err := NewCSVReader(filepath.Join(t.TempDir(), "nope.csv")).Load()
	require.Error(t, err)
}

func TestCSVReaderRaggedRowIsFatal(t *testing.T) {
	content := sampleCSV + "short,row\n"
	_, err := NewCSVReader(writeSample(t, content)).Load()
	require.Error(t, err)
}

func TestCSVWriterAppendsDerivedColumns(t *testing.T) {
	ds := &models.Dataset{
		Columns:      append(append([]string{}, models.KnownColumns...), "source_url"),
		ExtraColumns: []string{"source_url"},
		Records: []*models.Record{
			{
				ProductName:        "Acme Phone X",
				Brand:              "Acme",
				Platform:           "MarketA",
				SellerName:         "StoreOne",
				ReviewText:         "good phone",
				Price:              models.Float(999),
				MRP:                models.Float(1299),
				DiscountPercent:    models.Float(23.09),
				ProductRating:      models.Float(4.5),
				ReviewRating:       models.Float(4),
				NumRatings:         models.Int(1024),
				PriceMRPRatio:      models.Float(0.4),
				SuspiciousPricing:  true,
				HasReview:          true,
				RatingQualityScore: models.Float(31.2),
				Extras:             []string{"https://a.example/1"},
			},
			{
				Platform:   "Unknown",
				SellerName: "Unknown",
				Extras:     []string{"https://a.example/2"},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "out", "processed.csv")
	require.NoError(t, NewCSVWriter(path).Write(ds))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 records, none dropped

	header := rows[0]
	assert.Len(t, header, len(ds.Columns)+4)
	assert.Equal(t, "source_url", header[11])
	assert.Equal(t,
		[]string{"price_mrp_ratio", "suspicious_pricing", "has_review", "rating_quality_score"},
		header[len(header)-4:])

	first := rows[1]
	assert.Equal(t, "999", first[0])          // price leads the schema order
	assert.Equal(t, "1", first[len(first)-3]) // suspicious_pricing
	assert.Equal(t, "1", first[len(first)-2]) // has_review
	assert.Equal(t, "https://a.example/1", first[11])

	second := rows[2]
	assert.Equal(t, "", second[0])              // absent price → empty cell
	assert.Equal(t, "0", second[len(second)-3]) // absent ratio → 0, not empty
	assert.Equal(t, "0", second[len(second)-2])
	assert.Equal(t, "", second[len(second)-1])
	assert.Equal(t, "Unknown", second[9])
}

func TestCSVWriterColumnOrder(t *testing.T) {
	// Columns keep source order even when it differs from the schema order.
	cols := []string{"price", "extra_a", "product_name", "mrp", "discount_percent",
		"product_rating", "num_ratings", "review_rating", "brand",
		"review_text", "platform", "seller_name"}
	ds := &models.Dataset{
		Columns:      cols,
		ExtraColumns: []string{"extra_a"},
		Records: []*models.Record{
			{ProductName: "Widget", Price: models.Float(10), Extras: []string{"x"}},
		},
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, NewCSVWriter(path).Write(ds))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, "price", rows[0][0])
	assert.Equal(t, "extra_a", rows[0][1])
	assert.Equal(t, "10", rows[1][0])
	assert.Equal(t, "x", rows[1][1])
	assert.Equal(t, "Widget", rows[1][2])
}

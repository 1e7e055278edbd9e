package services

import (
	"testing"

	"greymarket-pipeline/models"
	"greymarket-pipeline/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func TestCleanNumeric(t *testing.T) {
	c := NewCleaner(newTestLogger())

	tests := []struct {
		raw            string
		removeNegative bool
		want           float64
		absent         bool
	}{
		{"1299", true, 1299, false},
		{"₹1,299", true, 1299, false},
		{"1,234.56", true, 1234.56, false},
		{"  499  ", true, 499, false},
		{"$ 79.99", true, 79.99, false},
		{"-50", true, 0, true},
		{"-50", false, -50, false},
		{"", true, 0, true},
		{"free", true, 0, true},
		{"N/A", true, 0, true},
	}

	for _, tt := range tests {
		got := c.cleanNumeric(tt.raw, tt.removeNegative)
		if tt.absent {
			if got != nil {
				t.Errorf("cleanNumeric(%q, %v) = %v; want absent", tt.raw, tt.removeNegative, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("cleanNumeric(%q, %v) = absent; want %v", tt.raw, tt.removeNegative, tt.want)
			continue
		}
		if *got != tt.want {
			t.Errorf("cleanNumeric(%q, %v) = %v; want %v", tt.raw, tt.removeNegative, *got, tt.want)
		}
	}
}

func TestExtractRating(t *testing.T) {
	c := NewCleaner(newTestLogger())

	tests := []struct {
		raw    string
		want   float64
		absent bool
	}{
		{"4.5 out of 5 stars", 4.5, false},
		{"3.8", 3.8, false},
		{"5", 5, false},
		{"9", 4.5, false},   // doubled scale, rescaled by /2
		{"12", 1.2, false},  // out-of-10 scale, rescaled by /10
		{"95", 0, true},     // 9.5 after /10, outside [0,5]
		{"", 0, true},
		{"no rating", 0, true},
		{"rated 4 by users", 4, false},
	}

	for _, tt := range tests {
		got := c.extractRating(tt.raw)
		if tt.absent {
			if got != nil {
				t.Errorf("extractRating(%q) = %v; want absent", tt.raw, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("extractRating(%q) = absent; want %v", tt.raw, tt.want)
			continue
		}
		if *got != tt.want {
			t.Errorf("extractRating(%q) = %v; want %v", tt.raw, *got, tt.want)
		}
	}
}

func TestExtractCount(t *testing.T) {
	c := NewCleaner(newTestLogger())

	tests := []struct {
		raw    string
		want   int64
		absent bool
	}{
		{"12,345", 12345, false},
		{"-1,000", 1000, false},
		{"about 250 ratings", 250, false},
		{"42", 42, false},
		{"no data", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got := c.extractCount(tt.raw)
		if tt.absent {
			if got != nil {
				t.Errorf("extractCount(%q) = %v; want absent", tt.raw, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("extractCount(%q) = absent; want %v", tt.raw, tt.want)
			continue
		}
		if *got != tt.want {
			t.Errorf("extractCount(%q) = %v; want %v", tt.raw, *got, tt.want)
		}
	}
}

func TestNormaliseText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"  Acme   Phone ", "Acme Phone"},
		{"\tBrandX\n", "BrandX"},
		{"   ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normaliseText(tt.raw); got != tt.want {
			t.Errorf("normaliseText(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCleanPreservesRowsAndCountsMissing(t *testing.T) {
	c := NewCleaner(newTestLogger())

	table := &models.RawTable{
		Columns:      append(append([]string{}, models.KnownColumns...), "source_url"),
		ExtraColumns: []string{"source_url"},
		Records: []*models.RawRecord{
			{ProductName: "Acme Phone X", Price: "999", MRP: "1,299", ProductRating: "4.5 out of 5 stars",
				NumRatings: "1,024", Platform: "MarketA", SellerName: "StoreOne",
				Extras: []string{"https://a.example/1"}},
			{ProductName: "Gadget", Price: "-10", MRP: "garbage", ProductRating: "95",
				NumRatings: "none", ReviewText: "works fine",
				Extras: []string{"https://a.example/2"}},
		},
	}

	ds, summary := c.Clean(table)

	if len(ds.Records) != 2 {
		t.Fatalf("row count changed: got %d, want 2", len(ds.Records))
	}
	if summary.Rows != 2 {
		t.Errorf("summary.Rows = %d, want 2", summary.Rows)
	}

	// Row 2's price was negative, mrp unparseable, rating out of range and
	// count non-numeric: all must degrade to absent, never to an error.
	rec := ds.Records[1]
	if rec.Price != nil || rec.MRP != nil || rec.ProductRating != nil || rec.NumRatings != nil {
		t.Errorf("malformed cells did not degrade to absent: %+v", rec)
	}

	if got := summary.Stats(models.ColPrice).MissingAfter; got != 1 {
		t.Errorf("price MissingAfter = %d, want 1", got)
	}
	if got := summary.Stats(models.ColMRP).MissingAfter; got != 1 {
		t.Errorf("mrp MissingAfter = %d, want 1", got)
	}
	if got := summary.Stats(models.ColBrand).MissingBefore; got != 2 {
		t.Errorf("brand MissingBefore = %d, want 2", got)
	}

	// Row 1 parses cleanly.
	rec = ds.Records[0]
	if rec.Price == nil || *rec.Price != 999 {
		t.Errorf("price: got %v, want 999", rec.Price)
	}
	if rec.MRP == nil || *rec.MRP != 1299 {
		t.Errorf("mrp: got %v, want 1299", rec.MRP)
	}
	if rec.ProductRating == nil || *rec.ProductRating != 4.5 {
		t.Errorf("product_rating: got %v, want 4.5", rec.ProductRating)
	}
	if rec.NumRatings == nil || *rec.NumRatings != 1024 {
		t.Errorf("num_ratings: got %v, want 1024", rec.NumRatings)
	}
	if len(rec.Extras) != 1 || rec.Extras[0] != "https://a.example/1" {
		t.Errorf("passthrough cells not preserved: %v", rec.Extras)
	}
}

func TestCleanNumericIdempotent(t *testing.T) {
	c := NewCleaner(newTestLogger())

	// Re-cleaning an already-clean value is a no-op.
	first := c.cleanNumeric("1,299.50", true)
	if first == nil {
		t.Fatal("first pass returned absent")
	}
	second := c.cleanNumeric("1299.5", true)
	if second == nil || *second != *first {
		t.Errorf("second pass: got %v, want %v", second, *first)
	}
}

package models

// ColumnStats tracks how one column fared during cleaning. Per-cell parse
// failures are never raised; they only show up here as missing counts.
type ColumnStats struct {
	MissingBefore int
	MissingAfter  int
}

// CleaningSummary is the aggregate report of the cleaning stage: missing
// counts per column plus how many values the feature pass backfilled.
type CleaningSummary struct {
	Rows              int
	Columns           map[string]*ColumnStats
	DiscountBackfills int
	BrandBackfills    int
	PlatformFills     int
	SellerFills       int
}

// NewCleaningSummary returns a summary with stats slots for every known
// column.
func NewCleaningSummary(rows int) *CleaningSummary {
	cols := make(map[string]*ColumnStats, len(KnownColumns))
	for _, c := range KnownColumns {
		cols[c] = &ColumnStats{}
	}
	return &CleaningSummary{Rows: rows, Columns: cols}
}

// Stats returns the stats slot for a column, creating it if needed.
func (s *CleaningSummary) Stats(col string) *ColumnStats {
	st, ok := s.Columns[col]
	if !ok {
		st = &ColumnStats{}
		s.Columns[col] = st
	}
	return st
}

// QualityReport holds the analytics computed over the cleaned dataset.
type QualityReport struct {
	TotalRecords int

	AveragePrice    float64
	MinPrice        float64
	MaxPrice        float64
	PricedRecords   int
	AverageDiscount float64

	SuspiciousCount int
	ReviewedCount   int

	PlatformCounts map[string]int
	TopBrands      []NameCount
	TopSellers     []NameCount

	MissingByColumn map[string]int
}

// NameCount is a label with an occurrence count, used for top-N rankings.
type NameCount struct {
	Name  string
	Count int
}

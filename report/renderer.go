package report

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	svg "github.com/ajstarks/svgo"

	"greymarket-pipeline/models"
	"greymarket-pipeline/utils"
)

// Renderer writes the static SVG chart set describing data quality and
// business signals over the cleaned dataset. It is a pure consumer: it
// never mutates the dataset.
type Renderer struct {
	dir    string
	style  Style
	logger *utils.Logger
}

// NewRenderer creates a Renderer writing under dir with the given style.
func NewRenderer(dir string, style Style, logger *utils.Logger) *Renderer {
	return &Renderer{dir: dir, style: style, logger: logger}
}

// RenderAll produces every chart. A chart with no data is skipped; a chart
// that fails to write is logged and the remaining charts still render.
func (r *Renderer) RenderAll(ds *models.Dataset, rep *models.QualityReport) error {
	for _, sub := range []string{"preprocessing", "analysis", "dashboard"} {
		if err := os.MkdirAll(filepath.Join(r.dir, sub), 0755); err != nil {
			return fmt.Errorf("report: create charts dir: %w", err)
		}
	}

	charts := []struct {
		name   string
		render func() error
	}{
		{"preprocessing/01_missing_values.svg", func() error { return r.missingValues(rep) }},
		{"preprocessing/02_data_quality.svg", func() error { return r.dataQuality(rep) }},
		{"preprocessing/03_price_distribution.svg", func() error {
			return r.histogram("preprocessing/03_price_distribution.svg",
				"Distribution of price", prices(ds), 30, r.style.Bar, false)
		}},
		{"preprocessing/04_mrp_distribution.svg", func() error {
			return r.histogram("preprocessing/04_mrp_distribution.svg",
				"Distribution of mrp", mrps(ds), 30, r.style.Bar, false)
		}},
		{"preprocessing/05_discount_distribution.svg", func() error {
			return r.histogram("preprocessing/05_discount_distribution.svg",
				"Distribution of discount_percent", discounts(ds), 30, r.style.Bar, false)
		}},
		{"preprocessing/06_rating_distribution.svg", func() error {
			return r.histogram("preprocessing/06_rating_distribution.svg",
				"Distribution of product_rating", productRatings(ds), 20, r.style.Bar, false)
		}},
		{"preprocessing/07_num_ratings_distribution.svg", func() error {
			return r.histogram("preprocessing/07_num_ratings_distribution.svg",
				"Distribution of num_ratings", ratingCounts(ds), 30, r.style.Bar, false)
		}},
		{"analysis/01_platform_distribution.svg", func() error { return r.platforms(rep) }},
		{"analysis/02_price_by_platform.svg", func() error { return r.priceByPlatform(ds) }},
		{"analysis/03_discount_distribution.svg", func() error {
			return r.histogram("analysis/03_discount_distribution.svg",
				"Distribution of Discount Percentages", discounts(ds), 30, "#9b59b6", true)
		}},
		{"analysis/04_rating_distribution.svg", func() error {
			return r.histogram("analysis/04_rating_distribution.svg",
				"Product Rating Distribution", productRatings(ds), 20, "#f39c12", false)
		}},
		{"analysis/05_rating_by_platform.svg", func() error { return r.ratingByPlatform(ds) }},
		{"analysis/06_top_brands.svg", func() error { return r.topBrands(ds) }},
		{"analysis/07_suspicious_pricing.svg", func() error { return r.suspicious(rep) }},
		{"analysis/08_suspicious_by_platform.svg", func() error { return r.suspiciousByPlatform(ds) }},
		{"analysis/09_correlation_heatmap.svg", func() error { return r.correlationHeatmap(ds) }},
		{"analysis/10_top_sellers.svg", func() error { return r.topSellers(ds) }},
		{"dashboard/dashboard.svg", func() error { return r.dashboard(ds, rep) }},
	}

	rendered := 0
	for _, ch := range charts {
		if err := ch.render(); err != nil {
			if errors.Is(err, errNoData) {
				r.logger.Debug("[report] %s skipped: no data", ch.name)
			} else {
				r.logger.Warn("[report] %s failed: %v", ch.name, err)
			}
			continue
		}
		rendered++
	}
	r.logger.Info("[report] Rendered %d charts under %s", rendered, r.dir)
	return nil
}

// errNoData marks a chart skipped for lack of data.
var errNoData = fmt.Errorf("no data")

func (r *Renderer) missingValues(rep *models.QualityReport) error {
	labels, values := sortedMissing(rep)
	if len(labels) == 0 {
		return errNoData
	}
	return r.renderFile("preprocessing/01_missing_values.svg", "Missing Values by Column", func(c *svg.SVG) {
		drawBars(c, r.style, labels, values, r.style.Alert)
	})
}

func (r *Renderer) dataQuality(rep *models.QualityReport) error {
	if rep.TotalRecords == 0 {
		return errNoData
	}
	total := float64(rep.TotalRecords)
	labels := make([]string, 0, len(models.KnownColumns))
	complete := make([]float64, 0, len(models.KnownColumns))
	missing := make([]float64, 0, len(models.KnownColumns))
	for _, col := range models.KnownColumns {
		m := float64(rep.MissingByColumn[col])
		labels = append(labels, col)
		missing = append(missing, m/total*100)
		complete = append(complete, (total-m)/total*100)
	}
	return r.renderFile("preprocessing/02_data_quality.svg",
		"Data Quality: Complete vs Missing Values by Column", func(c *svg.SVG) {
			drawGroupedBars(c, r.style, labels, complete, missing, r.style.BarAlt, r.style.Alert)
		})
}

func (r *Renderer) histogram(name, title string, data []float64, bins int, color string, markMean bool) error {
	if len(data) == 0 {
		return errNoData
	}
	return r.renderFile(name, title, func(c *svg.SVG) {
		drawHistogram(c, r.style, data, bins, color, markMean)
	})
}

func (r *Renderer) platforms(rep *models.QualityReport) error {
	labels, values := sortedCounts(rep.PlatformCounts, 0)
	if len(labels) == 0 {
		return errNoData
	}
	return r.renderFile("analysis/01_platform_distribution.svg",
		"Product Distribution by Platform", func(c *svg.SVG) {
			drawBars(c, r.style, labels, values, r.style.Bar)
		})
}

func (r *Renderer) priceByPlatform(ds *models.Dataset) error {
	labels, series := seriesByPlatform(ds, func(rec *models.Record) *float64 {
		if rec.Price != nil && *rec.Price > 0 {
			return rec.Price
		}
		return nil
	})
	if len(labels) == 0 {
		return errNoData
	}
	return r.renderFile("analysis/02_price_by_platform.svg", "Price Distribution by Platform", func(c *svg.SVG) {
		drawBoxes(c, r.style, labels, series, r.style.Bar)
	})
}

func (r *Renderer) ratingByPlatform(ds *models.Dataset) error {
	labels, series := seriesByPlatform(ds, func(rec *models.Record) *float64 { return rec.ProductRating })
	if len(labels) == 0 {
		return errNoData
	}
	return r.renderFile("analysis/05_rating_by_platform.svg", "Product Rating by Platform", func(c *svg.SVG) {
		drawBoxes(c, r.style, labels, series, "#f39c12")
	})
}

func (r *Renderer) topBrands(ds *models.Dataset) error {
	labels, values := topN(ds, func(rec *models.Record) string { return rec.Brand }, 10)
	if len(labels) == 0 {
		return errNoData
	}
	return r.renderFile("analysis/06_top_brands.svg", "Top 10 Brands by Product Count", func(c *svg.SVG) {
		drawHBars(c, r.style, labels, values, r.style.BarAlt)
	})
}

func (r *Renderer) topSellers(ds *models.Dataset) error {
	labels, values := topN(ds, func(rec *models.Record) string { return rec.SellerName }, 10)
	if len(labels) == 0 {
		return errNoData
	}
	return r.renderFile("analysis/10_top_sellers.svg", "Top 10 Sellers by Product Count", func(c *svg.SVG) {
		drawHBars(c, r.style, labels, values, r.style.Bar)
	})
}

func (r *Renderer) suspicious(rep *models.QualityReport) error {
	if rep.TotalRecords == 0 {
		return errNoData
	}
	labels := []string{"Normal Pricing", "Suspicious Pricing"}
	values := []float64{
		float64(rep.TotalRecords - rep.SuspiciousCount),
		float64(rep.SuspiciousCount),
	}
	return r.renderFile("analysis/07_suspicious_pricing.svg", "Suspicious Pricing Flag Count", func(c *svg.SVG) {
		drawBars(c, r.style, labels, values, r.style.Alert)
	})
}

func (r *Renderer) suspiciousByPlatform(ds *models.Dataset) error {
	labels, normal, flagged := suspiciousCounts(ds)
	if len(labels) == 0 {
		return errNoData
	}
	anyFlagged := false
	for _, v := range flagged {
		if v > 0 {
			anyFlagged = true
			break
		}
	}
	if !anyFlagged {
		return errNoData
	}
	return r.renderFile("analysis/08_suspicious_by_platform.svg", "Suspicious Pricing by Platform", func(c *svg.SVG) {
		drawStackedBars(c, r.style, labels, normal, flagged,
			r.style.BarAlt, r.style.Alert, "normal", "suspicious")
	})
}

// correlationHeatmap draws the pairwise Pearson correlations of the numeric
// columns, derived features included. It uses its own square canvas rather
// than the framed chart layout.
func (r *Renderer) correlationHeatmap(ds *models.Dataset) error {
	if ds.Rows() < 2 {
		return errNoData
	}
	names, matrix, valid := correlations(ds)

	path := filepath.Join(r.dir, "analysis/09_correlation_heatmap.svg")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %q: %w", path, err)
	}
	defer f.Close()

	c := svg.New(f)
	c.Start(heatmapSize, heatmapSize)
	c.Rect(0, 0, heatmapSize, heatmapSize, "fill:"+r.style.Background)
	c.Text(heatmapSize/2, 28, "Correlation Matrix of Numeric Variables",
		fmt.Sprintf("text-anchor:middle;font-size:%dpx;font-weight:bold;font-family:sans-serif", r.style.TitleSize))
	drawHeatmap(c, names, matrix, valid)
	c.End()
	return nil
}

// dashboard composes the four headline panels into one canvas.
func (r *Renderer) dashboard(ds *models.Dataset, rep *models.QualityReport) error {
	if rep.TotalRecords == 0 {
		return errNoData
	}

	path := filepath.Join(r.dir, "dashboard/dashboard.svg")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %q: %w", path, err)
	}
	defer f.Close()

	const gutter = 20
	c := svg.New(f)
	c.Start(2*chartWidth+gutter, 2*chartHeight+gutter)

	panel := func(x, y int, title string, draw func(c *svg.SVG)) {
		c.Gtransform(fmt.Sprintf("translate(%d,%d)", x, y))
		drawFrame(c, r.style, title)
		draw(c)
		c.Gend()
	}

	pLabels, pValues := sortedCounts(rep.PlatformCounts, 0)
	panel(0, 0, "Platform Distribution", func(c *svg.SVG) {
		drawBars(c, r.style, pLabels, pValues, r.style.Bar)
	})
	panel(chartWidth+gutter, 0, "Price Distribution", func(c *svg.SVG) {
		drawHistogram(c, r.style, prices(ds), 30, r.style.Bar, false)
	})
	panel(0, chartHeight+gutter, "Rating Distribution", func(c *svg.SVG) {
		drawHistogram(c, r.style, productRatings(ds), 20, "#f39c12", false)
	})
	panel(chartWidth+gutter, chartHeight+gutter, "Suspicious Pricing", func(c *svg.SVG) {
		drawBars(c, r.style,
			[]string{"Normal", "Suspicious"},
			[]float64{float64(rep.TotalRecords - rep.SuspiciousCount), float64(rep.SuspiciousCount)},
			r.style.Alert)
	})

	c.End()
	return nil
}

// renderFile opens the target file and draws one framed chart into it.
func (r *Renderer) renderFile(name, title string, draw func(c *svg.SVG)) error {
	path := filepath.Join(r.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %q: %w", path, err)
	}
	defer f.Close()

	c := svg.New(f)
	c.Start(chartWidth, chartHeight)
	drawFrame(c, r.style, title)
	draw(c)
	c.End()
	return nil
}

func prices(ds *models.Dataset) []float64 {
	return collect(ds, func(rec *models.Record) *float64 { return rec.Price })
}

func mrps(ds *models.Dataset) []float64 {
	return collect(ds, func(rec *models.Record) *float64 { return rec.MRP })
}

func discounts(ds *models.Dataset) []float64 {
	out := collect(ds, func(rec *models.Record) *float64 { return rec.DiscountPercent })
	kept := out[:0]
	for _, v := range out {
		if v >= 0 && v <= 100 {
			kept = append(kept, v)
		}
	}
	return kept
}

func productRatings(ds *models.Dataset) []float64 {
	return collect(ds, func(rec *models.Record) *float64 { return rec.ProductRating })
}

func ratingCounts(ds *models.Dataset) []float64 {
	var out []float64
	for _, rec := range ds.Records {
		if rec.NumRatings != nil {
			out = append(out, float64(*rec.NumRatings))
		}
	}
	return out
}

func collect(ds *models.Dataset, get func(rec *models.Record) *float64) []float64 {
	var out []float64
	for _, rec := range ds.Records {
		if v := get(rec); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func topN(ds *models.Dataset, key func(rec *models.Record) string, n int) ([]string, []float64) {
	counts := make(map[string]int)
	for _, rec := range ds.Records {
		if k := key(rec); k != "" {
			counts[k]++
		}
	}
	return sortedCounts(counts, n)
}

// sortedCounts ranks a count map descending (ties alphabetical); n == 0
// keeps everything.
func sortedCounts(counts map[string]int, n int) ([]string, []float64) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if n > 0 && len(names) > n {
		names = names[:n]
	}
	values := make([]float64, len(names))
	for i, name := range names {
		values[i] = float64(counts[name])
	}
	return names, values
}

// seriesByPlatform groups one numeric field by platform, platforms ordered
// by record count descending. Platforms where the field is entirely absent
// are dropped.
func seriesByPlatform(ds *models.Dataset, get func(rec *models.Record) *float64) ([]string, [][]float64) {
	counts := make(map[string]int)
	values := make(map[string][]float64)
	for _, rec := range ds.Records {
		if rec.Platform == "" {
			continue
		}
		counts[rec.Platform]++
		if v := get(rec); v != nil {
			values[rec.Platform] = append(values[rec.Platform], *v)
		}
	}

	ordered, _ := sortedCounts(counts, 0)
	var labels []string
	var series [][]float64
	for _, name := range ordered {
		if len(values[name]) == 0 {
			continue
		}
		labels = append(labels, name)
		series = append(series, values[name])
	}
	return labels, series
}

// suspiciousCounts splits each platform's record count into normal and
// flagged, platforms ordered by total count descending.
func suspiciousCounts(ds *models.Dataset) ([]string, []float64, []float64) {
	counts := make(map[string]int)
	flaggedBy := make(map[string]int)
	for _, rec := range ds.Records {
		if rec.Platform == "" {
			continue
		}
		counts[rec.Platform]++
		if rec.SuspiciousPricing {
			flaggedBy[rec.Platform]++
		}
	}

	labels, totals := sortedCounts(counts, 0)
	normal := make([]float64, len(labels))
	flagged := make([]float64, len(labels))
	for i, name := range labels {
		flagged[i] = float64(flaggedBy[name])
		normal[i] = totals[i] - flagged[i]
	}
	return labels, normal, flagged
}

// numericColumn pairs a column name with its accessor. Booleans count as
// 0/1 so the flags participate in the correlation matrix.
type numericColumn struct {
	name string
	get  func(rec *models.Record) *float64
}

func numericColumns() []numericColumn {
	boolVal := func(b bool) *float64 {
		v := 0.0
		if b {
			v = 1.0
		}
		return &v
	}
	intVal := func(n *int64) *float64 {
		if n == nil {
			return nil
		}
		v := float64(*n)
		return &v
	}
	return []numericColumn{
		{models.ColPrice, func(rec *models.Record) *float64 { return rec.Price }},
		{models.ColMRP, func(rec *models.Record) *float64 { return rec.MRP }},
		{models.ColDiscountPercent, func(rec *models.Record) *float64 { return rec.DiscountPercent }},
		{models.ColProductRating, func(rec *models.Record) *float64 { return rec.ProductRating }},
		{models.ColNumRatings, func(rec *models.Record) *float64 { return intVal(rec.NumRatings) }},
		{models.ColReviewRating, func(rec *models.Record) *float64 { return rec.ReviewRating }},
		{models.ColPriceMRPRatio, func(rec *models.Record) *float64 { return rec.PriceMRPRatio }},
		{models.ColSuspiciousPricing, func(rec *models.Record) *float64 { return boolVal(rec.SuspiciousPricing) }},
		{models.ColHasReview, func(rec *models.Record) *float64 { return boolVal(rec.HasReview) }},
		{models.ColRatingQualityScore, func(rec *models.Record) *float64 { return rec.RatingQualityScore }},
	}
}

// correlations builds the symmetric Pearson matrix over the numeric columns.
// valid[i][j] is false where a coefficient is undefined (fewer than two
// complete pairs, or a constant series).
func correlations(ds *models.Dataset) ([]string, [][]float64, [][]bool) {
	cols := numericColumns()
	names := make([]string, len(cols))
	matrix := make([][]float64, len(cols))
	valid := make([][]bool, len(cols))
	for i := range cols {
		names[i] = cols[i].name
		matrix[i] = make([]float64, len(cols))
		valid[i] = make([]bool, len(cols))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			r, ok := pearson(ds, cols[i].get, cols[j].get)
			matrix[i][j], matrix[j][i] = r, r
			valid[i][j], valid[j][i] = ok, ok
		}
	}
	return names, matrix, valid
}

// pearson computes the correlation over the rows where both fields are
// present. It reports false when fewer than two pairs exist or either side
// has zero variance.
func pearson(ds *models.Dataset, getX, getY func(rec *models.Record) *float64) (float64, bool) {
	var xs, ys []float64
	for _, rec := range ds.Records {
		x, y := getX(rec), getY(rec)
		if x == nil || y == nil {
			continue
		}
		xs = append(xs, *x)
		ys = append(ys, *y)
	}
	n := float64(len(xs))
	if n < 2 {
		return 0, false
	}

	mx, my := meanOf(xs), meanOf(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}

func sortedMissing(rep *models.QualityReport) ([]string, []float64) {
	names := make([]string, 0, len(rep.MissingByColumn))
	for name, count := range rep.MissingByColumn {
		if count > 0 {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if rep.MissingByColumn[names[i]] != rep.MissingByColumn[names[j]] {
			return rep.MissingByColumn[names[i]] > rep.MissingByColumn[names[j]]
		}
		return names[i] < names[j]
	})
	values := make([]float64, len(names))
	for i, name := range names {
		values[i] = float64(rep.MissingByColumn[name])
	}
	return names, values
}

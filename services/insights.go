package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"greymarket-pipeline/models"
	"greymarket-pipeline/utils"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	alertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// InsightService computes and prints the analytics summary over the cleaned
// dataset, including the aggregate missing-value counts from cleaning.
type InsightService struct {
	logger *utils.Logger
}

// NewInsightService creates an InsightService with the given logger.
func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes the quality report for a cleaned dataset.
func (s *InsightService) Generate(ds *models.Dataset, summary *models.CleaningSummary) *models.QualityReport {
	report := &models.QualityReport{
		PlatformCounts:  make(map[string]int),
		MissingByColumn: make(map[string]int),
	}

	if summary != nil {
		for col, st := range summary.Columns {
			if st.MissingAfter > 0 {
				report.MissingByColumn[col] = st.MissingAfter
			}
		}
	}

	if ds == nil || ds.Rows() == 0 {
		return report
	}

	report.TotalRecords = ds.Rows()

	brandCounts := make(map[string]int)
	sellerCounts := make(map[string]int)
	var priceTotal, discountTotal float64
	var discountCount int

	for _, rec := range ds.Records {
		report.PlatformCounts[rec.Platform]++
		if rec.Brand != "" {
			brandCounts[rec.Brand]++
		}
		if rec.SellerName != "" {
			sellerCounts[rec.SellerName]++
		}
		if rec.SuspiciousPricing {
			report.SuspiciousCount++
		}
		if rec.HasReview {
			report.ReviewedCount++
		}
		if rec.DiscountPercent != nil {
			discountTotal += *rec.DiscountPercent
			discountCount++
		}
		if rec.Price != nil {
			if report.PricedRecords == 0 {
				report.MinPrice = *rec.Price
				report.MaxPrice = *rec.Price
			}
			if *rec.Price < report.MinPrice {
				report.MinPrice = *rec.Price
			}
			if *rec.Price > report.MaxPrice {
				report.MaxPrice = *rec.Price
			}
			priceTotal += *rec.Price
			report.PricedRecords++
		}
	}

	if report.PricedRecords > 0 {
		report.AveragePrice = priceTotal / float64(report.PricedRecords)
	}
	if discountCount > 0 {
		report.AverageDiscount = discountTotal / float64(discountCount)
	}
	report.TopBrands = topCounts(brandCounts, 5)
	report.TopSellers = topCounts(sellerCounts, 5)

	return report
}

// Print renders the report to stdout.
func (s *InsightService) Print(r *models.QualityReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Println()
	fmt.Println(headerStyle.Render(sep))
	fmt.Println(headerStyle.Render("  GREY MARKET DATA QUALITY & INSIGHTS"))
	fmt.Println(headerStyle.Render(sep))
	fmt.Println()

	fmt.Println(sectionStyle.Render("  Overview"))
	fmt.Printf("  %s\n", mutedStyle.Render(thin))
	fmt.Printf("  Total listings     : %s\n", valueStyle.Render(fmt.Sprintf("%d", r.TotalRecords)))
	fmt.Printf("  With price         : %s\n", valueStyle.Render(fmt.Sprintf("%d", r.PricedRecords)))
	fmt.Printf("  With review text   : %s\n", valueStyle.Render(fmt.Sprintf("%d", r.ReviewedCount)))
	fmt.Printf("  Suspicious pricing : %s\n", alertStyle.Render(fmt.Sprintf("%d", r.SuspiciousCount)))
	fmt.Println()

	fmt.Println(sectionStyle.Render("  Price Statistics"))
	fmt.Printf("  %s\n", mutedStyle.Render(thin))
	if r.PricedRecords > 0 {
		fmt.Printf("  Average price    : %s\n", valueStyle.Render(fmt.Sprintf("%.2f", r.AveragePrice)))
		fmt.Printf("  Minimum price    : %s\n", valueStyle.Render(fmt.Sprintf("%.2f", r.MinPrice)))
		fmt.Printf("  Maximum price    : %s\n", valueStyle.Render(fmt.Sprintf("%.2f", r.MaxPrice)))
		fmt.Printf("  Average discount : %s\n", valueStyle.Render(fmt.Sprintf("%.2f%%", r.AverageDiscount)))
	} else {
		fmt.Println("  No price data available")
	}
	fmt.Println()

	s.printMissing(r, thin)
	s.printPlatforms(r, thin)
	s.printTop("Top Brands", r.TopBrands, thin)
	s.printTop("Top Sellers", r.TopSellers, thin)

	fmt.Println(headerStyle.Render(sep))
	fmt.Println()
}

func (s *InsightService) printMissing(r *models.QualityReport, thin string) {
	fmt.Println(sectionStyle.Render("  Missing Values After Cleaning"))
	fmt.Printf("  %s\n", mutedStyle.Render(thin))
	if len(r.MissingByColumn) == 0 {
		fmt.Println("  No missing values")
		fmt.Println()
		return
	}
	cols := make([]string, 0, len(r.MissingByColumn))
	for col := range r.MissingByColumn {
		cols = append(cols, col)
	}
	sort.Slice(cols, func(i, j int) bool {
		if r.MissingByColumn[cols[i]] != r.MissingByColumn[cols[j]] {
			return r.MissingByColumn[cols[i]] > r.MissingByColumn[cols[j]]
		}
		return cols[i] < cols[j]
	})
	for _, col := range cols {
		fmt.Printf("  %-22s %s\n", col, alertStyle.Render(fmt.Sprintf("%d", r.MissingByColumn[col])))
	}
	fmt.Println()
}

func (s *InsightService) printPlatforms(r *models.QualityReport, thin string) {
	fmt.Println(sectionStyle.Render("  Listings by Platform"))
	fmt.Printf("  %s\n", mutedStyle.Render(thin))
	if len(r.PlatformCounts) == 0 {
		fmt.Println("  No platform data")
		fmt.Println()
		return
	}
	for _, pc := range topCounts(r.PlatformCounts, len(r.PlatformCounts)) {
		bar := strings.Repeat("█", scaleBar(pc.Count, r.TotalRecords, 30))
		fmt.Printf("  %-20s %s (%d)\n", truncate(pc.Name, 18), bar, pc.Count)
	}
	fmt.Println()
}

func (s *InsightService) printTop(title string, entries []models.NameCount, thin string) {
	fmt.Println(sectionStyle.Render("  " + title))
	fmt.Printf("  %s\n", mutedStyle.Render(thin))
	if len(entries) == 0 {
		fmt.Println("  No data")
		fmt.Println()
		return
	}
	for i, e := range entries {
		fmt.Printf("  %d. %-38s %s\n", i+1, truncate(e.Name, 36),
			valueStyle.Render(fmt.Sprintf("%d", e.Count)))
	}
	fmt.Println()
}

// topCounts ranks a count map descending, ties broken alphabetically.
func topCounts(counts map[string]int, n int) []models.NameCount {
	out := make([]models.NameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, models.NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func scaleBar(count, total, width int) int {
	if total == 0 {
		return 0
	}
	w := count * width / total
	if w < 1 {
		w = 1
	}
	return w
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

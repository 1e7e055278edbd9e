package report

import (
	"fmt"
	"math"
	"sort"

	svg "github.com/ajstarks/svgo"
)

// Style holds the local chart configuration. There is no global style
// state; every renderer carries its own copy.
type Style struct {
	Background string
	Bar        string
	BarAlt     string
	Alert      string
	Axis       string
	TitleSize  int
	LabelSize  int
}

// DefaultStyle mirrors the palette of the original report charts.
func DefaultStyle() Style {
	return Style{
		Background: "#ffffff",
		Bar:        "#3498db",
		BarAlt:     "#2ecc71",
		Alert:      "#e74c3c",
		Axis:       "#555555",
		TitleSize:  16,
		LabelSize:  11,
	}
}

const (
	chartWidth   = 720
	chartHeight  = 420
	marginLeft   = 60
	marginRight  = 20
	marginTop    = 50
	marginBottom = 60
)

// drawFrame paints the background, title and axes for one chart area.
func drawFrame(c *svg.SVG, st Style, title string) {
	c.Rect(0, 0, chartWidth, chartHeight, "fill:"+st.Background)
	c.Text(chartWidth/2, 28, title,
		fmt.Sprintf("text-anchor:middle;font-size:%dpx;font-weight:bold;font-family:sans-serif", st.TitleSize))
	c.Line(marginLeft, chartHeight-marginBottom, chartWidth-marginRight, chartHeight-marginBottom,
		"stroke:"+st.Axis+";stroke-width:1")
	c.Line(marginLeft, marginTop, marginLeft, chartHeight-marginBottom,
		"stroke:"+st.Axis+";stroke-width:1")
}

// drawBars renders a vertical bar chart inside the frame. Bars are scaled
// to the maximum value; each bar carries its value on top and its label
// underneath.
func drawBars(c *svg.SVG, st Style, labels []string, values []float64, color string) {
	if len(values) == 0 {
		return
	}
	maxVal := maxOf(values)
	if maxVal <= 0 {
		maxVal = 1
	}

	plotW := chartWidth - marginLeft - marginRight
	plotH := chartHeight - marginTop - marginBottom
	slot := plotW / len(values)
	barW := slot * 3 / 4
	if barW < 2 {
		barW = 2
	}

	labelStyle := fmt.Sprintf("text-anchor:middle;font-size:%dpx;font-family:sans-serif", st.LabelSize)
	for i, v := range values {
		h := int(v / maxVal * float64(plotH))
		x := marginLeft + i*slot + (slot-barW)/2
		y := chartHeight - marginBottom - h
		c.Rect(x, y, barW, h, "fill:"+color)
		c.Text(x+barW/2, y-4, trimFloat(v), labelStyle)
		c.Text(x+barW/2, chartHeight-marginBottom+16, clip(labels[i], 12), labelStyle)
	}
}

// drawGroupedBars renders two bars per label, e.g. complete vs missing.
func drawGroupedBars(c *svg.SVG, st Style, labels []string, a, b []float64, colorA, colorB string) {
	if len(labels) == 0 {
		return
	}
	maxVal := math.Max(maxOf(a), maxOf(b))
	if maxVal <= 0 {
		maxVal = 1
	}

	plotW := chartWidth - marginLeft - marginRight
	plotH := chartHeight - marginTop - marginBottom
	slot := plotW / len(labels)
	barW := slot * 2 / 5
	if barW < 2 {
		barW = 2
	}

	labelStyle := fmt.Sprintf("text-anchor:middle;font-size:%dpx;font-family:sans-serif", st.LabelSize)
	for i := range labels {
		ha := int(a[i] / maxVal * float64(plotH))
		hb := int(b[i] / maxVal * float64(plotH))
		x := marginLeft + i*slot + (slot-2*barW)/2
		c.Rect(x, chartHeight-marginBottom-ha, barW, ha, "fill:"+colorA)
		c.Rect(x+barW, chartHeight-marginBottom-hb, barW, hb, "fill:"+colorB)
		c.Text(x+barW, chartHeight-marginBottom+16, clip(labels[i], 12), labelStyle)
	}

	// legend
	c.Rect(chartWidth-marginRight-150, marginTop, 12, 12, "fill:"+colorA)
	c.Text(chartWidth-marginRight-134, marginTop+10, "complete", "font-size:11px;font-family:sans-serif")
	c.Rect(chartWidth-marginRight-150, marginTop+18, 12, 12, "fill:"+colorB)
	c.Text(chartWidth-marginRight-134, marginTop+28, "missing", "font-size:11px;font-family:sans-serif")
}

// drawHistogram bins the data and renders it as contiguous bars, with an
// optional dashed mean marker.
func drawHistogram(c *svg.SVG, st Style, data []float64, bins int, color string, markMean bool) {
	if len(data) == 0 {
		return
	}
	counts, lo, width := binCounts(data, bins)

	maxCount := 0
	for _, n := range counts {
		if n > maxCount {
			maxCount = n
		}
	}
	if maxCount == 0 {
		return
	}

	plotW := chartWidth - marginLeft - marginRight
	plotH := chartHeight - marginTop - marginBottom
	barW := plotW / len(counts)

	for i, n := range counts {
		h := n * plotH / maxCount
		x := marginLeft + i*barW
		c.Rect(x, chartHeight-marginBottom-h, barW, h, "fill:"+color+";stroke:#333333;stroke-width:0.5")
	}

	labelStyle := fmt.Sprintf("text-anchor:middle;font-size:%dpx;font-family:sans-serif", st.LabelSize)
	c.Text(marginLeft, chartHeight-marginBottom+16, trimFloat(lo), labelStyle)
	c.Text(marginLeft+plotW, chartHeight-marginBottom+16, trimFloat(lo+width*float64(len(counts))), labelStyle)

	if markMean && width > 0 {
		mean := meanOf(data)
		mx := marginLeft + int((mean-lo)/(width*float64(len(counts)))*float64(plotW))
		c.Line(mx, marginTop, mx, chartHeight-marginBottom,
			"stroke:"+st.Alert+";stroke-width:1.5;stroke-dasharray:6,4")
		c.Text(mx+4, marginTop+12, fmt.Sprintf("mean %.2f", mean),
			fmt.Sprintf("font-size:%dpx;font-family:sans-serif;fill:%s", st.LabelSize, st.Alert))
	}
}

// drawHBars renders a horizontal bar chart, longest bar first; used for the
// top-N rankings.
func drawHBars(c *svg.SVG, st Style, labels []string, values []float64, color string) {
	if len(values) == 0 {
		return
	}
	maxVal := maxOf(values)
	if maxVal <= 0 {
		maxVal = 1
	}

	plotW := chartWidth - marginLeft - marginRight - 120
	plotH := chartHeight - marginTop - marginBottom
	slot := plotH / len(values)
	barH := slot * 3 / 4
	if barH < 2 {
		barH = 2
	}

	labelStyle := fmt.Sprintf("text-anchor:end;font-size:%dpx;font-family:sans-serif", st.LabelSize)
	for i, v := range values {
		w := int(v / maxVal * float64(plotW))
		y := marginTop + i*slot + (slot-barH)/2
		c.Rect(marginLeft+120, y, w, barH, "fill:"+color)
		c.Text(marginLeft+114, y+barH/2+4, clip(labels[i], 20), labelStyle)
		c.Text(marginLeft+126+w, y+barH/2+4, trimFloat(v),
			fmt.Sprintf("font-size:%dpx;font-family:sans-serif", st.LabelSize))
	}
}

// drawBoxes renders one box-and-whisker per label: whiskers at the series
// extremes, the box spanning the quartiles, a heavy line at the median.
func drawBoxes(c *svg.SVG, st Style, labels []string, series [][]float64, color string) {
	if len(series) == 0 {
		return
	}
	minAll := math.Inf(1)
	maxAll := math.Inf(-1)
	for _, data := range series {
		for _, v := range data {
			minAll = math.Min(minAll, v)
			maxAll = math.Max(maxAll, v)
		}
	}
	if math.IsInf(minAll, 1) {
		return
	}
	if maxAll == minAll {
		maxAll = minAll + 1
	}

	plotH := chartHeight - marginTop - marginBottom
	plotW := chartWidth - marginLeft - marginRight
	slot := plotW / len(series)
	boxW := slot / 2
	if boxW < 4 {
		boxW = 4
	}

	yOf := func(v float64) int {
		return chartHeight - marginBottom - int((v-minAll)/(maxAll-minAll)*float64(plotH))
	}

	labelStyle := fmt.Sprintf("text-anchor:middle;font-size:%dpx;font-family:sans-serif", st.LabelSize)
	whiskerStyle := "stroke:" + st.Axis + ";stroke-width:1"
	for i, data := range series {
		if len(data) == 0 {
			continue
		}
		lo, q1, med, q3, hi := fiveNum(data)
		cx := marginLeft + i*slot + slot/2
		left := cx - boxW/2

		c.Line(cx, yOf(hi), cx, yOf(q3), whiskerStyle)
		c.Line(cx, yOf(q1), cx, yOf(lo), whiskerStyle)
		c.Line(left, yOf(hi), left+boxW, yOf(hi), whiskerStyle)
		c.Line(left, yOf(lo), left+boxW, yOf(lo), whiskerStyle)
		c.Rect(left, yOf(q3), boxW, yOf(q1)-yOf(q3),
			"fill:"+color+";fill-opacity:0.6;stroke:"+st.Axis+";stroke-width:1")
		c.Line(left, yOf(med), left+boxW, yOf(med), "stroke:"+st.Axis+";stroke-width:2")
		c.Text(cx, chartHeight-marginBottom+16, clip(labels[i], 12), labelStyle)
	}

	endStyle := fmt.Sprintf("text-anchor:end;font-size:%dpx;font-family:sans-serif", st.LabelSize)
	c.Text(marginLeft-6, yOf(minAll)+4, trimFloat(minAll), endStyle)
	c.Text(marginLeft-6, yOf(maxAll)+4, trimFloat(maxAll), endStyle)
}

// fiveNum computes the five-number summary, quartiles by linear
// interpolation.
func fiveNum(data []float64) (lo, q1, med, q3, hi float64) {
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	return sorted[0],
		quantile(sorted, 0.25),
		quantile(sorted, 0.5),
		quantile(sorted, 0.75),
		sorted[len(sorted)-1]
}

func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	i := int(pos)
	if i+1 >= n {
		return sorted[n-1]
	}
	frac := pos - float64(i)
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}

// drawStackedBars renders one two-segment stacked bar per label.
func drawStackedBars(c *svg.SVG, st Style, labels []string, bottom, top []float64,
	colorBottom, colorTop, legendBottom, legendTop string) {
	if len(labels) == 0 {
		return
	}
	maxVal := 0.0
	for i := range labels {
		if sum := bottom[i] + top[i]; sum > maxVal {
			maxVal = sum
		}
	}
	if maxVal <= 0 {
		maxVal = 1
	}

	plotW := chartWidth - marginLeft - marginRight
	plotH := chartHeight - marginTop - marginBottom
	slot := plotW / len(labels)
	barW := slot * 3 / 4
	if barW < 2 {
		barW = 2
	}

	labelStyle := fmt.Sprintf("text-anchor:middle;font-size:%dpx;font-family:sans-serif", st.LabelSize)
	for i := range labels {
		hb := int(bottom[i] / maxVal * float64(plotH))
		ht := int(top[i] / maxVal * float64(plotH))
		x := marginLeft + i*slot + (slot-barW)/2
		c.Rect(x, chartHeight-marginBottom-hb, barW, hb, "fill:"+colorBottom)
		c.Rect(x, chartHeight-marginBottom-hb-ht, barW, ht, "fill:"+colorTop)
		c.Text(x+barW/2, chartHeight-marginBottom+16, clip(labels[i], 12), labelStyle)
	}

	c.Rect(chartWidth-marginRight-150, marginTop, 12, 12, "fill:"+colorBottom)
	c.Text(chartWidth-marginRight-134, marginTop+10, legendBottom, "font-size:11px;font-family:sans-serif")
	c.Rect(chartWidth-marginRight-150, marginTop+18, 12, 12, "fill:"+colorTop)
	c.Text(chartWidth-marginRight-134, marginTop+28, legendTop, "font-size:11px;font-family:sans-serif")
}

// heatmapSize is the square canvas for the correlation grid.
const heatmapSize = 640

// drawHeatmap renders an annotated correlation grid. Cells without a
// defined coefficient stay blank.
func drawHeatmap(c *svg.SVG, names []string, matrix [][]float64, valid [][]bool) {
	n := len(names)
	if n == 0 {
		return
	}
	const top = 150
	const left = 150
	cell := (heatmapSize - left - 20) / n

	cellText := "text-anchor:middle;font-size:10px;font-family:sans-serif"
	axisText := "font-size:10px;font-family:sans-serif"
	for i := 0; i < n; i++ {
		c.Text(left-6, top+i*cell+cell/2+4, names[i], "text-anchor:end;"+axisText)
		c.Gtransform(fmt.Sprintf("translate(%d,%d) rotate(-60)", left+i*cell+cell/2, top-8))
		c.Text(0, 0, names[i], axisText)
		c.Gend()

		for j := 0; j < n; j++ {
			x := left + j*cell
			y := top + i*cell
			if !valid[i][j] {
				c.Rect(x, y, cell, cell, "fill:#f4f4f4;stroke:#ffffff;stroke-width:1")
				continue
			}
			c.Rect(x, y, cell, cell, "fill:"+heatColor(matrix[i][j])+";stroke:#ffffff;stroke-width:1")
			c.Text(x+cell/2, y+cell/2+4, fmt.Sprintf("%.2f", matrix[i][j]), cellText)
		}
	}
}

// heatColor maps a correlation in [-1,1] onto a diverging palette: blue for
// negative, white at zero, red for positive.
func heatColor(v float64) string {
	v = math.Max(-1, math.Min(1, v))
	blend := func(from, to int, t float64) int {
		return from + int(t*float64(to-from))
	}
	r, g, b := 255, 255, 255
	if v > 0 {
		r, g, b = blend(255, 0xe7, v), blend(255, 0x4c, v), blend(255, 0x3c, v)
	} else if v < 0 {
		r, g, b = blend(255, 0x34, -v), blend(255, 0x98, -v), blend(255, 0xdb, -v)
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// binCounts splits data into equal-width bins over [min, max]. A constant
// series collapses into a single bin.
func binCounts(data []float64, bins int) (counts []int, lo float64, width float64) {
	lo, hi := data[0], data[0]
	for _, v := range data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return []int{len(data)}, lo, 0
	}
	if bins < 1 {
		bins = 1
	}

	counts = make([]int, bins)
	width = (hi - lo) / float64(bins)
	for _, v := range data {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	return counts, lo, width
}

func maxOf(vs []float64) float64 {
	m := 0.0
	for _, v := range vs {
		if v > m {
			m = v
		}
	}
	return m
}

func meanOf(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

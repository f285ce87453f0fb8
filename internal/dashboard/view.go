// Package dashboard derives everything the dashboard page shows from the
// record table and a selected year range.
package dashboard

import (
	"fmt"
	"strconv"

	"typhoondash/internal/core"
	"typhoondash/internal/source"
)

// Fixed page text.
const (
	PageTitle = "전라남도 태풍피해 대시보드"
	Heading   = "🌪️ 전라남도 연도별 태풍피해 분석 대시보드"
	RangeHint = "조회 연도 범위 선택"
)

// Chart identifiers, also used as DOM ids.
const (
	ChartTrend       = "trend"
	ChartCorrelation = "correlation"
	ChartTop         = "top5"
	ChartCasualties  = "casualties"
)

// DefaultRange is the initial selection before it is clamped to the table.
var DefaultRange = core.YearRange{From: 2010, To: 2023}

// Options tune Build.
type Options struct {
	// DefaultRange overrides the package DefaultRange when non-zero.
	DefaultRange core.YearRange
}

// View is the complete presentation model for one selected range.
type View struct {
	PageTitle   string       `json:"page_title"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Range       RangeControl `json:"range"`
	Empty       bool         `json:"empty"`
	Totals      Totals       `json:"totals"`
	Metrics     []Metric     `json:"metrics"`
	Charts      []Chart      `json:"charts"`
	// Columns heads the raw table.
	Columns []string `json:"columns"`
	// Rows is the filtered table, latest year first.
	Rows []core.YearRecord `json:"rows"`
}

// RangeControl describes the dual-handle year slider.
type RangeControl struct {
	Label    string         `json:"label"`
	Min      int            `json:"min"`
	Max      int            `json:"max"`
	Default  core.YearRange `json:"default"`
	Selected core.YearRange `json:"selected"`
}

// Totals are the raw aggregates behind the metric cards.
type Totals struct {
	Years         int      `json:"years"`
	Damage        float64  `json:"property_damage"`
	Recovery      float64  `json:"recovery_amount"`
	RecoveryRatio float64  `json:"recovery_ratio"`
	Casualties    int      `json:"casualties"`
	Correlation   *float64 `json:"correlation"`
}

// Metric is one headline number.
type Metric struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
	Delta string `json:"delta,omitempty"`
}

// Chart pairs a heading with its Chart.js configuration.
type Chart struct {
	ID      string      `json:"id"`
	Heading string      `json:"heading"`
	Config  ChartConfig `json:"config"`
}

// Build filters table by selected and derives every element of the page
// from that single view.
func Build(table *core.Table, selected core.YearRange, opts Options) View {
	minYear, maxYear := table.Bounds()
	def := opts.DefaultRange
	if def == (core.YearRange{}) {
		def = DefaultRange
	}
	selected = selected.Normalize()

	view := table.Filter(selected)
	sum := core.Summarize(view)

	return View{
		PageTitle:   PageTitle,
		Title:       Heading,
		Description: description(minYear, maxYear),
		Range: RangeControl{
			Label:    RangeHint,
			Min:      minYear,
			Max:      maxYear,
			Default:  def.Clamp(minYear, maxYear),
			Selected: selected,
		},
		Empty:   len(view) == 0,
		Totals:  totals(sum),
		Metrics: metrics(sum),
		Charts: []Chart{
			trendChart(view),
			correlationChart(view, sum),
			topChart(sum.Top),
			casualtyChart(view, sum),
		},
		Columns: source.HeaderColumns,
		Rows:    core.SortByYearDesc(view),
	}
}

// Chart returns the chart with id.
func (v View) Chart(id string) (Chart, bool) {
	for _, c := range v.Charts {
		if c.ID == id {
			return c, true
		}
	}
	return Chart{}, false
}

func description(minYear, maxYear int) string {
	return fmt.Sprintf("이 대시보드는 %d년부터 %d년까지 전라남도 지역의 태풍 피해 현황(재산 피해, 복구액, 인명 피해)을 시각화하여 제공합니다.", minYear, maxYear)
}

func totals(s core.Summary) Totals {
	t := Totals{
		Years:         s.Years,
		Damage:        s.TotalDamage,
		Recovery:      s.TotalRecovery,
		RecoveryRatio: s.RecoveryRatio,
		Casualties:    s.TotalCasualties,
	}
	if s.Correlation.Defined {
		t.Correlation = ptr(s.Correlation.Value)
	}
	return t
}

func metrics(s core.Summary) []Metric {
	return []Metric{
		{ID: "damage", Label: "총 재산 피해액", Value: core.FormatAmount(s.TotalDamage)},
		{ID: "recovery", Label: "총 복구액", Value: core.FormatAmount(s.TotalRecovery), Delta: core.FormatPercent(s.RecoveryRatio) + " (복구율)"},
		{ID: "casualties", Label: "총 인명 피해", Value: core.FormatCount(s.TotalCasualties)},
	}
}

// CorrelationTitle is the heading of the correlation chart, e.g.
// "상관계수(R): 1.00 (강한 양의 상관관계)".
func CorrelationTitle(c core.Correlation) string {
	if !c.Defined {
		return "상관계수(R): " + core.FormatCorrelation(c)
	}
	return fmt.Sprintf("상관계수(R): %s (%s)", core.FormatCorrelation(c), core.DescribeCorrelation(c))
}

func yearLabels(view []core.YearRecord) []string {
	labels := make([]string, len(view))
	for i, r := range view {
		labels[i] = strconv.Itoa(r.Year)
	}
	return labels
}

func casualtySeries(view []core.YearRecord) []float64 {
	out := make([]float64, len(view))
	for i, r := range view {
		out[i] = float64(r.Casualties)
	}
	return out
}

func trendChart(view []core.YearRecord) Chart {
	damage, recovery := core.Series(view)
	return Chart{
		ID:      ChartTrend,
		Heading: "1. 연도별 재산 피해 및 복구 추세",
		Config: ChartConfig{
			Type: "bar",
			Data: ChartData{
				Labels: yearLabels(view),
				Datasets: []Dataset{
					{
						Type:            "bar",
						Label:           "재산피해액",
						Data:            damage,
						BackgroundColor: colorIndianRed,
						Order:           2,
					},
					{
						Type:            "line",
						Label:           "복구액",
						Data:            recovery,
						BorderColor:     colorRoyalBlue,
						BackgroundColor: colorRoyalBlue,
						BorderWidth:     3,
						PointRadius:     ptr(4),
						Fill:            ptr(false),
						Order:           1,
					},
				},
			},
			Options: ChartOptions{
				Responsive:  true,
				Interaction: &Interaction{Mode: "index", Intersect: false},
				Plugins:     Plugins{Legend: &Legend{Display: true, Position: "top"}},
				Scales: map[string]Scale{
					"x": {Title: axisTitle("연도")},
					"y": {Title: axisTitle("금액(억원)"), BeginAtZero: true},
				},
			},
		},
	}
}

func correlationChart(view []core.YearRecord, s core.Summary) Chart {
	damage, recovery := core.Series(view)
	points := make([]Point, len(view))
	hover := make([]string, len(view))
	for i, r := range view {
		points[i] = Point{X: damage[i], Y: recovery[i]}
		hover[i] = fmt.Sprintf("%d년 · %s", r.Year, r.Typhoon)
	}

	datasets := []Dataset{{
		Type:             "scatter",
		Label:            "연도별 피해/복구",
		Data:             points,
		BackgroundColor:  Reds.Map(damage),
		BorderColor:      colorTrendLine,
		BorderWidth:      1,
		PointRadius:      ptr(7),
		PointHoverRadius: ptr(9),
		HoverInfo:        hover,
	}}
	if s.Trend.Defined {
		lo, hi := damage[0], damage[0]
		for _, d := range damage[1:] {
			lo, hi = min(lo, d), max(hi, d)
		}
		datasets = append(datasets, Dataset{
			Type:            "line",
			Label:           "추세선(OLS)",
			Data:            []Point{{X: lo, Y: s.Trend.At(lo)}, {X: hi, Y: s.Trend.At(hi)}},
			BorderColor:     colorTrendLine,
			BackgroundColor: colorTrendPoint,
			BorderWidth:     2,
			PointRadius:     ptr(0),
			ShowLine:        true,
			Fill:            ptr(false),
		})
	}

	return Chart{
		ID:      ChartCorrelation,
		Heading: "2. 피해액 vs 복구액 상관관계",
		Config: ChartConfig{
			Type: "scatter",
			Data: ChartData{Datasets: datasets},
			Options: ChartOptions{
				Responsive: true,
				Plugins: Plugins{
					Title:  &Title{Display: true, Text: CorrelationTitle(s.Correlation)},
					Legend: &Legend{Display: true, Position: "top"},
				},
				Scales: map[string]Scale{
					"x": {Type: "linear", Title: axisTitle("재산피해액(억원)")},
					"y": {Type: "linear", Title: axisTitle("복구액(억원)")},
				},
			},
		},
	}
}

func topChart(top []core.YearRecord) Chart {
	damage, _ := core.Series(top)
	names := make([]string, len(top))
	for i, r := range top {
		names[i] = r.Typhoon
	}
	return Chart{
		ID:      ChartTop,
		Heading: "3. 역대 피해 규모 Top 5 연도",
		Config: ChartConfig{
			Type: "bar",
			Data: ChartData{
				Labels: yearLabels(top),
				Datasets: []Dataset{{
					Label:           "재산피해액(억원)",
					Data:            damage,
					BackgroundColor: OrRd.Map(damage),
					BarLabels:       names,
				}},
			},
			Options: ChartOptions{
				Responsive: true,
				IndexAxis:  "y",
				Plugins:    Plugins{Legend: &Legend{Display: false}},
				Scales: map[string]Scale{
					"x": {Title: axisTitle("재산피해액(억원)"), BeginAtZero: true},
					"y": {Title: axisTitle("연도")},
				},
			},
		},
	}
}

func casualtyChart(view []core.YearRecord, s core.Summary) Chart {
	damage, _ := core.Series(view)
	return Chart{
		ID:      ChartCasualties,
		Heading: "4. 재산 피해 vs 인명 피해",
		Config: ChartConfig{
			Type: "bar",
			Data: ChartData{
				Labels: yearLabels(view),
				Datasets: []Dataset{
					{
						Type:            "bar",
						Label:           "재산피해액(좌측)",
						Data:            damage,
						BackgroundColor: colorLightGray,
						YAxisID:         "y",
						Order:           2,
					},
					{
						Type:            "line",
						Label:           "인명피해(우측)",
						Data:            casualtySeries(view),
						BorderColor:     colorRed,
						BackgroundColor: colorRed,
						BorderWidth:     2,
						PointRadius:     ptr(5),
						Fill:            ptr(false),
						YAxisID:         "y2",
						Order:           1,
					},
				},
			},
			Options: ChartOptions{
				Responsive:  true,
				Interaction: &Interaction{Mode: "index", Intersect: false},
				Plugins:     Plugins{Legend: &Legend{Display: true, Position: "top", Align: "start"}},
				Scales: map[string]Scale{
					"x": {Title: axisTitle("연도")},
					"y": {Position: "left", Title: axisTitle("재산 피해액(억원)"), BeginAtZero: true},
					"y2": {
						Position: "right",
						Title:    axisTitle("인명 피해(명)"),
						Min:      ptr(0.0),
						Max:      ptr(s.CasualtyAxisMax()),
						Grid:     &Grid{DrawOnChartArea: false},
					},
				},
			},
		},
	}
}

package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typhoondash/internal/core"
	"typhoondash/internal/source/memory"
)

func table(t *testing.T) *core.Table {
	t.Helper()
	tbl, err := core.NewTable(memory.Records())
	require.NoError(t, err)
	return tbl
}

func metricByID(t *testing.T, v View, id string) Metric {
	t.Helper()
	for _, m := range v.Metrics {
		if m.ID == id {
			return m
		}
	}
	t.Fatalf("metric %q not found", id)
	return Metric{}
}

func TestBuild_DefaultRange(t *testing.T) {
	v := Build(table(t), DefaultRange, Options{})

	assert.Equal(t, PageTitle, v.PageTitle)
	assert.Equal(t, Heading, v.Title)
	assert.Equal(t, core.YearRange{From: 2010, To: 2023}, v.Range.Selected)
	assert.Equal(t, 2005, v.Range.Min)
	assert.Equal(t, 2023, v.Range.Max)
	assert.Contains(t, v.Description, "2005년부터 2023년까지")
	assert.False(t, v.Empty)

	assert.Equal(t, "7,176 억원", metricByID(t, v, "damage").Value)
	recovery := metricByID(t, v, "recovery")
	assert.Equal(t, "12,215 억원", recovery.Value)
	assert.Equal(t, "170.2% (복구율)", recovery.Delta)
	assert.Equal(t, "13 명", metricByID(t, v, "casualties").Value)

	require.Len(t, v.Rows, 14)
	assert.Equal(t, 2023, v.Rows[0].Year)
	assert.Equal(t, 2010, v.Rows[len(v.Rows)-1].Year)

	cas, ok := v.Chart(ChartCasualties)
	require.True(t, ok)
	assert.Equal(t, 6.0, *cas.Config.Options.Scales["y2"].Max)
}

func TestBuild_FullRange(t *testing.T) {
	v := Build(table(t), core.YearRange{From: 2005, To: 2023}, Options{})

	assert.Equal(t, 7669.0, v.Totals.Damage)
	assert.Equal(t, 12948.0, v.Totals.Recovery)
	assert.Equal(t, 16, v.Totals.Casualties)
	require.NotNil(t, v.Totals.Correlation)
	assert.InDelta(t, 0.99916, *v.Totals.Correlation, 1e-4)

	top, ok := v.Chart(ChartTop)
	require.True(t, ok)
	assert.Equal(t, []string{"2007", "2020", "2011", "2019", "2012"}, top.Config.Data.Labels)
	assert.Equal(t, []string{"나리", "바비/마이삭", "무이파", "링링/타파", "볼라벤/덴빈"}, top.Config.Data.Datasets[0].BarLabels)
	assert.Equal(t, "y", top.Config.Options.IndexAxis)
	colors := top.Config.Data.Datasets[0].BackgroundColor.([]string)
	assert.Equal(t, CSS(OrRd.At(1)), colors[4])

	corr, ok := v.Chart(ChartCorrelation)
	require.True(t, ok)
	assert.Equal(t, "상관계수(R): 1.00 (강한 양의 상관관계)", corr.Config.Options.Plugins.Title.Text)
	require.Len(t, corr.Config.Data.Datasets, 2)
	line := corr.Config.Data.Datasets[1].Data.([]Point)
	assert.Equal(t, 0.0, line[0].X)
	assert.Equal(t, 4327.0, line[1].X)
	assert.InDelta(t, 1.78893*4327-40.5937, line[1].Y, 0.5)
}

func TestBuild_SingleYear(t *testing.T) {
	v := Build(table(t), core.YearRange{From: 2012, To: 2012}, Options{})

	assert.Equal(t, "4,327 억원", metricByID(t, v, "damage").Value)
	assert.Equal(t, "4 명", metricByID(t, v, "casualties").Value)
	assert.Nil(t, v.Totals.Correlation)

	corr, _ := v.Chart(ChartCorrelation)
	assert.Equal(t, "상관계수(R): 계산 불가", corr.Config.Options.Plugins.Title.Text)
	assert.Len(t, corr.Config.Data.Datasets, 1, "no trend line for a single point")

	top, _ := v.Chart(ChartTop)
	assert.Equal(t, []string{"2012"}, top.Config.Data.Labels)
}

func TestBuild_EmptyRange(t *testing.T) {
	v := Build(table(t), core.YearRange{From: 1990, To: 1995}, Options{})

	assert.True(t, v.Empty)
	assert.Empty(t, v.Rows)
	assert.Equal(t, "0 억원", metricByID(t, v, "damage").Value)
	assert.Equal(t, "0.0% (복구율)", metricByID(t, v, "recovery").Delta)
	assert.Equal(t, "0 명", metricByID(t, v, "casualties").Value)
	for _, c := range v.Charts {
		assert.NotEmpty(t, c.Heading)
	}
	cas, _ := v.Chart(ChartCasualties)
	assert.Equal(t, 1.0, *cas.Config.Options.Scales["y2"].Max)
}

func TestBuild_InvertedSelectionAndDefaultOverride(t *testing.T) {
	v := Build(table(t), core.YearRange{From: 2018, To: 2015}, Options{DefaultRange: core.YearRange{From: 1900, To: 2015}})

	assert.Equal(t, core.YearRange{From: 2015, To: 2018}, v.Range.Selected)
	assert.Equal(t, core.YearRange{From: 2005, To: 2015}, v.Range.Default)
	assert.Len(t, v.Rows, 4)
}

func TestBuild_TrendChartIsIndexHover(t *testing.T) {
	v := Build(table(t), DefaultRange, Options{})
	trend, ok := v.Chart(ChartTrend)
	require.True(t, ok)

	require.NotNil(t, trend.Config.Options.Interaction)
	assert.Equal(t, "index", trend.Config.Options.Interaction.Mode)
	require.Len(t, trend.Config.Data.Datasets, 2)
	assert.Equal(t, "bar", trend.Config.Data.Datasets[0].Type)
	assert.Equal(t, "line", trend.Config.Data.Datasets[1].Type)
	assert.Len(t, trend.Config.Data.Labels, 14)
}

func TestView_JSON(t *testing.T) {
	v := Build(table(t), core.YearRange{From: 2019, To: 2020}, Options{})
	b, err := json.Marshal(v)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	rows := decoded["rows"].([]any)
	require.Len(t, rows, 2)
	assert.Equal(t, float64(2020), rows[0].(map[string]any)["year"])
}

func TestColorScale(t *testing.T) {
	assert.Equal(t, Reds[0], Reds.At(-1))
	assert.Equal(t, Reds[len(Reds)-1], Reds.At(2))
	assert.Equal(t, Reds[4], Reds.At(0.5))

	colors := OrRd.Map([]float64{10, 10})
	assert.Equal(t, colors[0], colors[1])
	assert.Empty(t, OrRd.Map(nil))
}

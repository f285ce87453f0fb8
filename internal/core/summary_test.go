package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typhoondash/internal/core"
	"typhoondash/internal/source/memory"
)

func fullTable(t *testing.T) *core.Table {
	t.Helper()
	tbl, err := core.NewTable(memory.Records())
	require.NoError(t, err)
	return tbl
}

func years(view []core.YearRecord) []int {
	out := make([]int, len(view))
	for i, r := range view {
		out[i] = r.Year
	}
	return out
}

func TestFilter_InRangeAndOrdered(t *testing.T) {
	tbl := fullTable(t)

	tests := []struct {
		name string
		rng  core.YearRange
		want []int
	}{
		{"single year", core.YearRange{From: 2012, To: 2012}, []int{2012}},
		{"inner range", core.YearRange{From: 2018, To: 2021}, []int{2018, 2019, 2020, 2021}},
		{"head clipped", core.YearRange{From: 2000, To: 2006}, []int{2005, 2006}},
		{"outside", core.YearRange{From: 1990, To: 1995}, []int{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			view := tbl.Filter(tc.rng)
			assert.Equal(t, tc.want, years(view))
			for _, r := range view {
				assert.True(t, tc.rng.Contains(r.Year))
			}
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	tbl := fullTable(t)
	rng := core.YearRange{From: 2008, To: 2016}

	once := tbl.Filter(rng)
	twice := core.Filter(once, rng)
	assert.Equal(t, once, twice)
}

func TestFilter_DoesNotAliasTable(t *testing.T) {
	tbl := fullTable(t)
	view := tbl.Filter(core.YearRange{From: 2005, To: 2023})
	view[0].PropertyDamage = 1e9

	assert.Equal(t, 120.0, tbl.Records()[0].PropertyDamage)
}

func TestSummarize_FullRange(t *testing.T) {
	tbl := fullTable(t)
	s := core.Summarize(tbl.Filter(core.YearRange{From: 2005, To: 2023}))

	assert.Equal(t, 19, s.Years)
	assert.Equal(t, 7669.0, s.TotalDamage)
	assert.Equal(t, 12948.0, s.TotalRecovery)
	assert.Equal(t, 16, s.TotalCasualties)
	assert.Equal(t, 4, s.MaxCasualties)
	assert.Equal(t, s.TotalRecovery/s.TotalDamage, s.RecoveryRatio)
	assert.InDelta(t, 6.0, s.CasualtyAxisMax(), 1e-9)

	require.True(t, s.Correlation.Defined)
	assert.InDelta(t, 0.99916, s.Correlation.Value, 1e-4)

	require.True(t, s.Trend.Defined)
	assert.InDelta(t, 1.78893, s.Trend.Slope, 1e-4)
	assert.InDelta(t, -40.5937, s.Trend.Intercept, 1e-3)

	assert.Equal(t, []int{2007, 2020, 2011, 2019, 2012}, years(s.Top))
}

func TestSummarize_DefaultRange(t *testing.T) {
	tbl := fullTable(t)
	s := core.Summarize(tbl.Filter(core.YearRange{From: 2010, To: 2023}))

	assert.Equal(t, 7176.0, s.TotalDamage)
	assert.Equal(t, 12215.0, s.TotalRecovery)
	assert.Equal(t, 13, s.TotalCasualties)
	assert.Equal(t, "170.2%", core.FormatPercent(s.RecoveryRatio))
}

func TestSummarize_SingleYear(t *testing.T) {
	tbl := fullTable(t)
	view := tbl.Filter(core.YearRange{From: 2012, To: 2012})
	require.Len(t, view, 1)
	assert.Equal(t, 4327.0, view[0].PropertyDamage)

	s := core.Summarize(view)
	assert.Equal(t, 4, s.TotalCasualties)
	assert.Len(t, s.Top, 1)
	assert.False(t, s.Correlation.Defined)
	assert.False(t, s.Trend.Defined)
	assert.Equal(t, "계산 불가", core.FormatCorrelation(s.Correlation))
}

func TestSummarize_EmptyView(t *testing.T) {
	tbl := fullTable(t)
	s := core.Summarize(tbl.Filter(core.YearRange{From: 1990, To: 1995}))

	assert.Zero(t, s.Years)
	assert.Zero(t, s.TotalDamage)
	assert.Zero(t, s.TotalRecovery)
	assert.Zero(t, s.RecoveryRatio)
	assert.Zero(t, s.TotalCasualties)
	assert.Empty(t, s.Top)
	assert.False(t, s.Correlation.Defined)
	assert.Equal(t, 1.0, s.CasualtyAxisMax())

	assert.Equal(t, "0 억원", core.FormatAmount(s.TotalDamage))
	assert.Equal(t, "0.0%", core.FormatPercent(s.RecoveryRatio))
	assert.Equal(t, "0 명", core.FormatCount(s.TotalCasualties))
}

func TestRecoveryRatio_ZeroDamage(t *testing.T) {
	assert.Zero(t, core.RecoveryRatio(100, 0))
	assert.Equal(t, 1.5, core.RecoveryRatio(150, 100))

	s := core.Summarize([]core.YearRecord{{Year: 2017, Typhoon: "-"}})
	assert.Zero(t, s.RecoveryRatio)
	assert.Equal(t, 1.0, s.CasualtyAxisMax())
}

func TestTopByDamage(t *testing.T) {
	view := []core.YearRecord{
		{Year: 2001, PropertyDamage: 10},
		{Year: 2002, PropertyDamage: 50},
		{Year: 2003, PropertyDamage: 30},
		{Year: 2004, PropertyDamage: 30},
		{Year: 2005, PropertyDamage: 30},
		{Year: 2006, PropertyDamage: 5},
		{Year: 2007, PropertyDamage: 70},
	}

	t.Run("ties keep chronological order", func(t *testing.T) {
		top := core.TopByDamage(view, 4)
		assert.Equal(t, []int{2003, 2004, 2002, 2007}, years(top))
	})

	t.Run("selected dominate the rest", func(t *testing.T) {
		top := core.TopByDamage(view, core.TopCount)
		require.Len(t, top, 5)
		selected := map[int]bool{}
		minSelected := top[0].PropertyDamage
		for _, r := range top {
			selected[r.Year] = true
			if r.PropertyDamage < minSelected {
				minSelected = r.PropertyDamage
			}
		}
		for _, r := range view {
			if !selected[r.Year] {
				assert.LessOrEqual(t, r.PropertyDamage, minSelected)
			}
		}
	})

	t.Run("fewer rows than n", func(t *testing.T) {
		assert.Len(t, core.TopByDamage(view[:2], 5), 2)
		assert.Empty(t, core.TopByDamage(nil, 5))
	})

	t.Run("input untouched", func(t *testing.T) {
		_ = core.TopByDamage(view, 3)
		assert.Equal(t, 2001, view[0].Year)
	})
}

func TestPearson_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
	}{
		{"empty", nil, nil},
		{"one point", []float64{1}, []float64{2}},
		{"constant x", []float64{3, 3, 3}, []float64{1, 2, 3}},
		{"constant y", []float64{1, 2, 3}, []float64{0.1, 0.1, 0.1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, core.Pearson(tc.x, tc.y).Defined)
		})
	}
}

func TestPearson_Bounds(t *testing.T) {
	up := core.Pearson([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
	require.True(t, up.Defined)
	assert.InDelta(t, 1.0, up.Value, 1e-12)
	assert.LessOrEqual(t, up.Value, 1.0)

	down := core.Pearson([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2})
	require.True(t, down.Defined)
	assert.GreaterOrEqual(t, down.Value, -1.0)
	assert.Equal(t, "강한 음의 상관관계", core.DescribeCorrelation(down))
}

func TestFitTrend_ConstantRecovery(t *testing.T) {
	tr := core.FitTrend([]float64{1, 2, 3}, []float64{5, 5, 5})
	require.True(t, tr.Defined)
	assert.InDelta(t, 0, tr.Slope, 1e-12)
	assert.InDelta(t, 5, tr.At(10), 1e-9)
}

func TestNewTable_Validation(t *testing.T) {
	_, err := core.NewTable(nil)
	assert.ErrorIs(t, err, core.ErrInvalidRecord)

	_, err = core.NewTable([]core.YearRecord{{Year: 2010}, {Year: 2010}})
	assert.ErrorIs(t, err, core.ErrInvalidRecord)

	_, err = core.NewTable([]core.YearRecord{{Year: 2010, PropertyDamage: -1}})
	assert.ErrorIs(t, err, core.ErrInvalidRecord)

	tbl := fullTable(t)
	lo, hi := tbl.Bounds()
	assert.Equal(t, 2005, lo)
	assert.Equal(t, 2023, hi)
	assert.Equal(t, 19, tbl.Len())
}

func TestYearRange(t *testing.T) {
	assert.Equal(t, core.YearRange{From: 2010, To: 2020}, core.YearRange{From: 2020, To: 2010}.Normalize())
	assert.Equal(t, core.YearRange{From: 2005, To: 2023}, core.YearRange{From: 1990, To: 2030}.Clamp(2005, 2023))
	assert.Equal(t, "2010-2023", core.YearRange{From: 2010, To: 2023}.String())
}

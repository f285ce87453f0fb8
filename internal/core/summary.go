package core

import "sort"

// TopCount is the number of years shown in the top damage ranking.
const TopCount = 5

// minCasualtyAxis keeps the casualty axis from collapsing to zero height.
const minCasualtyAxis = 1.0

// Summary is the aggregate view of a filtered record set.
type Summary struct {
	Years           int
	TotalDamage     float64
	TotalRecovery   float64
	RecoveryRatio   float64
	TotalCasualties int
	MaxCasualties   int
	Correlation     Correlation
	Trend           Trend
	// Top holds the largest-damage years in ascending damage order.
	Top []YearRecord
}

// Summarize aggregates view. An empty view yields a zero Summary with
// undefined correlation and trend.
func Summarize(view []YearRecord) Summary {
	s := Summary{Years: len(view)}
	for _, r := range view {
		s.TotalDamage += r.PropertyDamage
		s.TotalRecovery += r.RecoveryAmount
		s.TotalCasualties += r.Casualties
		if r.Casualties > s.MaxCasualties {
			s.MaxCasualties = r.Casualties
		}
	}
	s.RecoveryRatio = RecoveryRatio(s.TotalRecovery, s.TotalDamage)

	damage, recovery := Series(view)
	s.Correlation = Pearson(damage, recovery)
	s.Trend = FitTrend(damage, recovery)
	s.Top = TopByDamage(view, TopCount)
	return s
}

// RecoveryRatio returns recovery/damage, or 0 when damage is not positive.
func RecoveryRatio(recovery, damage float64) float64 {
	if damage <= 0 {
		return 0
	}
	return recovery / damage
}

// CasualtyAxisMax returns the upper bound of the casualty axis: 1.5 times the
// largest casualty count, never below a minimum positive span.
func (s Summary) CasualtyAxisMax() float64 {
	v := 1.5 * float64(s.MaxCasualties)
	if v < minCasualtyAxis {
		return minCasualtyAxis
	}
	return v
}

// TopByDamage selects the n records with the largest property damage. Ties
// keep chronological (input) order. The selection is returned sorted
// ascending by damage so the largest value ends up last.
func TopByDamage(view []YearRecord, n int) []YearRecord {
	if n <= 0 || len(view) == 0 {
		return []YearRecord{}
	}
	ranked := make([]YearRecord, len(view))
	copy(ranked, view)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PropertyDamage > ranked[j].PropertyDamage
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	top := ranked[:n:n]
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].PropertyDamage < top[j].PropertyDamage
	})
	return top
}

// SortByYearDesc returns a copy of view ordered from the latest year.
func SortByYearDesc(view []YearRecord) []YearRecord {
	out := make([]YearRecord, len(view))
	copy(out, view)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Year > out[j].Year
	})
	return out
}

// Series splits view into the damage and recovery columns.
func Series(view []YearRecord) (damage, recovery []float64) {
	damage = make([]float64, len(view))
	recovery = make([]float64, len(view))
	for i, r := range view {
		damage[i] = r.PropertyDamage
		recovery[i] = r.RecoveryAmount
	}
	return damage, recovery
}

package core

import "fmt"

// YearRange is an inclusive range of years.
type YearRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// String implements fmt.Stringer.
func (r YearRange) String() string {
	return fmt.Sprintf("%d-%d", r.From, r.To)
}

// Contains reports whether year lies within the range, bounds included.
func (r YearRange) Contains(year int) bool {
	return r.From <= year && year <= r.To
}

// Normalize returns the range with From <= To.
func (r YearRange) Normalize() YearRange {
	if r.From > r.To {
		return YearRange{From: r.To, To: r.From}
	}
	return r
}

// Clamp restricts both bounds to [minYear, maxYear].
func (r YearRange) Clamp(minYear, maxYear int) YearRange {
	clamp := func(v int) int {
		if v < minYear {
			return minYear
		}
		if v > maxYear {
			return maxYear
		}
		return v
	}
	return YearRange{From: clamp(r.From), To: clamp(r.To)}.Normalize()
}

// Filter returns every record whose year falls within r, preserving the
// relative order of records. The result never aliases the input slice.
func Filter(records []YearRecord, r YearRange) []YearRecord {
	out := make([]YearRecord, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.Year) {
			out = append(out, rec)
		}
	}
	return out
}

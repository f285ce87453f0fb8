package core

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Display units for formatted values.
const (
	UnitAmount = "억원"
	UnitPeople = "명"
)

// DisplayLocale controls digit grouping in formatted values.
var DisplayLocale = language.Korean

func printer() *message.Printer {
	return message.NewPrinter(DisplayLocale)
}

// FormatAmount renders an amount rounded to whole 억원 with thousands
// separators, e.g. "7,669 억원".
func FormatAmount(v float64) string {
	return printer().Sprintf("%d %s", roundInt(v), UnitAmount)
}

// FormatNumber renders v rounded to an integer with thousands separators.
func FormatNumber(v float64) string {
	return printer().Sprintf("%d", roundInt(v))
}

// FormatPercent renders a ratio as a percentage with one decimal, e.g. "168.8%".
func FormatPercent(ratio float64) string {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		ratio = 0
	}
	return printer().Sprintf("%.1f%%", ratio*100)
}

// FormatCount renders a casualty count, e.g. "16 명".
func FormatCount(n int) string {
	return printer().Sprintf("%d %s", n, UnitPeople)
}

// FormatCorrelation renders the coefficient with two decimals, or a
// not-computable marker.
func FormatCorrelation(c Correlation) string {
	if !c.Defined {
		return "계산 불가"
	}
	return printer().Sprintf("%.2f", c.Value)
}

// DescribeCorrelation labels the strength and direction of c.
func DescribeCorrelation(c Correlation) string {
	if !c.Defined {
		return "계산 불가"
	}
	abs := math.Abs(c.Value)
	var strength string
	switch {
	case abs >= 0.7:
		strength = "강한"
	case abs >= 0.4:
		strength = "중간"
	case abs >= 0.2:
		strength = "약한"
	default:
		return "상관관계 거의 없음"
	}
	if c.Value < 0 {
		return strength + " 음의 상관관계"
	}
	return strength + " 양의 상관관계"
}

func roundInt(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(math.Round(v))
}

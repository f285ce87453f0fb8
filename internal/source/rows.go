package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"typhoondash/internal/core"
)

// Column identifies one of the five record fields.
type Column int

const (
	ColYear Column = iota
	ColTyphoon
	ColDamage
	ColRecovery
	ColCasualties
	numColumns
)

func (c Column) String() string {
	switch c {
	case ColYear:
		return "year"
	case ColTyphoon:
		return "typhoon"
	case ColDamage:
		return "property_damage"
	case ColRecovery:
		return "recovery_amount"
	case ColCasualties:
		return "casualties"
	default:
		return "unknown"
	}
}

// Headers as authored in the provincial statistics file, plus English aliases.
var headerAliases = map[string]Column{
	"연도":              ColYear,
	"year":            ColYear,
	"주요태풍":            ColTyphoon,
	"태풍":              ColTyphoon,
	"typhoon":         ColTyphoon,
	"typhoon_name":    ColTyphoon,
	"재산피해액(억원)":       ColDamage,
	"재산피해액":           ColDamage,
	"property_damage": ColDamage,
	"damage":          ColDamage,
	"복구액(억원)":         ColRecovery,
	"복구액":             ColRecovery,
	"recovery_amount": ColRecovery,
	"recovery":        ColRecovery,
	"인명피해(명)":         ColCasualties,
	"인명피해":            ColCasualties,
	"casualties":      ColCasualties,
}

// HeaderColumns are the canonical Korean headers, in column order.
var HeaderColumns = []string{"연도", "주요태풍", "재산피해액(억원)", "복구액(억원)", "인명피해(명)"}

// ParseRows converts a header row followed by data rows into records.
// Blank rows are skipped; any malformed cell fails the whole parse.
func ParseRows(rows [][]string) ([]core.YearRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrDataUnavailable)
	}
	index, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	var out []core.YearRecord
	for i, row := range rows[1:] {
		line := i + 2
		if blankRow(row) {
			continue
		}
		rec, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrDataUnavailable, line, err)
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrDataUnavailable)
	}
	return out, nil
}

func mapHeader(header []string) ([numColumns]int, error) {
	var index [numColumns]int
	for i := range index {
		index[i] = -1
	}
	for i, h := range header {
		col, ok := headerAliases[normalizeHeader(h)]
		if !ok || index[col] >= 0 {
			continue
		}
		index[col] = i
	}
	var missing []string
	for c, i := range index {
		if i < 0 {
			missing = append(missing, Column(c).String())
		}
	}
	if len(missing) > 0 {
		return index, fmt.Errorf("%w: missing columns %s", ErrDataUnavailable, strings.Join(missing, ", "))
	}
	return index, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, h)
	return strings.ToLower(h)
}

func parseRow(row []string, index [numColumns]int) (core.YearRecord, error) {
	cell := func(c Column) string {
		i := index[c]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	year, err := strconv.Atoi(cell(ColYear))
	if err != nil {
		return core.YearRecord{}, fmt.Errorf("year %q: not an integer", cell(ColYear))
	}
	damage, err := ParseAmount(cell(ColDamage))
	if err != nil {
		return core.YearRecord{}, fmt.Errorf("property damage: %w", err)
	}
	recovery, err := ParseAmount(cell(ColRecovery))
	if err != nil {
		return core.YearRecord{}, fmt.Errorf("recovery amount: %w", err)
	}
	casualties, err := strconv.Atoi(strings.ReplaceAll(cell(ColCasualties), ",", ""))
	if err != nil {
		return core.YearRecord{}, fmt.Errorf("casualties %q: not an integer", cell(ColCasualties))
	}
	typhoon := cell(ColTyphoon)
	if typhoon == "" {
		typhoon = core.NoTyphoonPlaceholder
	}

	rec := core.YearRecord{
		Year:           year,
		Typhoon:        typhoon,
		PropertyDamage: damage,
		RecoveryAmount: recovery,
		Casualties:     casualties,
	}
	if err := rec.Validate(); err != nil {
		return core.YearRecord{}, err
	}
	return rec, nil
}

// ParseAmount parses a non-negative amount that may carry thousands
// separators ("4,327" or "4327.5").
func ParseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q: not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("amount %q: not a finite number", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("amount %q: negative", s)
	}
	return v, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

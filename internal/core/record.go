// Package core holds the typhoon damage data model and the pure functions
// that filter and aggregate it.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// NoTyphoonPlaceholder marks a year without a major typhoon.
const NoTyphoonPlaceholder = "-"

var (
	// ErrInvalidRecord is returned when a record or a table violates the data model.
	ErrInvalidRecord = errors.New("invalid record")
)

// YearRecord is the damage summary for one year. Amounts are expressed in
// 억원 (hundred-million won).
type YearRecord struct {
	Year           int     `json:"year"`
	Typhoon        string  `json:"typhoon"`
	PropertyDamage float64 `json:"property_damage"`
	RecoveryAmount float64 `json:"recovery_amount"`
	Casualties     int     `json:"casualties"`
}

// HasTyphoon reports whether the record names a typhoon.
func (r YearRecord) HasTyphoon() bool {
	name := strings.TrimSpace(r.Typhoon)
	return name != "" && name != NoTyphoonPlaceholder
}

// Validate checks field-level invariants.
func (r YearRecord) Validate() error {
	if r.Year <= 0 {
		return fmt.Errorf("%w: year %d must be positive", ErrInvalidRecord, r.Year)
	}
	if r.PropertyDamage < 0 {
		return fmt.Errorf("%w: year %d has negative property damage", ErrInvalidRecord, r.Year)
	}
	if r.RecoveryAmount < 0 {
		return fmt.Errorf("%w: year %d has negative recovery amount", ErrInvalidRecord, r.Year)
	}
	if r.Casualties < 0 {
		return fmt.Errorf("%w: year %d has negative casualties", ErrInvalidRecord, r.Year)
	}
	return nil
}

// Table is the immutable, validated record set loaded at startup.
// Records keep the order they were authored in.
type Table struct {
	records []YearRecord
	minYear int
	maxYear int
}

// NewTable validates records and wraps a private copy of them.
func NewTable(records []YearRecord) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: table is empty", ErrInvalidRecord)
	}

	seen := make(map[int]struct{}, len(records))
	t := &Table{
		records: make([]YearRecord, len(records)),
		minYear: records[0].Year,
		maxYear: records[0].Year,
	}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[r.Year]; dup {
			return nil, fmt.Errorf("%w: duplicate year %d", ErrInvalidRecord, r.Year)
		}
		seen[r.Year] = struct{}{}
		r.Typhoon = strings.TrimSpace(r.Typhoon)
		t.records[i] = r
		if r.Year < t.minYear {
			t.minYear = r.Year
		}
		if r.Year > t.maxYear {
			t.maxYear = r.Year
		}
	}
	return t, nil
}

// Records returns a copy of the table rows.
func (t *Table) Records() []YearRecord {
	out := make([]YearRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.records) }

// Bounds returns the smallest and largest year in the table.
func (t *Table) Bounds() (minYear, maxYear int) {
	return t.minYear, t.maxYear
}

// Filter returns the rows of the table inside r.
func (t *Table) Filter(r YearRange) []YearRecord {
	return Filter(t.records, r)
}

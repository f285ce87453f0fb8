// Package memory serves the built-in Jeollanam-do typhoon damage table.
package memory

import (
	"context"

	"typhoondash/internal/core"
	"typhoondash/internal/source"
)

// Store is a loader over a fixed in-memory record set.
type Store struct {
	records []core.YearRecord
}

var _ source.Loader = (*Store)(nil)

// New returns a store over the built-in 2005–2023 table.
func New() *Store {
	return NewWithRecords(Records())
}

// NewWithRecords returns a store over records.
func NewWithRecords(records []core.YearRecord) *Store {
	return &Store{records: append([]core.YearRecord(nil), records...)}
}

// Name implements source.Loader.
func (s *Store) Name() string { return "memory" }

// Load implements source.Loader.
func (s *Store) Load(ctx context.Context) ([]core.YearRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]core.YearRecord(nil), s.records...), nil
}

// Records returns the built-in table: yearly typhoon damage for
// Jeollanam-do in 억원, reconstructed from provincial damage reports.
func Records() []core.YearRecord {
	return []core.YearRecord{
		{Year: 2005, Typhoon: "나비", PropertyDamage: 120, RecoveryAmount: 180, Casualties: 0},
		{Year: 2006, Typhoon: "에위니아", PropertyDamage: 45, RecoveryAmount: 60, Casualties: 1},
		{Year: 2007, Typhoon: "나리", PropertyDamage: 300, RecoveryAmount: 450, Casualties: 2},
		{Year: 2008, Typhoon: "갈매기", PropertyDamage: 23, RecoveryAmount: 35, Casualties: 0},
		{Year: 2009, Typhoon: "-", PropertyDamage: 5, RecoveryAmount: 8, Casualties: 0},
		{Year: 2010, Typhoon: "곤파스", PropertyDamage: 150, RecoveryAmount: 240, Casualties: 1},
		{Year: 2011, Typhoon: "무이파", PropertyDamage: 410, RecoveryAmount: 600, Casualties: 3},
		{Year: 2012, Typhoon: "볼라벤/덴빈", PropertyDamage: 4327, RecoveryAmount: 7800, Casualties: 4},
		{Year: 2013, Typhoon: "다나스", PropertyDamage: 80, RecoveryAmount: 110, Casualties: 0},
		{Year: 2014, Typhoon: "나크리", PropertyDamage: 60, RecoveryAmount: 90, Casualties: 0},
		{Year: 2015, Typhoon: "고니", PropertyDamage: 20, RecoveryAmount: 30, Casualties: 0},
		{Year: 2016, Typhoon: "차바", PropertyDamage: 15, RecoveryAmount: 25, Casualties: 1},
		{Year: 2017, Typhoon: "-", PropertyDamage: 0, RecoveryAmount: 0, Casualties: 0},
		{Year: 2018, Typhoon: "솔릭", PropertyDamage: 90, RecoveryAmount: 130, Casualties: 0},
		{Year: 2019, Typhoon: "링링/타파", PropertyDamage: 1500, RecoveryAmount: 2400, Casualties: 3},
		{Year: 2020, Typhoon: "바비/마이삭", PropertyDamage: 350, RecoveryAmount: 500, Casualties: 0},
		{Year: 2021, Typhoon: "찬투", PropertyDamage: 40, RecoveryAmount: 60, Casualties: 0},
		{Year: 2022, Typhoon: "힌남노", PropertyDamage: 124, RecoveryAmount: 210, Casualties: 1},
		{Year: 2023, Typhoon: "카눈", PropertyDamage: 10, RecoveryAmount: 20, Casualties: 0},
	}
}

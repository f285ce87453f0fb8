// Package sqlite serves the record table from the SQLite repository.
package sqlite

import (
	"context"
	"fmt"

	"typhoondash/internal/core"
	"typhoondash/internal/source"
	"typhoondash/internal/storage"
)

// Source loads records through a storage repository.
type Source struct {
	repo *storage.SQLiteRepository
}

var (
	_ source.Loader = (*Source)(nil)
	_ source.Closer = (*Source)(nil)
)

// Open opens the database at dbPath, migrating and seeding it if needed.
func Open(dbPath string) (*Source, error) {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrDataUnavailable, err)
	}
	return &Source{repo: repo}, nil
}

// Name implements source.Loader.
func (s *Source) Name() string { return "sqlite" }

// Load implements source.Loader.
func (s *Source) Load(ctx context.Context) ([]core.YearRecord, error) {
	recs, err := s.repo.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrDataUnavailable, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: typhoon_damage table is empty", source.ErrDataUnavailable)
	}
	return recs, nil
}

// Repository exposes the underlying repository for imports.
func (s *Source) Repository() *storage.SQLiteRepository { return s.repo }

// Close implements source.Closer.
func (s *Source) Close() error { return s.repo.Close() }

// Package storage persists the typhoon damage table in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"typhoondash/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository reads and replaces the typhoon_damage table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// runs migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const listRecords = `
SELECT year, typhoon, property_damage, recovery_amount, casualties
FROM typhoon_damage
ORDER BY position, year`

// ListRecords returns every stored record in authored order.
func (r *SQLiteRepository) ListRecords(ctx context.Context) ([]core.YearRecord, error) {
	rows, err := r.db.QueryContext(ctx, listRecords)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []core.YearRecord
	for rows.Next() {
		var rec core.YearRecord
		if err := rows.Scan(&rec.Year, &rec.Typhoon, &rec.PropertyDamage, &rec.RecoveryAmount, &rec.Casualties); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// ReplaceRecords swaps the whole table for records in one transaction.
func (r *SQLiteRepository) ReplaceRecords(ctx context.Context, records []core.YearRecord) error {
	if _, err := core.NewTable(records); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM typhoon_damage`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO typhoon_damage (year, typhoon, property_damage, recovery_amount, casualties, position)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Year, rec.Typhoon, rec.PropertyDamage, rec.RecoveryAmount, rec.Casualties, i); err != nil {
			return fmt.Errorf("insert year %d: %w", rec.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Typhoon damage table replaced", "records", len(records))
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

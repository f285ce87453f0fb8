package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typhoondash/internal/config"
	"typhoondash/internal/source/memory"
)

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	t.Run("memory", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
		require.NoError(t, err)
		assert.Equal(t, "memory", res.Loader.Name())
		assert.NoError(t, res.Close())
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "typhoon.csv")
		require.NoError(t, os.WriteFile(path, []byte("year,typhoon,property_damage,recovery_amount,casualties\n2020,바비,350,500,0\n"), 0o644))

		res, err := f.CreateBackend(ctx, Config{Type: FileBackend, DataFile: path, DataFileEncoding: "utf-8"})
		require.NoError(t, err)
		recs, err := res.Loader.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, recs, 1)
	})

	t.Run("sqlite", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "db", "typhoon.db")})
		require.NoError(t, err)
		defer res.Close()

		recs, err := res.Loader.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, memory.Records(), recs)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := f.CreateBackend(ctx, Config{Type: "kafka"})
		assert.ErrorContains(t, err, "invalid backend type")

		_, err = f.CreateBackend(ctx, Config{Type: FileBackend})
		assert.ErrorContains(t, err, "data file path is required")

		_, err = f.CreateBackend(ctx, Config{Type: SheetsBackend})
		assert.ErrorContains(t, err, "Spreadsheet ID")
	})
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:      "file",
		DataFile:         "data/typhoon.xlsx",
		DataFileEncoding: "cp949",
		DataXLSXSheet:    "2023",
	})
	require.NoError(t, err)
	assert.Equal(t, FileBackend, cfg.Type)
	assert.Equal(t, "data/typhoon.xlsx", cfg.DataFile)
	assert.Equal(t, "2023", cfg.DataXLSXSheet)

	_, err = FromAppConfig(&config.Config{DataBackend: "amqp"})
	assert.Error(t, err)
}

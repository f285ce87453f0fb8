// Command typhoon-import loads a CSV or XLSX export into the SQLite table
// read by the sqlite backend, replacing its contents.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"typhoondash/internal/cli"
	"typhoondash/internal/core"
	applog "typhoondash/internal/log"
	"typhoondash/internal/source/file"
)

func main() {
	cli.LoadEnvFile()

	defaultDB := os.Getenv("SQLITE_DB_PATH")
	if defaultDB == "" {
		defaultDB = "./data/typhoon.db"
	}

	var (
		path     = flag.String("file", "", "CSV or XLSX file to import (required)")
		dbPath   = flag.String("db", defaultDB, "SQLite database path")
		encoding = flag.String("encoding", file.EncodingCP949, "CSV text encoding: cp949, euc-kr or utf-8")
		sheet    = flag.String("sheet", "", "XLSX worksheet (default: first sheet)")
		timeout  = flag.Duration("timeout", time.Minute, "import timeout")
	)
	flag.Parse()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentImport)
	if *path == "" {
		fmt.Fprintln(os.Stderr, "typhoon-import: -file is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	n, err := importFile(ctx, logger, *path, *dbPath, file.Options{Encoding: *encoding, Sheet: *sheet})
	if err != nil {
		logger.Error("Import failed", applog.FieldError, err, applog.FieldPath, *path)
		os.Exit(1)
	}
	logger.Info("Import complete",
		applog.FieldOperation, applog.OpImport,
		applog.FieldRecords, n,
		applog.FieldPath, *path,
		"db", *dbPath)
}

func importFile(ctx context.Context, logger *applog.Logger, path, dbPath string, opts file.Options) (int, error) {
	loader, err := file.New(path, opts)
	if err != nil {
		return 0, err
	}
	records, err := loader.Load(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := core.NewTable(records); err != nil {
		return 0, fmt.Errorf("validate %s: %w", path, err)
	}

	repo := cli.InitSQLite(logger, dbPath)
	defer repo.Close()

	if err := repo.ReplaceRecords(ctx, records); err != nil {
		return 0, fmt.Errorf("replace records: %w", err)
	}
	logger.WithComponent(applog.ComponentStorage).InfoContext(ctx, "Records replaced",
		applog.FieldOperation, applog.OpImport,
		applog.FieldRecords, len(records),
		"db", dbPath)
	return len(records), nil
}

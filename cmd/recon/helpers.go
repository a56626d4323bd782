package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/ledgerlab/reconcile/internal/common"
	"github.com/ledgerlab/reconcile/internal/config"
	"github.com/ledgerlab/reconcile/internal/ingest"
	"github.com/ledgerlab/reconcile/internal/model"
	"github.com/ledgerlab/reconcile/internal/storage"
)

// initStore opens the suggestion store with proper path expansion and runs
// migrations.
func initStore(ctx context.Context) (*storage.SQLiteStore, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/recon/recon.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadRecords reads one record file and logs any skipped rows.
func loadRecords(path string) ([]model.CandidateRecord, []model.SkippedRecord, error) {
	records, skipped, err := ingest.ReadPath(path)
	if err != nil {
		return nil, nil, common.NewUserError(fmt.Sprintf("could not read records from %s", path), err)
	}

	for _, s := range skipped {
		slog.Warn("Skipped record",
			"file", path,
			"index", s.Index,
			"reason", s.Reason)
	}

	slog.Info("Loaded records", "file", path, "records", len(records), "skipped", len(skipped))
	return records, skipped, nil
}

// printJSON writes a value as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

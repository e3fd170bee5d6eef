// Package snapshot persists the last known record set of each scraper.
//
// A stored snapshot always reflects a completed run: it is replaced whole,
// after scraping and diffing, and never while notifications are in flight.
// Missing or unreadable history is not an error; Load reports it as an empty
// sequence so the next run re-seeds.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go-cityboard-automation/internal/models"
)

// Store loads and replaces snapshots. Load returns an error only for backend
// faults (an unreachable database), never for absent or corrupt history.
type Store interface {
	Load(ctx context.Context, id models.Identity) ([]models.Record, error)
	Save(ctx context.Context, id models.Identity, records []models.Record) error
}

// Encode renders records as a pretty-printed JSON array. Empty input is "[]".
func Encode(records []models.Record) ([]byte, error) {
	if records == nil {
		records = []models.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses stored snapshot bytes. Blank, null or invalid content yields
// an empty snapshot, so every backend treats broken history the same way.
func Decode(log *slog.Logger, id models.Identity, data []byte) []models.Record {
	if len(bytes.TrimSpace(data)) == 0 {
		log.Info("📭 snapshot is empty, starting fresh", "snapshot", id.Key())
		return []models.Record{}
	}

	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warn("⚠️ failed to parse snapshot, starting fresh", "snapshot", id.Key(), "error", err)
		return []models.Record{}
	}
	if records == nil {
		records = []models.Record{}
	}
	log.Info("📋 loaded previous snapshot", "snapshot", id.Key(), "records", len(records))
	return records
}

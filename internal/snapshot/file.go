package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"go-cityboard-automation/internal/models"
)

// FileStore keeps one JSON file per identity:
//
//	{root}/{dataDir}/{city}/{city}-{source}-{kind}.json
//
// Legacy identities (no city) live directly under root, either at their
// pinned File name or at {SOURCE}-{kind}.json.
type FileStore struct {
	root    string
	dataDir string
	log     *slog.Logger
}

func NewFileStore(root, dataDir string, log *slog.Logger) *FileStore {
	if root == "" {
		root = "."
	}
	if dataDir == "" {
		dataDir = "data"
	}
	return &FileStore{root: root, dataDir: dataDir, log: log.With("component", "snapshot", "backend", "file")}
}

// Path returns the snapshot file for id.
func (s *FileStore) Path(id models.Identity) string {
	if id.Legacy() {
		if id.File != "" {
			return filepath.Join(s.root, id.File)
		}
		return filepath.Join(s.root, fmt.Sprintf("%s-%s.json", strings.ToUpper(id.Source), id.Kind))
	}
	name := fmt.Sprintf("%s-%s-%s.json", id.City, id.Source, id.Kind)
	return filepath.Join(s.root, s.dataDir, id.City, name)
}

func (s *FileStore) Load(_ context.Context, id models.Identity) ([]models.Record, error) {
	path := s.Path(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Info("📭 no previous snapshot found", "path", path)
		} else {
			s.log.Warn("⚠️ failed to read snapshot, starting fresh", "path", path, "error", err)
		}
		return []models.Record{}, nil
	}
	return Decode(s.log, id, data), nil
}

// Save replaces the snapshot atomically: the data is written to a temporary
// file in the same directory and renamed over the old one.
func (s *FileStore) Save(_ context.Context, id models.Identity, records []models.Record) error {
	path := s.Path(id)
	data, err := Encode(records)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir for %s: %w", id, err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	s.log.Info("💾 saved snapshot", "path", path, "records", len(records))
	return nil
}

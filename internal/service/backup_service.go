package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"wision/internal/kvstore"
)

// BackupFormatVersion is written into every export
const BackupFormatVersion = "1.0"

// BackupData is the complete store backup
type BackupData struct {
	Version    string        `json:"version"`
	ExportedAt time.Time     `json:"exported_at"`
	Store      string        `json:"store"`
	Entries    []BackupEntry `json:"entries"`
}

// BackupEntry is one key with its JSON document
type BackupEntry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BackupService exports and restores every key in a store
type BackupService struct {
	store  kvstore.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(store kvstore.Store, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{store: store, logger: logger, now: time.Now}
}

// Export writes every entry to w as indented JSON
func (s *BackupService) Export(ctx context.Context, w io.Writer) (*BackupData, error) {
	s.logger.Info("starting export", zap.String("store", s.store.Name()))

	entries, err := s.store.GetByPrefix(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}

	backup := &BackupData{
		Version:    BackupFormatVersion,
		ExportedAt: s.now().UTC(),
		Store:      s.store.Name(),
		Entries:    make([]BackupEntry, 0, len(entries)),
	}
	for _, e := range entries {
		if !json.Valid(e.Value) {
			return nil, fmt.Errorf("entry %s is not valid JSON", e.Key)
		}
		backup.Entries = append(backup.Entries, BackupEntry{
			Key:       e.Key,
			Value:     json.RawMessage(e.Value),
			Version:   e.Version,
			UpdatedAt: e.UpdatedAt,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	s.logger.Info("export complete", zap.Int("entries", len(backup.Entries)))
	return backup, nil
}

// Import restores entries from r. With clear set every existing key is
// deleted first; otherwise existing keys are overwritten.
func (s *BackupService) Import(ctx context.Context, r io.Reader, clear bool) (int, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return 0, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupFormatVersion {
		return 0, fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	s.logger.Info("starting import",
		zap.String("source_store", backup.Store),
		zap.Time("exported_at", backup.ExportedAt),
		zap.Int("entries", len(backup.Entries)))

	if clear {
		cleared, err := s.Clear(ctx)
		if err != nil {
			return 0, err
		}
		s.logger.Info("cleared existing entries", zap.Int("count", cleared))
	}

	for _, e := range backup.Entries {
		if e.Key == "" {
			return 0, fmt.Errorf("backup contains an entry without a key")
		}
		if _, err := s.store.Set(ctx, e.Key, []byte(e.Value)); err != nil {
			return 0, fmt.Errorf("failed to restore %s: %w", e.Key, err)
		}
	}

	s.logger.Info("import complete", zap.Int("entries", len(backup.Entries)))
	return len(backup.Entries), nil
}

// Clear deletes every key and returns how many were removed
func (s *BackupService) Clear(ctx context.Context) (int, error) {
	entries, err := s.store.GetByPrefix(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to read entries: %w", err)
	}
	for _, e := range entries {
		if err := s.store.Delete(ctx, e.Key); err != nil {
			return 0, fmt.Errorf("failed to delete %s: %w", e.Key, err)
		}
	}
	return len(entries), nil
}

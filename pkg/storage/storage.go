package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gomcpgo/replicate/pkg/types"
	"gopkg.in/yaml.v3"
)

const (
	recordFile    = "prediction.yaml"
	schemaVersion = "1.0"
)

// Storage keeps finished prediction records on the local disk, one
// directory per prediction id
type Storage struct {
	rootPath string
}

// NewStorage creates a new storage instance
func NewStorage(rootPath string) *Storage {
	return &Storage{
		rootPath: rootPath,
	}
}

// Root returns the storage directory
func (s *Storage) Root() string {
	return s.rootPath
}

// SaveRecord writes a prediction record, replacing any earlier one with the same id
func (s *Storage) SaveRecord(record *types.PredictionRecord) error {
	if record == nil || record.PredictionID == "" {
		return fmt.Errorf("record has no prediction id")
	}
	if strings.ContainsAny(record.PredictionID, `/\`) || record.PredictionID == "." || record.PredictionID == ".." {
		return fmt.Errorf("invalid prediction id %q", record.PredictionID)
	}

	// Ensure version is set
	if record.SchemaVersion == "" {
		record.SchemaVersion = schemaVersion
	}

	// Ensure timestamp is set
	if record.FinishedAt.IsZero() {
		record.FinishedAt = time.Now()
	}

	dir := filepath.Join(s.rootPath, record.PredictionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, recordFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// LoadRecord loads the record of one prediction
func (s *Storage) LoadRecord(id string) (*types.PredictionRecord, error) {
	data, err := os.ReadFile(filepath.Join(s.rootPath, id, recordFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	var record types.PredictionRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &record, nil
}

// ListRecords lists all stored records, most recently finished first
func (s *Storage) ListRecords() ([]*types.PredictionRecord, error) {
	entries, err := os.ReadDir(s.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []*types.PredictionRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	records := []*types.PredictionRecord{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		record, err := s.LoadRecord(entry.Name())
		if err != nil {
			// Skip entries without a valid record
			continue
		}
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].FinishedAt.After(records[j].FinishedAt)
	})
	return records, nil
}

package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
)

// RecordSuffix is appended to an artifact path to name its delivery record.
const RecordSuffix = ".slack_posted"

// legacyLayouts parse marker files that hold only a timestamp.
var legacyLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// Ensure RecordStore implements the interface.
var _ driven.DeliveryRecordStore = (*RecordStore)(nil)

// RecordStore keeps one JSON delivery record beside each artifact.
type RecordStore struct{}

// NewRecordStore creates a record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{}
}

// Get returns the record for the artifact, or nil if there is none.
// A marker holding a bare timestamp still counts as delivered.
func (s *RecordStore) Get(_ context.Context, artifactPath string) (*domain.DeliveryRecord, error) {
	path := artifactPath + RecordSuffix
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read delivery record: %w", err)
	}

	var rec domain.DeliveryRecord
	if err := json.Unmarshal(data, &rec); err == nil {
		return &rec, nil
	}
	return legacyRecord(path, strings.TrimSpace(string(data))), nil
}

// Save writes the record beside the artifact.
func (s *RecordStore) Save(_ context.Context, artifactPath string, record domain.DeliveryRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode delivery record: %w", err)
	}
	if err := writeAtomic(artifactPath+RecordSuffix, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write delivery record: %w", err)
	}
	return nil
}

func legacyRecord(path, text string) *domain.DeliveryRecord {
	for _, layout := range legacyLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return &domain.DeliveryRecord{CompletedAt: t.UTC()}
		}
	}
	rec := &domain.DeliveryRecord{}
	if info, err := os.Stat(path); err == nil {
		rec.CompletedAt = info.ModTime().UTC()
	}
	return rec
}

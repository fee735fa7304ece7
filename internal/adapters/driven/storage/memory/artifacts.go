package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
)

// Ensure the stores implement the interfaces.
var (
	_ driven.ArtifactStore       = (*ArtifactStore)(nil)
	_ driven.DeliveryRecordStore = (*RecordStore)(nil)
)

type artifact struct {
	content string
	saved   time.Time
	seq     int
}

// ArtifactStore keeps briefs in memory. Paths are "memory://{id}".
type ArtifactStore struct {
	mu    sync.RWMutex
	items map[string]artifact
	seq   int
}

// NewArtifactStore creates an empty artifact store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{items: make(map[string]artifact)}
}

// Save stores the brief and returns its memory path.
func (s *ArtifactStore) Save(_ context.Context, brief *domain.Brief) (string, error) {
	if brief.ArtifactID == "" {
		return "", fmt.Errorf("empty artifact id: %w", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.items[brief.ArtifactID] = artifact{content: brief.Content, saved: time.Now(), seq: s.seq}
	return pathFor(brief.ArtifactID), nil
}

// Load returns the stored content for id.
func (s *ArtifactStore) Load(_ context.Context, id string) (string, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.items[id]
	if !ok {
		return "", pathFor(id), fmt.Errorf("artifact %s: %w", id, domain.ErrNotFound)
	}
	return a.content, pathFor(id), nil
}

// Recent returns up to n artifacts, most recently saved first.
func (s *ArtifactStore) Recent(_ context.Context, n int) ([]domain.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type entry struct {
		id string
		a  artifact
	}
	entries := make([]entry, 0, len(s.items))
	for id, a := range s.items {
		entries = append(entries, entry{id, a})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].a.seq > entries[j].a.seq })

	if n < len(entries) {
		entries = entries[:max(n, 0)]
	}
	out := make([]domain.Artifact, len(entries))
	for i, e := range entries {
		out[i] = domain.Artifact{ID: e.id, Path: pathFor(e.id), ModTime: e.a.saved}
	}
	return out, nil
}

func pathFor(id string) string {
	return "memory://" + id
}

// RecordStore keeps delivery records in memory, keyed by artifact path.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]domain.DeliveryRecord
}

// NewRecordStore creates an empty record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{records: make(map[string]domain.DeliveryRecord)}
}

// Get returns the record for the artifact, or nil.
func (s *RecordStore) Get(_ context.Context, artifactPath string) (*domain.DeliveryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[artifactPath]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Save stores the record.
func (s *RecordStore) Save(_ context.Context, artifactPath string, record domain.DeliveryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[artifactPath] = record
	return nil
}

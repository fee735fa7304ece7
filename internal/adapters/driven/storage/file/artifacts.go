package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
	"github.com/custodia-labs/pulse-brief/internal/logger"
)

// artifactSuffix follows the artifact id in every brief file name.
const artifactSuffix = "-weekly.md"

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore keeps briefs as {dir}/{id}-weekly.md.
// An optional mirror directory receives a copy of every saved brief.
type ArtifactStore struct {
	dir    string
	mirror string
}

// NewArtifactStore creates an artifact store rooted at dir.
// mirrorDir may be empty.
func NewArtifactStore(dir, mirrorDir string) *ArtifactStore {
	return &ArtifactStore{dir: dir, mirror: mirrorDir}
}

// Dir returns the artifact directory.
func (s *ArtifactStore) Dir() string {
	return s.dir
}

// PathFor returns the file path for an artifact id.
func (s *ArtifactStore) PathFor(id string) string {
	return filepath.Join(s.dir, id+artifactSuffix)
}

// Save writes the brief and returns its path. Overwrites an existing
// artifact with the same id. A failed mirror write is logged, not returned.
func (s *ArtifactStore) Save(_ context.Context, brief *domain.Brief) (string, error) {
	if err := validateID(brief.ArtifactID); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	path := s.PathFor(brief.ArtifactID)
	if err := writeAtomic(path, []byte(brief.Content), 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}

	if s.mirror != "" {
		if err := s.writeMirror(brief); err != nil {
			logger.Warn("mirror copy of %s failed: %v", brief.ArtifactID, err)
		}
	}
	return path, nil
}

func (s *ArtifactStore) writeMirror(brief *domain.Brief) error {
	if err := os.MkdirAll(s.mirror, 0o755); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.mirror, brief.ArtifactID+artifactSuffix), []byte(brief.Content), 0o644)
}

// Load reads the artifact with id.
func (s *ArtifactStore) Load(_ context.Context, id string) (string, string, error) {
	if err := validateID(id); err != nil {
		return "", "", err
	}
	path := s.PathFor(id)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", path, fmt.Errorf("artifact %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return "", path, err
	}
	return string(data), path, nil
}

// Recent returns up to n artifacts, newest modification time first.
// A missing directory yields no artifacts.
func (s *ArtifactStore) Recent(_ context.Context, n int) ([]domain.Artifact, error) {
	if n <= 0 {
		return nil, nil
	}
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	var artifacts []domain.Artifact
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, artifactSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		artifacts = append(artifacts, domain.Artifact{
			ID:      strings.TrimSuffix(name, artifactSuffix),
			Path:    filepath.Join(s.dir, name),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		if !artifacts[i].ModTime.Equal(artifacts[j].ModTime) {
			return artifacts[i].ModTime.After(artifacts[j].ModTime)
		}
		return artifacts[i].ID > artifacts[j].ID
	})
	if len(artifacts) > n {
		artifacts = artifacts[:n]
	}
	return artifacts, nil
}

func validateID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("artifact id %q: %w", id, domain.ErrInvalidInput)
	}
	return nil
}

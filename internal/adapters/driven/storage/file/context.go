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
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
	"github.com/custodia-labs/pulse-brief/internal/logger"
)

const (
	overviewFile  = "team-overview.md"
	meetingsDir   = "meet"
	overviewBytes = 10000
	meetingBytes  = 4000
	meetingCount  = 3
)

// Ensure ContextStore implements the interface.
var _ driven.ContextSource = (*ContextStore)(nil)

// ContextStore reads team background from a directory holding
// team-overview.md and a meet/ folder of meeting notes.
type ContextStore struct {
	dir string
}

// NewContextStore creates a context source rooted at dir.
func NewContextStore(dir string) *ContextStore {
	return &ContextStore{dir: dir}
}

// TeamContext returns the overview and the newest meeting notes,
// or "" when neither exists. Missing pieces are logged and skipped.
func (s *ContextStore) TeamContext(ctx context.Context) (string, error) {
	if s.dir == "" {
		return "", nil
	}
	var parts []string

	overviewPath := filepath.Join(s.dir, overviewFile)
	overview, err := os.ReadFile(overviewPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("team overview not found: %s", overviewPath)
	case err != nil:
		return "", fmt.Errorf("read team overview: %w", err)
	default:
		parts = append(parts, "TEAM CONTEXT:\n"+truncate(string(overview), overviewBytes))
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	meetings, err := s.meetings()
	if err != nil {
		return "", err
	}
	if len(meetings) > 0 {
		parts = append(parts, "RECENT MEETINGS:\n"+strings.Join(meetings, "\n---\n"))
	}

	return strings.Join(parts, "\n\n"), nil
}

type note struct {
	name    string
	path    string
	modTime time.Time
}

func (s *ContextStore) meetings() ([]string, error) {
	dir := filepath.Join(s.dir, meetingsDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("meeting directory not found: %s", dir)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list meeting notes: %w", err)
	}

	var notes []note
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		notes = append(notes, note{name: e.Name(), path: filepath.Join(dir, e.Name()), modTime: info.ModTime()})
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].modTime.After(notes[j].modTime)
	})
	if len(notes) > meetingCount {
		notes = notes[:meetingCount]
	}

	out := make([]string, 0, len(notes))
	for _, n := range notes {
		data, err := os.ReadFile(n.path)
		if err != nil {
			logger.Warn("could not read %s: %v", n.path, err)
			continue
		}
		out = append(out, "MEETING: "+n.name+"\n"+truncate(string(data), meetingBytes))
	}
	return out, nil
}

// truncate cuts s to at most limit bytes on a rune boundary.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

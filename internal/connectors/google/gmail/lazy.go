package gmail

import (
	"context"
	"sync"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
)

// Ensure LazyStore implements the interface.
var _ driven.MessageStore = (*LazyStore)(nil)

// LazyStore defers connecting to Gmail until the first request, so commands
// that never read mail work without a cached token. A failed connect is
// retried on the next request.
type LazyStore struct {
	connect func(ctx context.Context) (driven.MessageStore, error)

	mu    sync.Mutex
	store driven.MessageStore
}

// NewLazyStore creates a store that calls connect on first use.
func NewLazyStore(connect func(ctx context.Context) (driven.MessageStore, error)) *LazyStore {
	return &LazyStore{connect: connect}
}

func (l *LazyStore) get(ctx context.Context) (driven.MessageStore, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store != nil {
		return l.store, nil
	}
	s, err := l.connect(ctx)
	if err != nil {
		return nil, err
	}
	l.store = s
	return s, nil
}

// List connects if needed and delegates.
func (l *LazyStore) List(ctx context.Context, query, cursor string) ([]string, string, error) {
	s, err := l.get(ctx)
	if err != nil {
		return nil, "", err
	}
	return s.List(ctx, query, cursor)
}

// Get connects if needed and delegates.
func (l *LazyStore) Get(ctx context.Context, id string) (*domain.RawMessage, error) {
	s, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

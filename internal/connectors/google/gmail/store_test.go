package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pulse-brief/internal/connectors/google"
)

// fakeGmail serves a two-page mailbox.
type fakeGmail struct {
	mu      sync.Mutex
	queries []string
	tokens  []string
	labels  []string
}

func (f *fakeGmail) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.queries = append(f.queries, r.URL.Query().Get("q"))
		f.tokens = append(f.tokens, r.URL.Query().Get("pageToken"))
		f.labels = r.URL.Query()["labelIds"]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			_, _ = w.Write([]byte(`{"messages":[{"id":"a"},{"id":"b"}],"nextPageToken":"page-2"}`))
			return
		}
		_, _ = w.Write([]byte(`{"messages":[{"id":"c"}]}`))
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/a", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":           "a",
			"threadId":     "ta",
			"internalDate": "1762473600000",
			"snippet":      "snippet a",
			"payload": map[string]any{
				"mimeType": "text/html",
				"headers": []map[string]string{
					{"name": "Subject", "value": "Issue #12"},
					{"name": "Message-Id", "value": "<a@example.com>"},
				},
				"body": map[string]string{"data": "PHA-aGk8L3A-"},
			},
		})
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Requested entity was not found."}}`))
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/busy", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"User rate limit exceeded","errors":[{"reason":"rateLimitExceeded"}]}}`))
	})
	return mux
}

func newTestStore(t *testing.T, cfg *Config) (*Store, *fakeGmail, *google.RateLimiter) {
	t.Helper()
	fake := &fakeGmail{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	svc, err := google.NewGmailServiceAt(context.Background(), srv.URL+"/", srv.Client())
	require.NoError(t, err)

	limiter := google.NewRateLimiter(google.RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 100})
	return NewStore(svc, cfg, limiter), fake, limiter
}

func TestStore_ListPaginates(t *testing.T) {
	store, fake, _ := newTestStore(t, nil)
	ctx := context.Background()

	ids, next, err := store.List(ctx, "newer_than:30d from:news", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Equal(t, "page-2", next)

	ids, next, err = store.List(ctx, "newer_than:30d from:news", next)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids)
	assert.Empty(t, next)

	assert.Equal(t, []string{"newer_than:30d from:news", "newer_than:30d from:news"}, fake.queries)
	assert.Equal(t, []string{"", "page-2"}, fake.tokens)
}

func TestStore_ListLabels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LabelIDs = []string{"INBOX"}
	store, fake, _ := newTestStore(t, cfg)

	_, _, err := store.List(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"INBOX"}, fake.labels)
}

func TestStore_Get(t *testing.T) {
	store, _, _ := newTestStore(t, nil)

	msg, err := store.Get(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, "a", msg.ID)
	assert.Equal(t, int64(1762473600000), msg.InternalDate)
	assert.Equal(t, "snippet a", msg.Snippet)
	subject, _ := msg.Header("Subject")
	assert.Equal(t, "Issue #12", subject)
	require.NotNil(t, msg.Payload)
	assert.Equal(t, "PHA-aGk8L3A-", msg.Payload.Data)
	assert.Equal(t, "https://mail.google.com/mail/u/0/#search/rfc822msgid:<a@example.com>", ResolveWebURL(msg))
}

func TestStore_GetNotFound(t *testing.T) {
	store, _, _ := newTestStore(t, nil)

	_, err := store.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, google.ErrNotFound))
	assert.Contains(t, err.Error(), "missing")
}

func TestStore_RateLimitedStartsBackoff(t *testing.T) {
	store, _, limiter := newTestStore(t, nil)

	_, err := store.Get(context.Background(), "busy")
	require.Error(t, err)
	assert.True(t, errors.Is(err, google.ErrRateLimited))
	assert.WithinDuration(t, time.Now().Add(7*time.Second), limiter.RetryAt(), 2*time.Second)
}

func TestStore_CancelledContext(t *testing.T) {
	store, _, _ := newTestStore(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := store.List(ctx, "", "")
	assert.Error(t, err)
}

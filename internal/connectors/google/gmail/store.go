// Package gmail implements the message store over the Gmail API.
package gmail

import (
	"context"
	"fmt"

	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/pulse-brief/internal/connectors/google"
	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
	"github.com/custodia-labs/pulse-brief/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.MessageStore = (*Store)(nil)

// Store lists and fetches messages from one Gmail mailbox.
type Store struct {
	svc     *gmail.Service
	cfg     *Config
	limiter *google.RateLimiter
}

// NewStore creates a message store. A nil cfg or limiter takes the defaults.
func NewStore(svc *gmail.Service, cfg *Config, limiter *google.RateLimiter) *Store {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if limiter == nil {
		limiter = google.NewRateLimiter(google.DefaultGmailRateLimit)
	}
	return &Store{svc: svc, cfg: cfg, limiter: limiter}
}

// List returns one page of message ids matching query.
func (s *Store) List(ctx context.Context, query, cursor string) ([]string, string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	call := s.svc.Users.Messages.List(s.cfg.User).
		Q(query).
		MaxResults(s.cfg.PageSize).
		IncludeSpamTrash(s.cfg.IncludeSpamTrash).
		Fields("messages(id),nextPageToken").
		Context(ctx)
	if len(s.cfg.LabelIDs) > 0 {
		call = call.LabelIds(s.cfg.LabelIDs...)
	}
	if cursor != "" {
		call = call.PageToken(cursor)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("list messages: %w", s.wrap(err))
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	logger.Debug("gmail: listed %d messages (more: %t)", len(ids), resp.NextPageToken != "")
	return ids, resp.NextPageToken, nil
}

// Get fetches the full message for id.
func (s *Store) Get(ctx context.Context, id string) (*domain.RawMessage, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	msg, err := s.svc.Users.Messages.Get(s.cfg.User, id).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, s.wrap(err))
	}
	return MessageToRaw(msg), nil
}

// wrap maps API errors and starts a backoff on rate limiting.
func (s *Store) wrap(err error) error {
	if google.IsRateLimited(err) {
		s.limiter.Backoff(google.RetryAfter(err))
	}
	return google.WrapError(err)
}

package google

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// NewGmailService creates a Gmail API service using the provided TokenSource.
func NewGmailService(ctx context.Context, ts oauth2.TokenSource) (*gmail.Service, error) {
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return svc, nil
}

// NewGmailServiceAt creates an unauthenticated Gmail API service against endpoint.
// It is used to point the store at a local API double.
func NewGmailServiceAt(ctx context.Context, endpoint string, client *http.Client) (*gmail.Service, error) {
	svc, err := gmail.NewService(ctx,
		option.WithEndpoint(endpoint),
		option.WithHTTPClient(client),
		option.WithoutAuthentication(),
	)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return svc, nil
}

// Package google provides shared infrastructure for the Gmail message store.
//
// It contains:
//   - OAuth client configuration and a cached, self-persisting token source
//   - The Gmail API service factory
//   - Error mapping for common Google API failures (401, 403, 404, 429)
//   - Rate limiting to respect Gmail quota units
//
// # Usage
//
//	cfg, err := google.LoadConfig(credentialsFile)
//	ts, err := google.NewTokenSource(ctx, cfg, tokenFile)
//	svc, err := google.NewGmailService(ctx, ts)
//
// # OAuth2 Scopes
//
// Only https://www.googleapis.com/auth/gmail.readonly is requested.
// The consent flow that produces token.json runs outside this program.
package google

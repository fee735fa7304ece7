package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/pulse-brief/internal/logger"
)

// LoadConfig reads OAuth client credentials for read-only Gmail access.
func LoadConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials at %s: %w", credentialsFile, err)
	}
	cfg, err := googleoauth.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth config: %w", err)
	}
	return cfg, nil
}

// NewTokenSource returns a token source seeded from the cached token at tokenFile.
// Refreshed tokens are written back to tokenFile.
// Returns ErrTokenMissing if no cached token exists.
func NewTokenSource(ctx context.Context, cfg *oauth2.Config, tokenFile string) (oauth2.TokenSource, error) {
	tok, err := ReadToken(tokenFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrTokenMissing, tokenFile)
	}
	if err != nil {
		return nil, err
	}

	return &persistingTokenSource{
		base:   oauth2.ReuseTokenSource(tok, cfg.TokenSource(ctx, tok)),
		path:   tokenFile,
		access: tok.AccessToken,
	}, nil
}

// persistingTokenSource saves each newly issued token.
type persistingTokenSource struct {
	base oauth2.TokenSource
	path string

	mu     sync.Mutex
	access string
}

// Token implements oauth2.TokenSource.
func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.access {
		s.access = tok.AccessToken
		if err := SaveToken(s.path, tok); err != nil {
			// The refreshed token still works for this run.
			logger.Warn("failed to persist refreshed token: %v", err)
		}
	}
	return tok, nil
}

// ReadToken reads a JSON-encoded OAuth token.
func ReadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", path, err)
	}
	return &tok, nil
}

// SaveToken writes tok to path atomically.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	tmp := path + ".tmp"
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return os.Rename(tmp, path)
}

package oauth

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/pulse-brief/internal/connectors/google"
	"github.com/custodia-labs/pulse-brief/internal/logger"
)

// Loopback ports tried for the redirect.
const (
	PortRangeStart = 8085
	PortRangeEnd   = 8095
)

// DefaultTimeout bounds how long the user has to finish consent.
const DefaultTimeout = 5 * time.Minute

// GmailConsent obtains a refreshable Gmail token and caches it.
type GmailConsent struct {
	CredentialsFile string
	TokenFile       string

	// Open launches the browser. Nil uses OpenBrowser.
	Open func(url string) error

	// Exchange trades the code for a token. Nil uses the OAuth config.
	Exchange func(ctx context.Context, cfg *oauth2.Config, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)

	Timeout time.Duration
}

// Authorise runs the loopback consent flow with PKCE and writes the token file.
// Instructions are written to out.
func (g *GmailConsent) Authorise(ctx context.Context, out io.Writer) error {
	cfg, err := google.LoadConfig(g.CredentialsFile)
	if err != nil {
		return err
	}

	port, err := FindAvailablePort(PortRangeStart, PortRangeEnd)
	if err != nil {
		return err
	}

	state := uuid.NewString()
	server := NewCallbackServer(port, state)
	if err := server.Start(); err != nil {
		return err
	}
	defer func() { _ = server.Stop() }()

	cfg.RedirectURL = server.RedirectURI()
	verifier := oauth2.GenerateVerifier()
	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier))

	open := g.Open
	if open == nil {
		open = OpenBrowser
	}
	fmt.Fprintf(out, "Opening your browser to authorise Gmail access.\nIf it does not open, visit:\n\n  %s\n\n", authURL)
	if err := open(authURL); err != nil {
		logger.Debug("oauth: could not open browser: %v", err)
	}

	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	code, err := server.WaitForCode(ctx, timeout)
	if err != nil {
		return err
	}

	exchange := g.Exchange
	if exchange == nil {
		exchange = func(ctx context.Context, cfg *oauth2.Config, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
			return cfg.Exchange(ctx, code, opts...)
		}
	}
	tok, err := exchange(ctx, cfg, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("token exchange: %w", err)
	}
	if tok.RefreshToken == "" {
		logger.Warn("oauth: no refresh token issued; revoke the app's access and authorise again")
	}

	if err := google.SaveToken(g.TokenFile, tok); err != nil {
		return err
	}
	fmt.Fprintf(out, "Token saved to %s\n", g.TokenFile)
	return nil
}

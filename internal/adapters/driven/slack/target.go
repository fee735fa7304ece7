// Package slack posts briefs as threaded Slack messages.
package slack

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
)

// DefaultChannel is used when no channel is configured.
const DefaultChannel = "#ai-brief"

// Ensure Target implements the interface.
var _ driven.DeliveryTarget = (*Target)(nil)

// hints maps Slack error codes to operator remediation.
var hints = map[string]string{
	"channel_not_found": "Make sure the channel exists and the bot is invited",
	"not_in_channel":    "Invite the bot to the channel with /invite",
	"invalid_auth":      "Check SLACK_BOT_TOKEN",
	"not_authed":        "Set SLACK_BOT_TOKEN",
	"account_inactive":  "The bot token belongs to a deactivated app or user",
	"is_archived":       "The channel is archived; pick another channel",
	"msg_too_long":      "Lower delivery.max_chunk_bytes",
	"missing_scope":     "Add the chat:write scope to the Slack app",
}

// Config holds Slack target configuration.
type Config struct {
	// Token is the bot token (xoxb-...).
	Token string

	// Channel is the destination channel name or ID.
	Channel string

	// APIURL overrides the Slack Web API base URL. Must end with "/".
	APIURL string
}

// Target posts to one Slack channel.
type Target struct {
	client  *slack.Client
	channel string
}

// New creates a Slack delivery target.
func New(cfg Config) (*Target, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("slack: %w: bot token is required", domain.ErrDeliveryNotConfigured)
	}
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}

	var opts []slack.Option
	if cfg.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(cfg.APIURL))
	}

	return &Target{
		client:  slack.New(cfg.Token, opts...),
		channel: cfg.Channel,
	}, nil
}

// PostRoot posts a top-level message and returns its timestamp as the thread id.
func (t *Target) PostRoot(ctx context.Context, text string) (string, error) {
	_, ts, err := t.client.PostMessageContext(ctx, t.channel, t.options(text)...)
	if err != nil {
		return "", mapError(err)
	}
	return ts, nil
}

// PostReply posts text into the thread rooted at threadID.
func (t *Target) PostReply(ctx context.Context, threadID, text string) error {
	opts := append(t.options(text), slack.MsgOptionTS(threadID))
	if _, _, err := t.client.PostMessageContext(ctx, t.channel, opts...); err != nil {
		return mapError(err)
	}
	return nil
}

// Destination returns the channel posts go to.
func (t *Target) Destination() string {
	return t.channel
}

func (t *Target) options(text string) []slack.MsgOption {
	return []slack.MsgOption{
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
		slack.MsgOptionDisableMediaUnfurl(),
	}
}

// mapError turns Slack API rejections into destination errors.
// Transport failures are returned wrapped.
func mapError(err error) error {
	var serr slack.SlackErrorResponse
	if errors.As(err, &serr) {
		return &domain.DestinationError{Code: serr.Err, Hint: hints[serr.Err]}
	}
	var rl *slack.RateLimitedError
	if errors.As(err, &rl) {
		return &domain.DestinationError{
			Code: "ratelimited",
			Hint: fmt.Sprintf("Retry after %s", rl.RetryAfter),
		}
	}
	return fmt.Errorf("slack: %w", err)
}

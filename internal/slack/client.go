// Package slack wraps the Slack Web API operations the monitors need.
package slack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/merehead/crypto-tx-notifier/internal/entities"
	"github.com/slack-go/slack"
)

// Client posts transaction cards and status follow-ups. The returned
// MessageRef carries the channel and message timestamp; the timestamp is
// the thread root for in-thread replies and the target for edits.
type Client struct {
	logger *slog.Logger
	api    *slack.Client
}

func NewClient(logger *slog.Logger, botToken string) *Client {
	return &Client{
		logger: logger,
		api:    slack.New(botToken),
	}
}

func (c *Client) Post(ctx context.Context, channel, text string) (entities.MessageRef, error) {
	postedChannel, ts, err := c.api.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false))
	if err != nil {
		return entities.MessageRef{}, fmt.Errorf("failed to post message: %w", err)
	}

	c.logger.DebugContext(ctx, "Posted message", "channel", postedChannel, "ts", ts)

	return entities.MessageRef{Channel: postedChannel, Timestamp: ts}, nil
}

func (c *Client) PostThread(ctx context.Context, ref entities.MessageRef, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, ref.Channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(ref.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("failed to post thread reply: %w", err)
	}

	return nil
}

func (c *Client) Update(ctx context.Context, ref entities.MessageRef, text string) error {
	_, _, _, err := c.api.UpdateMessageContext(ctx, ref.Channel, ref.Timestamp,
		slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}

	return nil
}

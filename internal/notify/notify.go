// Package notify delivers member notifications.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/simp-lee/pension/internal/config"
)

// Message is a notification addressed to one member.
type Message struct {
	MemberID string
	To       string
	Subject  string
	Body     string
}

// Notifier sends messages. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// ErrNoRecipient is returned for messages without an address.
var ErrNoRecipient = errors.New("notify: message has no recipient")

// LogNotifier writes each message to a logger instead of delivering it.
type LogNotifier struct {
	log     *slog.Logger
	sender  string
	channel string
}

// NewLogNotifier returns a LogNotifier tagged with cfg's sender and channel.
func NewLogNotifier(log *slog.Logger, cfg config.NotificationConfig) *LogNotifier {
	channel := cfg.Channel
	if channel == "" {
		channel = "email"
	}
	return &LogNotifier{log: log, sender: cfg.Sender, channel: channel}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	n.log.InfoContext(ctx, "notification sent",
		"channel", n.channel,
		"from", n.sender,
		"to", msg.To,
		"member_id", msg.MemberID,
		"subject", msg.Subject,
	)
	return nil
}

// Package notify delivers "new comment" notifications to a chat webhook,
// either inline or through a Redis stream drained by the worker.
package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"blogsupport/internal/config"
	"blogsupport/internal/ids"
	"blogsupport/internal/models"
)

// EventCommentCreated is the stream task type for queued notifications.
const EventCommentCreated = "comment.created"

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Message struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

// Dispatcher sends a message somewhere. Failures are reported, never retried
// by the caller.
type Dispatcher interface {
	Notify(ctx context.Context, msg Message) error
}

type Nop struct{}

func (Nop) Notify(context.Context, Message) error { return nil }

// CommentCreated builds the message announcing a new comment.
func CommentCreated(c models.Comment) Message {
	return Message{
		ID:          ids.New(),
		Title:       "New comment added",
		Description: fmt.Sprintf("New comment added by %s on %s", c.Name, c.PostSlug),
		Fields: []Field{
			{Name: "Name", Value: c.Name, Inline: true},
			{Name: "Email", Value: c.Email, Inline: true},
			{Name: "Content", Value: c.Body},
		},
	}
}

// New picks the dispatcher for the configured mode. Queue mode needs a Redis
// client; without a webhook URL nothing is sent at all.
func New(cfg config.NotifyConfig, client *redis.Client, log zerolog.Logger) (Dispatcher, error) {
	if cfg.Mode == config.NotifyOff || (cfg.Mode != config.NotifyQueue && cfg.WebhookURL == "") {
		log.Info().Str("mode", cfg.Mode).Msg("comment notifications disabled")
		return Nop{}, nil
	}

	switch cfg.Mode {
	case config.NotifyQueue:
		if client == nil {
			return nil, fmt.Errorf("notify: queue mode requires redis")
		}
		return NewQueue(client, cfg.Stream), nil
	default:
		return NewWebhook(WebhookConfig{
			URL:           cfg.WebhookURL,
			Timeout:       cfg.Timeout,
			SigningSecret: cfg.SigningSecret,
		}, log), nil
	}
}

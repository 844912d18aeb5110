package tasks

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"blogsupport/internal/notify"
)

// Processor turns stream entries into webhook deliveries.
type Processor struct {
	dispatcher notify.Dispatcher
	logger     zerolog.Logger
}

func NewProcessor(dispatcher notify.Dispatcher, logger zerolog.Logger) *Processor {
	return &Processor{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle returns an error only when delivery should be retried. Entries that
// can never succeed are logged and reported as handled.
func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	taskType, payload, err := notify.DecodeTask(msg.Values)

	switch taskType {
	case notify.EventCommentCreated:
		if err != nil {
			p.logger.Error().Err(err).Str("message_id", msg.ID).Msg("dropping malformed notification")
			return nil
		}
		return p.handleCommentCreated(ctx, msg.ID, payload)
	default:
		p.logger.Warn().Str("type", taskType).Str("message_id", msg.ID).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) handleCommentCreated(ctx context.Context, messageID string, payload notify.Message) error {
	if err := p.dispatcher.Notify(ctx, payload); err != nil {
		return fmt.Errorf("deliver %s: %w", payload.ID, err)
	}
	p.logger.Info().
		Str("message_id", messageID).
		Str("event_id", payload.ID).
		Msg("comment notification delivered")
	return nil
}

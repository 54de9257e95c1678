package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"eldrix/admin/internal/metrics"
	"eldrix/admin/internal/notify"
)

// Processor delivers queued notifications through the bridge.
type Processor struct {
	notifier notify.Notifier
	logger   zerolog.Logger
}

func NewProcessor(notifier notify.Notifier, logger zerolog.Logger) *Processor {
	return &Processor{
		notifier: notifier,
		logger:   logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	n, err := notify.FromValues(msg.Values)
	if err != nil {
		p.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("dropping undecodable notification")
		return nil
	}

	if err := n.Validate(); err != nil {
		// Retrying cannot fix a malformed entry; ack it.
		p.logger.Warn().Err(err).Str("message_id", msg.ID).Str("kind", string(n.Kind)).Msg("dropping invalid notification")
		metrics.NotificationsDelivered.WithLabelValues(string(n.Kind), "dropped").Inc()
		return nil
	}

	if err := p.notifier.Notify(ctx, n); err != nil {
		metrics.NotificationsDelivered.WithLabelValues(string(n.Kind), "failed").Inc()
		var upstream *notify.UpstreamError
		if errors.As(err, &upstream) && upstream.StatusCode >= 400 && upstream.StatusCode < 500 {
			p.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("bridge rejected notification")
			return nil
		}
		return fmt.Errorf("deliver %s: %w", n.Kind, err)
	}

	metrics.NotificationsDelivered.WithLabelValues(string(n.Kind), "sent").Inc()
	p.logger.Info().
		Str("message_id", msg.ID).
		Str("kind", string(n.Kind)).
		Str("session_id", n.SessionID).
		Msg("notification delivered")
	return nil
}

package worker

import (
	"context"

	"hd-tickets/internal/notifier"
	"hd-tickets/internal/queue"
	"hd-tickets/pkg/logger"

	"go.uber.org/zap"
)

type NotificationWorker interface {
	Start(ctx context.Context) error
}

type NotificationWorkerImpl struct {
	queue queue.MatchQueue
	mux   *notifier.Multiplexer
}

func NewNotificationWorker(q queue.MatchQueue, mux *notifier.Multiplexer) NotificationWorker {
	return &NotificationWorkerImpl{
		queue: q,
		mux:   mux,
	}
}

func (w *NotificationWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeMatches(ctx)
	if err != nil {
		return err
	}

	go func() {
		log := logger.WithComponent("notification-worker")
		for msg := range msgs {
			sent := w.mux.Dispatch(ctx, msg.Data)

			// Delivery failures are terminal for this match: the alert engine
			// emits a fresh MatchFound on the next cycle, so redelivering a
			// stale one would only duplicate noise.
			msg.Ack()

			if sent == 0 && len(msg.Data.Channels) > 0 {
				log.Warn("match delivered to no channels",
					zap.Int("alert_id", msg.Data.AlertID),
					zap.Int("user_id", msg.Data.UserID))
			}
		}
	}()
	return nil
}

// Package notifier delivers alert matches to users over their selected
// channels. Delivery is strictly one-directional: a notifier reports success
// or failure to its caller and nothing flows back into the alert pipeline.
package notifier

import (
	"context"
	"fmt"

	"hd-tickets/internal/model"
	"hd-tickets/monitoring"
	"hd-tickets/pkg/logger"

	"go.uber.org/zap"
)

// Notifier sends one match notification over a single channel.
// Implementations return false on failure and must not panic or propagate;
// a dead channel should never take the worker down with it.
type Notifier interface {
	Channel() model.NotificationChannel
	Send(ctx context.Context, match *model.MatchFound) bool
}

// Multiplexer fans a match out to every channel the alert selected.
type Multiplexer struct {
	notifiers map[model.NotificationChannel]Notifier
}

func NewMultiplexer(notifiers ...Notifier) *Multiplexer {
	byChannel := make(map[model.NotificationChannel]Notifier, len(notifiers))
	for _, n := range notifiers {
		byChannel[n.Channel()] = n
	}
	return &Multiplexer{notifiers: byChannel}
}

// Dispatch returns how many channels accepted the notification. Unknown
// channels on the alert are logged and skipped.
func (m *Multiplexer) Dispatch(ctx context.Context, match *model.MatchFound) int {
	log := logger.WithComponent("notifier")
	sent := 0

	for _, channel := range match.Channels {
		n, ok := m.notifiers[channel]
		if !ok {
			log.Warn("no notifier registered for channel",
				zap.String("channel", string(channel)),
				zap.Int("alert_id", match.AlertID))
			continue
		}

		if n.Send(ctx, match) {
			sent++
			monitoring.NotificationsSent.WithLabelValues(string(channel), "success").Inc()
		} else {
			monitoring.NotificationsSent.WithLabelValues(string(channel), "failure").Inc()
			log.Error("notification send failed",
				zap.String("channel", string(channel)),
				zap.Int("alert_id", match.AlertID),
				zap.Int("user_id", match.UserID))
		}
	}

	return sent
}

// subject builds the one-line summary shared by every channel.
func subject(match *model.MatchFound) string {
	return fmt.Sprintf("Ticket match (%d%%): %s at %s from %.2f %s",
		match.Score,
		match.Ticket.Title,
		match.Ticket.Venue,
		match.Ticket.MinPrice,
		match.Ticket.Currency)
}

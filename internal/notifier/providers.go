package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"hd-tickets/config"
	"hd-tickets/internal/model"
	"hd-tickets/pkg/logger"

	"go.uber.org/zap"
)

// Each provider posts a JSON payload to its configured gateway. A provider
// with no gateway URL runs in simulated mode: the notification is logged and
// counted as delivered, which keeps local environments working without
// external credentials.

type gatewayNotifier struct {
	channel model.NotificationChannel
	url     string
	client  *http.Client
}

func newGatewayNotifier(channel model.NotificationChannel, url string, timeout time.Duration) *gatewayNotifier {
	return &gatewayNotifier{
		channel: channel,
		url:     url,
		client:  &http.Client{Timeout: timeout},
	}
}

func NewEmailNotifier(cfg config.NotifierConfig) Notifier {
	return newGatewayNotifier(model.ChannelEmail, cfg.EmailGatewayURL, cfg.SendTimeout)
}

func NewSMSNotifier(cfg config.NotifierConfig) Notifier {
	return newGatewayNotifier(model.ChannelSMS, cfg.SMSGatewayURL, cfg.SendTimeout)
}

func NewPushNotifier(cfg config.NotifierConfig) Notifier {
	return newGatewayNotifier(model.ChannelPush, cfg.PushGatewayURL, cfg.SendTimeout)
}

func NewSlackNotifier(cfg config.NotifierConfig) Notifier {
	return newGatewayNotifier(model.ChannelSlack, cfg.SlackWebhookURL, cfg.SendTimeout)
}

func (n *gatewayNotifier) Channel() model.NotificationChannel {
	return n.channel
}

func (n *gatewayNotifier) Send(ctx context.Context, match *model.MatchFound) bool {
	log := logger.WithComponent("notifier")

	if n.url == "" {
		log.Info("simulated notification",
			zap.String("channel", string(n.channel)),
			zap.Int("user_id", match.UserID),
			zap.String("subject", subject(match)))
		return true
	}

	payload := map[string]any{
		"channel":    string(n.channel),
		"user_id":    match.UserID,
		"alert_id":   match.AlertID,
		"subject":    subject(match),
		"score":      match.Score,
		"ticket_url": match.Ticket.TicketURL,
		"found_at":   match.FoundAt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error("failed to encode notification", zap.Error(err))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		log.Error("failed to build notification request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		log.Error("notification gateway unreachable",
			zap.String("channel", string(n.channel)),
			zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error("notification gateway rejected request",
			zap.String("channel", string(n.channel)),
			zap.Int("status", resp.StatusCode))
		return false
	}

	return true
}

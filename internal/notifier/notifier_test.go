package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hd-tickets/config"
	"hd-tickets/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMatch(channels ...model.NotificationChannel) *model.MatchFound {
	return &model.MatchFound{
		AlertID:  7,
		UserID:   3,
		Keywords: "Manchester United",
		Channels: channels,
		Ticket: model.ScrapedTicketData{
			Platform:   model.PlatformStubHub,
			ExternalID: "sh-1",
			Title:      "Manchester United vs Liverpool",
			Venue:      "Old Trafford",
			MinPrice:   95,
			Currency:   "GBP",
			TicketURL:  "https://www.stubhub.com/event/1",
		},
		Score:   100,
		FoundAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestGatewayNotifier_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("posts the payload to the gateway", func(t *testing.T) {
		var received map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		}))
		defer srv.Close()

		n := NewEmailNotifier(config.NotifierConfig{EmailGatewayURL: srv.URL, SendTimeout: time.Second})
		assert.True(t, n.Send(ctx, sampleMatch(model.ChannelEmail)))
		assert.Equal(t, "email", received["channel"])
		assert.Equal(t, float64(3), received["user_id"])
	})

	t.Run("gateway rejection reports failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		n := NewSMSNotifier(config.NotifierConfig{SMSGatewayURL: srv.URL, SendTimeout: time.Second})
		assert.False(t, n.Send(ctx, sampleMatch(model.ChannelSMS)))
	})

	t.Run("unreachable gateway reports failure without panicking", func(t *testing.T) {
		n := NewPushNotifier(config.NotifierConfig{PushGatewayURL: "http://127.0.0.1:1", SendTimeout: 100 * time.Millisecond})
		assert.False(t, n.Send(ctx, sampleMatch(model.ChannelPush)))
	})

	t.Run("unconfigured gateway simulates delivery", func(t *testing.T) {
		n := NewSlackNotifier(config.NotifierConfig{SendTimeout: time.Second})
		assert.True(t, n.Send(ctx, sampleMatch(model.ChannelSlack)))
	})
}

func TestMultiplexer_Dispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("fans out only to selected channels", func(t *testing.T) {
		var calls []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			calls = append(calls, payload["channel"].(string))
		}))
		defer srv.Close()

		cfg := config.NotifierConfig{
			EmailGatewayURL: srv.URL,
			SMSGatewayURL:   srv.URL,
			PushGatewayURL:  srv.URL,
			SendTimeout:     time.Second,
		}
		mux := NewMultiplexer(NewEmailNotifier(cfg), NewSMSNotifier(cfg), NewPushNotifier(cfg))

		sent := mux.Dispatch(ctx, sampleMatch(model.ChannelEmail, model.ChannelPush))
		assert.Equal(t, 2, sent)
		assert.ElementsMatch(t, []string{"email", "push"}, calls)
	})

	t.Run("unregistered channel is skipped, not fatal", func(t *testing.T) {
		mux := NewMultiplexer(NewEmailNotifier(config.NotifierConfig{SendTimeout: time.Second}))
		sent := mux.Dispatch(ctx, sampleMatch(model.ChannelEmail, model.ChannelSlack))
		assert.Equal(t, 1, sent)
	})

	t.Run("one dead channel does not block the others", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		cfg := config.NotifierConfig{
			EmailGatewayURL: "http://127.0.0.1:1",
			SMSGatewayURL:   srv.URL,
			SendTimeout:     100 * time.Millisecond,
		}
		mux := NewMultiplexer(NewEmailNotifier(cfg), NewSMSNotifier(cfg))

		sent := mux.Dispatch(ctx, sampleMatch(model.ChannelEmail, model.ChannelSMS))
		assert.Equal(t, 1, sent)
	})
}

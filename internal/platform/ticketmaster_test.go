package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hd-tickets/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ticketmasterFixture = `{
	"_embedded": {
		"events": [
			{
				"id": "G5vYZ9p1k3fZK",
				"name": "Manchester United vs Chelsea",
				"url": "https://www.ticketmaster.com/event/G5vYZ9p1k3fZK",
				"_embedded": {
					"venues": [
						{
							"name": "Old Trafford",
							"city": {"name": "Manchester"},
							"country": {"name": "United Kingdom"}
						}
					]
				},
				"dates": {"start": {"dateTime": "2025-09-20T15:00:00Z"}},
				"priceRanges": [{"min": 55, "max": 420, "currency": "GBP"}],
				"promoter": {"name": "Official Club Promoter"}
			},
			{
				"id": "K8wXY2q7m1aBC",
				"name": "League Two Fixture",
				"url": "https://www.ticketmaster.com/event/K8wXY2q7m1aBC",
				"dates": {"start": {"dateTime": ""}},
				"promoter": {"name": "Local Events Ltd"}
			}
		]
	}
}`

func TestTicketmasterClient_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("missing api key fails fast", func(t *testing.T) {
		client := NewTicketmasterClient("https://app.ticketmaster.com", "", time.Second)
		_, err := client.Search(ctx, "Manchester United", model.SearchOptions{})
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("parses events and flags official promoters", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
			assert.Equal(t, "Manchester United", r.URL.Query().Get("keyword"))
			assert.Equal(t, "HDTickets/1.0", r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(ticketmasterFixture))
		}))
		defer srv.Close()

		client := NewTicketmasterClient(srv.URL, "test-key", time.Second)
		tickets, err := client.Search(ctx, "Manchester United", model.SearchOptions{})
		require.NoError(t, err)
		require.Len(t, tickets, 2)

		first := tickets[0]
		assert.Equal(t, model.PlatformTicketmaster, first.Platform)
		assert.Equal(t, "G5vYZ9p1k3fZK", first.ExternalID)
		assert.Equal(t, "Manchester, United Kingdom", first.Location)
		assert.Equal(t, 55.0, first.MinPrice)
		assert.Equal(t, "GBP", first.Currency)
		assert.True(t, first.IsHighDemand, "official promoter should flag high demand")

		second := tickets[1]
		assert.Equal(t, "Unknown Venue", second.Venue)
		assert.Equal(t, "USD", second.Currency, "no price range defaults to USD")
		assert.False(t, second.IsHighDemand)
		assert.Nil(t, second.EventDate)
	})

	t.Run("empty result set is not an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		client := NewTicketmasterClient(srv.URL, "test-key", time.Second)
		tickets, err := client.Search(ctx, "Manchester United", model.SearchOptions{})
		require.NoError(t, err)
		assert.Empty(t, tickets)
	})
}

func TestViagogoClient_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("simulated mode without a base url", func(t *testing.T) {
		client := NewViagogoClient("", time.Second)

		tickets, err := client.Search(ctx, "Manchester United", model.SearchOptions{})
		require.NoError(t, err)
		require.Len(t, tickets, 1)
		assert.Equal(t, model.PlatformViagogo, tickets[0].Platform)
		assert.True(t, tickets[0].IsHighDemand)
		assert.Equal(t, "GBP", tickets[0].Currency)

		none, err := client.Search(ctx, "Taylor Swift", model.SearchOptions{})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("parses configured upstream payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"results": [
					{
						"id": "vg-100",
						"title": "Manchester United vs Everton",
						"venue": "Old Trafford",
						"city": "Manchester",
						"event_date": "2025-10-04",
						"min_price": 78,
						"max_price": 310,
						"currency": "GBP",
						"quantity": 12,
						"url": "https://viagogo.com/e/vg-100"
					},
					{
						"id": "vg-101",
						"title": "Sold out fixture",
						"quantity": 0
					}
				]
			}`))
		}))
		defer srv.Close()

		client := NewViagogoClient(srv.URL, time.Second)
		tickets, err := client.Search(ctx, "Manchester United", model.SearchOptions{})
		require.NoError(t, err)
		require.Len(t, tickets, 2)
		assert.True(t, tickets[0].IsHighDemand, "fewer than 50 remaining flags high demand")
		assert.False(t, tickets[1].IsAvailable)
	})
}

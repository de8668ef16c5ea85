package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"hd-tickets/internal/model"
)

type StubHubClient struct {
	baseURL string
	client  *http.Client
}

func NewStubHubClient(baseURL string, timeout time.Duration) *StubHubClient {
	return &StubHubClient{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

func (c *StubHubClient) Platform() model.Platform {
	return model.PlatformStubHub
}

type stubHubResponse struct {
	Events []struct {
		ID    json.Number `json:"id"`
		Name  string      `json:"name"`
		Venue struct {
			Name string `json:"name"`
			City string `json:"city"`
		} `json:"venue"`
		EventDateLocal string `json:"eventDateLocal"`
		TicketInfo     struct {
			MinListPrice float64 `json:"minListPrice"`
			MaxListPrice float64 `json:"maxListPrice"`
			CurrencyCode string  `json:"currencyCode"`
			TotalTickets int     `json:"totalTickets"`
		} `json:"ticketInfo"`
		WebURI string `json:"webURI"`
	} `json:"events"`
}

func (c *StubHubClient) Search(ctx context.Context, keyword string, opts model.SearchOptions) ([]model.ScrapedTicketData, error) {
	params := url.Values{}
	params.Set("q", keyword)
	params.Set("sort", "price_asc")
	params.Set("rows", "50")
	params.Set("start", "0")
	if opts.MaxPrice > 0 {
		params.Set("maxPrice", strconv.FormatFloat(opts.MaxPrice, 'f', 2, 64))
	}

	var payload stubHubResponse
	if err := fetchJSON(ctx, c.client, c.baseURL, params, nil, &payload); err != nil {
		return nil, fmt.Errorf("stubhub search: %w", err)
	}

	now := time.Now().UTC()
	tickets := make([]model.ScrapedTicketData, 0, len(payload.Events))
	for _, ev := range payload.Events {
		if ev.ID.String() == "" {
			continue
		}
		currency := ev.TicketInfo.CurrencyCode
		if currency == "" {
			currency = "USD"
		}
		tickets = append(tickets, model.ScrapedTicketData{
			Platform:    model.PlatformStubHub,
			ExternalID:  ev.ID.String(),
			Title:       orUnknown(ev.Name, "Unknown Event"),
			Venue:       orUnknown(ev.Venue.Name, "Unknown Venue"),
			Location:    orUnknown(ev.Venue.City, "Unknown City"),
			EventDate:   parseEventDate(ev.EventDateLocal),
			MinPrice:    ev.TicketInfo.MinListPrice,
			MaxPrice:    ev.TicketInfo.MaxListPrice,
			Currency:    currency,
			IsAvailable: true,
			// fewer than 100 listed tickets is treated as scarce
			IsHighDemand: ev.TicketInfo.TotalTickets < 100,
			TicketURL:    ev.WebURI,
			Keyword:      keyword,
			ScrapedAt:    now,
		})
	}

	return tickets, nil
}

func orUnknown(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

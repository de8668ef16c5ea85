package platform

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hd-tickets/internal/model"
)

// ViagogoClient falls back to simulated listings when no base URL is
// configured: the upstream API needs an OAuth onboarding that most
// deployments never complete.
type ViagogoClient struct {
	baseURL string
	client  *http.Client
}

func NewViagogoClient(baseURL string, timeout time.Duration) *ViagogoClient {
	return &ViagogoClient{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

func (c *ViagogoClient) Platform() model.Platform {
	return model.PlatformViagogo
}

type viagogoResponse struct {
	Results []struct {
		ID        string  `json:"id"`
		Title     string  `json:"title"`
		Venue     string  `json:"venue"`
		City      string  `json:"city"`
		EventDate string  `json:"event_date"`
		MinPrice  float64 `json:"min_price"`
		MaxPrice  float64 `json:"max_price"`
		Currency  string  `json:"currency"`
		Quantity  int     `json:"quantity"`
		URL       string  `json:"url"`
	} `json:"results"`
}

func (c *ViagogoClient) Search(ctx context.Context, keyword string, opts model.SearchOptions) ([]model.ScrapedTicketData, error) {
	if c.baseURL == "" {
		return c.simulatedResults(keyword), nil
	}

	params := url.Values{}
	params.Set("q", keyword)
	params.Set("sort", "price")
	params.Set("limit", "50")

	var payload viagogoResponse
	if err := fetchJSON(ctx, c.client, c.baseURL, params, nil, &payload); err != nil {
		return nil, fmt.Errorf("viagogo search: %w", err)
	}

	now := time.Now().UTC()
	tickets := make([]model.ScrapedTicketData, 0, len(payload.Results))
	for _, r := range payload.Results {
		if r.ID == "" {
			continue
		}
		tickets = append(tickets, model.ScrapedTicketData{
			Platform:     model.PlatformViagogo,
			ExternalID:   r.ID,
			Title:        orUnknown(r.Title, "Unknown Event"),
			Venue:        orUnknown(r.Venue, "Unknown Venue"),
			Location:     r.City,
			EventDate:    parseEventDate(r.EventDate),
			MinPrice:     r.MinPrice,
			MaxPrice:     r.MaxPrice,
			Currency:     orUnknown(r.Currency, "GBP"),
			IsAvailable:  r.Quantity != 0,
			IsHighDemand: r.Quantity > 0 && r.Quantity < 50,
			TicketURL:    r.URL,
			Keyword:      keyword,
			ScrapedAt:    now,
		})
	}

	return tickets, nil
}

func (c *ViagogoClient) simulatedResults(keyword string) []model.ScrapedTicketData {
	if !strings.Contains(strings.ToLower(keyword), "manchester") {
		return []model.ScrapedTicketData{}
	}

	eventDate := time.Now().UTC().AddDate(0, 0, 7+rand.Intn(53))
	return []model.ScrapedTicketData{
		{
			Platform:     model.PlatformViagogo,
			ExternalID:   fmt.Sprintf("vg_%d", time.Now().UnixNano()),
			Title:        "Manchester United vs Liverpool",
			Venue:        "Old Trafford",
			Location:     "Manchester, UK",
			EventDate:    &eventDate,
			MinPrice:     float64(80 + rand.Intn(70)),
			MaxPrice:     float64(300 + rand.Intn(500)),
			Currency:     "GBP",
			IsAvailable:  true,
			IsHighDemand: true,
			TicketURL:    "https://viagogo.com/sports-tickets/football/manchester-united",
			Keyword:      keyword,
			ScrapedAt:    time.Now().UTC(),
		},
	}
}

package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hd-tickets/internal/model"
)

var ErrMissingAPIKey = errors.New("ticketmaster api key not configured")

type TicketmasterClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewTicketmasterClient(baseURL, apiKey string, timeout time.Duration) *TicketmasterClient {
	return &TicketmasterClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  newHTTPClient(timeout),
	}
}

func (c *TicketmasterClient) Platform() model.Platform {
	return model.PlatformTicketmaster
}

type ticketmasterResponse struct {
	Embedded struct {
		Events []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			URL      string `json:"url"`
			Embedded struct {
				Venues []struct {
					Name string `json:"name"`
					City struct {
						Name string `json:"name"`
					} `json:"city"`
					Country struct {
						Name string `json:"name"`
					} `json:"country"`
				} `json:"venues"`
			} `json:"_embedded"`
			Dates struct {
				Start struct {
					DateTime string `json:"dateTime"`
				} `json:"start"`
			} `json:"dates"`
			PriceRanges []struct {
				Min      float64 `json:"min"`
				Max      float64 `json:"max"`
				Currency string  `json:"currency"`
			} `json:"priceRanges"`
			Promoter struct {
				Name string `json:"name"`
			} `json:"promoter"`
		} `json:"events"`
	} `json:"_embedded"`
}

func (c *TicketmasterClient) Search(ctx context.Context, keyword string, opts model.SearchOptions) ([]model.ScrapedTicketData, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("keyword", keyword)
	params.Set("apikey", c.apiKey)
	params.Set("size", "50")
	params.Set("sort", "date,asc")
	params.Set("classificationName", "sports")

	headers := map[string]string{"User-Agent": "HDTickets/1.0"}

	var payload ticketmasterResponse
	if err := fetchJSON(ctx, c.client, c.baseURL, params, headers, &payload); err != nil {
		return nil, fmt.Errorf("ticketmaster search: %w", err)
	}

	now := time.Now().UTC()
	tickets := make([]model.ScrapedTicketData, 0, len(payload.Embedded.Events))
	for _, ev := range payload.Embedded.Events {
		if ev.ID == "" {
			continue
		}

		venue := "Unknown Venue"
		location := ""
		if len(ev.Embedded.Venues) > 0 {
			v := ev.Embedded.Venues[0]
			venue = orUnknown(v.Name, "Unknown Venue")
			location = strings.TrimSuffix(fmt.Sprintf("%s, %s", v.City.Name, v.Country.Name), ", ")
		}

		var minPrice, maxPrice float64
		currency := "USD"
		if len(ev.PriceRanges) > 0 {
			minPrice = ev.PriceRanges[0].Min
			maxPrice = ev.PriceRanges[0].Max
			if ev.PriceRanges[0].Currency != "" {
				currency = ev.PriceRanges[0].Currency
			}
		}

		tickets = append(tickets, model.ScrapedTicketData{
			Platform:     model.PlatformTicketmaster,
			ExternalID:   ev.ID,
			Title:        orUnknown(ev.Name, "Unknown Event"),
			Venue:        venue,
			Location:     location,
			EventDate:    parseEventDate(ev.Dates.Start.DateTime),
			MinPrice:     minPrice,
			MaxPrice:     maxPrice,
			Currency:     currency,
			IsAvailable:  true,
			IsHighDemand: strings.Contains(ev.Promoter.Name, "Official"),
			TicketURL:    ev.URL,
			Keyword:      keyword,
			ScrapedAt:    now,
		})
	}

	return tickets, nil
}

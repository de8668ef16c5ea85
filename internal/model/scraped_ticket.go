package model

import "time"

// ScrapedTicketData is the raw record a platform client produces for one
// listing. It only becomes a ScrapedTicket once the ingest pipeline has
// deduplicated it against the database by (platform, external_id).
type ScrapedTicketData struct {
	Platform     Platform   `json:"platform"`
	ExternalID   string     `json:"external_id"`
	Title        string     `json:"title"`
	Venue        string     `json:"venue"`
	Location     string     `json:"location"`
	EventDate    *time.Time `json:"event_date,omitempty"`
	MinPrice     float64    `json:"min_price"`
	MaxPrice     float64    `json:"max_price"`
	Currency     string     `json:"currency"`
	IsAvailable  bool       `json:"is_available"`
	IsHighDemand bool       `json:"is_high_demand"`
	TicketURL    string     `json:"ticket_url"`
	Keyword      string     `json:"search_keyword"`
	ScrapedAt    time.Time  `json:"scraped_at"`
}

// ScrapedTicket is a persisted listing. Rows are never hard-deleted; a listing
// that disappears from its platform is marked unavailable instead.
type ScrapedTicket struct {
	ID                int        `json:"id" db:"id"`
	Platform          Platform   `json:"platform" db:"platform"`
	ExternalID        string     `json:"external_id" db:"external_id"`
	Title             string     `json:"title" db:"title"`
	Venue             string     `json:"venue" db:"venue"`
	Location          string     `json:"location" db:"location"`
	EventDate         *time.Time `json:"event_date,omitempty" db:"event_date"`
	MinPrice          float64    `json:"min_price" db:"min_price"`
	MaxPrice          float64    `json:"max_price" db:"max_price"`
	Currency          string     `json:"currency" db:"currency"`
	AvailableQuantity *int       `json:"available_quantity,omitempty" db:"available_quantity"`
	IsAvailable       bool       `json:"is_available" db:"is_available"`
	IsHighDemand      bool       `json:"is_high_demand" db:"is_high_demand"`
	TicketURL         string     `json:"ticket_url" db:"ticket_url"`
	LastUpdatedAt     time.Time  `json:"last_updated_at" db:"last_updated_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

// HasStock reports whether the ticket can cover the requested quantity.
// A nil AvailableQuantity means the platform did not expose a count and the
// listing is treated as unbounded.
func (t *ScrapedTicket) HasStock(quantity int) bool {
	if t.AvailableQuantity == nil {
		return true
	}
	return *t.AvailableQuantity >= quantity
}

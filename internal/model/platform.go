package model

// Platform is an external ticket marketplace scraped independently.
type Platform string

const (
	PlatformStubHub      Platform = "stubhub"
	PlatformTicketmaster Platform = "ticketmaster"
	PlatformViagogo      Platform = "viagogo"
)

func AllPlatforms() []Platform {
	return []Platform{PlatformStubHub, PlatformTicketmaster, PlatformViagogo}
}

func (p Platform) IsValid() bool {
	switch p {
	case PlatformStubHub, PlatformTicketmaster, PlatformViagogo:
		return true
	}
	return false
}

// SearchOptions narrows a cross-platform ticket search. Platforms defaults to
// the orchestrator's enabled set when empty.
type SearchOptions struct {
	Platforms []Platform `json:"platforms,omitempty" form:"platforms"`
	MaxPrice  float64    `json:"max_price,omitempty" form:"max_price"`
	Currency  string     `json:"currency,omitempty" form:"currency"`
}

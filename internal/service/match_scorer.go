package service

import (
	"strings"

	"hd-tickets/internal/model"
)

// Scoring weights. They sum to 100, so a listing matching every criterion
// scores exactly 100. An unset criterion on the alert counts as satisfied:
// "any platform" should not score below a ticket on a named platform.
const (
	WeightKeyword    = 40
	WeightPlatform   = 25
	WeightPrice      = 25
	WeightHighDemand = 10
)

type MatchScorer interface {
	// Score rates a scraped listing against alert criteria, 0..100.
	// Deterministic for identical inputs.
	Score(alert *model.TicketAlert, ticket model.ScrapedTicketData) int
}

type MatchScorerImpl struct{}

func NewMatchScorer() MatchScorer {
	return &MatchScorerImpl{}
}

func (s *MatchScorerImpl) Score(alert *model.TicketAlert, ticket model.ScrapedTicketData) int {
	score := 0

	if keywordMatches(alert.Keywords, ticket.Title) {
		score += WeightKeyword
	}

	if alert.Platform == nil || *alert.Platform == ticket.Platform {
		score += WeightPlatform
	}

	if alert.MaxPrice <= 0 || ticket.MinPrice <= alert.MaxPrice {
		score += WeightPrice
	}

	if ticket.IsHighDemand {
		score += WeightHighDemand
	}

	if score > 100 {
		score = 100
	}
	return score
}

// keywordMatches checks the whole phrase first, then falls back to requiring
// every word, so "Man Utd Old Trafford" still matches a title carrying the
// words in another order.
func keywordMatches(keywords, title string) bool {
	keywords = strings.TrimSpace(strings.ToLower(keywords))
	title = strings.ToLower(title)
	if keywords == "" {
		return false
	}
	if strings.Contains(title, keywords) {
		return true
	}

	words := strings.Fields(keywords)
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		if !strings.Contains(title, w) {
			return false
		}
	}
	return true
}

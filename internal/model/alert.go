package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationChannel selects how an alert match is delivered to the user.
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
	ChannelPush  NotificationChannel = "push"
	ChannelSlack NotificationChannel = "slack"
)

func (c NotificationChannel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelPush, ChannelSlack:
		return true
	}
	return false
}

// TicketAlert is a saved user query checked periodically against scraped
// inventory. Platform nil means any platform. LastCheckedAt only ever moves
// forward.
type TicketAlert struct {
	ID            int                   `json:"id" db:"id"`
	AlertID       uuid.UUID             `json:"alert_id" db:"alert_id"`
	UserID        int                   `json:"user_id" db:"user_id"`
	Keywords      string                `json:"keywords" db:"keywords"`
	Platform      *Platform             `json:"platform,omitempty" db:"platform"`
	MaxPrice      float64               `json:"max_price" db:"max_price"`
	Currency      string                `json:"currency" db:"currency"`
	IsActive      bool                  `json:"is_active" db:"is_active"`
	Channels      []NotificationChannel `json:"channels" db:"channels"`
	CheckInterval time.Duration         `json:"check_interval" db:"check_interval"`
	LastCheckedAt *time.Time            `json:"last_checked_at,omitempty" db:"last_checked_at"`
	MatchCount    int                   `json:"match_count" db:"match_count"`
	CreatedAt     time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at" db:"updated_at"`
}

// IsDue reports whether the alert is due for a check at now, given the
// fallback interval for alerts without one of their own.
func (a *TicketAlert) IsDue(now time.Time, defaultInterval time.Duration) bool {
	if !a.IsActive {
		return false
	}
	if a.LastCheckedAt == nil {
		return true
	}
	interval := a.CheckInterval
	if interval <= 0 {
		interval = defaultInterval
	}
	return now.Sub(*a.LastCheckedAt) >= interval
}

// SearchOptions translates the alert criteria into orchestrator options.
func (a *TicketAlert) SearchOptions() SearchOptions {
	opts := SearchOptions{
		MaxPrice: a.MaxPrice,
		Currency: a.Currency,
	}
	if a.Platform != nil {
		opts.Platforms = []Platform{*a.Platform}
	}
	return opts
}

// MatchFound is the single value the alert engine emits for a qualifying
// (alert, ticket) pair. The notification pipeline consumes it and produces
// nothing back into the alert pipeline.
type MatchFound struct {
	AlertID  int                   `json:"alert_id"`
	UserID   int                   `json:"user_id"`
	Keywords string                `json:"keywords"`
	Channels []NotificationChannel `json:"channels"`
	Ticket   ScrapedTicketData     `json:"ticket"`
	Score    int                   `json:"score"`
	FoundAt  time.Time             `json:"found_at"`
}

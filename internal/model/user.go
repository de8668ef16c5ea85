package model

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
	RoleAdmin    Role = "admin"
	RoleScraper  Role = "scraper"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleAgent, RoleAdmin, RoleScraper:
		return true
	}
	return false
}

type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionTrial   SubscriptionStatus = "trial"
	SubscriptionExpired SubscriptionStatus = "expired"
)

// Subscription carries the monthly ticket allowance for a customer plan.
type Subscription struct {
	ID          int                `json:"id" db:"id"`
	UserID      int                `json:"user_id" db:"user_id"`
	Status      SubscriptionStatus `json:"status" db:"status"`
	TicketLimit int                `json:"ticket_limit" db:"ticket_limit"`
	StartsAt    time.Time          `json:"starts_at" db:"starts_at"`
	EndsAt      time.Time          `json:"ends_at" db:"ends_at"`
}

// IsActiveAt reports whether the subscription covers the given instant.
func (s *Subscription) IsActiveAt(now time.Time) bool {
	if s.Status != SubscriptionActive && s.Status != SubscriptionTrial {
		return false
	}
	return !now.Before(s.StartsAt) && now.Before(s.EndsAt)
}

type User struct {
	ID           int           `json:"id" db:"id"`
	Name         string        `json:"name" db:"name"`
	Email        string        `json:"email" db:"email"`
	Phone        string        `json:"phone" db:"phone"`
	Role         Role          `json:"role" db:"role"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	Subscription *Subscription `json:"subscription,omitempty" db:"-"`
}

// HasActiveSubscription is evaluated against the joined subscription row.
func (u *User) HasActiveSubscription(now time.Time) bool {
	return u.Subscription != nil && u.Subscription.IsActiveAt(now)
}

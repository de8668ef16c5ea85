package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"hd-tickets/config"
	"hd-tickets/internal/model"
	apperrors "hd-tickets/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPurchaseFixture() *PurchaseServiceImpl {
	return &PurchaseServiceImpl{
		fees:         config.FeesConfig{ProcessingFeeRate: 0.03, ServiceFee: 2.50},
		subscription: config.SubscriptionConfig{FreeAccessDays: 7},
	}
}

func TestPurchaseService_CalculateFees(t *testing.T) {
	svc := newPurchaseFixture()

	t.Run("100 yields 3.00 plus 2.50", func(t *testing.T) {
		fees := svc.CalculateFees(100)
		assert.Equal(t, 3.00, fees.ProcessingFee)
		assert.Equal(t, 2.50, fees.ServiceFee)
		assert.Equal(t, 5.50, fees.TotalFees)
	})

	t.Run("processing fee rounds to cents", func(t *testing.T) {
		fees := svc.CalculateFees(33.33)
		assert.Equal(t, 1.00, fees.ProcessingFee)
		assert.Equal(t, 3.50, fees.TotalFees)
	})

	t.Run("zero subtotal still carries the service fee", func(t *testing.T) {
		fees := svc.CalculateFees(0)
		assert.Equal(t, 0.0, fees.ProcessingFee)
		assert.Equal(t, 2.50, fees.TotalFees)
	})
}

func TestPurchaseService_Evaluate(t *testing.T) {
	svc := newPurchaseFixture()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	stock := 10

	availableTicket := func() *model.ScrapedTicket {
		return &model.ScrapedTicket{ID: 1, IsAvailable: true, AvailableQuantity: &stock}
	}
	subscribedCustomer := func(limit int) *model.User {
		return &model.User{
			ID:        1,
			Role:      model.RoleCustomer,
			CreatedAt: now.AddDate(0, -6, 0),
			Subscription: &model.Subscription{
				Status:      model.SubscriptionActive,
				TicketLimit: limit,
				StartsAt:    now.AddDate(0, -1, 0),
				EndsAt:      now.AddDate(0, 1, 0),
			},
		}
	}

	t.Run("agent with quantity 100 is always eligible", func(t *testing.T) {
		user := &model.User{ID: 1, Role: model.RoleAgent, CreatedAt: now.AddDate(-1, 0, 0)}
		ticket := &model.ScrapedTicket{ID: 1, IsAvailable: true}

		result := svc.evaluate(user, ticket, 100, 50, now)
		assert.True(t, result.CanPurchase)
		assert.Empty(t, result.Reasons)
		assert.Nil(t, result.UserInfo.TicketLimit)
		assert.Nil(t, result.UserInfo.RemainingTickets)
	})

	t.Run("customer without subscription outside free access", func(t *testing.T) {
		user := &model.User{ID: 1, Role: model.RoleCustomer, CreatedAt: now.AddDate(0, 0, -30)}

		result := svc.evaluate(user, availableTicket(), 1, 0, now)
		assert.False(t, result.CanPurchase)
		assert.Contains(t, result.Reasons, "Active subscription required")
	})

	t.Run("customer inside free access window", func(t *testing.T) {
		user := &model.User{ID: 1, Role: model.RoleCustomer, CreatedAt: now.AddDate(0, 0, -3)}

		result := svc.evaluate(user, availableTicket(), 1, 0, now)
		assert.True(t, result.CanPurchase)
		assert.True(t, result.UserInfo.FreeAccess)
		assert.Equal(t, 4, result.UserInfo.FreeAccessRemaining)
		require.NotNil(t, result.UserInfo.FreeAccessExpires)
	})

	t.Run("monthly limit would be exceeded", func(t *testing.T) {
		result := svc.evaluate(subscribedCustomer(5), availableTicket(), 2, 4, now)
		assert.False(t, result.CanPurchase)
		assert.Contains(t, result.Reasons, "Would exceed monthly ticket limit")
		require.NotNil(t, result.UserInfo.TicketLimit)
		assert.Equal(t, 5, *result.UserInfo.TicketLimit)
		require.NotNil(t, result.UserInfo.RemainingTickets)
		assert.Equal(t, 1, *result.UserInfo.RemainingTickets)
		assert.Equal(t, 4, result.UserInfo.MonthlyUsage)
	})

	t.Run("subscribed customer within the limit", func(t *testing.T) {
		result := svc.evaluate(subscribedCustomer(5), availableTicket(), 1, 4, now)
		assert.True(t, result.CanPurchase)
	})

	t.Run("unavailable ticket", func(t *testing.T) {
		ticket := &model.ScrapedTicket{ID: 1, IsAvailable: false}
		result := svc.evaluate(subscribedCustomer(5), ticket, 1, 0, now)
		assert.False(t, result.CanPurchase)
		assert.Contains(t, result.Reasons, "Ticket is not available")
	})

	t.Run("not enough stock", func(t *testing.T) {
		result := svc.evaluate(subscribedCustomer(50), availableTicket(), 11, 0, now)
		assert.False(t, result.CanPurchase)
		assert.Contains(t, result.Reasons, "Not enough tickets available")
	})

	t.Run("scraper accounts are blocked", func(t *testing.T) {
		user := &model.User{ID: 1, Role: model.RoleScraper, CreatedAt: now}
		result := svc.evaluate(user, availableTicket(), 1, 0, now)
		assert.False(t, result.CanPurchase)
		assert.Contains(t, result.Reasons, "Scraper accounts cannot purchase tickets")
	})

	t.Run("all violated reasons are collected", func(t *testing.T) {
		user := &model.User{ID: 1, Role: model.RoleCustomer, CreatedAt: now.AddDate(0, 0, -30)}
		ticket := &model.ScrapedTicket{ID: 1, IsAvailable: false}

		result := svc.evaluate(user, ticket, 1, 0, now)
		assert.False(t, result.CanPurchase)
		assert.Len(t, result.Reasons, 2)
	})
}

func TestPurchaseService_CreatePurchase_InvalidQuantity(t *testing.T) {
	svc := newPurchaseFixture()

	for _, qty := range []int{0, -1} {
		_, err := svc.CreatePurchase(context.Background(), &model.CreatePurchaseRequest{
			UserID: 1, TicketID: 1, Quantity: qty,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)
	}
}

func TestNewPurchaseID(t *testing.T) {
	pattern := regexp.MustCompile(`^PUR-\d{8}-[A-Z]{6}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		id := newPurchaseID()
		assert.Regexp(t, pattern, id)
		_, dup := seen[id]
		assert.False(t, dup, "purchase id collided: %s", id)
		seen[id] = struct{}{}
	}
}

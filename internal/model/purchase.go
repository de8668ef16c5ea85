package model

import "time"

// PurchaseStatus state machine:
// pending -> confirmed, pending -> cancelled, confirmed -> cancelled.
// Cancelled is terminal.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusConfirmed PurchaseStatus = "confirmed"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusConfirmed, PurchaseStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks whether the transition to target is allowed.
func (s PurchaseStatus) CanTransitionTo(target PurchaseStatus) bool {
	transitions := map[PurchaseStatus][]PurchaseStatus{
		PurchaseStatusPending:   {PurchaseStatusConfirmed, PurchaseStatusCancelled},
		PurchaseStatusConfirmed: {PurchaseStatusCancelled},
		PurchaseStatusCancelled: {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// TicketPurchase is immutable once confirmed, except for cancellation.
type TicketPurchase struct {
	ID                 int            `json:"id" db:"id"`
	PurchaseID         string         `json:"purchase_id" db:"purchase_id"`
	UserID             int            `json:"user_id" db:"user_id"`
	TicketID           int            `json:"ticket_id" db:"ticket_id"`
	Quantity           int            `json:"quantity" db:"quantity"`
	UnitPrice          float64        `json:"unit_price" db:"unit_price"`
	Subtotal           float64        `json:"subtotal" db:"subtotal"`
	ProcessingFee      float64        `json:"processing_fee" db:"processing_fee"`
	ServiceFee         float64        `json:"service_fee" db:"service_fee"`
	TotalAmount        float64        `json:"total_amount" db:"total_amount"`
	Status             PurchaseStatus `json:"status" db:"status"`
	SeatPreferences    *string        `json:"seat_preferences,omitempty" db:"seat_preferences"`
	SpecialRequests    *string        `json:"special_requests,omitempty" db:"special_requests"`
	ConfirmedAt        *time.Time     `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CancelledAt        *time.Time     `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CancellationReason *string        `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`
}

// CreatePurchaseRequest comes from the purchase API.
type CreatePurchaseRequest struct {
	UserID          int     `json:"user_id" binding:"required"`
	TicketID        int     `json:"ticket_id" binding:"required"`
	Quantity        int     `json:"quantity" binding:"required"`
	SeatPreferences *string `json:"seat_preferences,omitempty"`
	SpecialRequests *string `json:"special_requests,omitempty"`
}

// FeeBreakdown is the result of the purchase fee calculation.
type FeeBreakdown struct {
	ProcessingFee float64 `json:"processing_fee"`
	ServiceFee    float64 `json:"service_fee"`
	TotalFees     float64 `json:"total_fees"`
}

// EligibilityUserInfo reports the limits backing an eligibility decision.
// TicketLimit nil means unlimited; RemainingTickets is nil in that case too.
type EligibilityUserInfo struct {
	TicketLimit         *int       `json:"ticket_limit"`
	MonthlyUsage        int        `json:"monthly_usage"`
	RemainingTickets    *int       `json:"remaining_tickets"`
	FreeAccess          bool       `json:"free_access,omitempty"`
	FreeAccessRemaining int        `json:"free_access_remaining,omitempty"`
	FreeAccessExpires   *time.Time `json:"free_access_expires,omitempty"`
}

// EligibilityResult collects every violated rule; reasons are human-readable
// and suitable for direct display.
type EligibilityResult struct {
	CanPurchase bool                `json:"can_purchase"`
	Reasons     []string            `json:"reasons"`
	UserInfo    EligibilityUserInfo `json:"user_info"`
}

package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"hd-tickets/config"
	"hd-tickets/internal/model"
	"hd-tickets/internal/policy"
	"hd-tickets/internal/repository"
	"hd-tickets/monitoring"
	apperrors "hd-tickets/pkg/app_errors"
	"hd-tickets/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	ReasonTicketUnavailable   = "Ticket is not available"
	ReasonInsufficientStock   = "Not enough tickets available"
	ReasonSubscriptionNeeded  = "Active subscription required"
	ReasonMonthlyLimitReached = "Would exceed monthly ticket limit"
	ReasonScraperBlocked      = "Scraper accounts cannot purchase tickets"
)

type PurchaseService interface {
	CheckEligibility(ctx context.Context, userID, ticketID, quantity int) (*model.EligibilityResult, error)
	CalculateFees(subtotal float64) model.FeeBreakdown
	CreatePurchase(ctx context.Context, req *model.CreatePurchaseRequest) (*model.TicketPurchase, error)
	ConfirmPurchase(ctx context.Context, purchaseID string) (*model.TicketPurchase, error)
	CancelPurchase(ctx context.Context, purchaseID string, reason string) (*model.TicketPurchase, error)
	GetPurchase(ctx context.Context, purchaseID string) (*model.TicketPurchase, error)
	ListPurchases(ctx context.Context, userID int) ([]*model.TicketPurchase, error)
}

type PurchaseServiceImpl struct {
	pool         *pgxpool.Pool
	purchases    repository.PurchaseRepository
	tickets      repository.ScrapedTicketRepository
	users        repository.UserRepository
	fees         config.FeesConfig
	subscription config.SubscriptionConfig
}

func NewPurchaseService(
	pool *pgxpool.Pool,
	purchases repository.PurchaseRepository,
	tickets repository.ScrapedTicketRepository,
	users repository.UserRepository,
	fees config.FeesConfig,
	subscription config.SubscriptionConfig,
) PurchaseService {
	return &PurchaseServiceImpl{
		pool:         pool,
		purchases:    purchases,
		tickets:      tickets,
		users:        users,
		fees:         fees,
		subscription: subscription,
	}
}

// CalculateFees computes the processing fee (percentage of the subtotal,
// rounded to cents) plus the flat service fee. Decimal arithmetic keeps the
// cents exact; 100.00 yields 3.00 + 2.50 = 5.50.
func (s *PurchaseServiceImpl) CalculateFees(subtotal float64) model.FeeBreakdown {
	base := decimal.NewFromFloat(subtotal)
	processing := base.Mul(decimal.NewFromFloat(s.fees.ProcessingFeeRate)).Round(2)
	service := decimal.NewFromFloat(s.fees.ServiceFee)

	return model.FeeBreakdown{
		ProcessingFee: processing.InexactFloat64(),
		ServiceFee:    service.InexactFloat64(),
		TotalFees:     processing.Add(service).InexactFloat64(),
	}
}

func (s *PurchaseServiceImpl) CheckEligibility(ctx context.Context, userID, ticketID, quantity int) (*model.EligibilityResult, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	usage, err := s.purchases.MonthlyUsage(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("monthly usage for user %d: %w", userID, err)
	}

	result := s.evaluate(user, ticket, quantity, usage, time.Now().UTC())
	return &result, nil
}

// evaluate applies every rule independently so the caller sees all violated
// reasons at once, not just the first.
func (s *PurchaseServiceImpl) evaluate(user *model.User, ticket *model.ScrapedTicket, quantity, monthlyUsage int, now time.Time) model.EligibilityResult {
	result := model.EligibilityResult{
		Reasons: []string{},
		UserInfo: model.EligibilityUserInfo{
			MonthlyUsage: monthlyUsage,
		},
	}

	if !ticket.IsAvailable {
		result.Reasons = append(result.Reasons, ReasonTicketUnavailable)
	} else if !ticket.HasStock(quantity) {
		result.Reasons = append(result.Reasons, ReasonInsufficientStock)
	}

	if !policy.CanAccess(user.Role, policy.ActionPurchase) {
		result.Reasons = append(result.Reasons, ReasonScraperBlocked)
	}

	switch user.Role {
	case model.RoleAgent, model.RoleAdmin:
		// unlimited, ticket_limit stays nil

	case model.RoleCustomer:
		freeAccessEnds := user.CreatedAt.AddDate(0, 0, s.subscription.FreeAccessDays)
		if now.Before(freeAccessEnds) {
			remaining := int(freeAccessEnds.Sub(now).Hours() / 24)
			result.UserInfo.FreeAccess = true
			result.UserInfo.FreeAccessRemaining = remaining
			result.UserInfo.FreeAccessExpires = &freeAccessEnds
			break
		}

		if !user.HasActiveSubscription(now) {
			result.Reasons = append(result.Reasons, ReasonSubscriptionNeeded)
			break
		}

		limit := user.Subscription.TicketLimit
		remaining := limit - monthlyUsage
		if remaining < 0 {
			remaining = 0
		}
		result.UserInfo.TicketLimit = &limit
		result.UserInfo.RemainingTickets = &remaining
		if monthlyUsage+quantity > limit {
			result.Reasons = append(result.Reasons, ReasonMonthlyLimitReached)
		}
	}

	result.CanPurchase = len(result.Reasons) == 0
	return result
}

func (s *PurchaseServiceImpl) CreatePurchase(ctx context.Context, req *model.CreatePurchaseRequest) (*model.TicketPurchase, error) {
	if req.Quantity < 1 {
		return nil, apperrors.ErrInvalidQuantity
	}

	eligibility, err := s.CheckEligibility(ctx, req.UserID, req.TicketID, req.Quantity)
	if err != nil {
		return nil, err
	}
	if !eligibility.CanPurchase {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotEligible, strings.Join(eligibility.Reasons, "; "))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin purchase tx: %w", err)
	}
	defer tx.Rollback(ctx)

	ticket, err := s.tickets.LockByID(ctx, tx, req.TicketID)
	if err != nil {
		return nil, err
	}
	// availability may have changed between the eligibility check and the lock
	if !ticket.IsAvailable || !ticket.HasStock(req.Quantity) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotEligible, ReasonInsufficientStock)
	}

	if err := s.tickets.DecrementAvailable(ctx, tx, ticket.ID, req.Quantity); err != nil {
		return nil, err
	}

	unitPrice := ticket.MinPrice
	subtotal := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(req.Quantity))).Round(2)
	feeTotal := s.CalculateFees(subtotal.InexactFloat64())

	purchase := &model.TicketPurchase{
		PurchaseID:      newPurchaseID(),
		UserID:          req.UserID,
		TicketID:        ticket.ID,
		Quantity:        req.Quantity,
		UnitPrice:       unitPrice,
		Subtotal:        subtotal.InexactFloat64(),
		ProcessingFee:   feeTotal.ProcessingFee,
		ServiceFee:      feeTotal.ServiceFee,
		TotalAmount:     subtotal.Add(decimal.NewFromFloat(feeTotal.TotalFees)).InexactFloat64(),
		Status:          model.PurchaseStatusPending,
		SeatPreferences: req.SeatPreferences,
		SpecialRequests: req.SpecialRequests,
	}

	created, err := s.purchases.Create(ctx, tx, purchase)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase tx: %w", err)
	}

	monitoring.PurchasesCreated.WithLabelValues(string(model.PurchaseStatusPending)).Inc()
	logger.WithComponent("purchases").Info("purchase created",
		zap.String("purchase_id", created.PurchaseID),
		zap.Int("user_id", created.UserID),
		zap.Int("ticket_id", created.TicketID),
		zap.Int("quantity", created.Quantity))

	return created, nil
}

func (s *PurchaseServiceImpl) ConfirmPurchase(ctx context.Context, purchaseID string) (*model.TicketPurchase, error) {
	return s.transition(ctx, purchaseID, model.PurchaseStatusConfirmed, nil)
}

func (s *PurchaseServiceImpl) CancelPurchase(ctx context.Context, purchaseID string, reason string) (*model.TicketPurchase, error) {
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	return s.transition(ctx, purchaseID, model.PurchaseStatusCancelled, reasonPtr)
}

// transition moves a purchase through its state machine under a row lock so
// that concurrent confirm/cancel calls serialize on the same row.
func (s *PurchaseServiceImpl) transition(ctx context.Context, purchaseID string, target model.PurchaseStatus, reason *string) (*model.TicketPurchase, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transition tx: %w", err)
	}
	defer tx.Rollback(ctx)

	purchase, err := s.purchases.LockByPurchaseID(ctx, tx, purchaseID)
	if err != nil {
		return nil, err
	}
	if !purchase.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidStatus, purchase.Status, target)
	}

	updated, err := s.purchases.UpdateStatus(ctx, tx, purchase.ID, target, reason)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transition tx: %w", err)
	}

	monitoring.PurchasesCreated.WithLabelValues(string(target)).Inc()
	return updated, nil
}

func (s *PurchaseServiceImpl) GetPurchase(ctx context.Context, purchaseID string) (*model.TicketPurchase, error) {
	return s.purchases.FindByPurchaseID(ctx, purchaseID)
}

func (s *PurchaseServiceImpl) ListPurchases(ctx context.Context, userID int) ([]*model.TicketPurchase, error) {
	return s.purchases.ListByUserID(ctx, userID)
}

const purchaseIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newPurchaseID builds PUR-<yyyymmdd>-<6 random uppercase letters>.
// The crypto-random suffix keeps ids collision-resistant across instances.
func newPurchaseID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("purchase id entropy: %v", err))
	}
	suffix := make([]byte, len(buf))
	for i, b := range buf {
		suffix[i] = purchaseIDAlphabet[int(b)%len(purchaseIDAlphabet)]
	}
	return fmt.Sprintf("PUR-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}

package repository

import (
	"context"
	"fmt"
	"time"

	"hd-tickets/internal/model"
	apperrors "hd-tickets/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PurchaseRepository interface {
	FindByPurchaseID(ctx context.Context, purchaseID string) (*model.TicketPurchase, error)
	ListByUserID(ctx context.Context, userID int) ([]*model.TicketPurchase, error)
	// MonthlyUsage sums quantities of confirmed purchases in the calendar
	// month containing at.
	MonthlyUsage(ctx context.Context, userID int, at time.Time) (int, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, purchase *model.TicketPurchase) (*model.TicketPurchase, error)
	LockByPurchaseID(ctx context.Context, tx pgx.Tx, purchaseID string) (*model.TicketPurchase, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.PurchaseStatus, reason *string) (*model.TicketPurchase, error)
}

type PurchaseRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepository(pool *pgxpool.Pool) PurchaseRepository {
	return &PurchaseRepositoryImpl{
		pool: pool,
	}
}

const purchaseColumns = `
	id, purchase_id, user_id, ticket_id, quantity, unit_price, subtotal,
	processing_fee, service_fee, total_amount, status,
	seat_preferences, special_requests,
	confirmed_at, cancelled_at, cancellation_reason, created_at, updated_at
`

func scanPurchase(row pgx.Row) (*model.TicketPurchase, error) {
	var p model.TicketPurchase
	err := row.Scan(
		&p.ID,
		&p.PurchaseID,
		&p.UserID,
		&p.TicketID,
		&p.Quantity,
		&p.UnitPrice,
		&p.Subtotal,
		&p.ProcessingFee,
		&p.ServiceFee,
		&p.TotalAmount,
		&p.Status,
		&p.SeatPreferences,
		&p.SpecialRequests,
		&p.ConfirmedAt,
		&p.CancelledAt,
		&p.CancellationReason,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepositoryImpl) FindByPurchaseID(ctx context.Context, purchaseID string) (*model.TicketPurchase, error) {
	query := fmt.Sprintf(`SELECT %s FROM ticket_purchases WHERE purchase_id = $1`, purchaseColumns)

	purchase, err := scanPurchase(r.pool.QueryRow(ctx, query, purchaseID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrPurchaseNotFound
		}
		return nil, err
	}
	return purchase, nil
}

func (r *PurchaseRepositoryImpl) ListByUserID(ctx context.Context, userID int) ([]*model.TicketPurchase, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM ticket_purchases
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, purchaseColumns)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []*model.TicketPurchase
	for rows.Next() {
		purchase, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, purchase)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *PurchaseRepositoryImpl) MonthlyUsage(ctx context.Context, userID int, at time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM ticket_purchases
		WHERE user_id = $1
		  AND status = $2
		  AND created_at >= date_trunc('month', $3::timestamptz)
		  AND created_at < date_trunc('month', $3::timestamptz) + interval '1 month'
	`

	var total int
	err := r.pool.QueryRow(ctx, query, userID, model.PurchaseStatusConfirmed, at).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PurchaseRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, purchase *model.TicketPurchase) (*model.TicketPurchase, error) {
	query := fmt.Sprintf(`
		INSERT INTO ticket_purchases (
			purchase_id, user_id, ticket_id, quantity, unit_price, subtotal,
			processing_fee, service_fee, total_amount, status,
			seat_preferences, special_requests
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING %s
	`, purchaseColumns)

	created, err := scanPurchase(tx.QueryRow(ctx, query,
		purchase.PurchaseID, purchase.UserID, purchase.TicketID,
		purchase.Quantity, purchase.UnitPrice, purchase.Subtotal,
		purchase.ProcessingFee, purchase.ServiceFee, purchase.TotalAmount, purchase.Status,
		purchase.SeatPreferences, purchase.SpecialRequests,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}
	return created, nil
}

func (r *PurchaseRepositoryImpl) LockByPurchaseID(ctx context.Context, tx pgx.Tx, purchaseID string) (*model.TicketPurchase, error) {
	query := fmt.Sprintf(`SELECT %s FROM ticket_purchases WHERE purchase_id = $1 FOR UPDATE`, purchaseColumns)

	purchase, err := scanPurchase(tx.QueryRow(ctx, query, purchaseID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrPurchaseNotFound
		}
		return nil, err
	}
	return purchase, nil
}

func (r *PurchaseRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.PurchaseStatus, reason *string) (*model.TicketPurchase, error) {
	now := time.Now().UTC()

	var confirmedAt, cancelledAt *time.Time
	switch status {
	case model.PurchaseStatusConfirmed:
		confirmedAt = &now
	case model.PurchaseStatusCancelled:
		cancelledAt = &now
	}

	query := fmt.Sprintf(`
		UPDATE ticket_purchases
		SET status = $1,
		    confirmed_at = COALESCE($2, confirmed_at),
		    cancelled_at = COALESCE($3, cancelled_at),
		    cancellation_reason = COALESCE($4, cancellation_reason),
		    updated_at = $5
		WHERE id = $6
		RETURNING %s
	`, purchaseColumns)

	purchase, err := scanPurchase(tx.QueryRow(ctx, query, status, confirmedAt, cancelledAt, reason, now, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to update purchase status: %w", err)
	}
	return purchase, nil
}

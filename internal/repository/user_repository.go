package repository

import (
	"context"
	"time"

	"hd-tickets/internal/model"
	apperrors "hd-tickets/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	// FindByID loads the user plus their most recent subscription row, if any.
	FindByID(ctx context.Context, id int) (*model.User, error)
}

type UserRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &UserRepositoryImpl{
		pool: pool,
	}
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id int) (*model.User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.phone, u.role, u.created_at,
		       s.id, s.user_id, s.status, s.ticket_limit, s.starts_at, s.ends_at
		FROM users u
		LEFT JOIN user_subscriptions s
		  ON s.user_id = u.id
		 AND s.id = (
			SELECT id FROM user_subscriptions
			WHERE user_id = u.id
			ORDER BY ends_at DESC
			LIMIT 1
		 )
		WHERE u.id = $1
	`

	var user model.User
	var subID, subUserID, subLimit *int
	var subStatus *string
	var subStarts, subEnds *time.Time

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.Role,
		&user.CreatedAt,
		&subID,
		&subUserID,
		&subStatus,
		&subLimit,
		&subStarts,
		&subEnds,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if subID != nil && subStatus != nil && subLimit != nil && subStarts != nil && subEnds != nil {
		user.Subscription = &model.Subscription{
			ID:          *subID,
			UserID:      *subUserID,
			Status:      model.SubscriptionStatus(*subStatus),
			TicketLimit: *subLimit,
			StartsAt:    *subStarts,
			EndsAt:      *subEnds,
		}
	}

	return &user, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"hd-tickets/internal/model"
	apperrors "hd-tickets/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AlertRepository interface {
	List(ctx context.Context) ([]*model.TicketAlert, error)
	FindByID(ctx context.Context, id int) (*model.TicketAlert, error)
	FindByAlertID(ctx context.Context, alertID uuid.UUID) (*model.TicketAlert, error)
	Create(ctx context.Context, alert *model.TicketAlert) (*model.TicketAlert, error)
	// ListDue selects active alerts whose last check is older than their
	// interval (or the default when the alert has none).
	ListDue(ctx context.Context, now time.Time, defaultInterval time.Duration) ([]*model.TicketAlert, error)
	// MarkChecked advances last_checked_at. The guard keeps the column
	// monotonic and stops two scheduler runs from double-processing: the
	// update only applies when checkedAt is newer than the stored value.
	MarkChecked(ctx context.Context, id int, checkedAt time.Time) (bool, error)
	IncrementMatches(ctx context.Context, id int, n int) error
	SetActive(ctx context.Context, id int, active bool) error
}

type AlertRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewAlertRepository(pool *pgxpool.Pool) AlertRepository {
	return &AlertRepositoryImpl{
		pool: pool,
	}
}

const alertColumns = `
	id, alert_id, user_id, keywords, platform, max_price, currency,
	is_active, channels, check_interval_minutes, last_checked_at,
	match_count, created_at, updated_at
`

func scanAlert(row pgx.Row) (*model.TicketAlert, error) {
	var a model.TicketAlert
	var platform *string
	var channels []string
	var intervalMinutes int

	err := row.Scan(
		&a.ID,
		&a.AlertID,
		&a.UserID,
		&a.Keywords,
		&platform,
		&a.MaxPrice,
		&a.Currency,
		&a.IsActive,
		&channels,
		&intervalMinutes,
		&a.LastCheckedAt,
		&a.MatchCount,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if platform != nil {
		p := model.Platform(*platform)
		a.Platform = &p
	}
	for _, c := range channels {
		a.Channels = append(a.Channels, model.NotificationChannel(c))
	}
	a.CheckInterval = time.Duration(intervalMinutes) * time.Minute
	return &a, nil
}

func channelStrings(channels []model.NotificationChannel) []string {
	out := make([]string, 0, len(channels))
	for _, c := range channels {
		out = append(out, string(c))
	}
	return out
}

func (r *AlertRepositoryImpl) List(ctx context.Context) ([]*model.TicketAlert, error) {
	query := fmt.Sprintf(`SELECT %s FROM ticket_alerts ORDER BY created_at DESC`, alertColumns)
	return r.queryAlerts(ctx, query)
}

func (r *AlertRepositoryImpl) FindByID(ctx context.Context, id int) (*model.TicketAlert, error) {
	query := fmt.Sprintf(`SELECT %s FROM ticket_alerts WHERE id = $1`, alertColumns)

	alert, err := scanAlert(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrAlertNotFound
		}
		return nil, err
	}
	return alert, nil
}

func (r *AlertRepositoryImpl) FindByAlertID(ctx context.Context, alertID uuid.UUID) (*model.TicketAlert, error) {
	query := fmt.Sprintf(`SELECT %s FROM ticket_alerts WHERE alert_id = $1`, alertColumns)

	alert, err := scanAlert(r.pool.QueryRow(ctx, query, alertID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrAlertNotFound
		}
		return nil, err
	}
	return alert, nil
}

func (r *AlertRepositoryImpl) Create(ctx context.Context, alert *model.TicketAlert) (*model.TicketAlert, error) {
	query := fmt.Sprintf(`
		INSERT INTO ticket_alerts (
			alert_id, user_id, keywords, platform, max_price, currency,
			is_active, channels, check_interval_minutes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s
	`, alertColumns)

	var platform *string
	if alert.Platform != nil {
		p := string(*alert.Platform)
		platform = &p
	}

	created, err := scanAlert(r.pool.QueryRow(ctx, query,
		alert.AlertID, alert.UserID, alert.Keywords, platform, alert.MaxPrice, alert.Currency,
		alert.IsActive, channelStrings(alert.Channels), int(alert.CheckInterval/time.Minute),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}
	return created, nil
}

func (r *AlertRepositoryImpl) ListDue(ctx context.Context, now time.Time, defaultInterval time.Duration) ([]*model.TicketAlert, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM ticket_alerts
		WHERE is_active = TRUE
		  AND (
			last_checked_at IS NULL
			OR last_checked_at <= $1 - make_interval(mins =>
				CASE WHEN check_interval_minutes > 0 THEN check_interval_minutes ELSE $2 END)
		  )
		ORDER BY last_checked_at ASC NULLS FIRST
	`, alertColumns)

	return r.queryAlerts(ctx, query, now, int(defaultInterval/time.Minute))
}

func (r *AlertRepositoryImpl) MarkChecked(ctx context.Context, id int, checkedAt time.Time) (bool, error) {
	query := `
		UPDATE ticket_alerts
		SET last_checked_at = $1, updated_at = $1
		WHERE id = $2
		  AND (last_checked_at IS NULL OR last_checked_at < $1)
	`

	result, err := r.pool.Exec(ctx, query, checkedAt, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark alert checked: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *AlertRepositoryImpl) IncrementMatches(ctx context.Context, id int, n int) error {
	query := `
		UPDATE ticket_alerts
		SET match_count = match_count + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, n, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrAlertNotFound
	}
	return nil
}

func (r *AlertRepositoryImpl) SetActive(ctx context.Context, id int, active bool) error {
	query := `
		UPDATE ticket_alerts
		SET is_active = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, active, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrAlertNotFound
	}
	return nil
}

func (r *AlertRepositoryImpl) queryAlerts(ctx context.Context, query string, args ...interface{}) ([]*model.TicketAlert, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*model.TicketAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return alerts, nil
}

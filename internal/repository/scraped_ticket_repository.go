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

type ScrapedTicketRepository interface {
	FindByID(ctx context.Context, id int) (*model.ScrapedTicket, error)
	FindByIdentity(ctx context.Context, platform model.Platform, externalID string) (*model.ScrapedTicket, error)
	Create(ctx context.Context, data model.ScrapedTicketData) (*model.ScrapedTicket, error)
	UpdateListing(ctx context.Context, id int, data model.ScrapedTicketData) (*model.ScrapedTicket, error)
	Touch(ctx context.Context, id int, at time.Time) error
	Trending(ctx context.Context, keyword string, limit int) ([]*model.ScrapedTicket, error)
	BestDeals(ctx context.Context, limit int) ([]*model.ScrapedTicket, error)
	MarkUnavailable(ctx context.Context, id int) error

	// Transaction methods
	LockByID(ctx context.Context, tx pgx.Tx, id int) (*model.ScrapedTicket, error)
	DecrementAvailable(ctx context.Context, tx pgx.Tx, id int, quantity int) error
}

type ScrapedTicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewScrapedTicketRepository(pool *pgxpool.Pool) ScrapedTicketRepository {
	return &ScrapedTicketRepositoryImpl{
		pool: pool,
	}
}

const scrapedTicketColumns = `
	id, platform, external_id, title, venue, location, event_date,
	min_price, max_price, currency, available_quantity,
	is_available, is_high_demand, ticket_url, last_updated_at, created_at
`

func scanScrapedTicket(row pgx.Row) (*model.ScrapedTicket, error) {
	var t model.ScrapedTicket
	err := row.Scan(
		&t.ID,
		&t.Platform,
		&t.ExternalID,
		&t.Title,
		&t.Venue,
		&t.Location,
		&t.EventDate,
		&t.MinPrice,
		&t.MaxPrice,
		&t.Currency,
		&t.AvailableQuantity,
		&t.IsAvailable,
		&t.IsHighDemand,
		&t.TicketURL,
		&t.LastUpdatedAt,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ScrapedTicketRepositoryImpl) FindByID(ctx context.Context, id int) (*model.ScrapedTicket, error) {
	query := fmt.Sprintf(`SELECT %s FROM scraped_tickets WHERE id = $1`, scrapedTicketColumns)

	ticket, err := scanScrapedTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (r *ScrapedTicketRepositoryImpl) FindByIdentity(ctx context.Context, platform model.Platform, externalID string) (*model.ScrapedTicket, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM scraped_tickets
		WHERE platform = $1 AND external_id = $2
	`, scrapedTicketColumns)

	ticket, err := scanScrapedTicket(r.pool.QueryRow(ctx, query, platform, externalID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (r *ScrapedTicketRepositoryImpl) Create(ctx context.Context, data model.ScrapedTicketData) (*model.ScrapedTicket, error) {
	query := fmt.Sprintf(`
		INSERT INTO scraped_tickets (
			platform, external_id, title, venue, location, event_date,
			min_price, max_price, currency,
			is_available, is_high_demand, ticket_url, last_updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING %s
	`, scrapedTicketColumns)

	ticket, err := scanScrapedTicket(r.pool.QueryRow(ctx, query,
		data.Platform, data.ExternalID, data.Title, data.Venue, data.Location, data.EventDate,
		data.MinPrice, data.MaxPrice, data.Currency,
		data.IsAvailable, data.IsHighDemand, data.TicketURL, data.ScrapedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create scraped ticket: %w", err)
	}
	return ticket, nil
}

func (r *ScrapedTicketRepositoryImpl) UpdateListing(ctx context.Context, id int, data model.ScrapedTicketData) (*model.ScrapedTicket, error) {
	query := fmt.Sprintf(`
		UPDATE scraped_tickets
		SET min_price = $1, max_price = $2, is_available = $3,
		    is_high_demand = $4, last_updated_at = $5
		WHERE id = $6
		RETURNING %s
	`, scrapedTicketColumns)

	ticket, err := scanScrapedTicket(r.pool.QueryRow(ctx, query,
		data.MinPrice, data.MaxPrice, data.IsAvailable, data.IsHighDemand, data.ScrapedAt, id,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to update scraped ticket: %w", err)
	}
	return ticket, nil
}

func (r *ScrapedTicketRepositoryImpl) Touch(ctx context.Context, id int, at time.Time) error {
	query := `UPDATE scraped_tickets SET last_updated_at = $1 WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}
	return nil
}

func (r *ScrapedTicketRepositoryImpl) Trending(ctx context.Context, keyword string, limit int) ([]*model.ScrapedTicket, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM scraped_tickets
		WHERE is_available = TRUE
		  AND event_date > NOW()
		  AND (title ILIKE '%%' || $1 || '%%' OR venue ILIKE '%%' || $1 || '%%')
		ORDER BY is_high_demand DESC, last_updated_at DESC
		LIMIT $2
	`, scrapedTicketColumns)

	return r.queryTickets(ctx, query, keyword, limit)
}

func (r *ScrapedTicketRepositoryImpl) BestDeals(ctx context.Context, limit int) ([]*model.ScrapedTicket, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM scraped_tickets
		WHERE is_available = TRUE
		  AND event_date > NOW()
		  AND min_price > 0
		ORDER BY min_price ASC, last_updated_at DESC
		LIMIT $1
	`, scrapedTicketColumns)

	return r.queryTickets(ctx, query, limit)
}

func (r *ScrapedTicketRepositoryImpl) MarkUnavailable(ctx context.Context, id int) error {
	query := `
		UPDATE scraped_tickets
		SET is_available = FALSE, last_updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}
	return nil
}

func (r *ScrapedTicketRepositoryImpl) LockByID(ctx context.Context, tx pgx.Tx, id int) (*model.ScrapedTicket, error) {
	query := fmt.Sprintf(`SELECT %s FROM scraped_tickets WHERE id = $1 FOR UPDATE`, scrapedTicketColumns)

	ticket, err := scanScrapedTicket(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (r *ScrapedTicketRepositoryImpl) DecrementAvailable(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	// NULL available_quantity means the platform exposes no count; nothing to decrement.
	query := `
		UPDATE scraped_tickets
		SET available_quantity = available_quantity - $1,
		    is_available = (available_quantity - $1) > 0,
		    last_updated_at = NOW()
		WHERE id = $2
		  AND available_quantity IS NOT NULL
		  AND available_quantity >= $1
	`

	result, err := tx.Exec(ctx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("failed to decrement availability: %w", err)
	}
	if result.RowsAffected() == 0 {
		var hasCount bool
		err := tx.QueryRow(ctx, `SELECT available_quantity IS NOT NULL FROM scraped_tickets WHERE id = $1`, id).Scan(&hasCount)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.ErrTicketNotFound
			}
			return err
		}
		if hasCount {
			return apperrors.ErrNotEligible
		}
	}
	return nil
}

func (r *ScrapedTicketRepositoryImpl) queryTickets(ctx context.Context, query string, args ...interface{}) ([]*model.ScrapedTicket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []*model.ScrapedTicket
	for rows.Next() {
		ticket, err := scanScrapedTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

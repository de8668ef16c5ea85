package service

import (
	"context"
	"time"

	"hd-tickets/internal/model"
	"hd-tickets/internal/scraper"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type MockScrapedTicketRepository struct {
	mock.Mock
}

func (m *MockScrapedTicketRepository) FindByID(ctx context.Context, id int) (*model.ScrapedTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScrapedTicket), args.Error(1)
}

func (m *MockScrapedTicketRepository) FindByIdentity(ctx context.Context, platform model.Platform, externalID string) (*model.ScrapedTicket, error) {
	args := m.Called(ctx, platform, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScrapedTicket), args.Error(1)
}

func (m *MockScrapedTicketRepository) Create(ctx context.Context, data model.ScrapedTicketData) (*model.ScrapedTicket, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScrapedTicket), args.Error(1)
}

func (m *MockScrapedTicketRepository) UpdateListing(ctx context.Context, id int, data model.ScrapedTicketData) (*model.ScrapedTicket, error) {
	args := m.Called(ctx, id, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScrapedTicket), args.Error(1)
}

func (m *MockScrapedTicketRepository) Touch(ctx context.Context, id int, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockScrapedTicketRepository) Trending(ctx context.Context, keyword string, limit int) ([]*model.ScrapedTicket, error) {
	args := m.Called(ctx, keyword, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ScrapedTicket), args.Error(1)
}

func (m *MockScrapedTicketRepository) BestDeals(ctx context.Context, limit int) ([]*model.ScrapedTicket, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ScrapedTicket), args.Error(1)
}

func (m *MockScrapedTicketRepository) MarkUnavailable(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockScrapedTicketRepository) LockByID(ctx context.Context, tx pgx.Tx, id int) (*model.ScrapedTicket, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScrapedTicket), args.Error(1)
}

func (m *MockScrapedTicketRepository) DecrementAvailable(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	args := m.Called(ctx, tx, id, quantity)
	return args.Error(0)
}

type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) List(ctx context.Context) ([]*model.TicketAlert, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TicketAlert), args.Error(1)
}

func (m *MockAlertRepository) FindByID(ctx context.Context, id int) (*model.TicketAlert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TicketAlert), args.Error(1)
}

func (m *MockAlertRepository) FindByAlertID(ctx context.Context, alertID uuid.UUID) (*model.TicketAlert, error) {
	args := m.Called(ctx, alertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TicketAlert), args.Error(1)
}

func (m *MockAlertRepository) Create(ctx context.Context, alert *model.TicketAlert) (*model.TicketAlert, error) {
	args := m.Called(ctx, alert)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TicketAlert), args.Error(1)
}

func (m *MockAlertRepository) ListDue(ctx context.Context, now time.Time, defaultInterval time.Duration) ([]*model.TicketAlert, error) {
	args := m.Called(ctx, now, defaultInterval)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TicketAlert), args.Error(1)
}

func (m *MockAlertRepository) MarkChecked(ctx context.Context, id int, checkedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, checkedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertRepository) IncrementMatches(ctx context.Context, id int, n int) error {
	args := m.Called(ctx, id, n)
	return args.Error(0)
}

func (m *MockAlertRepository) SetActive(ctx context.Context, id int, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

type MockOrchestrator struct {
	mock.Mock
}

func (m *MockOrchestrator) SearchTickets(ctx context.Context, keywords string, opts model.SearchOptions) (map[model.Platform][]model.ScrapedTicketData, error) {
	args := m.Called(ctx, keywords, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.Platform][]model.ScrapedTicketData), args.Error(1)
}

func (m *MockOrchestrator) ScrapePlatform(ctx context.Context, p model.Platform, keywords string, opts model.SearchOptions) ([]model.ScrapedTicketData, error) {
	args := m.Called(ctx, p, keywords, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ScrapedTicketData), args.Error(1)
}

func (m *MockOrchestrator) AvailablePlatforms() []model.Platform {
	args := m.Called()
	return args.Get(0).([]model.Platform)
}

func (m *MockOrchestrator) EnablePlatform(p model.Platform) error {
	args := m.Called(p)
	return args.Error(0)
}

func (m *MockOrchestrator) DisablePlatform(p model.Platform) error {
	args := m.Called(p)
	return args.Error(0)
}

func (m *MockOrchestrator) Statistics() scraper.Statistics {
	args := m.Called()
	return args.Get(0).(scraper.Statistics)
}

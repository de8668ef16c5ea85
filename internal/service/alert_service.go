package service

import (
	"context"
	"fmt"
	"time"

	"hd-tickets/internal/model"
	"hd-tickets/internal/queue"
	"hd-tickets/internal/repository"
	"hd-tickets/internal/scraper"
	"hd-tickets/monitoring"
	"hd-tickets/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AlertService interface {
	// CheckAlerts processes every due alert once and returns how many were
	// processed. A failure inside one alert never blocks the rest, and a
	// processed alert is marked checked even when its notifications fail.
	CheckAlerts(ctx context.Context) (int, error)
	CreateAlert(ctx context.Context, alert *model.TicketAlert) (*model.TicketAlert, error)
	ListAlerts(ctx context.Context) ([]*model.TicketAlert, error)
	SetAlertActive(ctx context.Context, id int, active bool) error
}

type AlertServiceImpl struct {
	repo            repository.AlertRepository
	orchestrator    scraper.Orchestrator
	scorer          MatchScorer
	ingest          IngestService
	matchQueue      queue.MatchQueue
	matchThreshold  int
	defaultInterval time.Duration
}

func NewAlertService(
	repo repository.AlertRepository,
	orchestrator scraper.Orchestrator,
	scorer MatchScorer,
	ingest IngestService,
	matchQueue queue.MatchQueue,
	matchThreshold int,
	defaultInterval time.Duration,
) AlertService {
	return &AlertServiceImpl{
		repo:            repo,
		orchestrator:    orchestrator,
		scorer:          scorer,
		ingest:          ingest,
		matchQueue:      matchQueue,
		matchThreshold:  matchThreshold,
		defaultInterval: defaultInterval,
	}
}

func (s *AlertServiceImpl) CheckAlerts(ctx context.Context) (int, error) {
	log := logger.WithComponent("alerts")
	now := time.Now().UTC()

	alerts, err := s.repo.ListDue(ctx, now, s.defaultInterval)
	if err != nil {
		return 0, fmt.Errorf("list due alerts: %w", err)
	}

	processed := 0
	for _, alert := range alerts {
		// Claiming up front keeps last_checked_at monotonic and stops a
		// concurrent scheduler run from double-processing the same alert.
		// It also guarantees the alert counts as checked even when the
		// search or the notification publish below fails.
		claimed, err := s.repo.MarkChecked(ctx, alert.ID, now)
		if err != nil {
			log.Error("failed to mark alert checked", zap.Int("alert_id", alert.ID), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}

		processed++
		monitoring.AlertsChecked.Inc()

		if err := s.checkOne(ctx, alert, now); err != nil {
			log.Error("alert check failed", zap.Int("alert_id", alert.ID), zap.Error(err))
		}
	}

	return processed, nil
}

func (s *AlertServiceImpl) checkOne(ctx context.Context, alert *model.TicketAlert, now time.Time) error {
	results, err := s.orchestrator.SearchTickets(ctx, alert.Keywords, alert.SearchOptions())
	if err != nil {
		return fmt.Errorf("search for alert %d: %w", alert.ID, err)
	}

	log := logger.WithComponent("alerts")
	matches := 0
	seen := make(map[string]struct{})

	for _, tickets := range results {
		if _, err := s.ingest.IngestBatch(ctx, tickets); err != nil {
			log.Warn("ingest of alert candidates failed", zap.Int("alert_id", alert.ID), zap.Error(err))
		}

		for _, ticket := range tickets {
			score := s.scorer.Score(alert, ticket)
			if score < s.matchThreshold {
				continue
			}

			// one notification per (alert, ticket) per cycle
			key := fmt.Sprintf("%s:%s", ticket.Platform, ticket.ExternalID)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			match := &model.MatchFound{
				AlertID:  alert.ID,
				UserID:   alert.UserID,
				Keywords: alert.Keywords,
				Channels: alert.Channels,
				Ticket:   ticket,
				Score:    score,
				FoundAt:  now,
			}
			if err := s.matchQueue.PublishMatch(ctx, match); err != nil {
				log.Error("failed to publish match",
					zap.Int("alert_id", alert.ID),
					zap.String("ticket", key),
					zap.Error(err))
				continue
			}
			matches++
			monitoring.MatchesFound.Inc()
		}
	}

	if matches > 0 {
		if err := s.repo.IncrementMatches(ctx, alert.ID, matches); err != nil {
			log.Warn("failed to increment match count", zap.Int("alert_id", alert.ID), zap.Error(err))
		}
	}

	return nil
}

func (s *AlertServiceImpl) CreateAlert(ctx context.Context, alert *model.TicketAlert) (*model.TicketAlert, error) {
	if alert.AlertID == uuid.Nil {
		alert.AlertID = uuid.New()
	}
	return s.repo.Create(ctx, alert)
}

func (s *AlertServiceImpl) ListAlerts(ctx context.Context) ([]*model.TicketAlert, error) {
	return s.repo.List(ctx)
}

func (s *AlertServiceImpl) SetAlertActive(ctx context.Context, id int, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

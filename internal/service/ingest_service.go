package service

import (
	"context"
	"errors"
	"time"

	"hd-tickets/internal/model"
	"hd-tickets/internal/repository"
	apperrors "hd-tickets/pkg/app_errors"
	"hd-tickets/pkg/logger"

	"go.uber.org/zap"
)

// IngestResult summarizes one ingestion batch.
type IngestResult struct {
	TotalFound int `json:"total_found"`
	Saved      int `json:"saved"`
	Updated    int `json:"updated"`
	HighDemand int `json:"high_demand"`
}

// IngestService deduplicates scraped records into persisted tickets by the
// (platform, external_id) identity.
type IngestService interface {
	// Ingest upserts one scraped record and reports whether a new row was
	// created. Re-ingesting an unchanged record is a no-op beyond the
	// last_updated_at touch.
	Ingest(ctx context.Context, data model.ScrapedTicketData) (*model.ScrapedTicket, bool, error)
	// IngestBatch persists a whole scrape result; individual record failures
	// are logged and skipped.
	IngestBatch(ctx context.Context, records []model.ScrapedTicketData) (IngestResult, error)
	Trending(ctx context.Context, keyword string, limit int) ([]*model.ScrapedTicket, error)
	BestDeals(ctx context.Context, limit int) ([]*model.ScrapedTicket, error)
}

type IngestServiceImpl struct {
	repo repository.ScrapedTicketRepository
}

func NewIngestService(repo repository.ScrapedTicketRepository) IngestService {
	return &IngestServiceImpl{repo: repo}
}

func (s *IngestServiceImpl) Ingest(ctx context.Context, data model.ScrapedTicketData) (*model.ScrapedTicket, bool, error) {
	existing, err := s.repo.FindByIdentity(ctx, data.Platform, data.ExternalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTicketNotFound) {
			created, err := s.repo.Create(ctx, data)
			return created, true, err
		}
		return nil, false, err
	}

	if unchanged(existing, data) {
		if data.ScrapedAt.IsZero() {
			data.ScrapedAt = time.Now().UTC()
		}
		if err := s.repo.Touch(ctx, existing.ID, data.ScrapedAt); err != nil {
			return nil, false, err
		}
		existing.LastUpdatedAt = data.ScrapedAt
		return existing, false, nil
	}

	updated, err := s.repo.UpdateListing(ctx, existing.ID, data)
	return updated, false, err
}

func (s *IngestServiceImpl) IngestBatch(ctx context.Context, records []model.ScrapedTicketData) (IngestResult, error) {
	log := logger.WithComponent("ingest")
	result := IngestResult{TotalFound: len(records)}

	for _, data := range records {
		if data.ExternalID == "" {
			continue
		}

		_, created, err := s.Ingest(ctx, data)
		if err != nil {
			log.Error("failed to save scraped ticket",
				zap.String("platform", string(data.Platform)),
				zap.String("external_id", data.ExternalID),
				zap.Error(err))
			continue
		}

		if created {
			result.Saved++
		} else {
			result.Updated++
		}
		if data.IsHighDemand {
			result.HighDemand++
		}
	}

	log.Info("ticket ingestion completed",
		zap.Int("total_found", result.TotalFound),
		zap.Int("saved", result.Saved),
		zap.Int("updated", result.Updated),
		zap.Int("high_demand", result.HighDemand))

	return result, nil
}

func (s *IngestServiceImpl) Trending(ctx context.Context, keyword string, limit int) ([]*model.ScrapedTicket, error) {
	return s.repo.Trending(ctx, keyword, limit)
}

func (s *IngestServiceImpl) BestDeals(ctx context.Context, limit int) ([]*model.ScrapedTicket, error) {
	return s.repo.BestDeals(ctx, limit)
}

func unchanged(existing *model.ScrapedTicket, data model.ScrapedTicketData) bool {
	return existing.MinPrice == data.MinPrice &&
		existing.MaxPrice == data.MaxPrice &&
		existing.IsAvailable == data.IsAvailable &&
		existing.IsHighDemand == data.IsHighDemand
}

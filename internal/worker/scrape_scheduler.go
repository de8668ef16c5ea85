package worker

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"hd-tickets/internal/cache"
	"hd-tickets/internal/model"
	"hd-tickets/internal/scraper"
	"hd-tickets/internal/service"
	apperrors "hd-tickets/pkg/app_errors"
	"hd-tickets/pkg/logger"

	"go.uber.org/zap"
)

// ScrapeScheduler manages recurring scrape jobs. Job metadata lives in the
// cache under scraping_<hex> ids so an operator can inspect it; run bookkeeping
// stays in memory since a missed tick after a restart only delays one cycle.
type ScrapeScheduler interface {
	Start(ctx context.Context) error
	ScheduleRecurring(ctx context.Context, keywords string, opts model.SearchOptions, intervalMinutes int) (string, error)
	UpdateScheduled(ctx context.Context, jobID, keywords string, opts model.SearchOptions, intervalMinutes int) (bool, error)
	CancelScheduled(ctx context.Context, jobID string) (bool, error)
	GetScheduled(ctx context.Context, jobID string) (cache.ScrapeSchedule, error)
}

type ScrapeSchedulerImpl struct {
	cache        cache.SearchCacheManager
	orchestrator scraper.Orchestrator
	ingest       service.IngestService
	scheduleTTL  time.Duration
	tick         time.Duration

	mu      sync.Mutex
	jobs    map[string]struct{}
	lastRun map[string]time.Time
}

func NewScrapeScheduler(
	cacheManager cache.SearchCacheManager,
	orchestrator scraper.Orchestrator,
	ingest service.IngestService,
	scheduleTTL time.Duration,
) ScrapeScheduler {
	return &ScrapeSchedulerImpl{
		cache:        cacheManager,
		orchestrator: orchestrator,
		ingest:       ingest,
		scheduleTTL:  scheduleTTL,
		tick:         time.Minute,
		jobs:         make(map[string]struct{}),
		lastRun:      make(map[string]time.Time),
	}
}

func (s *ScrapeSchedulerImpl) ScheduleRecurring(ctx context.Context, keywords string, opts model.SearchOptions, intervalMinutes int) (string, error) {
	if intervalMinutes < 1 {
		return "", fmt.Errorf("scrape interval must be at least one minute, got %d", intervalMinutes)
	}

	jobID := newJobID()
	now := time.Now().UTC()
	schedule := cache.ScrapeSchedule{
		JobID:           jobID,
		Keywords:        keywords,
		Options:         opts,
		IntervalMinutes: intervalMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.cache.PutSchedule(ctx, jobID, schedule, s.scheduleTTL); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.jobs[jobID] = struct{}{}
	s.mu.Unlock()

	logger.WithComponent("scrape-scheduler").Info("recurring scrape scheduled",
		zap.String("job_id", jobID),
		zap.String("keywords", keywords),
		zap.Int("interval_minutes", intervalMinutes))
	return jobID, nil
}

func (s *ScrapeSchedulerImpl) UpdateScheduled(ctx context.Context, jobID, keywords string, opts model.SearchOptions, intervalMinutes int) (bool, error) {
	existing, err := s.cache.GetSchedule(ctx, jobID)
	if err != nil {
		if errors.Is(err, apperrors.ErrScheduleNotFound) {
			return false, nil
		}
		return false, err
	}

	existing.Keywords = keywords
	existing.Options = opts
	if intervalMinutes >= 1 {
		existing.IntervalMinutes = intervalMinutes
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.cache.PutSchedule(ctx, jobID, existing, s.scheduleTTL); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ScrapeSchedulerImpl) CancelScheduled(ctx context.Context, jobID string) (bool, error) {
	deleted, err := s.cache.DeleteSchedule(ctx, jobID)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	delete(s.jobs, jobID)
	delete(s.lastRun, jobID)
	s.mu.Unlock()

	return deleted, nil
}

func (s *ScrapeSchedulerImpl) GetScheduled(ctx context.Context, jobID string) (cache.ScrapeSchedule, error) {
	return s.cache.GetSchedule(ctx, jobID)
}

func (s *ScrapeSchedulerImpl) Start(ctx context.Context) error {
	go func() {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.runDue(ctx, now.UTC())
			}
		}
	}()
	return nil
}

func (s *ScrapeSchedulerImpl) runDue(ctx context.Context, now time.Time) {
	log := logger.WithComponent("scrape-scheduler")

	s.mu.Lock()
	due := make([]string, 0, len(s.jobs))
	for jobID := range s.jobs {
		last, ran := s.lastRun[jobID]
		if !ran {
			due = append(due, jobID)
			continue
		}
		// interval is checked against the cached schedule below; a stale
		// in-memory guess here only costs one extra GetSchedule call
		if now.Sub(last) >= time.Minute {
			due = append(due, jobID)
		}
	}
	s.mu.Unlock()

	for _, jobID := range due {
		schedule, err := s.cache.GetSchedule(ctx, jobID)
		if err != nil {
			if errors.Is(err, apperrors.ErrScheduleNotFound) {
				// expired from cache, stop tracking it
				s.mu.Lock()
				delete(s.jobs, jobID)
				delete(s.lastRun, jobID)
				s.mu.Unlock()
				continue
			}
			log.Error("failed to load schedule", zap.String("job_id", jobID), zap.Error(err))
			continue
		}

		s.mu.Lock()
		last, ran := s.lastRun[jobID]
		dueNow := !ran || now.Sub(last) >= time.Duration(schedule.IntervalMinutes)*time.Minute
		if dueNow {
			s.lastRun[jobID] = now
		}
		s.mu.Unlock()
		if !dueNow {
			continue
		}

		s.runJob(ctx, schedule)
	}
}

func (s *ScrapeSchedulerImpl) runJob(ctx context.Context, schedule cache.ScrapeSchedule) {
	log := logger.WithComponent("scrape-scheduler")

	results, err := s.orchestrator.SearchTickets(ctx, schedule.Keywords, schedule.Options)
	if err != nil {
		log.Error("scheduled scrape failed",
			zap.String("job_id", schedule.JobID),
			zap.Error(err))
		return
	}

	for platform, tickets := range results {
		summary, err := s.ingest.IngestBatch(ctx, tickets)
		if err != nil {
			log.Error("scheduled ingest failed",
				zap.String("job_id", schedule.JobID),
				zap.String("platform", string(platform)),
				zap.Error(err))
			continue
		}
		log.Info("scheduled scrape completed",
			zap.String("job_id", schedule.JobID),
			zap.String("platform", string(platform)),
			zap.Int("found", summary.TotalFound),
			zap.Int("saved", summary.Saved),
			zap.Int("updated", summary.Updated))
	}
}

func newJobID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("job id entropy: %v", err))
	}
	return "scraping_" + hex.EncodeToString(buf)
}

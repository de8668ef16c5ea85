package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hd-tickets/internal/cache"
	"hd-tickets/internal/model"
	"hd-tickets/internal/platform"
	"hd-tickets/monitoring"
	apperrors "hd-tickets/pkg/app_errors"
	"hd-tickets/pkg/logger"

	"go.uber.org/zap"
)

// PlatformStats is a point-in-time snapshot of one platform's scrape counters.
type PlatformStats struct {
	Enabled       bool       `json:"enabled"`
	Requests      int64      `json:"requests"`
	Failures      int64      `json:"failures"`
	TicketsFound  int64      `json:"tickets_found"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
	LastFailureAt *time.Time `json:"last_failure_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
}

type Statistics struct {
	Platforms     map[model.Platform]PlatformStats `json:"platforms"`
	TotalRequests int64                            `json:"total_requests"`
	TotalFailures int64                            `json:"total_failures"`
	TotalTickets  int64                            `json:"total_tickets"`
	Healthy       bool                             `json:"healthy"`
}

type Orchestrator interface {
	// SearchTickets fans out to the requested (default: all enabled)
	// platforms. One platform failing yields an empty slice for that
	// platform only; the others still return results.
	SearchTickets(ctx context.Context, keywords string, opts model.SearchOptions) (map[model.Platform][]model.ScrapedTicketData, error)
	// ScrapePlatform queries a single platform and surfaces its error.
	// Fails fast with ErrPlatformNotEnabled for unknown or disabled platforms.
	ScrapePlatform(ctx context.Context, p model.Platform, keywords string, opts model.SearchOptions) ([]model.ScrapedTicketData, error)
	AvailablePlatforms() []model.Platform
	EnablePlatform(p model.Platform) error
	DisablePlatform(p model.Platform) error
	Statistics() Statistics
}

type OrchestratorImpl struct {
	clients  map[model.Platform]platform.Client
	cache    cache.SearchCacheManager
	cacheTTL time.Duration

	mu      sync.RWMutex
	enabled map[model.Platform]bool
	stats   map[model.Platform]*PlatformStats
}

func NewOrchestrator(clients []platform.Client, cacheManager cache.SearchCacheManager, cacheTTL time.Duration) Orchestrator {
	o := &OrchestratorImpl{
		clients:  make(map[model.Platform]platform.Client, len(clients)),
		cache:    cacheManager,
		cacheTTL: cacheTTL,
		enabled:  make(map[model.Platform]bool, len(clients)),
		stats:    make(map[model.Platform]*PlatformStats, len(clients)),
	}
	for _, c := range clients {
		p := c.Platform()
		o.clients[p] = c
		o.enabled[p] = true
		o.stats[p] = &PlatformStats{Enabled: true}
	}
	return o
}

func (o *OrchestratorImpl) SearchTickets(ctx context.Context, keywords string, opts model.SearchOptions) (map[model.Platform][]model.ScrapedTicketData, error) {
	targets, err := o.resolveTargets(opts.Platforms)
	if err != nil {
		return nil, err
	}

	log := logger.WithComponent("scraper")

	results := make(map[model.Platform][]model.ScrapedTicketData, len(targets))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, p := range targets {
		wg.Add(1)
		go func(p model.Platform) {
			defer wg.Done()

			tickets, err := o.scrapeOne(ctx, p, keywords, opts)
			if err != nil {
				// Per-platform failures never abort the other platforms.
				log.Warn("platform scrape failed",
					zap.String("platform", string(p)),
					zap.String("keywords", keywords),
					zap.Error(err))
				tickets = []model.ScrapedTicketData{}
			}

			mu.Lock()
			results[p] = tickets
			mu.Unlock()
		}(p)
	}

	wg.Wait()
	return results, nil
}

func (o *OrchestratorImpl) ScrapePlatform(ctx context.Context, p model.Platform, keywords string, opts model.SearchOptions) ([]model.ScrapedTicketData, error) {
	if !o.isEnabled(p) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrPlatformNotEnabled, p)
	}
	return o.scrapeOne(ctx, p, keywords, opts)
}

// scrapeOne checks the cache, then hits the platform client. Successful
// non-empty responses are cached; errors are recorded and returned.
func (o *OrchestratorImpl) scrapeOne(ctx context.Context, p model.Platform, keywords string, opts model.SearchOptions) ([]model.ScrapedTicketData, error) {
	log := logger.WithComponent("scraper")

	if cached, found, err := o.cache.GetSearch(ctx, p, keywords, opts); err != nil {
		log.Warn("search cache read failed", zap.String("platform", string(p)), zap.Error(err))
	} else if found {
		return cached, nil
	}

	client, ok := o.clients[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrPlatformNotEnabled, p)
	}

	start := time.Now()
	tickets, err := client.Search(ctx, keywords, opts)
	monitoring.ScrapeDuration.WithLabelValues(string(p)).Observe(time.Since(start).Seconds())

	if err != nil {
		monitoring.ScrapeRequests.WithLabelValues(string(p), "error").Inc()
		o.recordFailure(p, err)
		return nil, err
	}

	monitoring.ScrapeRequests.WithLabelValues(string(p), "ok").Inc()
	monitoring.TicketsScraped.WithLabelValues(string(p)).Add(float64(len(tickets)))
	o.recordSuccess(p, len(tickets))

	if len(tickets) > 0 {
		if err := o.cache.PutSearch(ctx, p, keywords, opts, tickets, o.cacheTTL); err != nil {
			log.Warn("search cache write failed", zap.String("platform", string(p)), zap.Error(err))
		}
	}

	return tickets, nil
}

func (o *OrchestratorImpl) AvailablePlatforms() []model.Platform {
	o.mu.RLock()
	defer o.mu.RUnlock()

	platforms := make([]model.Platform, 0, len(o.enabled))
	for _, p := range model.AllPlatforms() {
		if o.enabled[p] {
			platforms = append(platforms, p)
		}
	}
	return platforms
}

func (o *OrchestratorImpl) EnablePlatform(p model.Platform) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.clients[p]; !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrPlatformNotEnabled, p)
	}
	o.enabled[p] = true
	o.stats[p].Enabled = true
	return nil
}

func (o *OrchestratorImpl) DisablePlatform(p model.Platform) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.clients[p]; !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrPlatformNotEnabled, p)
	}
	o.enabled[p] = false
	o.stats[p].Enabled = false
	return nil
}

func (o *OrchestratorImpl) Statistics() Statistics {
	o.mu.RLock()
	defer o.mu.RUnlock()

	snapshot := Statistics{
		Platforms: make(map[model.Platform]PlatformStats, len(o.stats)),
	}
	anyEnabled := false
	for p, s := range o.stats {
		snapshot.Platforms[p] = *s
		snapshot.TotalRequests += s.Requests
		snapshot.TotalFailures += s.Failures
		snapshot.TotalTickets += s.TicketsFound
		if s.Enabled {
			anyEnabled = true
		}
	}
	// Healthy as long as something is enabled and the last outcome of every
	// enabled platform was not a failure.
	snapshot.Healthy = anyEnabled
	for _, s := range snapshot.Platforms {
		if !s.Enabled {
			continue
		}
		if s.LastFailureAt != nil && (s.LastSuccessAt == nil || s.LastFailureAt.After(*s.LastSuccessAt)) {
			snapshot.Healthy = false
			break
		}
	}
	return snapshot
}

func (o *OrchestratorImpl) resolveTargets(requested []model.Platform) ([]model.Platform, error) {
	if len(requested) == 0 {
		return o.AvailablePlatforms(), nil
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	targets := make([]model.Platform, 0, len(requested))
	for _, p := range requested {
		if !o.enabled[p] {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrPlatformNotEnabled, p)
		}
		targets = append(targets, p)
	}
	return targets, nil
}

func (o *OrchestratorImpl) isEnabled(p model.Platform) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.enabled[p]
}

func (o *OrchestratorImpl) recordSuccess(p model.Platform, count int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.stats[p]
	now := time.Now().UTC()
	s.Requests++
	s.TicketsFound += int64(count)
	s.LastSuccessAt = &now
}

func (o *OrchestratorImpl) recordFailure(p model.Platform, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.stats[p]
	now := time.Now().UTC()
	s.Requests++
	s.Failures++
	s.LastFailureAt = &now
	s.LastError = err.Error()
}

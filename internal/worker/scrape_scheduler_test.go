package worker

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"hd-tickets/internal/cache"
	"hd-tickets/internal/model"
	"hd-tickets/internal/scraper"
	"hd-tickets/internal/service"
	apperrors "hd-tickets/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScheduleCache keeps schedules in a map; search caching is unused here.
type fakeScheduleCache struct {
	mu        sync.Mutex
	schedules map[string]cache.ScrapeSchedule
}

func newFakeScheduleCache() *fakeScheduleCache {
	return &fakeScheduleCache{schedules: make(map[string]cache.ScrapeSchedule)}
}

func (c *fakeScheduleCache) GetSearch(context.Context, model.Platform, string, model.SearchOptions) ([]model.ScrapedTicketData, bool, error) {
	return nil, false, nil
}

func (c *fakeScheduleCache) PutSearch(context.Context, model.Platform, string, model.SearchOptions, []model.ScrapedTicketData, time.Duration) error {
	return nil
}

func (c *fakeScheduleCache) ForgetSearch(context.Context, model.Platform, string, model.SearchOptions) error {
	return nil
}

func (c *fakeScheduleCache) PutSchedule(_ context.Context, jobID string, schedule cache.ScrapeSchedule, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedules[jobID] = schedule
	return nil
}

func (c *fakeScheduleCache) GetSchedule(_ context.Context, jobID string) (cache.ScrapeSchedule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	schedule, ok := c.schedules[jobID]
	if !ok {
		return cache.ScrapeSchedule{}, apperrors.ErrScheduleNotFound
	}
	return schedule, nil
}

func (c *fakeScheduleCache) DeleteSchedule(_ context.Context, jobID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.schedules[jobID]
	delete(c.schedules, jobID)
	return ok, nil
}

type fakeOrchestrator struct {
	mu       sync.Mutex
	searches int
	results  map[model.Platform][]model.ScrapedTicketData
}

func (o *fakeOrchestrator) SearchTickets(context.Context, string, model.SearchOptions) (map[model.Platform][]model.ScrapedTicketData, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.searches++
	return o.results, nil
}

func (o *fakeOrchestrator) ScrapePlatform(context.Context, model.Platform, string, model.SearchOptions) ([]model.ScrapedTicketData, error) {
	return nil, nil
}

func (o *fakeOrchestrator) AvailablePlatforms() []model.Platform { return model.AllPlatforms() }
func (o *fakeOrchestrator) EnablePlatform(model.Platform) error  { return nil }
func (o *fakeOrchestrator) DisablePlatform(model.Platform) error { return nil }
func (o *fakeOrchestrator) Statistics() scraper.Statistics       { return scraper.Statistics{} }

type fakeIngest struct {
	mu      sync.Mutex
	batches [][]model.ScrapedTicketData
}

func (i *fakeIngest) Ingest(context.Context, model.ScrapedTicketData) (*model.ScrapedTicket, bool, error) {
	return nil, false, nil
}

func (i *fakeIngest) IngestBatch(_ context.Context, records []model.ScrapedTicketData) (service.IngestResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.batches = append(i.batches, records)
	return service.IngestResult{TotalFound: len(records), Saved: len(records)}, nil
}

func (i *fakeIngest) Trending(context.Context, string, int) ([]*model.ScrapedTicket, error) {
	return nil, nil
}

func (i *fakeIngest) BestDeals(context.Context, int) ([]*model.ScrapedTicket, error) {
	return nil, nil
}

func newSchedulerFixture() (*fakeScheduleCache, *fakeOrchestrator, *fakeIngest, *ScrapeSchedulerImpl) {
	cacheManager := newFakeScheduleCache()
	orchestrator := &fakeOrchestrator{results: map[model.Platform][]model.ScrapedTicketData{
		model.PlatformStubHub: {{Platform: model.PlatformStubHub, ExternalID: "sh-1"}},
	}}
	ingest := &fakeIngest{}
	scheduler := NewScrapeScheduler(cacheManager, orchestrator, ingest, 24*time.Hour).(*ScrapeSchedulerImpl)
	return cacheManager, orchestrator, ingest, scheduler
}

func TestScrapeScheduler_ScheduleRecurring(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a job with a scraping_ id", func(t *testing.T) {
		cacheManager, _, _, scheduler := newSchedulerFixture()

		jobID, err := scheduler.ScheduleRecurring(ctx, "Manchester United", model.SearchOptions{}, 30)
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^scraping_[0-9a-f]{16}$`), jobID)

		stored, err := cacheManager.GetSchedule(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, "Manchester United", stored.Keywords)
		assert.Equal(t, 30, stored.IntervalMinutes)
	})

	t.Run("rejects sub-minute intervals", func(t *testing.T) {
		_, _, _, scheduler := newSchedulerFixture()
		_, err := scheduler.ScheduleRecurring(ctx, "x", model.SearchOptions{}, 0)
		assert.Error(t, err)
	})
}

func TestScrapeScheduler_UpdateAndCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("update existing job", func(t *testing.T) {
		cacheManager, _, _, scheduler := newSchedulerFixture()
		jobID, err := scheduler.ScheduleRecurring(ctx, "Manchester United", model.SearchOptions{}, 30)
		require.NoError(t, err)

		updated, err := scheduler.UpdateScheduled(ctx, jobID, "Liverpool", model.SearchOptions{}, 60)
		require.NoError(t, err)
		assert.True(t, updated)

		stored, err := cacheManager.GetSchedule(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, "Liverpool", stored.Keywords)
		assert.Equal(t, 60, stored.IntervalMinutes)
	})

	t.Run("update unknown job returns false", func(t *testing.T) {
		_, _, _, scheduler := newSchedulerFixture()
		updated, err := scheduler.UpdateScheduled(ctx, "scraping_ffffffffffffffff", "x", model.SearchOptions{}, 10)
		require.NoError(t, err)
		assert.False(t, updated)
	})

	t.Run("cancel reports whether the job existed", func(t *testing.T) {
		_, _, _, scheduler := newSchedulerFixture()
		jobID, err := scheduler.ScheduleRecurring(ctx, "x", model.SearchOptions{}, 15)
		require.NoError(t, err)

		cancelled, err := scheduler.CancelScheduled(ctx, jobID)
		require.NoError(t, err)
		assert.True(t, cancelled)

		cancelled, err = scheduler.CancelScheduled(ctx, jobID)
		require.NoError(t, err)
		assert.False(t, cancelled)
	})
}

func TestScrapeScheduler_RunDue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("new job runs on the first tick and ingests results", func(t *testing.T) {
		_, orchestrator, ingest, scheduler := newSchedulerFixture()
		_, err := scheduler.ScheduleRecurring(ctx, "Manchester United", model.SearchOptions{}, 30)
		require.NoError(t, err)

		scheduler.runDue(ctx, now)
		assert.Equal(t, 1, orchestrator.searches)
		require.Len(t, ingest.batches, 1)
	})

	t.Run("job does not run again before its interval", func(t *testing.T) {
		_, orchestrator, _, scheduler := newSchedulerFixture()
		_, err := scheduler.ScheduleRecurring(ctx, "Manchester United", model.SearchOptions{}, 30)
		require.NoError(t, err)

		scheduler.runDue(ctx, now)
		scheduler.runDue(ctx, now.Add(10*time.Minute))
		assert.Equal(t, 1, orchestrator.searches)

		scheduler.runDue(ctx, now.Add(31*time.Minute))
		assert.Equal(t, 2, orchestrator.searches)
	})

	t.Run("cancelled job stops running", func(t *testing.T) {
		_, orchestrator, _, scheduler := newSchedulerFixture()
		jobID, err := scheduler.ScheduleRecurring(ctx, "Manchester United", model.SearchOptions{}, 30)
		require.NoError(t, err)

		_, err = scheduler.CancelScheduled(ctx, jobID)
		require.NoError(t, err)

		scheduler.runDue(ctx, now)
		assert.Zero(t, orchestrator.searches)
	})
}

package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"hd-tickets/internal/model"
	apperrors "hd-tickets/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

// SearchCacheManager caches per-platform scrape results and the metadata of
// recurring scrape jobs.
type SearchCacheManager interface {
	// GetSearch returns the cached results for one platform search, if any.
	GetSearch(ctx context.Context, platform model.Platform, keyword string, opts model.SearchOptions) ([]model.ScrapedTicketData, bool, error)
	// PutSearch stores results with a TTL. SetNX semantics: when two
	// scheduler runs race, the first write wins and the TTL is not reset.
	PutSearch(ctx context.Context, platform model.Platform, keyword string, opts model.SearchOptions, tickets []model.ScrapedTicketData, ttl time.Duration) error
	// ForgetSearch drops one cached search.
	ForgetSearch(ctx context.Context, platform model.Platform, keyword string, opts model.SearchOptions) error

	// Schedule metadata, keyed scraping_schedule_<jobID>.
	PutSchedule(ctx context.Context, jobID string, schedule ScrapeSchedule, ttl time.Duration) error
	GetSchedule(ctx context.Context, jobID string) (ScrapeSchedule, error)
	DeleteSchedule(ctx context.Context, jobID string) (bool, error)
}

// ScrapeSchedule is the persisted shape of a recurring scrape job.
type ScrapeSchedule struct {
	JobID           string              `json:"job_id"`
	Keywords        string              `json:"keywords"`
	Options         model.SearchOptions `json:"options"`
	IntervalMinutes int                 `json:"interval_minutes"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type SearchCacheManagerImpl struct {
	client *redis.Client
}

func NewSearchCacheManager(client *redis.Client) SearchCacheManager {
	return &SearchCacheManagerImpl{
		client: client,
	}
}

// searchKey normalizes keyword and options into a stable cache key.
func (m *SearchCacheManagerImpl) searchKey(platform model.Platform, keyword string, opts model.SearchOptions) string {
	platforms := make([]string, 0, len(opts.Platforms))
	for _, p := range opts.Platforms {
		platforms = append(platforms, string(p))
	}
	sort.Strings(platforms)

	raw := fmt.Sprintf("%s|%.2f|%s|%s",
		strings.ToLower(strings.TrimSpace(keyword)),
		opts.MaxPrice,
		strings.ToLower(opts.Currency),
		strings.Join(platforms, ","),
	)
	sum := md5.Sum([]byte(raw))
	return fmt.Sprintf("tickets:%s:%s", platform, hex.EncodeToString(sum[:]))
}

func (m *SearchCacheManagerImpl) scheduleKey(jobID string) string {
	return fmt.Sprintf("scraping_schedule_%s", jobID)
}

func (m *SearchCacheManagerImpl) GetSearch(ctx context.Context, platform model.Platform, keyword string, opts model.SearchOptions) ([]model.ScrapedTicketData, bool, error) {
	key := m.searchKey(platform, keyword, opts)
	val, err := m.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var tickets []model.ScrapedTicketData
	if err := json.Unmarshal([]byte(val), &tickets); err != nil {
		return nil, false, fmt.Errorf("invalid cached search entry: %w", err)
	}
	return tickets, true, nil
}

func (m *SearchCacheManagerImpl) PutSearch(ctx context.Context, platform model.Platform, keyword string, opts model.SearchOptions, tickets []model.ScrapedTicketData, ttl time.Duration) error {
	key := m.searchKey(platform, keyword, opts)
	payload, err := json.Marshal(tickets)
	if err != nil {
		return fmt.Errorf("marshal search results: %w", err)
	}
	return m.client.SetNX(ctx, key, payload, ttl).Err()
}

func (m *SearchCacheManagerImpl) ForgetSearch(ctx context.Context, platform model.Platform, keyword string, opts model.SearchOptions) error {
	return m.client.Del(ctx, m.searchKey(platform, keyword, opts)).Err()
}

func (m *SearchCacheManagerImpl) PutSchedule(ctx context.Context, jobID string, schedule ScrapeSchedule, ttl time.Duration) error {
	payload, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}
	return m.client.Set(ctx, m.scheduleKey(jobID), payload, ttl).Err()
}

func (m *SearchCacheManagerImpl) GetSchedule(ctx context.Context, jobID string) (ScrapeSchedule, error) {
	val, err := m.client.Get(ctx, m.scheduleKey(jobID)).Result()
	if err == redis.Nil {
		return ScrapeSchedule{}, apperrors.ErrScheduleNotFound
	}
	if err != nil {
		return ScrapeSchedule{}, err
	}

	var schedule ScrapeSchedule
	if err := json.Unmarshal([]byte(val), &schedule); err != nil {
		return ScrapeSchedule{}, fmt.Errorf("invalid schedule entry: %w", err)
	}
	return schedule, nil
}

func (m *SearchCacheManagerImpl) DeleteSchedule(ctx context.Context, jobID string) (bool, error) {
	n, err := m.client.Del(ctx, m.scheduleKey(jobID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

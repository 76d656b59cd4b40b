package trending

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"

	"mediapedia/internal/metrics"
	"mediapedia/models"
	"mediapedia/services/cache"
	"mediapedia/services/metadata"
)

// LastRefreshSetting holds the unix time of the last successful refresh.
const LastRefreshSetting = "last_trending_refresh"

const (
	DefaultRefreshInterval = 24 * time.Hour
	DefaultCheckInterval   = time.Hour
)

// ErrKeyMissing is returned by Refresh when no catalog key is configured. Callers treat
// it as a silent skip.
var ErrKeyMissing = errors.New("trending refresh skipped: tmdb key not configured")

// Source supplies the current trending list.
type Source interface {
	Trending(ctx context.Context) mo.Result[[]models.Title]
}

// KeySource reports the configured provider keys.
type KeySource interface {
	GetKeys() (models.APIKeys, error)
}

// Store is the part of the cache the refresher writes.
type Store interface {
	GetTitle(ctx context.Context, id string) (models.Title, error)
	UpsertTitle(ctx context.Context, t models.Title) error
	ReplaceTrendingSeeds(ctx context.Context, seeds []models.TrendingSeed) error
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}

type Options struct {
	RefreshInterval time.Duration
	CheckInterval   time.Duration
	TTL             time.Duration
}

// Service keeps the trending seed table and the matching title records current.
type Service struct {
	store  Store
	source Source
	keys   KeySource
	opts   Options
	now    func() time.Time

	refreshMu sync.Mutex

	hookMu    sync.RWMutex
	onRefresh func([]models.TrendingSeed)

	// Runtime state
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewService(store Store, source Source, keys KeySource, opts Options) *Service {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = DefaultCheckInterval
	}
	if opts.TTL <= 0 {
		opts.TTL = metadata.DefaultTTL
	}
	return &Service{
		store:  store,
		source: source,
		keys:   keys,
		opts:   opts,
		now:    time.Now,
	}
}

// OnRefresh registers fn to run after every successful refresh.
func (s *Service) OnRefresh(fn func([]models.TrendingSeed)) {
	s.hookMu.Lock()
	s.onRefresh = fn
	s.hookMu.Unlock()
}

// Refresh replaces the trending seeds with the provider's current list and upserts a
// title record for every item. Existing records keep any field the trending payload
// leaves empty.
func (s *Service) Refresh(ctx context.Context) ([]models.TrendingSeed, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	keys, err := s.keys.GetKeys()
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}
	if strings.TrimSpace(keys.TMDBKey) == "" {
		return nil, ErrKeyMissing
	}

	items, err := s.source.Trending(ctx).Get()
	if err != nil {
		metrics.TrendingRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch trending: %w", err)
	}

	now := s.now().Unix()
	expiresAt := now + int64(s.opts.TTL/time.Second)

	seeds := lo.Map(items, func(item models.Title, _ int) models.TrendingSeed {
		return models.TrendingSeed{
			ID:         item.ID,
			Title:      item.Title,
			Year:       item.Year,
			Type:       item.Type,
			PosterURL:  item.PosterURL,
			TMDBRank:   item.TMDBRank,
			Popularity: item.Popularity,
		}
	})
	if err := s.store.ReplaceTrendingSeeds(ctx, seeds); err != nil {
		metrics.TrendingRefreshesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	for _, item := range items {
		record := item
		if existing, err := s.store.GetTitle(ctx, item.ID); err == nil {
			record = mergeTrending(existing, item)
		} else if !errors.Is(err, cache.ErrNotFound) {
			log.Printf("[trending] read %s failed: %v", item.ID, err)
		}
		record.ExpiresAt = &expiresAt
		record.TMDBTrendingAt = &now
		if err := s.store.UpsertTitle(ctx, record); err != nil {
			log.Printf("[trending] upsert %s failed: %v", item.ID, err)
		}
	}

	if err := s.store.SetSetting(ctx, LastRefreshSetting, strconv.FormatInt(now, 10)); err != nil {
		log.Printf("[trending] record refresh time failed: %v", err)
	}
	metrics.TrendingRefreshesTotal.WithLabelValues("ok").Inc()
	log.Printf("[trending] refreshed %d titles", len(seeds))

	s.hookMu.RLock()
	hook := s.onRefresh
	s.hookMu.RUnlock()
	if hook != nil {
		hook(seeds)
	}
	return seeds, nil
}

// Due reports whether the last refresh is missing, unreadable or older than the
// refresh interval.
func (s *Service) Due(ctx context.Context) bool {
	raw, ok, err := s.store.GetSetting(ctx, LastRefreshSetting)
	if err != nil {
		log.Printf("[trending] read last refresh failed: %v", err)
		return true
	}
	if !ok {
		return true
	}
	last, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return true
	}
	return s.now().Unix()-last > int64(s.opts.RefreshInterval/time.Second)
}

// RefreshIfDue runs Refresh when Due reports true. It returns false when nothing ran.
func (s *Service) RefreshIfDue(ctx context.Context) (bool, error) {
	if !s.Due(ctx) {
		return false, nil
	}
	if _, err := s.Refresh(ctx); err != nil {
		if errors.Is(err, ErrKeyMissing) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Start begins the background refresh loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.loop(loopCtx)

	log.Printf("[trending] refresher started (check every %s)", s.opts.CheckInterval)
	return nil
}

// Stop cancels the loop and waits for an in-flight refresh, bounded by ctx.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[trending] refresher stopped")
	case <-ctx.Done():
		log.Println("[trending] refresher stopped (timeout)")
	}

	s.running = false
	return nil
}

func (s *Service) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RefreshIfDue(ctx); err != nil {
				log.Printf("[trending] scheduled refresh failed: %v", err)
			}
		}
	}
}

func mergeTrending(existing, item models.Title) models.Title {
	out := existing
	out.TMDBID = metadata.PreferPtr(item.TMDBID, existing.TMDBID)
	out.Title = metadata.PreferString(item.Title, existing.Title)
	out.Year = metadata.PreferString(item.Year, existing.Year)
	out.Type = metadata.PreferType(item.Type, existing.Type)
	out.PosterURL = metadata.PreferString(item.PosterURL, existing.PosterURL)
	out.Popularity = metadata.PreferPtr(item.Popularity, existing.Popularity)
	out.TMDBRank = item.TMDBRank
	if out.Source == "" {
		out.Source = item.Source
	}
	return out
}

// Package launcher holds the quick-launcher application state and every action that
// mutates it: query input, selection, detail reconciliation, trending, keys and
// preferences.
package launcher

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/samber/lo"

	"mediapedia/internal/metrics"
	"mediapedia/models"
	"mediapedia/services/metadata"
	"mediapedia/services/search"
	"mediapedia/services/trending"
	"mediapedia/utils/query"
)

// DetailErrorMessage is the only user-visible detail failure.
const DetailErrorMessage = "Unable to load details."

type View string

const (
	ViewList   View = "list"
	ViewDetail View = "detail"
)

// KeyStore persists the provider keys.
type KeyStore interface {
	GetKeys() (models.APIKeys, error)
	SetKeys(omdbKey, tmdbKey string) error
	ResetKeys() error
}

// Store is the cache surface the launcher reads and writes.
type Store interface {
	GetTitle(ctx context.Context, id string) (models.Title, error)
	UpsertTitle(ctx context.Context, t models.Title) error
	ListTitles(ctx context.Context) ([]models.Title, error)
	ListTrendingSeeds(ctx context.Context) ([]models.TrendingSeed, error)
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
	AddRecentSearch(ctx context.Context, query string) error
	ListRecentSearches(ctx context.Context) ([]string, error)
}

// Reconciler produces the canonical detail record for a title.
type Reconciler interface {
	Reconcile(ctx context.Context, targetID string, opts metadata.ReconcileOptions) metadata.Result
}

// TrendingRefresher maintains the trending seed table.
type TrendingRefresher interface {
	Refresh(ctx context.Context) ([]models.TrendingSeed, error)
	RefreshIfDue(ctx context.Context) (bool, error)
	OnRefresh(fn func([]models.TrendingSeed))
}

type Options struct {
	Debounce       time.Duration
	Limit          int
	FuzzyThreshold float64
	TTL            time.Duration
	// RemoteTimeout bounds a debounced remote suggestion fetch.
	RemoteTimeout time.Duration
}

// State is a point-in-time copy of the launcher state.
type State struct {
	Query          string                `json:"query"`
	Suggestions    []models.Suggestion   `json:"suggestions"`
	SelectionIndex int                   `json:"selectionIndex"`
	SelectedID     string                `json:"selectedId,omitempty"`
	View           View                  `json:"view"`
	Detail         *models.Title         `json:"detail"`
	DetailLoading  bool                  `json:"detailLoading"`
	ErrorMessage   string                `json:"errorMessage,omitempty"`
	Trending       []models.TrendingSeed `json:"trending"`
	LastRefresh    *int64                `json:"lastTrendingRefresh,omitempty"`
	Preferences    models.Preferences    `json:"preferences"`
	HasOMDbKey     bool                  `json:"hasOmdbKey"`
	HasTMDBKey     bool                  `json:"hasTmdbKey"`
	KeysValid      bool                  `json:"keysValid"`
	KeyErrors      *models.KeyErrors     `json:"keyErrors,omitempty"`
	IndexedTitles  int                   `json:"indexedTitles"`
}

// Service is the launcher's single state container. All mutation goes through its
// methods; network and storage calls run without the state lock held.
type Service struct {
	store      Store
	keyStore   KeyStore
	omdb       metadata.OMDbProvider
	tmdb       metadata.TMDBProvider
	reconciler Reconciler
	trending   TrendingRefresher
	opts       Options
	now        func() time.Time

	baseCtx context.Context
	cancel  context.CancelFunc

	mu         sync.Mutex
	state      State
	keys       models.APIKeys
	titles     []models.Title
	index      *search.Index
	generation uint64
	timers     sync.WaitGroup
}

func NewService(
	store Store,
	keyStore KeyStore,
	omdb metadata.OMDbProvider,
	tmdb metadata.TMDBProvider,
	reconciler Reconciler,
	refresher TrendingRefresher,
	opts Options,
) *Service {
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	if opts.Limit <= 0 {
		opts.Limit = search.DefaultLimit
	}
	if opts.FuzzyThreshold <= 0 || opts.FuzzyThreshold > 1 {
		opts.FuzzyThreshold = search.DefaultThreshold
	}
	if opts.TTL <= 0 {
		opts.TTL = metadata.DefaultTTL
	}
	if opts.RemoteTimeout <= 0 {
		opts.RemoteTimeout = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		store:      store,
		keyStore:   keyStore,
		omdb:       omdb,
		tmdb:       tmdb,
		reconciler: reconciler,
		trending:   refresher,
		opts:       opts,
		now:        time.Now,
		baseCtx:    ctx,
		cancel:     cancel,
		state: State{
			View:        ViewList,
			Preferences: models.DefaultPreferences(),
		},
	}
	if refresher != nil {
		refresher.OnRefresh(s.applyTrending)
	}
	return s
}

// Init loads keys, preferences and cached titles, builds the index, refreshes
// trending when due and validates stored keys.
func (s *Service) Init(ctx context.Context) error {
	keys, err := s.keyStore.GetKeys()
	if err != nil {
		log.Printf("[launcher] load keys failed: %v", err)
		keys = models.APIKeys{}
	}
	s.omdb.SetKey(keys.OMDbKey)
	s.tmdb.SetKey(keys.TMDBKey)

	prefs := s.loadPreferences(ctx)

	seeds, err := s.store.ListTrendingSeeds(ctx)
	if err != nil {
		return err
	}
	var lastRefresh *int64
	if raw, ok, err := s.store.GetSetting(ctx, trending.LastRefreshSetting); err == nil && ok {
		if n, ok := query.ParseInt(raw); ok {
			lastRefresh = lo.ToPtr(int64(n))
		}
	}

	s.mu.Lock()
	s.keys = keys
	s.state.HasOMDbKey = keys.OMDbKey != ""
	s.state.HasTMDBKey = keys.TMDBKey != ""
	s.state.Preferences = prefs
	s.state.Trending = seeds
	s.state.LastRefresh = lastRefresh
	s.mu.Unlock()

	if err := s.rebuildIndex(ctx); err != nil {
		return err
	}

	if s.trending != nil {
		if _, err := s.trending.RefreshIfDue(ctx); err != nil {
			log.Printf("[launcher] trending refresh failed: %v", err)
		}
	}

	if !keys.Complete() {
		s.setKeysValid(false)
		return nil
	}
	valid, _ := s.TestKeys(ctx, keys)
	s.setKeysValid(valid)
	if valid && s.currentView() == ViewDetail {
		s.RefreshDetails(ctx, "")
	}
	return nil
}

// Close stops pending debounced work.
func (s *Service) Close() {
	s.cancel()
	s.timers.Wait()
}

// Snapshot returns a copy of the current state.
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.state
	out.Suggestions = append([]models.Suggestion(nil), s.state.Suggestions...)
	out.Trending = append([]models.TrendingSeed(nil), s.state.Trending...)
	if s.state.Detail != nil {
		detail := *s.state.Detail
		out.Detail = &detail
	}
	if s.state.KeyErrors != nil {
		ke := *s.state.KeyErrors
		out.KeyErrors = &ke
	}
	out.Preferences.CardCollapse = lo.Assign(s.state.Preferences.CardCollapse)
	out.IndexedTitles = s.index.Len()
	return out
}

// TrendingSuggestions projects the current trending seeds to suggestion rows.
func (s *Service) TrendingSuggestions() []models.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return search.TrendingSuggestions(s.state.Trending)
}

// RecentSearches lists the stored recent remote queries, newest first.
func (s *Service) RecentSearches(ctx context.Context) ([]string, error) {
	return s.store.ListRecentSearches(ctx)
}

// RefreshTrending fetches the trending list now. A missing TMDB key is a silent skip.
func (s *Service) RefreshTrending(ctx context.Context) error {
	if s.trending == nil {
		return nil
	}
	if _, err := s.trending.Refresh(ctx); err != nil && !errors.Is(err, trending.ErrKeyMissing) {
		return err
	}
	return nil
}

// applyTrending runs after every successful trending refresh.
func (s *Service) applyTrending(seeds []models.TrendingSeed) {
	now := s.now().Unix()
	s.mu.Lock()
	s.state.Trending = seeds
	s.state.LastRefresh = &now
	s.mu.Unlock()

	if err := s.rebuildIndex(s.baseCtx); err != nil {
		log.Printf("[launcher] index rebuild after trending failed: %v", err)
	}
}

// rebuildIndex reloads every cached title, rebuilds the fuzzy index and recomputes
// local suggestions.
func (s *Service) rebuildIndex(ctx context.Context) error {
	titles, err := s.store.ListTitles(ctx)
	if err != nil {
		return err
	}
	index := search.BuildIndexWithThreshold(titles, s.opts.FuzzyThreshold)
	metrics.IndexRebuildsTotal.Inc()
	metrics.IndexedTitles.Set(float64(len(titles)))

	s.mu.Lock()
	s.titles = titles
	s.index = index
	s.updateLocalSuggestionsLocked()
	s.mu.Unlock()
	return nil
}

func (s *Service) setKeysValid(valid bool) {
	s.mu.Lock()
	s.state.KeysValid = valid
	s.mu.Unlock()
}

func (s *Service) currentView() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.View
}

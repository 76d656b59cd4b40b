package metadata

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/sourcegraph/conc"

	"mediapedia/internal/metrics"
	"mediapedia/models"
	"mediapedia/services/cache"
)

// DefaultTTL is how long a reconciled record stays fresh.
const DefaultTTL = 40 * 24 * time.Hour

var errSkipped = errors.New("not attempted")

// Service reconciles detail for one title from the cache, OMDb and TMDB into a single
// canonical record and persists it.
type Service struct {
	store TitleStore
	omdb  OMDbProvider
	tmdb  TMDBProvider
	ttl   time.Duration
	now   func() time.Time
}

func NewService(store TitleStore, omdb OMDbProvider, tmdb TMDBProvider, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		store: store,
		omdb:  omdb,
		tmdb:  tmdb,
		ttl:   ttl,
		now:   time.Now,
	}
}

// ReconcileOptions customise a single reconciliation.
type ReconcileOptions struct {
	// WatchRegion selects the region for watch providers. Empty skips the lookup.
	WatchRegion string
	// OnCached receives the cached record, if any, before any provider call is made.
	OnCached func(models.Title)
}

// Result is the outcome of a reconciliation. Title is nil when nothing could be
// produced: no cache entry and no provider succeeded.
type Result struct {
	RunID  string
	Title  *models.Title
	OMDbOK bool
	TMDBOK bool
	Cached bool
}

// Reconcile fetches and merges detail for targetID, which is either an IMDb id or a
// synthetic "tmdb:<n>" id. Provider failures never surface as errors; they only leave
// the corresponding OK flag false. The persisted record may be stored under a different
// id than targetID once an IMDb id is resolved.
func (s *Service) Reconcile(ctx context.Context, targetID string, opts ReconcileOptions) Result {
	runID := uuid.NewString()
	res := Result{RunID: runID}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return res
	}

	var cached *models.Title
	if t, err := s.store.GetTitle(ctx, targetID); err == nil {
		cached = &t
		res.Cached = true
		if opts.OnCached != nil {
			interim := t
			interim.FallbackLabel = models.Ptr(models.FallbackCachedData)
			opts.OnCached(interim)
		}
	} else if !errors.Is(err, cache.ErrNotFound) {
		log.Printf("[metadata] run=%s cache read for %s failed: %v", shortRun(runID), targetID, err)
	}

	ids := ResolveIDs(targetID, cached)
	kind := KindMovie
	if cached != nil {
		kind = KindFor(cached.Type)
	}
	expiresAt := s.now().Add(s.ttl).Unix()

	// The id-based detail calls are independent, so they run together.
	omdbRes := mo.Err[models.Title](errSkipped)
	tmdbRes := mo.Err[models.Title](errSkipped)
	providersRes := mo.Err[models.WatchProviders](errSkipped)

	var wg conc.WaitGroup
	if ids.IMDBID != "" {
		wg.Go(func() {
			omdbRes = s.omdb.Details(ctx, ids.IMDBID)
		})
	}
	if ids.TMDBID != nil {
		tmdbID := *ids.TMDBID
		wg.Go(func() {
			tmdbRes = s.tmdb.Details(ctx, tmdbID, kind)
		})
		if region := strings.TrimSpace(opts.WatchRegion); region != "" {
			wg.Go(func() {
				providersRes = s.tmdb.WatchProviders(ctx, tmdbID, kind, region)
			})
		}
	}
	wg.Wait()

	merged := cached

	if data, err := omdbRes.Get(); err == nil {
		res.OMDbOK = true
		m := ApplyOMDb(merged, data, ids, expiresAt)
		merged = &m
	} else if !errors.Is(err, errSkipped) {
		log.Printf("[metadata] run=%s omdb detail %s failed: %v", shortRun(runID), ids.IMDBID, err)
	}

	if data, err := tmdbRes.Get(); err == nil {
		res.TMDBOK = true
		if ids.Resolved == "" {
			if imdbID, err := s.tmdb.ExternalIMDBID(ctx, *ids.TMDBID, kind).Get(); err == nil && imdbID != "" {
				ids.Resolved = imdbID
				log.Printf("[metadata] run=%s resolved %s -> %s", shortRun(runID), targetID, imdbID)
			} else if err != nil {
				log.Printf("[metadata] run=%s tmdb external ids %d failed: %v", shortRun(runID), *ids.TMDBID, err)
			}
		}
		var providers *models.WatchProviders
		if wp, err := providersRes.Get(); err == nil {
			providers = &wp
		}
		m := ApplyTMDB(merged, data, providers, ids, expiresAt)
		merged = &m
	} else if !errors.Is(err, errSkipped) {
		log.Printf("[metadata] run=%s tmdb detail %d failed: %v", shortRun(runID), *ids.TMDBID, err)
	}

	// A native id learned from the cross reference gets its own OMDb attempt.
	if !res.OMDbOK && ids.Resolved != "" && ids.Resolved != ids.IMDBID {
		if data, err := s.omdb.Details(ctx, ids.Resolved).Get(); err == nil {
			res.OMDbOK = true
			m := ApplyOMDb(merged, data, ids, expiresAt)
			merged = &m
		} else {
			log.Printf("[metadata] run=%s omdb detail %s failed: %v", shortRun(runID), ids.Resolved, err)
		}
	}

	if !res.OMDbOK {
		if data, ok := s.lookupByTitle(ctx, runID, ids, merged, cached); ok {
			res.OMDbOK = true
			if ids.Known() == "" {
				ids.Resolved = strings.TrimSpace(data.IMDBID)
			}
			m := ApplyOMDb(merged, data, ids, expiresAt)
			merged = &m
		}
	}

	if merged == nil {
		metrics.ReconciliationsTotal.WithLabelValues("failed").Inc()
		log.Printf("[metadata] run=%s no data for %s", shortRun(runID), targetID)
		return res
	}

	merged.FallbackLabel = FallbackLabel(res.OMDbOK, res.TMDBOK, cached != nil)
	if err := s.store.UpsertTitle(ctx, *merged); err != nil {
		log.Printf("[metadata] run=%s persist %s failed: %v", shortRun(runID), merged.ID, err)
	} else if _, synthetic := ParseSyntheticID(targetID); synthetic && merged.ID != targetID {
		// The resolved record replaces the synthetic one so the index holds one entry per title.
		if err := s.store.DeleteTitle(ctx, targetID); err != nil {
			log.Printf("[metadata] run=%s drop %s failed: %v", shortRun(runID), targetID, err)
		}
	}

	outcome := "fresh"
	if merged.FallbackLabel != nil {
		outcome = *merged.FallbackLabel
	}
	metrics.ReconciliationsTotal.WithLabelValues(outcome).Inc()
	log.Printf("[metadata] run=%s reconciled %s as %s (omdb=%v tmdb=%v cached=%v)",
		shortRun(runID), targetID, merged.ID, res.OMDbOK, res.TMDBOK, res.Cached)

	res.Title = merged
	return res
}

// lookupByTitle is the last resort when no id-based OMDb call succeeded. A match naming
// a different native id than the one already known is a different title and is dropped.
func (s *Service) lookupByTitle(ctx context.Context, runID string, ids IDs, merged, cached *models.Title) (models.Title, bool) {
	var title, year string
	var kind models.TitleType
	if merged != nil {
		title, year = merged.Title, merged.Year
		if merged.Type == models.TitleTypeMovie || merged.Type == models.TitleTypeSeries {
			kind = merged.Type
		}
	}
	if cached != nil {
		title = firstNonEmpty(title, cached.Title)
		year = firstNonEmpty(year, cached.Year)
	}
	if strings.TrimSpace(title) == "" {
		return models.Title{}, false
	}

	data, err := s.omdb.DetailsByTitle(ctx, title, year, kind).Get()
	if err != nil {
		log.Printf("[metadata] run=%s omdb title lookup %q (%s) failed: %v", shortRun(runID), title, year, err)
		return models.Title{}, false
	}
	if ids.ConflictsWith(data.IMDBID) {
		log.Printf("[metadata] run=%s omdb title lookup %q matched %s, expected %s; ignoring",
			shortRun(runID), title, data.IMDBID, ids.Known())
		return models.Title{}, false
	}
	return data, true
}

func shortRun(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}

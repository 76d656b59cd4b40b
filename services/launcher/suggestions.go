package launcher

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"mediapedia/models"
	"mediapedia/services/cache"
	"mediapedia/services/metadata"
	"mediapedia/services/search"
	"mediapedia/utils/query"
)

// SetQuery stores the query, recomputes local suggestions immediately and schedules a
// debounced remote fetch. A fetch whose generation has been superseded by a later
// SetQuery before its delay elapses never runs.
func (s *Service) SetQuery(text string) []models.Suggestion {
	s.mu.Lock()
	s.state.Query = text
	s.updateLocalSuggestionsLocked()
	s.generation++
	gen := s.generation
	suggestions := append([]models.Suggestion(nil), s.state.Suggestions...)
	s.mu.Unlock()

	s.scheduleRemoteFetch(gen)
	return suggestions
}

func (s *Service) scheduleRemoteFetch(gen uint64) {
	s.timers.Add(1)
	go func() {
		defer s.timers.Done()
		timer := time.NewTimer(s.opts.Debounce)
		defer timer.Stop()
		select {
		case <-s.baseCtx.Done():
			return
		case <-timer.C:
		}
		if !s.isCurrentGeneration(gen) {
			return
		}
		ctx, cancel := context.WithTimeout(s.baseCtx, s.opts.RemoteTimeout)
		defer cancel()
		if err := s.FetchRemoteSuggestions(ctx); err != nil {
			log.Printf("[launcher] remote suggestions failed: %v", err)
		}
	}()
}

func (s *Service) isCurrentGeneration(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}

// Suggestions returns the current suggestion list.
func (s *Service) Suggestions() []models.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Suggestion(nil), s.state.Suggestions...)
}

// SetSelectionIndex moves the highlight, clamped to the suggestion list.
func (s *Service) SetSelectionIndex(i int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectionIndex = clampSelection(i, len(s.state.Suggestions))
	return s.state.SelectionIndex
}

// MoveSelection shifts the highlight by delta, clamped to the suggestion list.
func (s *Service) MoveSelection(delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectionIndex = clampSelection(s.state.SelectionIndex+delta, len(s.state.Suggestions))
	return s.state.SelectionIndex
}

func clampSelection(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// updateLocalSuggestionsLocked recomputes suggestions from the in-memory index.
// Caller holds s.mu.
func (s *Service) updateLocalSuggestionsLocked() {
	parsed := query.Parse(strings.TrimSpace(s.state.Query))
	s.state.Suggestions = search.Suggest(s.index, parsed, s.titles, s.opts.Limit)
	s.state.SelectionIndex = clampSelection(s.state.SelectionIndex, len(s.state.Suggestions))
}

// FetchRemoteSuggestions searches both providers with the current query, caches the
// merged candidates and rebuilds the index. It does nothing unless the query is
// non-blank and both keys are present and validated. A failing provider contributes no
// candidates.
func (s *Service) FetchRemoteSuggestions(ctx context.Context) error {
	s.mu.Lock()
	trimmed := strings.TrimSpace(s.state.Query)
	ready := s.keys.Complete() && s.state.KeysValid
	s.mu.Unlock()
	if trimmed == "" || !ready {
		return nil
	}

	var omdbResults, tmdbResults []models.Title
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		results, err := s.omdb.Search(gctx, trimmed).Get()
		if err != nil {
			log.Printf("[launcher] omdb search %q failed: %v", trimmed, err)
			return nil
		}
		omdbResults = results
		return nil
	})
	g.Go(func() error {
		results, err := s.tmdb.Search(gctx, trimmed).Get()
		if err != nil {
			log.Printf("[launcher] tmdb search %q failed: %v", trimmed, err)
			return nil
		}
		tmdbResults = results
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	merged := MergeSearchResults(append(omdbResults, tmdbResults...))
	expiresAt := s.now().Add(s.opts.TTL).Unix()
	for _, item := range merged {
		record := item
		record.ID = canonicalID(item)
		if existing, err := s.store.GetTitle(ctx, record.ID); err == nil {
			record = overlaySearchResult(existing, record)
		} else if !errors.Is(err, cache.ErrNotFound) {
			log.Printf("[launcher] read %s failed: %v", record.ID, err)
		}
		record.ExpiresAt = &expiresAt
		if err := s.store.UpsertTitle(ctx, record); err != nil {
			log.Printf("[launcher] cache %s failed: %v", record.ID, err)
		}
	}

	if err := s.store.AddRecentSearch(ctx, trimmed); err != nil {
		log.Printf("[launcher] record recent search failed: %v", err)
	}
	return s.rebuildIndex(ctx)
}

// MergeSearchResults de-duplicates provider candidates by native id, falling back to
// the candidate id. The first occurrence wins; later duplicates only fill its missing
// poster, popularity and ids. Output keeps first-seen order.
func MergeSearchResults(items []models.Title) []models.Title {
	order := make([]string, 0, len(items))
	byID := make(map[string]models.Title, len(items))
	for _, item := range items {
		key := canonicalID(item)
		current, ok := byID[key]
		if !ok {
			order = append(order, key)
			byID[key] = item
			continue
		}
		current.PosterURL = metadata.PreferString(current.PosterURL, item.PosterURL)
		current.Popularity = metadata.PreferPtr(current.Popularity, item.Popularity)
		current.TMDBID = metadata.PreferPtr(current.TMDBID, item.TMDBID)
		current.IMDBID = metadata.PreferString(current.IMDBID, item.IMDBID)
		byID[key] = current
	}
	return lo.Map(order, func(key string, _ int) models.Title { return byID[key] })
}

func canonicalID(t models.Title) string {
	if strings.TrimSpace(t.IMDBID) != "" {
		return t.IMDBID
	}
	return t.ID
}

// overlaySearchResult lays a lightweight search candidate over a cached record without
// blanking anything the record already knows.
func overlaySearchResult(existing, item models.Title) models.Title {
	out := existing
	out.IMDBID = metadata.PreferString(item.IMDBID, existing.IMDBID)
	out.TMDBID = metadata.PreferPtr(item.TMDBID, existing.TMDBID)
	out.Title = metadata.PreferString(item.Title, existing.Title)
	out.Year = metadata.PreferString(item.Year, existing.Year)
	out.Type = metadata.PreferType(item.Type, existing.Type)
	out.PosterURL = metadata.PreferString(existing.PosterURL, item.PosterURL)
	out.Popularity = metadata.PreferPtr(item.Popularity, existing.Popularity)
	if out.Source == "" {
		out.Source = item.Source
	}
	return out
}

package launcher

import (
	"context"
	"errors"
	"log"
	"strings"

	"mediapedia/models"
	"mediapedia/services/cache"
	"mediapedia/services/metadata"
	"mediapedia/utils/links"
)

// SelectSuggestion switches to the detail view for id, showing any cached record at
// once, and reconciles it.
func (s *Service) SelectSuggestion(ctx context.Context, id string) State {
	id = strings.TrimSpace(id)
	if id == "" {
		return s.Snapshot()
	}

	var existing *models.Title
	if t, err := s.store.GetTitle(ctx, id); err == nil {
		existing = &t
	} else if !errors.Is(err, cache.ErrNotFound) {
		log.Printf("[launcher] read %s failed: %v", id, err)
	}

	s.mu.Lock()
	s.state.SelectedID = id
	s.state.View = ViewDetail
	s.state.Detail = existing
	s.state.DetailLoading = true
	s.state.ErrorMessage = ""
	s.mu.Unlock()

	s.RefreshDetails(ctx, id)
	return s.Snapshot()
}

// BackToList leaves the detail view.
func (s *Service) BackToList() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.View = ViewList
	s.state.DetailLoading = false
}

// RefreshDetails reconciles id, or the current selection when id is empty. Both keys
// must be present. The result only replaces the displayed detail while the same title
// is still selected.
func (s *Service) RefreshDetails(ctx context.Context, id string) {
	s.mu.Lock()
	target := strings.TrimSpace(id)
	if target == "" {
		target = s.state.SelectedID
	}
	keysReady := s.keys.Complete()
	region := s.state.Preferences.WatchRegion
	if target == "" || !keysReady {
		s.state.DetailLoading = false
		s.mu.Unlock()
		return
	}
	s.state.DetailLoading = true
	s.mu.Unlock()

	res := s.reconciler.Reconcile(ctx, target, metadata.ReconcileOptions{
		WatchRegion: region,
		OnCached: func(t models.Title) {
			s.mu.Lock()
			if s.state.SelectedID == target {
				s.state.Detail = &t
			}
			s.mu.Unlock()
		},
	})

	s.mu.Lock()
	current := s.state.SelectedID == target
	if res.Title == nil {
		if current {
			s.state.DetailLoading = false
			s.state.ErrorMessage = DetailErrorMessage
		}
		s.mu.Unlock()
		return
	}
	if current {
		detail := *res.Title
		s.state.Detail = &detail
		s.state.SelectedID = detail.ID
		s.state.DetailLoading = false
		s.state.ErrorMessage = ""
	}
	s.mu.Unlock()

	if err := s.rebuildIndex(ctx); err != nil {
		log.Printf("[launcher] index rebuild after %s failed: %v", target, err)
	}
}

// OpenTarget resolves the external page for the current detail or highlighted
// suggestion according to the link-target preference. It returns "" when the needed
// title or IMDb id is unknown.
func (s *Service) OpenTarget(ctx context.Context) string {
	s.mu.Lock()
	var selected *models.Suggestion
	if i := s.state.SelectionIndex; i >= 0 && i < len(s.state.Suggestions) {
		sg := s.state.Suggestions[i]
		selected = &sg
	}
	targetID := s.state.SelectedID
	if targetID == "" && selected != nil {
		targetID = selected.ID
	}
	var detail *models.Title
	if s.state.Detail != nil {
		d := *s.state.Detail
		detail = &d
	}
	linkTarget := s.state.Preferences.LinkTarget
	s.mu.Unlock()

	if targetID == "" {
		return ""
	}
	var cached *models.Title
	if t, err := s.store.GetTitle(ctx, targetID); err == nil {
		cached = &t
	}

	var title, imdbID string
	if detail != nil {
		title, imdbID = detail.Title, detail.IMDBID
	}
	if cached != nil {
		title = firstNonEmpty(title, cached.Title)
		imdbID = firstNonEmpty(imdbID, cached.IMDBID)
	}
	if selected != nil {
		title = firstNonEmpty(title, selected.Title)
	}
	if imdbID == "" && strings.HasPrefix(targetID, "tt") {
		imdbID = targetID
	}

	switch linkTarget {
	case models.LinkTargetRotten:
		if title == "" {
			return ""
		}
		return links.RottenTomatoes(title)
	case models.LinkTargetMetacritic:
		if title == "" {
			return ""
		}
		return links.Metacritic(title)
	default:
		if imdbID == "" {
			return ""
		}
		return links.IMDb(imdbID)
	}
}

// DetailLinks lists every external link known for the displayed detail.
func (s *Service) DetailLinks() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.state.Detail
	if d == nil || d.Title == "" {
		return map[string]string{}
	}
	out := map[string]string{
		"wikipedia":      links.Wikipedia(d.Title, d.Year),
		"rottenTomatoes": links.RottenTomatoes(d.Title),
		"metacritic":     links.Metacritic(d.Title),
		"trailer":        links.Trailer(d.Title, d.Year),
	}
	if d.IMDBID != "" {
		out["imdb"] = links.IMDb(d.IMDBID)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

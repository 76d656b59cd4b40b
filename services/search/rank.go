package search

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"mediapedia/models"
)

// DefaultLimit is the number of suggestions shown when no limit is given.
const DefaultLimit = 5

// Score weights. Changing any of these changes suggestion order.
const (
	popularityDivisor = 100.0
	votesDivisor      = 100000.0
	rankCeiling       = 50.0
)

// MatchScore is 3 when title starts with text, 2 when it contains it and 1 otherwise.
// An empty text scores 1.
func MatchScore(title, text string) float64 {
	lowerTitle := strings.ToLower(title)
	lowerText := strings.ToLower(text)
	switch {
	case lowerText == "":
		return 1
	case strings.HasPrefix(lowerTitle, lowerText):
		return 3
	case strings.Contains(lowerTitle, lowerText):
		return 2
	default:
		return 1
	}
}

// CompositeScore blends text relevance with popularity, votes and trending rank so a
// well-known title with a loose match can outrank an obscure exact one.
func CompositeScore(title models.Title, text string) float64 {
	score := MatchScore(title.Title, text)
	if title.Popularity != nil {
		score += *title.Popularity / popularityDivisor
	}
	if title.Votes != nil {
		score += float64(*title.Votes) / votesDivisor
	}
	if title.TMDBRank != nil && *title.TMDBRank != 0 {
		score += (rankCeiling - float64(*title.TMDBRank)) / rankCeiling
	}
	return score
}

// Rank orders candidates by composite score, highest first, keeping input order on
// ties, and returns at most limit suggestions. A non-positive limit means DefaultLimit.
func Rank(text string, candidates []models.Title, limit int) []models.Suggestion {
	if limit <= 0 {
		limit = DefaultLimit
	}

	type scored struct {
		title models.Title
		score float64
	}
	items := lo.Map(candidates, func(t models.Title, _ int) scored {
		return scored{title: t, score: CompositeScore(t, text)}
	})
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].score > items[b].score
	})
	if len(items) > limit {
		items = items[:limit]
	}

	return lo.Map(items, func(s scored, _ int) models.Suggestion {
		return MapSuggestion(s.title)
	})
}

// MapSuggestion projects a title onto the list row shape.
func MapSuggestion(t models.Title) models.Suggestion {
	return models.Suggestion{
		ID:         t.ID,
		Title:      t.Title,
		Year:       t.Year,
		Type:       t.Type,
		Runtime:    t.Runtime,
		Rating:     t.Rating,
		PosterURL:  t.PosterURL,
		Popularity: t.Popularity,
		Votes:      t.Votes,
		TMDBRank:   t.TMDBRank,
	}
}

// TrendingSuggestions projects trending seeds, already in rank order, for the home panel.
func TrendingSuggestions(seeds []models.TrendingSeed) []models.Suggestion {
	return lo.Map(seeds, func(s models.TrendingSeed, _ int) models.Suggestion {
		return models.Suggestion{
			ID:         s.ID,
			Title:      s.Title,
			Year:       s.Year,
			Type:       s.Type,
			PosterURL:  s.PosterURL,
			Popularity: s.Popularity,
			TMDBRank:   s.TMDBRank,
		}
	})
}

// Package search narrows, filters and ranks locally cached titles for the launcher.
package search

import (
	"github.com/samber/lo"

	"mediapedia/models"
)

// Narrow applies the fuzzy index to the free text. With empty free text or no index
// every title passes through unchanged.
func Narrow(index *Index, parsed models.ParsedQuery, titles []models.Title) []models.Title {
	if parsed.FreeText == "" || index == nil {
		return titles
	}
	return lo.Map(index.Search(parsed.FreeText), func(h Hit, _ int) models.Title {
		return h.Title
	})
}

// Suggest runs fuzzy narrowing, then filters, then ranking.
func Suggest(index *Index, parsed models.ParsedQuery, titles []models.Title, limit int) []models.Suggestion {
	candidates := Narrow(index, parsed, titles)
	candidates = ApplyFilters(candidates, parsed.Filters)
	return Rank(parsed.FreeText, candidates, limit)
}

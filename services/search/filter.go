package search

import (
	"strings"

	"mediapedia/models"
	"mediapedia/utils/query"
)

// ApplyFilters keeps the titles that satisfy every filter that is set.
func ApplyFilters(titles []models.Title, filters models.QueryFilters) []models.Title {
	out := make([]models.Title, 0, len(titles))
	for _, title := range titles {
		if Matches(title, filters) {
			out = append(out, title)
		}
	}
	return out
}

// Matches reports whether a single title passes filters.
func Matches(title models.Title, filters models.QueryFilters) bool {
	if filters.Type != "" && !matchesType(title, filters.Type) {
		return false
	}

	if filters.YearExact != nil {
		year, ok := query.ParseInt(title.Year)
		if !ok || year != *filters.YearExact {
			return false
		}
	}

	if r := filters.YearRange; r != nil {
		year, ok := query.ParseInt(title.Year)
		if !ok || year < r.Start || year > r.End {
			return false
		}
	}

	// Unknown country or language passes.
	if filters.Country != "" && !containsFold(title.Country, filters.Country) {
		return false
	}
	if filters.Lang != "" && !containsFold(title.Language, filters.Lang) {
		return false
	}

	return true
}

// matchesType compares types exactly, except that a documentary filter also accepts
// titles with no genres or with a documentary genre.
func matchesType(title models.Title, want models.TitleType) bool {
	if want != models.TitleTypeDocumentary {
		return title.Type == want
	}
	if title.Type == models.TitleTypeDocumentary {
		return true
	}
	genres := strings.ToLower(strings.Join(title.Genres, " "))
	if strings.TrimSpace(genres) == "" {
		return true
	}
	return strings.Contains(genres, "documentary")
}

func containsFold(field, value string) bool {
	field = strings.ToLower(strings.TrimSpace(field))
	if field == "" {
		return true
	}
	return strings.Contains(field, strings.ToLower(value))
}

package search

import (
	"sort"

	"mediapedia/models"
	"mediapedia/utils/similarity"
)

// DefaultThreshold is the loosest score a hit may have (0 exact, 1 anything).
const DefaultThreshold = 0.35

// Hit is one fuzzy match with its score, lower is better.
type Hit struct {
	Title models.Title
	Score float64
}

// Index is an immutable fuzzy index over cached title names. It is rebuilt from the
// full title set whenever the cache changes and never patched.
type Index struct {
	titles    []models.Title
	threshold float64
}

// BuildIndex indexes titles with the default threshold.
func BuildIndex(titles []models.Title) *Index {
	return BuildIndexWithThreshold(titles, DefaultThreshold)
}

// BuildIndexWithThreshold indexes titles with a custom threshold. Values outside
// 0..1 fall back to the default.
func BuildIndexWithThreshold(titles []models.Title, threshold float64) *Index {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	copied := make([]models.Title, len(titles))
	copy(copied, titles)
	return &Index{titles: copied, threshold: threshold}
}

// Len returns the number of indexed titles.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.titles)
}

// Search returns titles whose name matches text within the threshold, best first.
// Equal scores keep index order.
func (i *Index) Search(text string) []Hit {
	if i == nil || text == "" {
		return nil
	}

	hits := make([]Hit, 0)
	for _, title := range i.titles {
		score := similarity.Score(text, title.Title)
		if score <= i.threshold {
			hits = append(hits, Hit{Title: title, Score: score})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score < hits[b].Score
	})
	return hits
}

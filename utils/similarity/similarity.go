package similarity

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mozillazg/go-unidecode"
)

// locationDistance is how many characters into the text a match may start before
// its position alone costs a full point of score.
const locationDistance = 100

// Score measures how well pattern matches somewhere inside text, on a 0..1 scale
// where 0 is a perfect match at the start of the text and 1 is no match at all.
//
// Both sides are normalized first. The score of the best approximate occurrence is
// its edit count divided by the pattern length, plus a small penalty for how far
// into the text it starts. A whole-string edit distance is also considered so that
// a short text can still match a longer, misspelled pattern.
func Score(pattern, text string) float64 {
	p := []rune(Normalize(pattern))
	t := []rune(Normalize(text))

	if len(p) == 0 {
		return 0
	}
	if len(t) == 0 {
		return 1
	}
	if string(p) == string(t) {
		return 0
	}

	best := bestWindowScore(p, t)

	whole := float64(fuzzy.LevenshteinDistance(string(p), string(t))) / float64(max(len(p), len(t)))
	if whole < best {
		best = whole
	}
	if best > 1 {
		return 1
	}
	return best
}

// bestWindowScore runs an approximate substring search: matches may start anywhere
// in t for free, and each end column yields a candidate score.
func bestWindowScore(p, t []rune) float64 {
	m, n := len(p), len(t)
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	// starts[j] tracks where the cheapest alignment ending at column j began.
	prevStart := make([]int, n+1)
	currStart := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prevStart[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		currStart[0] = 0
		for j := 1; j <= n; j++ {
			cost := 1
			if p[i-1] == t[j-1] {
				cost = 0
			}
			sub := prev[j-1] + cost
			del := prev[j] + 1
			ins := curr[j-1] + 1

			curr[j], currStart[j] = sub, prevStart[j-1]
			if del < curr[j] {
				curr[j], currStart[j] = del, prevStart[j]
			}
			if ins < curr[j] {
				curr[j], currStart[j] = ins, currStart[j-1]
			}
		}
		prev, curr = curr, prev
		prevStart, currStart = currStart, prevStart
	}

	best := 1.0 + float64(n)/locationDistance
	for j := 1; j <= n; j++ {
		score := float64(prev[j])/float64(m) + float64(prevStart[j])/locationDistance
		if score < best {
			best = score
		}
	}
	return best
}

// Normalize transliterates to ASCII, lowercases and strips punctuation so that
// "Amélie" matches "amelie" and "Law & Order" matches "law and order".
func Normalize(s string) string {
	s = unidecode.Unidecode(s)
	s = strings.ReplaceAll(s, "&", " and ")

	var result strings.Builder
	result.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		} else if unicode.IsSpace(r) || r == '.' || r == '-' || r == '_' || r == ':' {
			result.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(result.String()), " ")
}

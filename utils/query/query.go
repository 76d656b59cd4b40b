// Package query turns a raw launcher search string into free text plus operator filters.
//
// Recognised operators are type:, year: (exact or start-end), country: and lang:.
// Anything that is not a recognised operator with a usable value stays in the free text,
// so parsing never fails.
package query

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mediapedia/models"
)

var typeValues = map[string]models.TitleType{
	"movie":       models.TitleTypeMovie,
	"series":      models.TitleTypeSeries,
	"documentary": models.TitleTypeDocumentary,
}

var fold = cases.Lower(language.Und)

// Parse splits raw into free text and filters. A later occurrence of an operator
// overwrites an earlier one.
func Parse(raw string) models.ParsedQuery {
	tokens := Tokenize(strings.TrimSpace(raw))
	filters := models.QueryFilters{}
	free := make([]string, 0, len(tokens))

	for _, token := range tokens {
		if !applyOperator(token, &filters) {
			free = append(free, token)
		}
	}

	return models.ParsedQuery{
		FreeText: strings.TrimSpace(strings.Join(free, " ")),
		Filters:  filters,
	}
}

// Tokenize splits on whitespace outside double quotes. Quote characters are dropped.
func Tokenize(input string) []string {
	var (
		tokens  []string
		current strings.Builder
		inQuote bool
	)
	for _, r := range input {
		if r == '"' {
			inQuote = !inQuote
			continue
		}
		if !inQuote && unicode.IsSpace(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			continue
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// applyOperator records token in filters and reports whether it was consumed.
func applyOperator(token string, filters *models.QueryFilters) bool {
	parts := strings.Split(token, ":")
	if len(parts) < 2 || parts[1] == "" {
		return false
	}
	key := fold.String(parts[0])
	value := fold.String(parts[1])

	switch key {
	case "type":
		if t, ok := typeValues[value]; ok {
			filters.Type = t
			return true
		}
	case "year":
		if strings.Contains(value, "-") {
			bounds := strings.Split(value, "-")
			start, okStart := ParseInt(bounds[0])
			end, okEnd := ParseInt(bounds[1])
			if okStart && okEnd {
				filters.YearRange = &models.YearRange{Start: start, End: end}
				return true
			}
		}
		if year, ok := ParseInt(value); ok {
			filters.YearExact = &year
			return true
		}
	case "country":
		filters.Country = value
		return true
	case "lang":
		filters.Lang = value
		return true
	}
	return false
}

// ParseInt reads an optionally signed run of leading digits, ignoring surrounding
// whitespace and anything after the digits, so "2010s" and "2008–2013" both yield
// their first year.
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// Package links builds external reference URLs for a title.
package links

import (
	"net/url"
	"strings"
)

// escape encodes s as a single URL component with spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func IMDb(imdbID string) string {
	return "https://www.imdb.com/title/" + escape(imdbID) + "/"
}

// Wikipedia searches for "title (year)", or the bare title when year is empty.
func Wikipedia(title, year string) string {
	query := title
	if year != "" {
		query += " (" + year + ")"
	}
	return "https://en.wikipedia.org/w/index.php?search=" + escape(query)
}

func RottenTomatoes(title string) string {
	return "https://www.rottentomatoes.com/search?search=" + escape(title)
}

func Metacritic(title string) string {
	return "https://www.metacritic.com/search/" + escape(title) + "/"
}

// Trailer searches YouTube for the title's official trailer.
func Trailer(title, year string) string {
	query := title
	if year != "" {
		query += " " + year
	}
	return "https://www.youtube.com/results?search_query=" + escape(query+" official trailer")
}

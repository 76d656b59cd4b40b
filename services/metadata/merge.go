package metadata

import (
	"strings"

	"mediapedia/models"
)

// PreferString returns next unless it is blank, in which case prev is kept.
func PreferString(next, prev string) string {
	if strings.TrimSpace(next) == "" {
		return prev
	}
	return next
}

// PreferSlice returns next unless it is empty.
func PreferSlice[T any](next, prev []T) []T {
	if len(next) == 0 {
		return prev
	}
	return next
}

// PreferPtr returns next unless it is nil.
func PreferPtr[T any](next, prev *T) *T {
	if next == nil {
		return prev
	}
	return next
}

// PreferType returns next unless it is unset.
func PreferType(next, prev models.TitleType) models.TitleType {
	if next == "" {
		return prev
	}
	return next
}

// IDs carries the identifiers known for one reconciliation.
type IDs struct {
	// Target is the id the reconciliation was requested for.
	Target string
	// IMDBID is the native id known before any provider call.
	IMDBID string
	// Resolved is the native id after cross referencing; starts equal to IMDBID.
	Resolved string
	TMDBID   *int64
}

// Known returns the native id learned so far, if any.
func (ids IDs) Known() string {
	return firstNonEmpty(ids.Resolved, ids.IMDBID)
}

// ConflictsWith reports whether a provider payload names a native id other than the
// one already known.
func (ids IDs) ConflictsWith(imdbID string) bool {
	known := ids.Known()
	imdbID = strings.TrimSpace(imdbID)
	return known != "" && imdbID != "" && !strings.EqualFold(known, imdbID)
}

// ResolveIDs derives the native and TMDB ids from the target id and the cached record.
// Cached ids win over ids parsed from the target.
func ResolveIDs(targetID string, cached *models.Title) IDs {
	ids := IDs{Target: targetID}

	tmdbID, synthetic := ParseSyntheticID(targetID)
	if cached != nil && cached.TMDBID != nil {
		ids.TMDBID = cached.TMDBID
	} else if synthetic {
		ids.TMDBID = &tmdbID
	}

	if cached != nil && strings.TrimSpace(cached.IMDBID) != "" {
		ids.IMDBID = cached.IMDBID
	} else if !synthetic {
		ids.IMDBID = targetID
	}
	ids.Resolved = ids.IMDBID
	return ids
}

// ApplyOMDb merges an OMDb detail payload over base. The native id already known from
// ids or base is kept; data only supplies one when none is known. OMDb wins for every
// other field it supplies except the poster, where an existing poster is kept. Backdrop, popularity,
// trending data and watch providers always come from base.
func ApplyOMDb(base *models.Title, data models.Title, ids IDs, expiresAt int64) models.Title {
	b := models.Title{}
	if base != nil {
		b = *base
	}

	// A native id that is already known never changes.
	imdbID := firstNonEmpty(ids.Known(), b.IMDBID, data.IMDBID)
	id := firstNonEmpty(imdbID, b.ID, ids.Target)

	titleType := PreferType(data.Type, b.Type)
	if titleType == "" {
		titleType = models.TitleTypeMovie
	}

	return models.Title{
		ID:                  id,
		IMDBID:              imdbID,
		TMDBID:              PreferPtr(ids.TMDBID, b.TMDBID),
		Title:               PreferString(data.Title, b.Title),
		Year:                PreferString(data.Year, b.Year),
		Type:                titleType,
		Runtime:             PreferString(data.Runtime, b.Runtime),
		Genres:              PreferSlice(data.Genres, b.Genres),
		Plot:                PreferString(data.Plot, b.Plot),
		Cast:                PreferString(data.Cast, b.Cast),
		Director:            PreferString(data.Director, b.Director),
		Country:             PreferString(data.Country, b.Country),
		Language:            PreferString(data.Language, b.Language),
		Rating:              PreferString(data.Rating, b.Rating),
		Votes:               PreferPtr(data.Votes, b.Votes),
		RottenTomatoesScore: PreferString(data.RottenTomatoesScore, b.RottenTomatoesScore),
		MetacriticScore:     PreferString(data.MetacriticScore, b.MetacriticScore),
		OMDbRatings:         PreferSlice(data.OMDbRatings, b.OMDbRatings),
		PosterURL:           PreferString(b.PosterURL, data.PosterURL),
		BackdropURL:         b.BackdropURL,
		Popularity:          b.Popularity,
		Source:              models.SourceOMDb,
		TMDBRank:            b.TMDBRank,
		TMDBTrendingAt:      b.TMDBTrendingAt,
		ExpiresAt:           &expiresAt,
		WatchProviders:      b.WatchProviders,
	}
}

// ApplyTMDB merges a TMDB detail payload over working. TMDB wins for poster, backdrop,
// plot, genres and popularity; every other field keeps the working value and only
// falls back to TMDB when the working value is empty. A nil providers keeps the
// working record's watch providers.
func ApplyTMDB(working *models.Title, data models.Title, providers *models.WatchProviders, ids IDs, expiresAt int64) models.Title {
	w := models.Title{}
	if working != nil {
		w = *working
	}

	source := w.Source
	if source == "" {
		source = models.SourceTMDB
	}

	return models.Title{
		ID:                  firstNonEmpty(ids.Resolved, w.ID, ids.Target),
		IMDBID:              PreferString(w.IMDBID, ids.Resolved),
		TMDBID:              PreferPtr(ids.TMDBID, PreferPtr(w.TMDBID, data.TMDBID)),
		Title:               PreferString(w.Title, data.Title),
		Year:                PreferString(w.Year, data.Year),
		Type:                PreferType(w.Type, data.Type),
		Runtime:             PreferString(w.Runtime, data.Runtime),
		Genres:              PreferSlice(data.Genres, w.Genres),
		Plot:                PreferString(data.Plot, w.Plot),
		Cast:                w.Cast,
		Director:            w.Director,
		Country:             PreferString(w.Country, data.Country),
		Language:            PreferString(w.Language, data.Language),
		Rating:              w.Rating,
		Votes:               w.Votes,
		RottenTomatoesScore: w.RottenTomatoesScore,
		MetacriticScore:     w.MetacriticScore,
		OMDbRatings:         w.OMDbRatings,
		PosterURL:           PreferString(data.PosterURL, w.PosterURL),
		BackdropURL:         PreferString(data.BackdropURL, w.BackdropURL),
		Popularity:          PreferPtr(data.Popularity, w.Popularity),
		Source:              source,
		TMDBRank:            w.TMDBRank,
		TMDBTrendingAt:      w.TMDBTrendingAt,
		ExpiresAt:           &expiresAt,
		WatchProviders:      PreferPtr(providers, w.WatchProviders),
	}
}

// FallbackLabel describes which sources backed a reconciled record. Nil means fresh
// OMDb data was obtained.
func FallbackLabel(omdbOK, tmdbOK, hadCache bool) *string {
	var label string
	switch {
	case omdbOK:
		return nil
	case tmdbOK:
		label = models.FallbackTMDB
	case hadCache:
		label = models.FallbackStaleCache
	default:
		return nil
	}
	return &label
}

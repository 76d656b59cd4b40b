package models

// Core metadata structures for cached titles, trending seeds and suggestions.

type TitleType string

const (
	TitleTypeMovie       TitleType = "movie"
	TitleTypeSeries      TitleType = "series"
	TitleTypeDocumentary TitleType = "documentary"
	TitleTypeOther       TitleType = "other"
)

// Source records which provider produced the last successful write of a record.
type Source string

const (
	SourceOMDb  Source = "omdb"
	SourceTMDB  Source = "tmdb"
	SourceCache Source = "cache"
	SourceMixed Source = "mixed"
)

// Fallback labels shown next to a detail view when fresh OMDb data was not obtained.
const (
	FallbackCachedData = "Cached data"
	FallbackStaleCache = "Stale cache"
	FallbackTMDB       = "Fallback data (TMDB)"
)

// SyntheticIDPrefix marks ids for titles only known through TMDB.
const SyntheticIDPrefix = "tmdb:"

// ProviderRating is a raw {source, value} pair from the OMDb ratings array.
type ProviderRating struct {
	Source string `json:"source"`
	Value  string `json:"value"`
}

// WatchProvider is a streaming/rental/purchase offer for a title in a region.
type WatchProvider struct {
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl,omitempty"`
	Kind    string `json:"kind"` // flatrate | rent | buy
}

type WatchProviders struct {
	Region    string          `json:"region"`
	Link      string          `json:"link,omitempty"`
	Offers    []WatchProvider `json:"offers"`
	FetchedAt int64           `json:"fetchedAt"`
}

// Title is the canonical cached record for one film, series or documentary.
// Empty strings and nil pointers both mean "unknown".
type Title struct {
	ID     string `json:"id"`
	IMDBID string `json:"imdbId,omitempty"`
	TMDBID *int64 `json:"tmdbId,omitempty"`

	Title    string    `json:"title"`
	Year     string    `json:"year,omitempty"`
	Type     TitleType `json:"type"`
	Runtime  string    `json:"runtime,omitempty"`
	Genres   []string  `json:"genres,omitempty"`
	Plot     string    `json:"plot,omitempty"`
	Cast     string    `json:"cast,omitempty"`
	Director string    `json:"director,omitempty"`
	Country  string    `json:"country,omitempty"`
	Language string    `json:"language,omitempty"`

	Rating              string           `json:"rating,omitempty"`
	Votes               *int64           `json:"votes,omitempty"`
	RottenTomatoesScore string           `json:"rottenTomatoesScore,omitempty"`
	MetacriticScore     string           `json:"metacriticScore,omitempty"`
	OMDbRatings         []ProviderRating `json:"omdbRatings,omitempty"`

	PosterURL   string `json:"posterUrl,omitempty"`
	BackdropURL string `json:"backdropUrl,omitempty"`

	Popularity     *float64        `json:"popularity,omitempty"`
	Source         Source          `json:"source,omitempty"`
	TMDBRank       *int            `json:"tmdbRank,omitempty"`
	TMDBTrendingAt *int64          `json:"tmdbTrendingAt,omitempty"`
	LastUpdatedAt  *int64          `json:"lastUpdatedAt,omitempty"`
	ExpiresAt      *int64          `json:"expiresAt,omitempty"`
	FallbackLabel  *string         `json:"fallbackLabel"`
	WatchProviders *WatchProviders `json:"watchProviders,omitempty"`
}

// IsExpired reports whether the record's cache TTL has elapsed at the given unix time.
// Expired records stay usable; they are only eligible for refresh.
func (t Title) IsExpired(now int64) bool {
	return t.ExpiresAt != nil && *t.ExpiresAt < now
}

// TrendingSeed is the lightweight projection kept for the trending panel.
type TrendingSeed struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Year       string    `json:"year,omitempty"`
	Type       TitleType `json:"type"`
	PosterURL  string    `json:"posterUrl,omitempty"`
	TMDBRank   *int      `json:"tmdbRank,omitempty"`
	Popularity *float64  `json:"popularity,omitempty"`
}

// Suggestion is the read-only list row rendered for a title.
type Suggestion struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Year       string    `json:"year,omitempty"`
	Type       TitleType `json:"type"`
	Runtime    string    `json:"runtime,omitempty"`
	Rating     string    `json:"rating,omitempty"`
	PosterURL  string    `json:"posterUrl,omitempty"`
	Popularity *float64  `json:"popularity,omitempty"`
	Votes      *int64    `json:"votes,omitempty"`
	TMDBRank   *int      `json:"tmdbRank,omitempty"`
}

type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// QueryFilters holds the operators recognised in a search string. Only set keys apply.
type QueryFilters struct {
	Type      TitleType  `json:"type,omitempty"`
	YearExact *int       `json:"yearExact,omitempty"`
	YearRange *YearRange `json:"yearRange,omitempty"`
	Country   string     `json:"country,omitempty"`
	Lang      string     `json:"lang,omitempty"`
}

type ParsedQuery struct {
	FreeText string       `json:"freeText"`
	Filters  QueryFilters `json:"filters"`
}

// APIKeys holds the provider credentials.
type APIKeys struct {
	OMDbKey string `json:"omdbKey,omitempty"`
	TMDBKey string `json:"tmdbKey,omitempty"`
}

// Complete reports whether both provider keys are present.
func (k APIKeys) Complete() bool {
	return k.OMDbKey != "" && k.TMDBKey != ""
}

// KeyErrors carries per-provider validation messages.
type KeyErrors struct {
	OMDb string `json:"omdb,omitempty"`
	TMDB string `json:"tmdb,omitempty"`
}

func (e KeyErrors) Empty() bool {
	return e.OMDb == "" && e.TMDB == ""
}

// ProviderStatus is the outcome of validating one provider key.
type ProviderStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

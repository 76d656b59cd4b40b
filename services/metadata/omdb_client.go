package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/samber/mo"

	"mediapedia/models"
)

const (
	omdbBaseURL = "https://www.omdbapi.com/"
	// omdbProbeTitle is looked up to check that a key works.
	omdbProbeTitle = "Inception"
)

// OMDbClient talks to the OMDb API, the authoritative source for ratings, plot and cast
// keyed by IMDb id.
type OMDbClient struct {
	baseURL string
	http    *providerHTTP

	mu     sync.RWMutex
	apiKey string
}

func NewOMDbClient(apiKey, baseURL string, opts HTTPOptions) *OMDbClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = omdbBaseURL
	}
	return &OMDbClient{
		baseURL: baseURL,
		http:    newProviderHTTP("omdb", opts),
		apiKey:  strings.TrimSpace(apiKey),
	}
}

// SetKey swaps the key used for subsequent requests.
func (c *OMDbClient) SetKey(key string) {
	c.mu.Lock()
	c.apiKey = strings.TrimSpace(key)
	c.mu.Unlock()
}

func (c *OMDbClient) key() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

type omdbRating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

type omdbDetailResponse struct {
	Title      *string      `json:"Title"`
	Year       string       `json:"Year"`
	IMDBID     string       `json:"imdbID"`
	Type       string       `json:"Type"`
	Runtime    string       `json:"Runtime"`
	IMDBRating string       `json:"imdbRating"`
	IMDBVotes  string       `json:"imdbVotes"`
	Genre      string       `json:"Genre"`
	Plot       string       `json:"Plot"`
	Actors     string       `json:"Actors"`
	Director   string       `json:"Director"`
	Country    string       `json:"Country"`
	Language   string       `json:"Language"`
	Poster     string       `json:"Poster"`
	Ratings    []omdbRating `json:"Ratings"`
	Response   string       `json:"Response"`
	Error      string       `json:"Error"`
}

type omdbSearchResponse struct {
	Search []struct {
		Title  *string `json:"Title"`
		Year   *string `json:"Year"`
		IMDBID *string `json:"imdbID"`
		Type   *string `json:"Type"`
		Poster string  `json:"Poster"`
	} `json:"Search"`
	Response *string `json:"Response"`
	Error    string  `json:"Error"`
}

func (c *OMDbClient) get(ctx context.Context, key string, params url.Values, cacheable bool, v any, validate func() error) error {
	if key == "" {
		return ErrNotConfigured
	}
	params.Set("apikey", key)
	return c.http.getJSON(ctx, c.baseURL, params, cacheable, v, validate)
}

// ValidateKey looks up a well-known title with key.
func (c *OMDbClient) ValidateKey(ctx context.Context, key string) models.ProviderStatus {
	var resp omdbDetailResponse
	err := c.get(ctx, strings.TrimSpace(key), url.Values{"t": {omdbProbeTitle}}, false, &resp, nil)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
			return models.ProviderStatus{Message: "Invalid API key!"}
		}
		return models.ProviderStatus{Message: "Unexpected OMDb response."}
	}
	if resp.Error != "" {
		return models.ProviderStatus{Message: resp.Error}
	}
	if resp.Title == nil {
		return models.ProviderStatus{Message: "Unexpected OMDb response."}
	}
	return models.ProviderStatus{OK: true}
}

// Search returns lightweight candidates for a free-text query.
func (c *OMDbClient) Search(ctx context.Context, query string) mo.Result[[]models.Title] {
	var resp omdbSearchResponse
	validate := func() error {
		if resp.Response == nil {
			return fmt.Errorf("%w: omdb search missing Response", ErrSchema)
		}
		if resp.Error != "" && !omdbEmptySearch(resp.Error) {
			return fmt.Errorf("omdb: %s", resp.Error)
		}
		return nil
	}
	if err := c.get(ctx, c.key(), url.Values{"s": {query}}, true, &resp, validate); err != nil {
		return mo.Err[[]models.Title](err)
	}

	titles := make([]models.Title, 0, len(resp.Search))
	for _, item := range resp.Search {
		if item.Title == nil || item.Year == nil || item.IMDBID == nil || item.Type == nil {
			return mo.Err[[]models.Title](fmt.Errorf("%w: omdb search item incomplete", ErrSchema))
		}
		titles = append(titles, models.Title{
			ID:        *item.IMDBID,
			IMDBID:    *item.IMDBID,
			Title:     *item.Title,
			Year:      *item.Year,
			Type:      mapOMDbType(*item.Type),
			PosterURL: omdbValue(item.Poster),
			Source:    models.SourceOMDb,
		})
	}
	return mo.Ok(titles)
}

// Details fetches full detail for an IMDb id.
func (c *OMDbClient) Details(ctx context.Context, imdbID string) mo.Result[models.Title] {
	params := url.Values{"i": {imdbID}, "plot": {"full"}}
	return c.detail(ctx, params, imdbID)
}

// DetailsByTitle looks a title up by name, optionally narrowed by year and type.
func (c *OMDbClient) DetailsByTitle(ctx context.Context, title, year string, kind models.TitleType) mo.Result[models.Title] {
	params := url.Values{"t": {title}, "plot": {"full"}}
	if year = strings.TrimSpace(year); year != "" {
		params.Set("y", year)
	}
	if kind == models.TitleTypeMovie || kind == models.TitleTypeSeries {
		params.Set("type", string(kind))
	}
	return c.detail(ctx, params, "")
}

func (c *OMDbClient) detail(ctx context.Context, params url.Values, fallbackIMDBID string) mo.Result[models.Title] {
	var resp omdbDetailResponse
	validate := func() error {
		if resp.Error != "" {
			return fmt.Errorf("omdb: %s", resp.Error)
		}
		if resp.Title == nil {
			return fmt.Errorf("%w: omdb detail missing Title", ErrSchema)
		}
		return nil
	}
	// Detail is always fetched fresh so a manual refresh reaches OMDb.
	if err := c.get(ctx, c.key(), params, false, &resp, validate); err != nil {
		return mo.Err[models.Title](err)
	}
	return mo.Ok(mapOMDbDetail(resp, fallbackIMDBID))
}

// omdbEmptySearch reports whether an OMDb search error just means there were no usable
// matches.
func omdbEmptySearch(msg string) bool {
	switch strings.TrimSpace(msg) {
	case "Movie not found!", "Series not found!", "Too many results.":
		return true
	}
	return false
}

// mapOMDbDetail converts a detail payload into a partial title. Fields OMDb reports
// as "N/A" are left empty.
func mapOMDbDetail(resp omdbDetailResponse, fallbackIMDBID string) models.Title {
	imdbID := firstNonEmpty(omdbValue(resp.IMDBID), fallbackIMDBID)

	var genres []string
	if g := omdbValue(resp.Genre); g != "" {
		genres = lo.Compact(lo.Map(strings.Split(g, ","), func(s string, _ int) string {
			return strings.TrimSpace(s)
		}))
	}

	ratings := lo.Map(resp.Ratings, func(r omdbRating, _ int) models.ProviderRating {
		return models.ProviderRating{Source: r.Source, Value: r.Value}
	})
	ratingFor := func(source string) string {
		r, ok := lo.Find(resp.Ratings, func(r omdbRating) bool { return r.Source == source })
		if !ok {
			return ""
		}
		return omdbValue(r.Value)
	}

	return models.Title{
		ID:                  imdbID,
		IMDBID:              imdbID,
		Title:               *resp.Title,
		Year:                omdbValue(resp.Year),
		Type:                mapOMDbType(resp.Type),
		Runtime:             omdbValue(resp.Runtime),
		Rating:              omdbValue(resp.IMDBRating),
		Votes:               parseOMDbVotes(resp.IMDBVotes),
		Genres:              genres,
		Plot:                omdbValue(resp.Plot),
		Cast:                omdbValue(resp.Actors),
		Director:            omdbValue(resp.Director),
		Country:             omdbValue(resp.Country),
		Language:            omdbValue(resp.Language),
		RottenTomatoesScore: ratingFor("Rotten Tomatoes"),
		MetacriticScore:     ratingFor("Metacritic"),
		OMDbRatings:         ratings,
		PosterURL:           omdbValue(resp.Poster),
		Source:              models.SourceOMDb,
	}
}

func omdbValue(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), "n/a") {
		return ""
	}
	return v
}

func parseOMDbVotes(v string) *int64 {
	cleaned := strings.ReplaceAll(omdbValue(v), ",", "")
	if cleaned == "" {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(cleaned), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// mapOMDbType maps provider type strings. An absent type stays empty so it never
// replaces a known one during a merge.
func mapOMDbType(v string) models.TitleType {
	lowered := strings.ToLower(strings.TrimSpace(v))
	switch {
	case lowered == "":
		return ""
	case strings.Contains(lowered, "movie"):
		return models.TitleTypeMovie
	case strings.Contains(lowered, "tv"), strings.Contains(lowered, "series"):
		return models.TitleTypeSeries
	default:
		return models.TitleTypeOther
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

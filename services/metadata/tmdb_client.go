package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"

	"mediapedia/models"
)

const (
	tmdbBaseURL = "https://api.themoviedb.org/3"
	// Posters and backdrops both use w500; the launcher never renders larger images.
	tmdbImageBaseURL = "https://image.tmdb.org/t/p/w500"
)

// TMDB media kinds used in endpoint paths.
const (
	KindMovie = "movie"
	KindTV    = "tv"
)

// KindFor picks the TMDB media kind for a cached title type.
func KindFor(t models.TitleType) string {
	if t == models.TitleTypeSeries {
		return KindTV
	}
	return KindMovie
}

// TMDBClient talks to TMDB: catalog search, trending, imagery and IMDb cross references.
type TMDBClient struct {
	baseURL      string
	imageBaseURL string
	http         *providerHTTP
	now          func() time.Time

	mu     sync.RWMutex
	apiKey string
}

func NewTMDBClient(apiKey, baseURL, imageBaseURL string, opts HTTPOptions) *TMDBClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = tmdbBaseURL
	}
	if strings.TrimSpace(imageBaseURL) == "" {
		imageBaseURL = tmdbImageBaseURL
	}
	if opts.MinInterval == 0 {
		opts.MinInterval = 20 * time.Millisecond // TMDB has generous rate limits
	}
	return &TMDBClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		http:         newProviderHTTP("tmdb", opts),
		now:          time.Now,
		apiKey:       strings.TrimSpace(apiKey),
	}
}

// SetKey swaps the key used for subsequent requests.
func (c *TMDBClient) SetKey(key string) {
	c.mu.Lock()
	c.apiKey = strings.TrimSpace(key)
	c.mu.Unlock()
}

func (c *TMDBClient) key() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

type tmdbListItem struct {
	ID           *int64   `json:"id"`
	Title        string   `json:"title"`
	Name         string   `json:"name"`
	MediaType    string   `json:"media_type"`
	ReleaseDate  string   `json:"release_date"`
	FirstAirDate string   `json:"first_air_date"`
	PosterPath   string   `json:"poster_path"`
	Popularity   *float64 `json:"popularity"`
}

type tmdbListResponse struct {
	Results *[]tmdbListItem `json:"results"`
}

type tmdbNamed struct {
	Name string `json:"name"`
}

type tmdbDetailResponse struct {
	ID                  *int64      `json:"id"`
	Title               string      `json:"title"`
	Name                string      `json:"name"`
	Overview            string      `json:"overview"`
	Runtime             *int        `json:"runtime"`
	EpisodeRunTime      []int       `json:"episode_run_time"`
	PosterPath          string      `json:"poster_path"`
	BackdropPath        string      `json:"backdrop_path"`
	ReleaseDate         string      `json:"release_date"`
	FirstAirDate        string      `json:"first_air_date"`
	Popularity          *float64    `json:"popularity"`
	Genres              []tmdbNamed `json:"genres"`
	ProductionCountries []tmdbNamed `json:"production_countries"`
	SpokenLanguages     []tmdbNamed `json:"spoken_languages"`
}

type tmdbExternalIDsResponse struct {
	IMDBID *string `json:"imdb_id"`
}

type tmdbProviderEntry struct {
	ProviderName string `json:"provider_name"`
	LogoPath     string `json:"logo_path"`
}

type tmdbWatchProvidersResponse struct {
	Results map[string]struct {
		Link     string              `json:"link"`
		Flatrate []tmdbProviderEntry `json:"flatrate"`
		Rent     []tmdbProviderEntry `json:"rent"`
		Buy      []tmdbProviderEntry `json:"buy"`
	} `json:"results"`
}

func (c *TMDBClient) get(ctx context.Context, key string, cacheable bool, v any, validate func() error, segments ...string) error {
	if key == "" {
		return ErrNotConfigured
	}
	endpoint, err := url.JoinPath(c.baseURL, segments...)
	if err != nil {
		return err
	}
	return c.http.getJSON(ctx, endpoint, url.Values{"api_key": {key}}, cacheable, v, validate)
}

// ValidateKey requests the configuration endpoint with key.
func (c *TMDBClient) ValidateKey(ctx context.Context, key string) models.ProviderStatus {
	var payload map[string]any
	err := c.get(ctx, strings.TrimSpace(key), false, &payload, nil, "configuration")
	if err == nil {
		return models.ProviderStatus{OK: true}
	}
	var se *StatusError
	if errors.As(err, &se) {
		return models.ProviderStatus{Message: fmt.Sprintf("TMDB error: %d", se.Code)}
	}
	if errors.Is(err, ErrNotConfigured) {
		return models.ProviderStatus{Message: "TMDB key is required."}
	}
	return models.ProviderStatus{Message: "TMDB key validation failed."}
}

// Search runs a multi search. People are skipped.
func (c *TMDBClient) Search(ctx context.Context, query string) mo.Result[[]models.Title] {
	key := c.key()
	if key == "" {
		return mo.Err[[]models.Title](ErrNotConfigured)
	}
	endpoint, err := url.JoinPath(c.baseURL, "search", "multi")
	if err != nil {
		return mo.Err[[]models.Title](err)
	}
	var resp tmdbListResponse
	var items []tmdbListItem
	params := url.Values{"api_key": {key}, "query": {query}}
	validate := func() (err error) {
		items, err = validateList(resp)
		return err
	}
	if err := c.http.getJSON(ctx, endpoint, params, true, &resp, validate); err != nil {
		return mo.Err[[]models.Title](err)
	}

	items = lo.Filter(items, func(item tmdbListItem, _ int) bool {
		return item.MediaType != "person"
	})
	return mo.Ok(lo.Map(items, func(item tmdbListItem, _ int) models.Title {
		return c.mapListItem(item)
	}))
}

// Trending returns today's trending movies and shows in provider order with 1-based ranks.
func (c *TMDBClient) Trending(ctx context.Context) mo.Result[[]models.Title] {
	var resp tmdbListResponse
	var items []tmdbListItem
	validate := func() (err error) {
		items, err = validateList(resp)
		return err
	}
	if err := c.get(ctx, c.key(), false, &resp, validate, "trending", "all", "day"); err != nil {
		return mo.Err[[]models.Title](err)
	}
	return mo.Ok(lo.Map(items, func(item tmdbListItem, i int) models.Title {
		t := c.mapListItem(item)
		t.TMDBRank = models.Ptr(i + 1)
		return t
	}))
}

// Details fetches movie or tv detail by TMDB id.
func (c *TMDBClient) Details(ctx context.Context, tmdbID int64, kind string) mo.Result[models.Title] {
	var resp tmdbDetailResponse
	validate := func() error {
		if resp.ID == nil {
			return fmt.Errorf("%w: tmdb detail missing id", ErrSchema)
		}
		return nil
	}
	// Per-title calls always go upstream so a manual refresh sees current data.
	if err := c.get(ctx, c.key(), false, &resp, validate, kind, strconv.FormatInt(tmdbID, 10)); err != nil {
		return mo.Err[models.Title](err)
	}

	runtime := ""
	if resp.Runtime != nil && *resp.Runtime > 0 {
		runtime = fmt.Sprintf("%d min", *resp.Runtime)
	} else if len(resp.EpisodeRunTime) > 0 && resp.EpisodeRunTime[0] > 0 {
		runtime = fmt.Sprintf("%d min", resp.EpisodeRunTime[0])
	}

	var genres []string
	if resp.Genres != nil {
		genres = names(resp.Genres)
	}

	titleType := models.TitleTypeMovie
	if kind == KindTV {
		titleType = models.TitleTypeSeries
	}

	return mo.Ok(models.Title{
		TMDBID:      resp.ID,
		Title:       firstNonEmpty(resp.Title, resp.Name),
		Year:        tmdbYear(firstNonEmpty(resp.ReleaseDate, resp.FirstAirDate)),
		Type:        titleType,
		Runtime:     runtime,
		Genres:      genres,
		Plot:        resp.Overview,
		PosterURL:   c.image(resp.PosterPath),
		BackdropURL: c.image(resp.BackdropPath),
		Country:     strings.Join(names(resp.ProductionCountries), ", "),
		Language:    strings.Join(names(resp.SpokenLanguages), ", "),
		Popularity:  resp.Popularity,
		Source:      models.SourceTMDB,
	})
}

// ExternalIMDBID resolves the IMDb id TMDB has on file. An empty string means TMDB
// knows of none.
func (c *TMDBClient) ExternalIMDBID(ctx context.Context, tmdbID int64, kind string) mo.Result[string] {
	var resp tmdbExternalIDsResponse
	if err := c.get(ctx, c.key(), false, &resp, nil, kind, strconv.FormatInt(tmdbID, 10), "external_ids"); err != nil {
		return mo.Err[string](err)
	}
	if resp.IMDBID == nil {
		return mo.Ok("")
	}
	return mo.Ok(strings.TrimSpace(*resp.IMDBID))
}

// WatchProviders returns streaming, rental and purchase offers for region.
func (c *TMDBClient) WatchProviders(ctx context.Context, tmdbID int64, kind, region string) mo.Result[models.WatchProviders] {
	var resp tmdbWatchProvidersResponse
	validate := func() error {
		if resp.Results == nil {
			return fmt.Errorf("%w: tmdb watch providers missing results", ErrSchema)
		}
		return nil
	}
	if err := c.get(ctx, c.key(), false, &resp, validate, kind, strconv.FormatInt(tmdbID, 10), "watch", "providers"); err != nil {
		return mo.Err[models.WatchProviders](err)
	}

	region = strings.ToUpper(strings.TrimSpace(region))
	out := models.WatchProviders{
		Region:    region,
		Offers:    []models.WatchProvider{},
		FetchedAt: c.now().Unix(),
	}
	entry, ok := resp.Results[region]
	if !ok {
		return mo.Ok(out)
	}
	out.Link = entry.Link
	add := func(kind string, list []tmdbProviderEntry) {
		for _, p := range list {
			out.Offers = append(out.Offers, models.WatchProvider{
				Name:    p.ProviderName,
				LogoURL: c.image(p.LogoPath),
				Kind:    kind,
			})
		}
	}
	add("flatrate", entry.Flatrate)
	add("rent", entry.Rent)
	add("buy", entry.Buy)
	return mo.Ok(out)
}

func validateList(resp tmdbListResponse) ([]tmdbListItem, error) {
	if resp.Results == nil {
		return nil, fmt.Errorf("%w: tmdb list missing results", ErrSchema)
	}
	for _, item := range *resp.Results {
		if item.ID == nil {
			return nil, fmt.Errorf("%w: tmdb list item missing id", ErrSchema)
		}
	}
	return *resp.Results, nil
}

func (c *TMDBClient) mapListItem(item tmdbListItem) models.Title {
	isTV := item.MediaType == KindTV
	titleType := models.TitleTypeMovie
	date := item.ReleaseDate
	if isTV {
		titleType = models.TitleTypeSeries
		date = item.FirstAirDate
	}
	return models.Title{
		ID:         SyntheticID(*item.ID),
		TMDBID:     item.ID,
		Title:      firstNonEmpty(item.Title, item.Name),
		Year:       tmdbYear(date),
		Type:       titleType,
		PosterURL:  c.image(item.PosterPath),
		Popularity: item.Popularity,
		Source:     models.SourceTMDB,
	}
}

func (c *TMDBClient) image(imagePath string) string {
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return ""
	}
	return c.imageBaseURL + path.Join("/", trimmed)
}

// SyntheticID builds the id used for titles only known through TMDB.
func SyntheticID(tmdbID int64) string {
	return models.SyntheticIDPrefix + strconv.FormatInt(tmdbID, 10)
}

// ParseSyntheticID extracts the TMDB id from a synthetic id.
func ParseSyntheticID(id string) (int64, bool) {
	raw, ok := strings.CutPrefix(id, models.SyntheticIDPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func names(list []tmdbNamed) []string {
	return lo.Map(list, func(n tmdbNamed, _ int) string { return n.Name })
}

func tmdbYear(date string) string {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

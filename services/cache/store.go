// Package cache is the SQLite-backed store for title records, trending seeds,
// settings and recent searches. It is the single source of truth for local data.
package cache

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"

	"mediapedia/internal/metrics"
	"mediapedia/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RecentSearchLimit caps the recent searches list.
const RecentSearchLimit = 10

var (
	ErrPathRequired = errors.New("cache database path not provided")
	ErrNotFound     = errors.New("not found")
)

// Store opens its database lazily on first use and keeps a single connection for the
// life of the process, so every statement is serialized.
type Store struct {
	path string
	now  func() time.Time

	once    sync.Once
	db      *sql.DB
	openErr error
}

// NewStore returns a store for the SQLite file at path. Nothing is opened until the
// first call.
func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrPathRequired
	}
	return &Store{path: path, now: time.Now}, nil
}

// Close releases the database if it was opened.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) conn(ctx context.Context) (*sql.DB, error) {
	s.once.Do(func() {
		s.db, s.openErr = s.open(ctx)
	})
	return s.db, s.openErr
}

func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	if s.path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", s.path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache db: %w", err)
	}

	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache migrations: %w", err)
	}
	provider, err := goose.NewProvider(database.DialectSQLite3, db, sub)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache migrations: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply cache migrations: %w", err)
	}
	for _, r := range results {
		log.Printf("[cache] applied migration %s", filepath.Base(r.Source.Path))
	}

	log.Printf("[cache] opened %s", s.path)
	return db, nil
}

const titleColumns = `id, imdb_id, tmdb_id, title, year, type, runtime, rating, votes, poster_url, backdrop_url,
	genres, plot, cast_members, director, country, language, rotten_tomatoes_score, metacritic_score, popularity,
	source, tmdb_rank, tmdb_trending_at, updated_at, expires_at, omdb_ratings, watch_providers`

// UpsertTitle inserts or fully replaces the row for t.ID.
func (s *Store) UpsertTitle(ctx context.Context, t models.Title) error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("title id is required")
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	genres, err := marshalNullable(t.Genres, t.Genres == nil)
	if err != nil {
		return fmt.Errorf("encode genres: %w", err)
	}
	ratings, err := marshalNullable(t.OMDbRatings, len(t.OMDbRatings) == 0)
	if err != nil {
		return fmt.Errorf("encode ratings: %w", err)
	}
	providers, err := marshalNullable(t.WatchProviders, t.WatchProviders == nil)
	if err != nil {
		return fmt.Errorf("encode watch providers: %w", err)
	}

	now := s.now().Unix()
	_, err = db.ExecContext(ctx, `
		INSERT INTO titles (id, imdb_id, tmdb_id, title, year, type, runtime, rating, votes, poster_url, backdrop_url,
			genres, plot, cast_members, director, country, language, rotten_tomatoes_score, metacritic_score, popularity,
			source, tmdb_rank, tmdb_trending_at, created_at, updated_at, expires_at, omdb_ratings, watch_providers)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			imdb_id=excluded.imdb_id,
			tmdb_id=excluded.tmdb_id,
			title=excluded.title,
			year=excluded.year,
			type=excluded.type,
			runtime=excluded.runtime,
			rating=excluded.rating,
			votes=excluded.votes,
			poster_url=excluded.poster_url,
			backdrop_url=excluded.backdrop_url,
			genres=excluded.genres,
			plot=excluded.plot,
			cast_members=excluded.cast_members,
			director=excluded.director,
			country=excluded.country,
			language=excluded.language,
			rotten_tomatoes_score=excluded.rotten_tomatoes_score,
			metacritic_score=excluded.metacritic_score,
			popularity=excluded.popularity,
			source=excluded.source,
			tmdb_rank=excluded.tmdb_rank,
			tmdb_trending_at=excluded.tmdb_trending_at,
			updated_at=excluded.updated_at,
			expires_at=excluded.expires_at,
			omdb_ratings=excluded.omdb_ratings,
			watch_providers=excluded.watch_providers`,
		t.ID,
		nullString(t.IMDBID),
		t.TMDBID,
		t.Title,
		nullString(t.Year),
		string(defaultType(t.Type)),
		nullString(t.Runtime),
		nullString(t.Rating),
		t.Votes,
		nullString(t.PosterURL),
		nullString(t.BackdropURL),
		genres,
		nullString(t.Plot),
		nullString(t.Cast),
		nullString(t.Director),
		nullString(t.Country),
		nullString(t.Language),
		nullString(t.RottenTomatoesScore),
		nullString(t.MetacriticScore),
		t.Popularity,
		nullString(string(t.Source)),
		t.TMDBRank,
		t.TMDBTrendingAt,
		now,
		now,
		t.ExpiresAt,
		ratings,
		providers,
	)
	if err != nil {
		return fmt.Errorf("upsert title %s: %w", t.ID, err)
	}
	metrics.CacheWritesTotal.WithLabelValues("titles").Inc()
	return nil
}

// GetTitle returns the row for id or ErrNotFound. A synthetic "tmdb:<n>" id with no
// row of its own resolves to the single record carrying that TMDB id, so a title keeps
// one row after its IMDb id is learned.
func (s *Store) GetTitle(ctx context.Context, id string) (models.Title, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.Title{}, err
	}
	row := db.QueryRowContext(ctx, "SELECT "+titleColumns+" FROM titles WHERE id = ?", id)
	t, err := scanTitle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return s.titleByTMDBAlias(ctx, db, id)
	}
	if err != nil {
		return models.Title{}, fmt.Errorf("get title %s: %w", id, err)
	}
	return t, nil
}

func (s *Store) titleByTMDBAlias(ctx context.Context, db *sql.DB, id string) (models.Title, error) {
	raw, ok := strings.CutPrefix(id, models.SyntheticIDPrefix)
	if !ok {
		return models.Title{}, ErrNotFound
	}
	tmdbID, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || tmdbID <= 0 {
		return models.Title{}, ErrNotFound
	}

	// Movies and shows share the TMDB id space, so more than one match is ambiguous.
	rows, err := db.QueryContext(ctx, "SELECT "+titleColumns+" FROM titles WHERE tmdb_id = ? LIMIT 2", tmdbID)
	if err != nil {
		return models.Title{}, fmt.Errorf("get title %s: %w", id, err)
	}
	defer rows.Close()

	var matches []models.Title
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return models.Title{}, fmt.Errorf("scan title: %w", err)
		}
		matches = append(matches, t)
	}
	if err := rows.Err(); err != nil {
		return models.Title{}, fmt.Errorf("get title %s: %w", id, err)
	}
	if len(matches) != 1 {
		return models.Title{}, ErrNotFound
	}
	return matches[0], nil
}

// DeleteTitle removes the row for id. A missing row is not an error.
func (s *Store) DeleteTitle(ctx context.Context, id string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM titles WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete title %s: %w", id, err)
	}
	metrics.CacheWritesTotal.WithLabelValues("titles").Inc()
	return nil
}

// ListTitles returns every cached title in insertion order.
func (s *Store) ListTitles(ctx context.Context) ([]models.Title, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SELECT "+titleColumns+" FROM titles ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	defer rows.Close()

	var titles []models.Title
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// ReplaceTrendingSeeds deletes every seed and inserts seeds in a single transaction.
func (s *Store) ReplaceTrendingSeeds(ctx context.Context, seeds []models.TrendingSeed) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin trending replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM trending_seed"); err != nil {
		return fmt.Errorf("clear trending: %w", err)
	}

	now := s.now().Unix()
	for _, seed := range seeds {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO trending_seed (id, title, year, type, poster_url, tmdb_rank, popularity, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			seed.ID,
			seed.Title,
			nullString(seed.Year),
			string(defaultType(seed.Type)),
			nullString(seed.PosterURL),
			seed.TMDBRank,
			seed.Popularity,
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert trending %s: %w", seed.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit trending: %w", err)
	}
	metrics.CacheWritesTotal.WithLabelValues("trending_seed").Inc()
	return nil
}

// ListTrendingSeeds returns seeds ordered by trending rank.
func (s *Store) ListTrendingSeeds(ctx context.Context) ([]models.TrendingSeed, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		"SELECT id, title, year, type, poster_url, tmdb_rank, popularity FROM trending_seed ORDER BY tmdb_rank ASC")
	if err != nil {
		return nil, fmt.Errorf("list trending: %w", err)
	}
	defer rows.Close()

	var seeds []models.TrendingSeed
	for rows.Next() {
		var (
			seed       models.TrendingSeed
			year       sql.NullString
			kind       sql.NullString
			poster     sql.NullString
			rank       sql.NullInt64
			popularity sql.NullFloat64
		)
		if err := rows.Scan(&seed.ID, &seed.Title, &year, &kind, &poster, &rank, &popularity); err != nil {
			return nil, fmt.Errorf("scan trending: %w", err)
		}
		seed.Year = year.String
		seed.Type = models.TitleType(kind.String)
		if seed.Type == "" {
			seed.Type = models.TitleTypeMovie
		}
		seed.PosterURL = poster.String
		if rank.Valid {
			seed.TMDBRank = models.Ptr(int(rank.Int64))
		}
		if popularity.Valid {
			seed.Popularity = models.Ptr(popularity.Float64)
		}
		seeds = append(seeds, seed)
	}
	return seeds, rows.Err()
}

// GetSetting returns the stored value for key. Missing keys and empty values both
// report ok=false.
func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return "", false, err
	}
	var value sql.NullString
	err = db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	if !value.Valid || value.String == "" {
		return "", false, nil
	}
	return value.String, true, nil
}

// SetSetting inserts or updates key.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	now := s.now().Unix()
	_, err = db.ExecContext(ctx,
		`INSERT INTO settings (key, value, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now, now)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	metrics.CacheWritesTotal.WithLabelValues("settings").Inc()
	return nil
}

// AddRecentSearch moves query to the front of the recent list, dropping any older
// duplicate and anything past RecentSearchLimit.
func (s *Store) AddRecentSearch(ctx context.Context, query string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin recent search: %w", err)
	}
	defer tx.Rollback()

	now := s.now().Unix()
	if _, err := tx.ExecContext(ctx, "DELETE FROM recent_searches WHERE query = ?", query); err != nil {
		return fmt.Errorf("dedupe recent search: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO recent_searches (query, created_at, updated_at) VALUES (?, ?, ?)", query, now, now); err != nil {
		return fmt.Errorf("insert recent search: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM recent_searches WHERE id NOT IN (
			SELECT id FROM recent_searches ORDER BY created_at DESC, id DESC LIMIT ?)`, RecentSearchLimit); err != nil {
		return fmt.Errorf("trim recent searches: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit recent search: %w", err)
	}
	metrics.CacheWritesTotal.WithLabelValues("recent_searches").Inc()
	return nil
}

// ListRecentSearches returns up to RecentSearchLimit queries, newest first.
func (s *Store) ListRecentSearches(ctx context.Context) ([]string, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		"SELECT query FROM recent_searches ORDER BY created_at DESC, id DESC LIMIT ?", RecentSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent searches: %w", err)
	}
	defer rows.Close()

	queries := make([]string, 0, RecentSearchLimit)
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scan recent search: %w", err)
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTitle(row scanner) (models.Title, error) {
	var (
		t          models.Title
		imdbID     sql.NullString
		tmdbID     sql.NullInt64
		year       sql.NullString
		kind       sql.NullString
		runtime    sql.NullString
		rating     sql.NullString
		votes      sql.NullInt64
		poster     sql.NullString
		backdrop   sql.NullString
		genres     sql.NullString
		plot       sql.NullString
		cast       sql.NullString
		director   sql.NullString
		country    sql.NullString
		language   sql.NullString
		rotten     sql.NullString
		metacritic sql.NullString
		popularity sql.NullFloat64
		source     sql.NullString
		rank       sql.NullInt64
		trendingAt sql.NullInt64
		updatedAt  sql.NullInt64
		expiresAt  sql.NullInt64
		ratings    sql.NullString
		providers  sql.NullString
	)
	err := row.Scan(&t.ID, &imdbID, &tmdbID, &t.Title, &year, &kind, &runtime, &rating, &votes, &poster, &backdrop,
		&genres, &plot, &cast, &director, &country, &language, &rotten, &metacritic, &popularity,
		&source, &rank, &trendingAt, &updatedAt, &expiresAt, &ratings, &providers)
	if err != nil {
		return models.Title{}, err
	}

	t.IMDBID = imdbID.String
	t.Year = year.String
	t.Type = models.TitleType(kind.String)
	if t.Type == "" {
		t.Type = models.TitleTypeOther
	}
	t.Runtime = runtime.String
	t.Rating = rating.String
	t.PosterURL = poster.String
	t.BackdropURL = backdrop.String
	t.Plot = plot.String
	t.Cast = cast.String
	t.Director = director.String
	t.Country = country.String
	t.Language = language.String
	t.RottenTomatoesScore = rotten.String
	t.MetacriticScore = metacritic.String
	t.Source = models.Source(source.String)

	if tmdbID.Valid {
		t.TMDBID = models.Ptr(tmdbID.Int64)
	}
	if votes.Valid {
		t.Votes = models.Ptr(votes.Int64)
	}
	if popularity.Valid {
		t.Popularity = models.Ptr(popularity.Float64)
	}
	if rank.Valid {
		t.TMDBRank = models.Ptr(int(rank.Int64))
	}
	if trendingAt.Valid {
		t.TMDBTrendingAt = models.Ptr(trendingAt.Int64)
	}
	if updatedAt.Valid {
		t.LastUpdatedAt = models.Ptr(updatedAt.Int64)
	}
	if expiresAt.Valid {
		t.ExpiresAt = models.Ptr(expiresAt.Int64)
	}

	// Undecodable JSON columns are treated as absent rather than failing the read.
	if genres.Valid && genres.String != "" {
		if err := json.Unmarshal([]byte(genres.String), &t.Genres); err != nil {
			log.Printf("[cache] ignoring malformed genres for %s: %v", t.ID, err)
			t.Genres = nil
		}
	}
	if ratings.Valid && ratings.String != "" {
		if err := json.Unmarshal([]byte(ratings.String), &t.OMDbRatings); err != nil {
			log.Printf("[cache] ignoring malformed ratings for %s: %v", t.ID, err)
			t.OMDbRatings = nil
		}
	}
	if providers.Valid && providers.String != "" {
		var wp models.WatchProviders
		if err := json.Unmarshal([]byte(providers.String), &wp); err != nil {
			log.Printf("[cache] ignoring malformed watch providers for %s: %v", t.ID, err)
		} else {
			t.WatchProviders = &wp
		}
	}

	return t, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func marshalNullable(v any, empty bool) (any, error) {
	if empty {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func defaultType(t models.TitleType) models.TitleType {
	if t == "" {
		return models.TitleTypeOther
	}
	return t
}

package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediapedia/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "cache", "mediapedia.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore_RequiresPath(t *testing.T) {
	_, err := NewStore("  ")
	require.ErrorIs(t, err, ErrPathRequired)
}

func TestUpsertAndGetTitle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	title := models.Title{
		ID:          "tt1375666",
		IMDBID:      "tt1375666",
		TMDBID:      models.Ptr(int64(27205)),
		Title:       "Inception",
		Year:        "2010",
		Type:        models.TitleTypeMovie,
		Genres:      []string{"Action", "Sci-Fi"},
		Cast:        "Leonardo DiCaprio, Joseph Gordon-Levitt",
		Votes:       models.Ptr(int64(2000000)),
		Popularity:  models.Ptr(80.5),
		Source:      models.SourceOMDb,
		ExpiresAt:   models.Ptr(int64(1_703_456_000)),
		OMDbRatings: []models.ProviderRating{{Source: "Internet Movie Database", Value: "8.8/10"}},
		WatchProviders: &models.WatchProviders{
			Region: "GB",
			Offers: []models.WatchProvider{{Name: "Netflix", Kind: "flatrate"}},
		},
		FallbackLabel: models.Ptr(models.FallbackCachedData),
	}
	require.NoError(t, store.UpsertTitle(ctx, title))

	got, err := store.GetTitle(ctx, "tt1375666")
	require.NoError(t, err)
	assert.Equal(t, "Inception", got.Title)
	assert.Equal(t, int64(27205), *got.TMDBID)
	assert.Equal(t, []string{"Action", "Sci-Fi"}, got.Genres)
	assert.Equal(t, "Leonardo DiCaprio, Joseph Gordon-Levitt", got.Cast)
	assert.Equal(t, int64(2000000), *got.Votes)
	assert.InDelta(t, 80.5, *got.Popularity, 1e-9)
	assert.Equal(t, models.SourceOMDb, got.Source)
	assert.Equal(t, int64(1_700_000_000), *got.LastUpdatedAt)
	assert.Equal(t, int64(1_703_456_000), *got.ExpiresAt)
	assert.Equal(t, title.OMDbRatings, got.OMDbRatings)
	require.NotNil(t, got.WatchProviders)
	assert.Equal(t, "Netflix", got.WatchProviders.Offers[0].Name)
	assert.Nil(t, got.FallbackLabel, "fallback label is not persisted")
	assert.Empty(t, got.Plot)
	assert.Nil(t, got.TMDBRank)
}

func TestUpsertTitle_OverwritesExistingRow(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.UpsertTitle(ctx, models.Title{ID: "tmdb:1", Title: "Old", Type: models.TitleTypeSeries, Plot: "old plot"}))
	require.NoError(t, store.UpsertTitle(ctx, models.Title{ID: "tmdb:1", Title: "New", Type: models.TitleTypeSeries}))

	got, err := store.GetTitle(ctx, "tmdb:1")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Empty(t, got.Plot)

	titles, err := store.ListTitles(ctx)
	require.NoError(t, err)
	assert.Len(t, titles, 1)
}

func TestGetTitle_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetTitle(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTitle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.UpsertTitle(ctx, models.Title{ID: "tmdb:27205", Title: "Inception", Type: models.TitleTypeMovie}))
	require.NoError(t, store.DeleteTitle(ctx, "tmdb:27205"))
	_, err := store.GetTitle(ctx, "tmdb:27205")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.DeleteTitle(ctx, "tmdb:27205"))
}

func TestGetTitle_SyntheticIDFindsResolvedRecord(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.UpsertTitle(ctx, models.Title{
		ID: "tt1375666", IMDBID: "tt1375666", TMDBID: models.Ptr(int64(27205)), Title: "Inception", Type: models.TitleTypeMovie,
	}))

	got, err := store.GetTitle(ctx, "tmdb:27205")
	require.NoError(t, err)
	assert.Equal(t, "tt1375666", got.ID)

	_, err = store.GetTitle(ctx, "tmdb:99")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetTitle_AmbiguousSyntheticIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.UpsertTitle(ctx, models.Title{
		ID: "tt0000100", IMDBID: "tt0000100", TMDBID: models.Ptr(int64(1396)), Title: "A Film", Type: models.TitleTypeMovie,
	}))
	require.NoError(t, store.UpsertTitle(ctx, models.Title{
		ID: "tt0903747", IMDBID: "tt0903747", TMDBID: models.Ptr(int64(1396)), Title: "Breaking Bad", Type: models.TitleTypeSeries,
	}))

	_, err := store.GetTitle(ctx, "tmdb:1396")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertTitle_DefaultsTypeAndKeepsNilGenres(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.UpsertTitle(ctx, models.Title{ID: "x", Title: "Untyped"}))
	got, err := store.GetTitle(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, models.TitleTypeOther, got.Type)
	assert.Nil(t, got.Genres)
}

func TestListTitles_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, store.UpsertTitle(ctx, models.Title{ID: id, Title: id, Type: models.TitleTypeMovie}))
	}
	titles, err := store.ListTitles(ctx)
	require.NoError(t, err)
	require.Len(t, titles, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{titles[0].ID, titles[1].ID, titles[2].ID})
}

func TestReplaceTrendingSeeds_ReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := []models.TrendingSeed{
		{ID: "tt1", Title: "One", Type: models.TitleTypeMovie, TMDBRank: models.Ptr(1)},
		{ID: "tt2", Title: "Two", Type: models.TitleTypeMovie, TMDBRank: models.Ptr(2)},
	}
	second := []models.TrendingSeed{
		{ID: "tt4", Title: "Four", Type: models.TitleTypeSeries, TMDBRank: models.Ptr(2), Popularity: models.Ptr(12.5)},
		{ID: "tt3", Title: "Three", Type: models.TitleTypeMovie, TMDBRank: models.Ptr(1), Year: "2024"},
	}

	require.NoError(t, store.ReplaceTrendingSeeds(ctx, first))
	require.NoError(t, store.ReplaceTrendingSeeds(ctx, second))

	seeds, err := store.ListTrendingSeeds(ctx)
	require.NoError(t, err)
	require.Len(t, seeds, 2)
	assert.Equal(t, "tt3", seeds[0].ID)
	assert.Equal(t, "2024", seeds[0].Year)
	assert.Equal(t, "tt4", seeds[1].ID)
	assert.Equal(t, models.TitleTypeSeries, seeds[1].Type)
	assert.InDelta(t, 12.5, *seeds[1].Popularity, 1e-9)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, ok, err := store.GetSetting(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetSetting(ctx, "theme", "light"))
	require.NoError(t, store.SetSetting(ctx, "theme", "dark"))

	value, ok, err := store.GetSetting(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", value)

	require.NoError(t, store.SetSetting(ctx, "theme", ""))
	_, ok, err = store.GetSetting(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecentSearches_DedupedNewestFirstCapped(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := 0; i < 12; i++ {
		require.NoError(t, store.AddRecentSearch(ctx, fmt.Sprintf("query %d", i)))
	}
	require.NoError(t, store.AddRecentSearch(ctx, "query 5"))

	recent, err := store.ListRecentSearches(ctx)
	require.NoError(t, err)
	require.Len(t, recent, RecentSearchLimit)
	assert.Equal(t, "query 5", recent[0])
	assert.Equal(t, "query 11", recent[1])
	assert.NotContains(t, recent, "query 0")
	assert.NotContains(t, recent, "query 1")

	count := 0
	for _, q := range recent {
		if q == "query 5" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mediapedia.db")

	first, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, first.UpsertTitle(ctx, models.Title{ID: "tt1", Title: "Kept", Type: models.TitleTypeMovie}))
	require.NoError(t, first.Close())

	second, err := NewStore(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.GetTitle(ctx, "tt1")
	require.NoError(t, err)
	assert.Equal(t, "Kept", got.Title)
}

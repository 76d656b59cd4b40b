package trending

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediapedia/models"
	"mediapedia/services/cache"
)

type sourceFunc func(ctx context.Context) mo.Result[[]models.Title]

func (f sourceFunc) Trending(ctx context.Context) mo.Result[[]models.Title] { return f(ctx) }

type staticKeys models.APIKeys

func (k staticKeys) GetKeys() (models.APIKeys, error) { return models.APIKeys(k), nil }

func trendingItem(id int64, title string, rank int) models.Title {
	return models.Title{
		ID:         "tmdb:" + strconv.FormatInt(id, 10),
		TMDBID:     models.Ptr(id),
		Title:      title,
		Year:       "2024",
		Type:       models.TitleTypeMovie,
		TMDBRank:   models.Ptr(rank),
		Popularity: models.Ptr(float64(100 - rank)),
		Source:     models.SourceTMDB,
	}
}

func newTestService(t *testing.T, keys models.APIKeys, src sourceFunc) (*Service, *cache.Store) {
	t.Helper()
	store, err := cache.NewStore(filepath.Join(t.TempDir(), "mediapedia.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := NewService(store, src, staticKeys(keys), Options{})
	svc.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return svc, store
}

func TestRefresh_SkipsWithoutKey(t *testing.T) {
	called := false
	svc, store := newTestService(t, models.APIKeys{OMDbKey: "o"}, func(ctx context.Context) mo.Result[[]models.Title] {
		called = true
		return mo.Ok([]models.Title{})
	})

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrKeyMissing)
	assert.False(t, called)

	ran, err := svc.RefreshIfDue(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)

	_, ok, err := store.GetSetting(context.Background(), LastRefreshSetting)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRefresh_ReplacesSeedsWholesale(t *testing.T) {
	ctx := context.Background()
	lists := [][]models.Title{
		{trendingItem(1, "Alpha", 1), trendingItem(2, "Beta", 2)},
		{trendingItem(3, "Gamma", 1)},
	}
	call := 0
	svc, store := newTestService(t, models.APIKeys{TMDBKey: "t"}, func(ctx context.Context) mo.Result[[]models.Title] {
		list := lists[call]
		call++
		return mo.Ok(list)
	})

	seeds, err := svc.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, seeds, 2)

	seeds, err = svc.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, seeds, 1)

	stored, err := store.ListTrendingSeeds(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "tmdb:3", stored[0].ID)

	// Title records from earlier refreshes are kept.
	for _, id := range []string{"tmdb:1", "tmdb:2", "tmdb:3"} {
		rec, err := store.GetTitle(ctx, id)
		require.NoError(t, err, id)
		require.NotNil(t, rec.TMDBTrendingAt)
		assert.Equal(t, int64(1_700_000_000), *rec.TMDBTrendingAt)
		require.NotNil(t, rec.ExpiresAt)
		assert.Equal(t, int64(1_700_000_000+40*24*3600), *rec.ExpiresAt)
	}

	last, ok, err := store.GetSetting(ctx, LastRefreshSetting)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1700000000", last)
}

func TestRefresh_KeepsExistingDetail(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, models.APIKeys{TMDBKey: "t"}, func(ctx context.Context) mo.Result[[]models.Title] {
		item := trendingItem(27205, "Inception", 4)
		item.PosterURL = ""
		return mo.Ok([]models.Title{item})
	})

	require.NoError(t, store.UpsertTitle(ctx, models.Title{
		ID:        "tmdb:27205",
		TMDBID:    models.Ptr(int64(27205)),
		Title:     "Inception",
		Type:      models.TitleTypeMovie,
		Rating:    "8.8",
		Plot:      "Dreams within dreams.",
		PosterURL: "https://image.tmdb.org/t/p/w500/p.jpg",
		Source:    models.SourceOMDb,
	}))

	_, err := svc.Refresh(ctx)
	require.NoError(t, err)

	rec, err := store.GetTitle(ctx, "tmdb:27205")
	require.NoError(t, err)
	assert.Equal(t, "8.8", rec.Rating)
	assert.Equal(t, "Dreams within dreams.", rec.Plot)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/p.jpg", rec.PosterURL)
	assert.Equal(t, 4, *rec.TMDBRank)
	assert.Equal(t, models.SourceOMDb, rec.Source)
}

func TestRefresh_ProviderFailureLeavesSeeds(t *testing.T) {
	ctx := context.Background()
	fail := false
	svc, store := newTestService(t, models.APIKeys{TMDBKey: "t"}, func(ctx context.Context) mo.Result[[]models.Title] {
		if fail {
			return mo.Err[[]models.Title](errors.New("boom"))
		}
		return mo.Ok([]models.Title{trendingItem(1, "Alpha", 1)})
	})

	_, err := svc.Refresh(ctx)
	require.NoError(t, err)

	fail = true
	_, err = svc.Refresh(ctx)
	require.Error(t, err)

	stored, err := store.ListTrendingSeeds(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestDue(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, models.APIKeys{TMDBKey: "t"}, func(ctx context.Context) mo.Result[[]models.Title] {
		return mo.Ok([]models.Title{})
	})
	now := svc.now().Unix()

	assert.True(t, svc.Due(ctx), "never refreshed")

	require.NoError(t, store.SetSetting(ctx, LastRefreshSetting, strconv.FormatInt(now-3600, 10)))
	assert.False(t, svc.Due(ctx))

	require.NoError(t, store.SetSetting(ctx, LastRefreshSetting, strconv.FormatInt(now-25*3600, 10)))
	assert.True(t, svc.Due(ctx))

	require.NoError(t, store.SetSetting(ctx, LastRefreshSetting, "garbage"))
	assert.True(t, svc.Due(ctx))
}

func TestRefresh_NotifiesHook(t *testing.T) {
	svc, _ := newTestService(t, models.APIKeys{TMDBKey: "t"}, func(ctx context.Context) mo.Result[[]models.Title] {
		return mo.Ok([]models.Title{trendingItem(1, "Alpha", 1)})
	})

	var got []models.TrendingSeed
	svc.OnRefresh(func(seeds []models.TrendingSeed) { got = seeds })

	ran, err := svc.RefreshIfDue(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	require.Len(t, got, 1)
	assert.Equal(t, "Alpha", got[0].Title)
}

func TestStartStop(t *testing.T) {
	svc, _ := newTestService(t, models.APIKeys{}, func(ctx context.Context) mo.Result[[]models.Title] {
		return mo.Ok([]models.Title{})
	})
	svc.opts.CheckInterval = 10 * time.Millisecond

	require.NoError(t, svc.Start(context.Background()))
	require.NoError(t, svc.Start(context.Background()))
	time.Sleep(30 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, svc.Stop(ctx))
	require.NoError(t, svc.Stop(ctx))
}

package launcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediapedia/models"
)

func TestParseDetailCardOrder(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want models.DetailCardOrder
	}{
		{
			name: "empty uses default",
			raw:  "",
			want: models.DefaultDetailCardOrder(),
		},
		{
			name: "malformed uses default",
			raw:  "{not json",
			want: models.DefaultDetailCardOrder(),
		},
		{
			name: "missing column uses default",
			raw:  `{"left":["plot"]}`,
			want: models.DefaultDetailCardOrder(),
		},
		{
			name: "legacy flat array dealt alternately",
			raw:  `["watch","plot","poster","ratings","people"]`,
			want: models.DetailCardOrder{
				Left:  []string{"watch", "poster", "people"},
				Right: []string{"plot", "ratings"},
			},
		},
		{
			name: "unknown and duplicate ids dropped, missing appended",
			raw:  `{"left":["plot","bogus","plot"],"right":["poster"]}`,
			want: models.DetailCardOrder{
				Left:  []string{"plot", "ratings", "watch"},
				Right: []string{"poster", "people"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseDetailCardOrder(tc.raw))
		})
	}
}

func TestNormalizeRegion(t *testing.T) {
	assert.Equal(t, "US", NormalizeRegion(" usa "))
	assert.Equal(t, "GB", NormalizeRegion(""))
	assert.Equal(t, "DE", NormalizeRegion("de"))
}

func TestParseShortcuts(t *testing.T) {
	got := ParseShortcuts(`{"openImdb":"Alt+I","globalSearch":""}`)
	assert.Equal(t, "Alt+I", got.OpenIMDb)
	assert.Equal(t, models.DefaultShortcuts().GlobalSearch, got.GlobalSearch)

	assert.Equal(t, models.DefaultShortcuts(), ParseShortcuts("nope"))
}

func TestParseLinkTarget(t *testing.T) {
	assert.Equal(t, models.LinkTargetMetacritic, ParseLinkTarget("metacritic"))
	assert.Equal(t, models.LinkTargetIMDb, ParseLinkTarget("letterboxd"))
}

func TestPreferences_PersistAcrossRestart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.APIKeys{})

	region, err := f.svc.SetWatchRegion(ctx, "usa")
	require.NoError(t, err)
	assert.Equal(t, "US", region)

	require.NoError(t, f.svc.SetTheme(ctx, "sepia"))
	require.NoError(t, f.svc.SetShowTrending(ctx, false))
	require.NoError(t, f.svc.SetLinkTarget(ctx, models.LinkTargetMetacritic))
	require.NoError(t, f.svc.SetCardCollapsed(ctx, "plot", true))
	order, err := f.svc.SetDetailCardOrder(ctx, models.DetailCardOrder{Left: []string{"watch"}, Right: []string{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"watch", "poster", "people"}, order.Left)
	assert.Equal(t, []string{"ratings", "plot"}, order.Right)

	reloaded := NewService(f.store, f.keys, f.omdb, f.tmdb, nil, nil, Options{})
	t.Cleanup(reloaded.Close)
	prefs := reloaded.loadPreferences(ctx)

	assert.Equal(t, "US", prefs.WatchRegion)
	assert.Equal(t, models.ThemeDark, prefs.Theme)
	assert.False(t, prefs.ShowTrending)
	assert.Equal(t, models.LinkTargetMetacritic, prefs.LinkTarget)
	assert.Equal(t, map[string]bool{"watch": false, "plot": true}, prefs.CardCollapse)
	assert.Equal(t, order, prefs.DetailCardOrder)
}

func TestPreferences_LegacyWatchCollapse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.APIKeys{})
	require.NoError(t, f.store.SetSetting(ctx, legacyWatchCollapsedSetting, "true"))

	prefs := f.svc.loadPreferences(ctx)
	assert.Equal(t, map[string]bool{"watch": true}, prefs.CardCollapse)
}

func TestSetWatchRegion_RefreshesOpenDetail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, validKeys)
	f.markKeysValid(validKeys)

	f.svc.mu.Lock()
	f.svc.state.View = ViewDetail
	f.svc.state.SelectedID = "tt1375666"
	f.svc.mu.Unlock()

	_, err := f.svc.SetWatchRegion(ctx, "fr")
	require.NoError(t, err)
	assert.Equal(t, []string{"tt1375666"}, f.reconciled)
}

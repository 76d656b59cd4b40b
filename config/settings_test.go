package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	fsys := afero.NewMemMapFs()
	m := NewManagerWithFs(fsys, "/data/settings.json")

	s, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)

	exists, err := afero.Exists(fsys, "/data/settings.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLoadFillsMissingSections(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/settings.json", []byte(`{
		"server": {"host": "0.0.0.0", "port": 9000},
		"search": {"limit": 0, "fuzzyThreshold": 4},
		"providers": {"watchRegion": " usa "}
	}`), 0o644))

	s, err := NewManagerWithFs(fsys, "/settings.json").Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, s.Server.Port)
	assert.Equal(t, 5, s.Search.Limit)
	assert.Equal(t, 0.35, s.Search.FuzzyThreshold)
	assert.Equal(t, 40, s.Cache.TTLDays)
	assert.Equal(t, 24, s.Trending.RefreshHours)
	assert.Equal(t, "US", s.Providers.WatchRegion)
	assert.Equal(t, "cache/mediapedia.db", s.Cache.DatabasePath)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/settings.json", []byte(`{"server":`), 0o644))

	_, err := NewManagerWithFs(fsys, "/settings.json").Load()
	assert.Error(t, err)
}

func TestPathRequired(t *testing.T) {
	m := NewManagerWithFs(afero.NewMemMapFs(), "")
	_, err := m.Load()
	assert.ErrorIs(t, err, ErrPathNotSet)
	assert.ErrorIs(t, m.Save(DefaultSettings()), ErrPathNotSet)
}

func TestKeysRoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	m := NewManagerWithFs(fsys, "/cfg/settings.json")

	require.NoError(t, m.SetKeys(" omdb-key ", "tmdb-key"))

	keys, err := NewManagerWithFs(fsys, "/cfg/settings.json").GetKeys()
	require.NoError(t, err)
	assert.Equal(t, "omdb-key", keys.OMDbKey)
	assert.Equal(t, "tmdb-key", keys.TMDBKey)
	assert.True(t, keys.Complete())

	require.NoError(t, m.ResetKeys())
	keys, err = m.GetKeys()
	require.NoError(t, err)
	assert.False(t, keys.Complete())
	assert.Empty(t, keys.OMDbKey)

	exists, err := afero.Exists(fsys, "/cfg/settings.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

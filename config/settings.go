package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"mediapedia/models"
)

// ErrPathNotSet is returned when the manager has no settings file path.
var ErrPathNotSet = errors.New("config path not set")

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server    ServerSettings   `json:"server"`
	Keys      KeySettings      `json:"keys"`
	Cache     CacheSettings    `json:"cache"`
	Search    SearchSettings   `json:"search"`
	Trending  TrendingSettings `json:"trending"`
	Providers ProviderSettings `json:"providers"`
	Log       LogConfig        `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// KeySettings holds the provider API keys.
type KeySettings struct {
	OMDbAPIKey string `json:"omdbApiKey"`
	TMDBAPIKey string `json:"tmdbApiKey"`
}

type CacheSettings struct {
	DatabasePath string `json:"databasePath"`
	TTLDays      int    `json:"ttlDays"`
}

type SearchSettings struct {
	DebounceMs     int     `json:"debounceMs"`
	Limit          int     `json:"limit"`
	FuzzyThreshold float64 `json:"fuzzyThreshold"`
}

type TrendingSettings struct {
	RefreshHours         int `json:"refreshHours"`
	CheckIntervalMinutes int `json:"checkIntervalMinutes"`
}

// ProviderSettings tunes the OMDb and TMDB clients. RedisURL enables the shared
// provider response cache when set.
type ProviderSettings struct {
	OMDbBaseURL    string `json:"omdbBaseUrl"`
	TMDBBaseURL    string `json:"tmdbBaseUrl"`
	ImageBaseURL   string `json:"imageBaseUrl"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	MinIntervalMs  int    `json:"minIntervalMs"`
	RedisURL       string `json:"redisUrl"`
	WatchRegion    string `json:"watchRegion"`
}

// LogConfig controls log file rotation.
type LogConfig struct {
	File       string `json:"file"`
	MaxSize    int    `json:"maxSize"`    // megabytes per file
	MaxBackups int    `json:"maxBackups"` // rotated files kept
	MaxAge     int    `json:"maxAge"`     // days
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Host: "127.0.0.1", Port: 7788},
		Keys:   KeySettings{},
		Cache:  CacheSettings{DatabasePath: "cache/mediapedia.db", TTLDays: 40},
		Search: SearchSettings{DebounceMs: 250, Limit: 5, FuzzyThreshold: 0.35},
		Trending: TrendingSettings{
			RefreshHours:         24,
			CheckIntervalMinutes: 60,
		},
		Providers: ProviderSettings{
			OMDbBaseURL:    "https://www.omdbapi.com/",
			TMDBBaseURL:    "https://api.themoviedb.org/3",
			ImageBaseURL:   "https://image.tmdb.org/t/p/w500",
			TimeoutSeconds: 15,
			MinIntervalMs:  100,
			WatchRegion:    "GB",
		},
		Log: LogConfig{
			File:       "cache/logs/mediapedia.log",
			MaxSize:    20,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

func NewManager(configPath string) *Manager {
	return NewManagerWithFs(afero.NewOsFs(), configPath)
}

// NewManagerWithFs is NewManager over an arbitrary filesystem.
func NewManagerWithFs(fsys afero.Fs, configPath string) *Manager {
	return &Manager{fs: fsys, path: configPath}
}

func (m *Manager) Path() string {
	return m.path
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return m.fs.MkdirAll(dir, 0o755)
}

// Load reads settings.json or creates it with defaults if missing. Sections absent
// from the file keep their defaults.
func (m *Manager) Load() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

func (m *Manager) load() (Settings, error) {
	if m.path == "" {
		return Settings{}, ErrPathNotSet
	}
	exists, err := afero.Exists(m.fs, m.path)
	if err != nil {
		return Settings{}, err
	}
	if !exists {
		defaults := DefaultSettings()
		if err := m.save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}

	data, err := afero.ReadFile(m.fs, m.path)
	if err != nil {
		return Settings{}, err
	}
	s := DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}
	normalize(&s)
	return s, nil
}

// normalize replaces unusable values with defaults.
func normalize(s *Settings) {
	d := DefaultSettings()
	s.Keys.OMDbAPIKey = strings.TrimSpace(s.Keys.OMDbAPIKey)
	s.Keys.TMDBAPIKey = strings.TrimSpace(s.Keys.TMDBAPIKey)
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		s.Server.Port = d.Server.Port
	}
	if strings.TrimSpace(s.Cache.DatabasePath) == "" {
		s.Cache.DatabasePath = d.Cache.DatabasePath
	}
	if s.Cache.TTLDays <= 0 {
		s.Cache.TTLDays = d.Cache.TTLDays
	}
	if s.Search.DebounceMs < 0 {
		s.Search.DebounceMs = d.Search.DebounceMs
	}
	if s.Search.Limit <= 0 {
		s.Search.Limit = d.Search.Limit
	}
	if s.Search.FuzzyThreshold <= 0 || s.Search.FuzzyThreshold > 1 {
		s.Search.FuzzyThreshold = d.Search.FuzzyThreshold
	}
	if s.Trending.RefreshHours <= 0 {
		s.Trending.RefreshHours = d.Trending.RefreshHours
	}
	if s.Trending.CheckIntervalMinutes <= 0 {
		s.Trending.CheckIntervalMinutes = d.Trending.CheckIntervalMinutes
	}
	if s.Providers.TimeoutSeconds <= 0 {
		s.Providers.TimeoutSeconds = d.Providers.TimeoutSeconds
	}
	region := strings.ToUpper(strings.TrimSpace(s.Providers.WatchRegion))
	if len(region) > 2 {
		region = region[:2]
	}
	if region == "" {
		region = d.Providers.WatchRegion
	}
	s.Providers.WatchRegion = region
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(s)
}

func (m *Manager) save(s Settings) error {
	if m.path == "" {
		return ErrPathNotSet
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := m.fs.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := m.fs.Chmod(tmp, 0o600); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = m.fs.Remove(tmp)
		return err
	}
	return m.fs.Rename(tmp, m.path)
}

// GetKeys returns the stored provider keys.
func (m *Manager) GetKeys() (models.APIKeys, error) {
	s, err := m.Load()
	if err != nil {
		return models.APIKeys{}, err
	}
	return models.APIKeys{OMDbKey: s.Keys.OMDbAPIKey, TMDBKey: s.Keys.TMDBAPIKey}, nil
}

// SetKeys stores both provider keys.
func (m *Manager) SetKeys(omdbKey, tmdbKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.load()
	if err != nil {
		return err
	}
	s.Keys = KeySettings{
		OMDbAPIKey: strings.TrimSpace(omdbKey),
		TMDBAPIKey: strings.TrimSpace(tmdbKey),
	}
	return m.save(s)
}

// ResetKeys clears both provider keys.
func (m *Manager) ResetKeys() error {
	return m.SetKeys("", "")
}

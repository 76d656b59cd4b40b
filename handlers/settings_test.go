package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"mediapedia/config"
)

func newSettingsHandler(t *testing.T) (*SettingsHandler, *config.Manager) {
	t.Helper()
	mgr := config.NewManagerWithFs(afero.NewMemMapFs(), "/cfg/settings.json")
	if err := mgr.SetKeys("omdb-secret", "tmdb-secret"); err != nil {
		t.Fatalf("seed keys: %v", err)
	}
	return NewSettingsHandler(mgr), mgr
}

func TestSettingsHandler_GetRedactsKeys(t *testing.T) {
	h, _ := newSettingsHandler(t)

	rec := httptest.NewRecorder()
	h.GetSettings(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Fatalf("keys leaked in response: %s", rec.Body.String())
	}
	var resp SettingsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.HasOMDbKey || !resp.HasTMDBKey {
		t.Fatalf("expected key presence flags, got %+v", resp)
	}
	if resp.Server.Port != 7788 {
		t.Fatalf("expected default port, got %d", resp.Server.Port)
	}
}

func TestSettingsHandler_PutKeepsKeysAndNormalizes(t *testing.T) {
	h, mgr := newSettingsHandler(t)

	body := `{"search":{"limit":8,"fuzzyThreshold":4},"keys":{"omdbApiKey":"","tmdbApiKey":"hijack"}}`
	rec := httptest.NewRecorder()
	h.PutSettings(rec, httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp SettingsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.RestartRequired {
		t.Fatal("expected restartRequired")
	}
	if resp.Search.Limit != 8 {
		t.Fatalf("expected limit 8, got %d", resp.Search.Limit)
	}
	if resp.Search.FuzzyThreshold != 0.35 {
		t.Fatalf("expected threshold normalised to 0.35, got %v", resp.Search.FuzzyThreshold)
	}
	if resp.Search.DebounceMs != 250 {
		t.Fatalf("expected omitted debounce to keep 250, got %d", resp.Search.DebounceMs)
	}

	keys, err := mgr.GetKeys()
	if err != nil {
		t.Fatalf("GetKeys: %v", err)
	}
	if keys.OMDbKey != "omdb-secret" || keys.TMDBKey != "tmdb-secret" {
		t.Fatalf("keys must not change through settings: %+v", keys)
	}
}

func TestSettingsHandler_PutRejectsBadJSON(t *testing.T) {
	h, _ := newSettingsHandler(t)
	rec := httptest.NewRecorder()
	h.PutSettings(rec, httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(`{"server":`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

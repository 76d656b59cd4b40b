package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"mediapedia/models"
	"mediapedia/services/launcher"
)

type fakeLauncher struct {
	state       launcher.State
	suggestions []models.Suggestion
	trending    []models.Suggestion
	trendingErr error
	recent      []string
	saveErr     error
	openTarget  string
	prefs       models.Preferences

	lastQuery    string
	lastSelected string
	lastIndex    int
	lastDelta    int
	lastRegion   string
	lastCollapse collapseValue
	refreshedID  string
}

func (f *fakeLauncher) Snapshot() launcher.State { return f.state }

func (f *fakeLauncher) SetQuery(text string) []models.Suggestion {
	f.lastQuery = text
	return f.suggestions
}

func (f *fakeLauncher) Suggestions() []models.Suggestion { return f.suggestions }

func (f *fakeLauncher) SetSelectionIndex(i int) int {
	f.lastIndex = i
	return i
}

func (f *fakeLauncher) MoveSelection(delta int) int {
	f.lastDelta = delta
	return 1
}

func (f *fakeLauncher) SelectSuggestion(_ context.Context, id string) launcher.State {
	f.lastSelected = id
	f.state.SelectedID = id
	f.state.View = launcher.ViewDetail
	return f.state
}

func (f *fakeLauncher) BackToList() { f.state.View = launcher.ViewList }

func (f *fakeLauncher) RefreshDetails(_ context.Context, id string) { f.refreshedID = id }

func (f *fakeLauncher) DetailLinks() map[string]string { return map[string]string{} }

func (f *fakeLauncher) TrendingSuggestions() []models.Suggestion { return f.trending }

func (f *fakeLauncher) RefreshTrending(context.Context) error { return f.trendingErr }

func (f *fakeLauncher) RecentSearches(context.Context) ([]string, error) { return f.recent, nil }

func (f *fakeLauncher) TestKeys(_ context.Context, keys models.APIKeys) (bool, models.KeyErrors) {
	if keys.OMDbKey == "" {
		return false, models.KeyErrors{OMDb: "OMDb key is required."}
	}
	return true, models.KeyErrors{}
}

func (f *fakeLauncher) SaveKeys(context.Context, models.APIKeys) error { return f.saveErr }

func (f *fakeLauncher) ResetKeys() error { return nil }

func (f *fakeLauncher) Preferences() models.Preferences { return f.prefs }

func (f *fakeLauncher) SetShortcuts(context.Context, models.Shortcuts) error { return nil }

func (f *fakeLauncher) SetShowTrending(_ context.Context, show bool) error {
	f.prefs.ShowTrending = show
	return nil
}

func (f *fakeLauncher) SetTheme(context.Context, models.Theme) error { return nil }

func (f *fakeLauncher) SetLinkTarget(context.Context, models.LinkTarget) error { return nil }

func (f *fakeLauncher) SetWatchRegion(_ context.Context, region string) (string, error) {
	f.lastRegion = region
	return strings.ToUpper(region), nil
}

func (f *fakeLauncher) SetCardCollapsed(_ context.Context, id string, collapsed bool) error {
	f.lastCollapse = collapseValue{ID: id, Collapsed: collapsed}
	return nil
}

func (f *fakeLauncher) SetDetailCardOrder(_ context.Context, order models.DetailCardOrder) (models.DetailCardOrder, error) {
	return order, nil
}

func (f *fakeLauncher) OpenTarget(context.Context) string { return f.openTarget }

func newTestRouter(f *fakeLauncher) *mux.Router {
	h := NewLauncherHandler(f)
	r := mux.NewRouter()
	r.HandleFunc("/state", h.GetState).Methods(http.MethodGet)
	r.HandleFunc("/query", h.SetQuery).Methods(http.MethodPut)
	r.HandleFunc("/selection", h.SetSelection).Methods(http.MethodPut)
	r.HandleFunc("/titles/{id}/select", h.SelectTitle).Methods(http.MethodPost)
	r.HandleFunc("/details/refresh", h.RefreshDetails).Methods(http.MethodPost)
	r.HandleFunc("/trending/refresh", h.RefreshTrending).Methods(http.MethodPost)
	r.HandleFunc("/recent", h.GetRecent).Methods(http.MethodGet)
	r.HandleFunc("/keys/test", h.TestKeys).Methods(http.MethodPost)
	r.HandleFunc("/keys", h.SaveKeys).Methods(http.MethodPut)
	r.HandleFunc("/preferences/{name}", h.SetPreference).Methods(http.MethodPut)
	r.HandleFunc("/open-target", h.OpenTarget).Methods(http.MethodGet)
	return r
}

func serve(t *testing.T, r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	return payload["error"]
}

func TestLauncherHandler_SetQuery(t *testing.T) {
	f := &fakeLauncher{suggestions: []models.Suggestion{{ID: "tt1375666", Title: "Inception"}}}
	rec := serve(t, newTestRouter(f), http.MethodPut, "/query", `{"query":"inception"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if f.lastQuery != "inception" {
		t.Fatalf("expected query to be forwarded, got %q", f.lastQuery)
	}
	var resp struct {
		Suggestions []models.Suggestion `json:"suggestions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Suggestions) != 1 || resp.Suggestions[0].ID != "tt1375666" {
		t.Fatalf("unexpected suggestions: %+v", resp.Suggestions)
	}
}

func TestLauncherHandler_SetQueryRejectsBadBody(t *testing.T) {
	rec := serve(t, newTestRouter(&fakeLauncher{}), http.MethodPut, "/query", `{`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "invalid request body" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestLauncherHandler_Selection(t *testing.T) {
	f := &fakeLauncher{}
	r := newTestRouter(f)

	if rec := serve(t, r, http.MethodPut, "/selection", `{"index":3}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if f.lastIndex != 3 {
		t.Fatalf("expected index 3, got %d", f.lastIndex)
	}

	if rec := serve(t, r, http.MethodPut, "/selection", `{"delta":-1}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if f.lastDelta != -1 {
		t.Fatalf("expected delta -1, got %d", f.lastDelta)
	}

	if rec := serve(t, r, http.MethodPut, "/selection", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLauncherHandler_SelectTitle(t *testing.T) {
	f := &fakeLauncher{}
	rec := serve(t, newTestRouter(f), http.MethodPost, "/titles/tmdb:27205/select", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if f.lastSelected != "tmdb:27205" {
		t.Fatalf("expected id tmdb:27205, got %q", f.lastSelected)
	}
	var state launcher.State
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.View != launcher.ViewDetail {
		t.Fatalf("expected detail view, got %q", state.View)
	}
}

func TestLauncherHandler_RefreshDetailsOptionalBody(t *testing.T) {
	f := &fakeLauncher{}
	r := newTestRouter(f)

	if rec := serve(t, r, http.MethodPost, "/details/refresh", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without body, got %d", rec.Code)
	}
	if rec := serve(t, r, http.MethodPost, "/details/refresh", `{"id":"tt0111161"}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if f.refreshedID != "tt0111161" {
		t.Fatalf("expected refresh of tt0111161, got %q", f.refreshedID)
	}
}

func TestLauncherHandler_RefreshTrendingError(t *testing.T) {
	f := &fakeLauncher{trendingErr: errors.New("tmdb: status 503")}
	rec := serve(t, newTestRouter(f), http.MethodPost, "/trending/refresh", "")

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "tmdb: status 503" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestLauncherHandler_RecentEmptyIsArray(t *testing.T) {
	rec := serve(t, newTestRouter(&fakeLauncher{}), http.MethodGet, "/recent", "")
	if got := strings.TrimSpace(rec.Body.String()); got != `{"queries":[]}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestLauncherHandler_Keys(t *testing.T) {
	f := &fakeLauncher{}
	r := newTestRouter(f)

	rec := serve(t, r, http.MethodPost, "/keys/test", `{"tmdbKey":"t"}`)
	var resp keysResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OK || resp.Errors == nil || resp.Errors.OMDb != "OMDb key is required." {
		t.Fatalf("unexpected test response: %+v", resp)
	}

	f.saveErr = launcher.ErrInvalidKeys
	f.state.KeyErrors = &models.KeyErrors{TMDB: "TMDB error: 401"}
	rec = serve(t, r, http.MethodPut, "/keys", `{"omdbKey":"o","tmdbKey":"t"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	f.saveErr = nil
	rec = serve(t, r, http.MethodPut, "/keys", `{"omdbKey":"o","tmdbKey":"t"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestLauncherHandler_SetPreference(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{name: "region", path: "/preferences/watchRegion", body: `{"value":"us"}`, wantStatus: http.StatusOK},
		{name: "collapse", path: "/preferences/cardCollapse", body: `{"value":{"id":"watch","collapsed":true}}`, wantStatus: http.StatusOK},
		{name: "collapse without id", path: "/preferences/cardCollapse", body: `{"value":{"collapsed":true}}`, wantStatus: http.StatusBadRequest},
		{name: "wrong type", path: "/preferences/showTrending", body: `{"value":"yes"}`, wantStatus: http.StatusBadRequest},
		{name: "missing value", path: "/preferences/theme", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "unknown", path: "/preferences/fontSize", body: `{"value":12}`, wantStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeLauncher{}
			rec := serve(t, newTestRouter(f), http.MethodPut, tc.path, tc.body)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}

	f := &fakeLauncher{}
	serve(t, newTestRouter(f), http.MethodPut, "/preferences/cardCollapse", `{"value":{"id":"watch","collapsed":true}}`)
	if f.lastCollapse != (collapseValue{ID: "watch", Collapsed: true}) {
		t.Fatalf("unexpected collapse call %+v", f.lastCollapse)
	}
}

func TestLauncherHandler_OpenTarget(t *testing.T) {
	f := &fakeLauncher{}
	r := newTestRouter(f)

	if rec := serve(t, r, http.MethodGet, "/open-target", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	f.openTarget = "https://www.imdb.com/title/tt1375666/"
	rec := serve(t, r, http.MethodGet, "/open-target", "")
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["url"] != f.openTarget {
		t.Fatalf("unexpected url %q", resp["url"])
	}
}

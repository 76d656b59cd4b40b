package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"mediapedia/models"
	"mediapedia/services/launcher"
)

type launcherService interface {
	Snapshot() launcher.State
	SetQuery(text string) []models.Suggestion
	Suggestions() []models.Suggestion
	SetSelectionIndex(i int) int
	MoveSelection(delta int) int
	SelectSuggestion(ctx context.Context, id string) launcher.State
	BackToList()
	RefreshDetails(ctx context.Context, id string)
	DetailLinks() map[string]string
	TrendingSuggestions() []models.Suggestion
	RefreshTrending(ctx context.Context) error
	RecentSearches(ctx context.Context) ([]string, error)
	TestKeys(ctx context.Context, keys models.APIKeys) (bool, models.KeyErrors)
	SaveKeys(ctx context.Context, keys models.APIKeys) error
	ResetKeys() error
	Preferences() models.Preferences
	SetShortcuts(ctx context.Context, shortcuts models.Shortcuts) error
	SetShowTrending(ctx context.Context, show bool) error
	SetTheme(ctx context.Context, theme models.Theme) error
	SetLinkTarget(ctx context.Context, target models.LinkTarget) error
	SetWatchRegion(ctx context.Context, region string) (string, error)
	SetCardCollapsed(ctx context.Context, id string, collapsed bool) error
	SetDetailCardOrder(ctx context.Context, order models.DetailCardOrder) (models.DetailCardOrder, error)
	OpenTarget(ctx context.Context) string
}

var _ launcherService = (*launcher.Service)(nil)

// LauncherHandler exposes the launcher actions as JSON endpoints.
type LauncherHandler struct {
	Service launcherService
}

func NewLauncherHandler(s launcherService) *LauncherHandler {
	return &LauncherHandler{Service: s}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error response
func writeJSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (h *LauncherHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Snapshot())
}

type queryRequest struct {
	Query string `json:"query"`
}

func (h *LauncherHandler) SetQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	suggestions := h.Service.SetQuery(req.Query)
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": nonNil(suggestions)})
}

func (h *LauncherHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": nonNil(h.Service.Suggestions())})
}

type selectionRequest struct {
	Index *int `json:"index"`
	Delta *int `json:"delta"`
}

func (h *LauncherHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	var index int
	switch {
	case req.Index != nil:
		index = h.Service.SetSelectionIndex(*req.Index)
	case req.Delta != nil:
		index = h.Service.MoveSelection(*req.Delta)
	default:
		writeJSONError(w, "index or delta is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"selectionIndex": index})
}

func (h *LauncherHandler) SelectTitle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		writeJSONError(w, "id is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.Service.SelectSuggestion(r.Context(), id))
}

func (h *LauncherHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.Service.BackToList()
	writeJSON(w, http.StatusOK, h.Service.Snapshot())
}

type refreshRequest struct {
	ID string `json:"id"`
}

func (h *LauncherHandler) RefreshDetails(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	h.Service.RefreshDetails(r.Context(), req.ID)
	writeJSON(w, http.StatusOK, h.Service.Snapshot())
}

func (h *LauncherHandler) DetailLinks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.DetailLinks())
}

func (h *LauncherHandler) GetTrending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": nonNil(h.Service.TrendingSuggestions())})
}

func (h *LauncherHandler) RefreshTrending(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.RefreshTrending(r.Context()); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": nonNil(h.Service.TrendingSuggestions())})
}

func (h *LauncherHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	recent, err := h.Service.RecentSearches(r.Context())
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if recent == nil {
		recent = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"queries": recent})
}

type keysRequest struct {
	OMDbKey string `json:"omdbKey"`
	TMDBKey string `json:"tmdbKey"`
}

type keysResponse struct {
	OK     bool              `json:"ok"`
	Errors *models.KeyErrors `json:"errors,omitempty"`
}

func (h *LauncherHandler) TestKeys(w http.ResponseWriter, r *http.Request) {
	var req keysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	ok, errs := h.Service.TestKeys(r.Context(), models.APIKeys{OMDbKey: req.OMDbKey, TMDBKey: req.TMDBKey})
	resp := keysResponse{OK: ok}
	if !ok {
		resp.Errors = &errs
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LauncherHandler) SaveKeys(w http.ResponseWriter, r *http.Request) {
	var req keysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	err := h.Service.SaveKeys(r.Context(), models.APIKeys{OMDbKey: req.OMDbKey, TMDBKey: req.TMDBKey})
	switch {
	case errors.Is(err, launcher.ErrInvalidKeys):
		writeJSON(w, http.StatusUnprocessableEntity, keysResponse{Errors: h.Service.Snapshot().KeyErrors})
		return
	case err != nil:
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, keysResponse{OK: true})
}

func (h *LauncherHandler) ResetKeys(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ResetKeys(); err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LauncherHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Preferences())
}

type collapseValue struct {
	ID        string `json:"id"`
	Collapsed bool   `json:"collapsed"`
}

// SetPreference updates one preference. The body is {"value": ...} with a value shaped
// for the named preference.
func (h *LauncherHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Value) == 0 {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	var err error
	switch name := mux.Vars(r)["name"]; name {
	case "shortcuts":
		var v models.Shortcuts
		if err = json.Unmarshal(body.Value, &v); err == nil {
			err = h.Service.SetShortcuts(ctx, v)
		}
	case "showTrending":
		var v bool
		if err = json.Unmarshal(body.Value, &v); err == nil {
			err = h.Service.SetShowTrending(ctx, v)
		}
	case "theme":
		var v models.Theme
		if err = json.Unmarshal(body.Value, &v); err == nil {
			err = h.Service.SetTheme(ctx, v)
		}
	case "metadataLinkTarget":
		var v models.LinkTarget
		if err = json.Unmarshal(body.Value, &v); err == nil {
			err = h.Service.SetLinkTarget(ctx, v)
		}
	case "watchRegion":
		var v string
		if err = json.Unmarshal(body.Value, &v); err == nil {
			_, err = h.Service.SetWatchRegion(ctx, v)
		}
	case "cardCollapse":
		var v collapseValue
		if err = json.Unmarshal(body.Value, &v); err == nil {
			if strings.TrimSpace(v.ID) == "" {
				writeJSONError(w, "card id is required", http.StatusBadRequest)
				return
			}
			err = h.Service.SetCardCollapsed(ctx, v.ID, v.Collapsed)
		}
	case "detailCardOrder":
		var v models.DetailCardOrder
		if err = json.Unmarshal(body.Value, &v); err == nil {
			_, err = h.Service.SetDetailCardOrder(ctx, v)
		}
	default:
		writeJSONError(w, "unknown preference: "+name, http.StatusNotFound)
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		writeJSONError(w, "invalid value", http.StatusBadRequest)
		return
	case err != nil:
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Preferences())
}

func (h *LauncherHandler) OpenTarget(w http.ResponseWriter, r *http.Request) {
	target := h.Service.OpenTarget(r.Context())
	if target == "" {
		writeJSONError(w, "no link available for the current selection", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": target})
}

func nonNil(s []models.Suggestion) []models.Suggestion {
	if s == nil {
		return []models.Suggestion{}
	}
	return s
}

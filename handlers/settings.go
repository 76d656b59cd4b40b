package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"mediapedia/config"
)

type settingsStore interface {
	Load() (config.Settings, error)
	Save(config.Settings) error
}

var _ settingsStore = (*config.Manager)(nil)

type SettingsHandler struct {
	Manager settingsStore
}

func NewSettingsHandler(m settingsStore) *SettingsHandler {
	return &SettingsHandler{Manager: m}
}

// SettingsResponse is config.Settings with the provider keys replaced by presence flags.
// Keys are only written through the keys endpoints, which validate them first.
type SettingsResponse struct {
	config.Settings
	HasOMDbKey bool `json:"hasOmdbKey"`
	HasTMDBKey bool `json:"hasTmdbKey"`
	// RestartRequired is set after a save; the running services keep their settings.
	RestartRequired bool `json:"restartRequired,omitempty"`
}

func redact(s config.Settings) SettingsResponse {
	resp := SettingsResponse{
		Settings:   s,
		HasOMDbKey: s.Keys.OMDbAPIKey != "",
		HasTMDBKey: s.Keys.TMDBAPIKey != "",
	}
	resp.Keys = config.KeySettings{}
	return resp
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.Manager.Load()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, redact(s))
}

func (h *SettingsHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	current, err := h.Manager.Load()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Decode over the current settings so omitted sections are kept.
	next := current
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	next.Keys = current.Keys

	if err := h.Manager.Save(next); err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	saved, err := h.Manager.Load()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Printf("[settings] settings saved; changes apply on restart")

	resp := redact(saved)
	resp.RestartRequired = true
	writeJSON(w, http.StatusOK, resp)
}

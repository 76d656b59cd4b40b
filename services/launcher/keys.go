package launcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc"

	"mediapedia/models"
)

// ErrInvalidKeys is returned by SaveKeys when validation fails; the per-provider
// messages are in the state's KeyErrors.
var ErrInvalidKeys = errors.New("provider keys failed validation")

// TestKeys validates both keys concurrently and records per-provider messages.
func (s *Service) TestKeys(ctx context.Context, keys models.APIKeys) (bool, models.KeyErrors) {
	keys.OMDbKey = strings.TrimSpace(keys.OMDbKey)
	keys.TMDBKey = strings.TrimSpace(keys.TMDBKey)

	var errs models.KeyErrors
	if keys.OMDbKey == "" {
		errs.OMDb = "OMDb key is required."
	}
	if keys.TMDBKey == "" {
		errs.TMDB = "TMDB key is required."
	}
	if !errs.Empty() {
		s.setKeyErrors(&errs)
		return false, errs
	}

	var omdbStatus, tmdbStatus models.ProviderStatus
	var wg conc.WaitGroup
	wg.Go(func() { omdbStatus = s.omdb.ValidateKey(ctx, keys.OMDbKey) })
	wg.Go(func() { tmdbStatus = s.tmdb.ValidateKey(ctx, keys.TMDBKey) })
	if r := wg.WaitAndRecover(); r != nil {
		msg := fmt.Sprintf("Key validation failed: %v", r.Value)
		errs = models.KeyErrors{OMDb: msg, TMDB: msg}
		s.setKeyErrors(&errs)
		return false, errs
	}

	if !omdbStatus.OK {
		errs.OMDb = firstNonEmpty(omdbStatus.Message, "OMDb key validation failed.")
	}
	if !tmdbStatus.OK {
		errs.TMDB = firstNonEmpty(tmdbStatus.Message, "TMDB key validation failed.")
	}
	if !errs.Empty() {
		s.setKeyErrors(&errs)
		return false, errs
	}
	s.setKeyErrors(nil)
	return true, errs
}

// SaveKeys validates and stores keys, then re-runs the detail refresh when a detail
// view is open.
func (s *Service) SaveKeys(ctx context.Context, keys models.APIKeys) error {
	keys.OMDbKey = strings.TrimSpace(keys.OMDbKey)
	keys.TMDBKey = strings.TrimSpace(keys.TMDBKey)

	if ok, _ := s.TestKeys(ctx, keys); !ok {
		return ErrInvalidKeys
	}
	if err := s.keyStore.SetKeys(keys.OMDbKey, keys.TMDBKey); err != nil {
		msg := "Failed to save keys."
		s.setKeyErrors(&models.KeyErrors{OMDb: msg, TMDB: msg})
		return fmt.Errorf("save keys: %w", err)
	}
	s.omdb.SetKey(keys.OMDbKey)
	s.tmdb.SetKey(keys.TMDBKey)

	s.mu.Lock()
	s.keys = keys
	s.state.HasOMDbKey = true
	s.state.HasTMDBKey = true
	s.state.KeysValid = true
	s.state.KeyErrors = nil
	view := s.state.View
	s.mu.Unlock()

	if view == ViewDetail {
		s.RefreshDetails(ctx, "")
	}
	return nil
}

// ResetKeys clears both keys and disables remote search.
func (s *Service) ResetKeys() error {
	if err := s.keyStore.ResetKeys(); err != nil {
		return fmt.Errorf("reset keys: %w", err)
	}
	s.omdb.SetKey("")
	s.tmdb.SetKey("")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = models.APIKeys{}
	s.state.HasOMDbKey = false
	s.state.HasTMDBKey = false
	s.state.KeysValid = false
	s.state.KeyErrors = nil
	return nil
}

func (s *Service) setKeyErrors(errs *models.KeyErrors) {
	s.mu.Lock()
	s.state.KeyErrors = errs
	s.mu.Unlock()
}

package launcher

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/samber/lo"

	"mediapedia/models"
)

// Setting keys for persisted preferences.
const (
	SettingShortcuts            = "shortcuts"
	SettingShowTrending         = "show_trending"
	SettingTheme                = "theme"
	SettingLinkTarget           = "metadata_link_target"
	SettingWatchRegion          = "watch_region"
	SettingCardCollapsed        = "detail_card_collapsed"
	SettingDetailCardOrder      = "detail_card_order"
	legacyWatchCollapsedSetting = "watch_providers_collapsed"
)

// loadPreferences reads every preference, falling back to defaults for anything
// missing or malformed.
func (s *Service) loadPreferences(ctx context.Context) models.Preferences {
	prefs := models.DefaultPreferences()
	get := func(key string) (string, bool) {
		v, ok, err := s.store.GetSetting(ctx, key)
		if err != nil {
			log.Printf("[launcher] read setting %s failed: %v", key, err)
			return "", false
		}
		return v, ok
	}

	if raw, ok := get(SettingShortcuts); ok {
		prefs.Shortcuts = ParseShortcuts(raw)
	}
	if raw, ok := get(SettingShowTrending); ok {
		prefs.ShowTrending = raw == "true"
	}
	if raw, ok := get(SettingTheme); ok && raw == string(models.ThemeLight) {
		prefs.Theme = models.ThemeLight
	}
	if raw, ok := get(SettingLinkTarget); ok {
		prefs.LinkTarget = ParseLinkTarget(raw)
	}
	if raw, ok := get(SettingWatchRegion); ok {
		prefs.WatchRegion = strings.ToUpper(strings.TrimSpace(raw))
	}
	if raw, ok := get(SettingCardCollapsed); ok {
		prefs.CardCollapse = ParseCardCollapse(raw)
	} else if raw, ok := get(legacyWatchCollapsedSetting); ok {
		prefs.CardCollapse = map[string]bool{"watch": raw == "true"}
	}
	raw, _ := get(SettingDetailCardOrder)
	prefs.DetailCardOrder = ParseDetailCardOrder(raw)
	return prefs
}

// Preferences returns the current preferences.
func (s *Service) Preferences() models.Preferences {
	return s.Snapshot().Preferences
}

func (s *Service) SetShortcuts(ctx context.Context, shortcuts models.Shortcuts) error {
	data, err := json.Marshal(shortcuts)
	if err != nil {
		return err
	}
	if err := s.store.SetSetting(ctx, SettingShortcuts, string(data)); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Preferences.Shortcuts = shortcuts
	s.mu.Unlock()
	return nil
}

func (s *Service) SetShowTrending(ctx context.Context, show bool) error {
	value := "false"
	if show {
		value = "true"
	}
	if err := s.store.SetSetting(ctx, SettingShowTrending, value); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Preferences.ShowTrending = show
	s.mu.Unlock()
	return nil
}

func (s *Service) SetTheme(ctx context.Context, theme models.Theme) error {
	if theme != models.ThemeLight {
		theme = models.ThemeDark
	}
	if err := s.store.SetSetting(ctx, SettingTheme, string(theme)); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Preferences.Theme = theme
	s.mu.Unlock()
	return nil
}

func (s *Service) SetLinkTarget(ctx context.Context, target models.LinkTarget) error {
	target = ParseLinkTarget(string(target))
	if err := s.store.SetSetting(ctx, SettingLinkTarget, string(target)); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Preferences.LinkTarget = target
	s.mu.Unlock()
	return nil
}

// SetWatchRegion stores a two-letter region code (default GB) and refreshes the open
// detail view so its watch providers follow the region.
func (s *Service) SetWatchRegion(ctx context.Context, region string) (string, error) {
	next := NormalizeRegion(region)
	if err := s.store.SetSetting(ctx, SettingWatchRegion, next); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.state.Preferences.WatchRegion = next
	view := s.state.View
	s.mu.Unlock()

	if view == ViewDetail {
		s.RefreshDetails(ctx, "")
	}
	return next, nil
}

func (s *Service) SetCardCollapsed(ctx context.Context, id string, collapsed bool) error {
	s.mu.Lock()
	next := lo.Assign(s.state.Preferences.CardCollapse, map[string]bool{id: collapsed})
	s.mu.Unlock()

	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err := s.store.SetSetting(ctx, SettingCardCollapsed, string(data)); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Preferences.CardCollapse = next
	s.mu.Unlock()
	return nil
}

func (s *Service) SetDetailCardOrder(ctx context.Context, order models.DetailCardOrder) (models.DetailCardOrder, error) {
	normalized := NormalizeDetailCardOrder(order)
	data, err := json.Marshal(normalized)
	if err != nil {
		return models.DetailCardOrder{}, err
	}
	if err := s.store.SetSetting(ctx, SettingDetailCardOrder, string(data)); err != nil {
		return models.DetailCardOrder{}, err
	}
	s.mu.Lock()
	s.state.Preferences.DetailCardOrder = normalized
	s.mu.Unlock()
	return normalized, nil
}

// NormalizeRegion upper-cases region and keeps its first two letters, defaulting to GB.
func NormalizeRegion(region string) string {
	next := strings.ToUpper(strings.TrimSpace(region))
	if len(next) > 2 {
		next = next[:2]
	}
	if next == "" {
		return "GB"
	}
	return next
}

func ParseLinkTarget(raw string) models.LinkTarget {
	switch models.LinkTarget(raw) {
	case models.LinkTargetRotten, models.LinkTargetMetacritic:
		return models.LinkTarget(raw)
	default:
		return models.LinkTargetIMDb
	}
}

// ParseShortcuts overlays stored shortcuts on the defaults.
func ParseShortcuts(raw string) models.Shortcuts {
	shortcuts := models.DefaultShortcuts()
	var stored map[string]string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return shortcuts
	}
	if v := stored["globalSearch"]; v != "" {
		shortcuts.GlobalSearch = v
	}
	if v := stored["refreshDetails"]; v != "" {
		shortcuts.RefreshDetails = v
	}
	if v := stored["openImdb"]; v != "" {
		shortcuts.OpenIMDb = v
	}
	return shortcuts
}

// ParseCardCollapse overlays the stored collapse map on the default.
func ParseCardCollapse(raw string) map[string]bool {
	defaults := map[string]bool{"watch": false}
	var stored map[string]bool
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || stored == nil {
		return defaults
	}
	return lo.Assign(defaults, stored)
}

// ParseDetailCardOrder accepts the {left, right} form or a legacy flat array, which
// is dealt into the two columns alternately.
func ParseDetailCardOrder(raw string) models.DetailCardOrder {
	if strings.TrimSpace(raw) == "" {
		return models.DefaultDetailCardOrder()
	}

	var flat []string
	if err := json.Unmarshal([]byte(raw), &flat); err == nil {
		var order models.DetailCardOrder
		for i, id := range flat {
			if i%2 == 0 {
				order.Left = append(order.Left, id)
			} else {
				order.Right = append(order.Right, id)
			}
		}
		return NormalizeDetailCardOrder(order)
	}

	var columns struct {
		Left  *[]string `json:"left"`
		Right *[]string `json:"right"`
	}
	if err := json.Unmarshal([]byte(raw), &columns); err != nil || columns.Left == nil || columns.Right == nil {
		return models.DefaultDetailCardOrder()
	}
	return NormalizeDetailCardOrder(models.DetailCardOrder{Left: *columns.Left, Right: *columns.Right})
}

// NormalizeDetailCardOrder drops unknown and duplicate card ids and appends missing
// cards alternately to the left and right columns.
func NormalizeDetailCardOrder(order models.DetailCardOrder) models.DetailCardOrder {
	seen := map[string]bool{}
	keep := func(ids []string) []string {
		out := []string{}
		for _, id := range ids {
			if !lo.Contains(models.DetailCardIDs, id) || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
		return out
	}
	out := models.DetailCardOrder{Left: keep(order.Left), Right: keep(order.Right)}

	missing := lo.Reject(models.DetailCardIDs, func(id string, _ int) bool { return seen[id] })
	for i, id := range missing {
		if i%2 == 0 {
			out.Left = append(out.Left, id)
		} else {
			out.Right = append(out.Right, id)
		}
	}
	return out
}

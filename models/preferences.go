package models

// Shortcuts holds accelerator strings for the launcher's global actions.
type Shortcuts struct {
	GlobalSearch   string `json:"globalSearch"`
	RefreshDetails string `json:"refreshDetails"`
	OpenIMDb       string `json:"openImdb"`
}

// DefaultShortcuts returns the accelerators used when none are stored.
func DefaultShortcuts() Shortcuts {
	return Shortcuts{
		GlobalSearch:   "CommandOrControl+K",
		RefreshDetails: "CommandOrControl+R",
		OpenIMDb:       "CommandOrControl+O",
	}
}

// DetailCardOrder places the detail cards in two columns.
type DetailCardOrder struct {
	Left  []string `json:"left"`
	Right []string `json:"right"`
}

// DetailCardIDs lists every card a detail view can show, in default placement order.
var DetailCardIDs = []string{"poster", "ratings", "people", "plot", "watch"}

func DefaultDetailCardOrder() DetailCardOrder {
	return DetailCardOrder{
		Left:  []string{"poster", "ratings", "people"},
		Right: []string{"plot", "watch"},
	}
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// LinkTarget selects which external site "open" sends the user to.
type LinkTarget string

const (
	LinkTargetIMDb       LinkTarget = "imdb"
	LinkTargetRotten     LinkTarget = "rotten"
	LinkTargetMetacritic LinkTarget = "metacritic"
)

// Preferences are the persisted UI choices stored as cache settings.
type Preferences struct {
	Shortcuts       Shortcuts       `json:"shortcuts"`
	ShowTrending    bool            `json:"showTrending"`
	Theme           Theme           `json:"theme"`
	LinkTarget      LinkTarget      `json:"metadataLinkTarget"`
	WatchRegion     string          `json:"watchRegion"`
	CardCollapse    map[string]bool `json:"cardCollapse"`
	DetailCardOrder DetailCardOrder `json:"detailCardOrder"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Shortcuts:       DefaultShortcuts(),
		ShowTrending:    true,
		Theme:           ThemeDark,
		LinkTarget:      LinkTargetIMDb,
		WatchRegion:     "GB",
		CardCollapse:    map[string]bool{"watch": false},
		DetailCardOrder: DefaultDetailCardOrder(),
	}
}

package behavior

// Caps for the rolling activity windows. Inserts prepend and truncate, so the
// bounds hold after every mutation.
const (
	MaxRecentSearches = 20
	MaxViewedContent  = 50
	MaxClickPatterns  = 100
)

// ClickPattern is one recorded click with its surrounding UI context.
type ClickPattern struct {
	ContentID string `json:"contentId"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	Context   string `json:"context"`
}

// Preferences hold the user's sticky content preferences. Written seldom,
// read by the recommendation strategies.
type Preferences struct {
	ContentTypes []string `json:"contentTypes"`
	Topics       []string `json:"topics"`
	TimeOfDay    string   `json:"timeOfDay"`
}

// UserBehavior is the rolling record of user activity, serialized as one JSON
// document under a single storage key.
type UserBehavior struct {
	RecentSearches []string         `json:"recentSearches"`
	ViewedContent  []string         `json:"viewedContent"`
	TimeOnPage     map[string]int64 `json:"timeOnPage"` // contentID -> cumulative ms
	ClickPatterns  []ClickPattern   `json:"clickPatterns"`
	Preferences    Preferences      `json:"preferences"`
}

// EmptyBehavior returns the zero-activity default document.
func EmptyBehavior() UserBehavior {
	return UserBehavior{
		RecentSearches: []string{},
		ViewedContent:  []string{},
		TimeOnPage:     map[string]int64{},
		ClickPatterns:  []ClickPattern{},
		Preferences: Preferences{
			ContentTypes: []string{},
			Topics:       []string{},
			TimeOfDay:    "morning",
		},
	}
}

// Clone returns a deep copy safe to read while the original keeps mutating.
func (b UserBehavior) Clone() UserBehavior {
	out := UserBehavior{
		RecentSearches: append([]string{}, b.RecentSearches...),
		ViewedContent:  append([]string{}, b.ViewedContent...),
		TimeOnPage:     make(map[string]int64, len(b.TimeOnPage)),
		ClickPatterns:  append([]ClickPattern{}, b.ClickPatterns...),
		Preferences: Preferences{
			ContentTypes: append([]string{}, b.Preferences.ContentTypes...),
			Topics:       append([]string{}, b.Preferences.Topics...),
			TimeOfDay:    b.Preferences.TimeOfDay,
		},
	}
	for k, v := range b.TimeOnPage {
		out.TimeOnPage[k] = v
	}
	return out
}

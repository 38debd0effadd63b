package behavior

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/storysearch/surfacer/pkg/logger"
)

// Store is the single source of truth for user activity. Every mutation
// updates the in-memory document, persists it synchronously, then fires the
// change hook. Persistence failures are logged and the in-memory state stays
// authoritative for the session.
type Store struct {
	mu      sync.Mutex
	storage Storage

	state      UserBehavior
	activePage string
	pageStart  time.Time

	now      func() time.Time
	onChange func()
}

// NewStore loads prior state from storage. A missing document starts empty;
// a corrupt one is discarded with a logged error rather than failing the
// caller.
func NewStore(storage Storage) *Store {
	s := &Store{
		storage: storage,
		state:   EmptyBehavior(),
		now:     time.Now,
	}

	data, ok, err := storage.Load(context.Background())
	if err != nil {
		logger.ErrorCF("behavior", "Failed to load behavior document", map[string]any{
			"error": err.Error(),
		})
		return s
	}
	if !ok {
		return s
	}
	var prior UserBehavior
	if err := json.Unmarshal(data, &prior); err != nil {
		logger.ErrorCF("behavior", "Corrupt behavior document, resetting to defaults", map[string]any{
			"error": err.Error(),
		})
		return s
	}
	normalize(&prior)
	s.state = prior
	return s
}

// SetOnChange installs the hook fired after every persisted mutation. The
// aggregator uses it to arm its debounce timer.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// TrackSearch records a search query, most recent first. Empty and whitespace
// queries are recorded as-is; filtering is the caller's policy.
func (s *Store) TrackSearch(ctx context.Context, query string) {
	s.mu.Lock()
	s.state.RecentSearches = prependCapped(s.state.RecentSearches, query, MaxRecentSearches)
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// TrackContentView records a viewed content id and starts the dwell clock for
// that page.
func (s *Store) TrackContentView(ctx context.Context, contentID string) {
	s.mu.Lock()
	s.activePage = contentID
	s.pageStart = s.now()
	s.state.ViewedContent = prependCapped(s.state.ViewedContent, contentID, MaxViewedContent)
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// TrackTimeOnPage folds the elapsed dwell interval into the active page's
// cumulative total and restarts the clock, so repeated calls accumulate real
// wall-clock time without double counting. Safe to call with no active page.
func (s *Store) TrackTimeOnPage(ctx context.Context) {
	s.mu.Lock()
	if s.activePage == "" {
		s.mu.Unlock()
		return
	}
	now := s.now()
	elapsed := now.Sub(s.pageStart).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	s.pageStart = now
	s.state.TimeOnPage[s.activePage] += elapsed
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// TrackClick records a click with its UI context, most recent first.
func (s *Store) TrackClick(ctx context.Context, contentID, clickContext string) {
	s.mu.Lock()
	s.state.ClickPatterns = append([]ClickPattern{{
		ContentID: contentID,
		Timestamp: s.now().UnixMilli(),
		Context:   clickContext,
	}}, s.state.ClickPatterns...)
	if len(s.state.ClickPatterns) > MaxClickPatterns {
		s.state.ClickPatterns = s.state.ClickPatterns[:MaxClickPatterns]
	}
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// UpdatePreferences replaces the sticky preference block.
func (s *Store) UpdatePreferences(ctx context.Context, prefs Preferences) {
	s.mu.Lock()
	s.state.Preferences = prefs
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// Clear resets all activity to defaults and deletes the persisted document.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.state = EmptyBehavior()
	s.activePage = ""
	s.pageStart = time.Time{}
	err := s.storage.Delete(ctx)
	s.mu.Unlock()
	if err != nil {
		logger.ErrorCF("behavior", "Failed to delete behavior document", map[string]any{
			"error": err.Error(),
		})
		return err
	}
	s.notify()
	return nil
}

// Snapshot returns a deep copy for analysis, taken synchronously so an
// in-flight aggregation never reads state mid-mutation.
func (s *Store) Snapshot() UserBehavior {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.state)
	if err != nil {
		logger.ErrorCF("behavior", "Failed to serialize behavior document", map[string]any{
			"error": err.Error(),
		})
		return
	}
	if err := s.storage.Save(ctx, data); err != nil {
		logger.ErrorCF("behavior", "Failed to persist behavior document", map[string]any{
			"error": err.Error(),
		})
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func prependCapped(list []string, v string, bound int) []string {
	out := append([]string{v}, list...)
	if len(out) > bound {
		out = out[:bound]
	}
	return out
}

// normalize repairs nil collections in documents written by older versions.
func normalize(b *UserBehavior) {
	if b.RecentSearches == nil {
		b.RecentSearches = []string{}
	}
	if b.ViewedContent == nil {
		b.ViewedContent = []string{}
	}
	if b.TimeOnPage == nil {
		b.TimeOnPage = map[string]int64{}
	}
	if b.ClickPatterns == nil {
		b.ClickPatterns = []ClickPattern{}
	}
	if b.Preferences.ContentTypes == nil {
		b.Preferences.ContentTypes = []string{}
	}
	if b.Preferences.Topics == nil {
		b.Preferences.Topics = []string{}
	}
	if b.Preferences.TimeOfDay == "" {
		b.Preferences.TimeOfDay = "morning"
	}
}

package recommend

import (
	"time"

	"github.com/storysearch/surfacer/pkg/content"
)

// Source tags which strategy produced a recommendation.
type Source string

const (
	SourceBehavior     Source = "behavior"
	SourceContext      Source = "context"
	SourceTrending     Source = "trending"
	SourceSimilar      Source = "similar"
	SourcePersonalized Source = "personalized"
)

// Recommendation is one ranked candidate surfaced to the UI. Lists are
// rebuilt whole on every analysis cycle, never patched.
type Recommendation struct {
	ID         string          `json:"id"`
	Content    content.Content `json:"content"`
	Confidence float64         `json:"confidence"` // [0,1]
	Reason     string          `json:"reason"`
	Source     Source          `json:"source"`
}

// Ambient carries the non-behavioral signals strategies condition on.
type Ambient struct {
	Daypart string
	Now     time.Time
}

// DaypartFor buckets wall-clock time: morning [5,12), afternoon [12,17),
// evening [17,21), night otherwise.
func DaypartFor(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return "morning"
	case h >= 12 && h < 17:
		return "afternoon"
	case h >= 17 && h < 21:
		return "evening"
	default:
		return "night"
	}
}

// ResolveAmbient derives the ambient context for an analysis run.
func ResolveAmbient(now time.Time) Ambient {
	return Ambient{Daypart: DaypartFor(now), Now: now}
}

package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/storysearch/surfacer/pkg/behavior"
	"github.com/storysearch/surfacer/pkg/content"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	store := behavior.NewStore(behavior.NewMemoryStorage())
	engine := NewEngine(defaultEngineConfig(), store, content.NewCatalogProvider())
	engine.agg.now = func() time.Time {
		return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) // morning
	}
	t.Cleanup(engine.Close)
	return engine
}

func TestEngine_SearchHistoryDrivesRankedPredictions(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	engine.TrackSearch(ctx, "epic fantasy")
	engine.TrackSearch(ctx, "space opera")
	engine.TrackSearch(ctx, "murder mystery")

	recs := engine.Refresh(ctx)

	// Topics rank most-recent-first: murder, mystery, space. Context and
	// trending slot in by confidence; ties keep behavior before trending.
	want := []struct {
		id         string
		confidence float64
	}{
		{"behavior-murder", 0.9},
		{"context-morning", 0.85},
		{"behavior-mystery", 0.8},
		{"trending-trending-weekly", 0.8},
		{"behavior-space", 0.7},
	}
	if len(recs) != len(want) {
		t.Fatalf("expected %d recommendations, got %d: %+v", len(want), len(recs), recs)
	}
	for i, w := range want {
		if recs[i].ID != w.id {
			t.Errorf("rec[%d].ID = %q, want %q", i, recs[i].ID, w.id)
		}
		if recs[i].Confidence != w.confidence {
			t.Errorf("rec[%d].Confidence = %v, want %v", i, recs[i].Confidence, w.confidence)
		}
	}
}

func TestEngine_ViewHistoryAddsSimilarRecommendation(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	engine.TrackContentView(ctx, "story-42")
	recs := engine.Refresh(ctx)

	var similar *Recommendation
	for i := range recs {
		if recs[i].Source == SourceSimilar {
			similar = &recs[i]
		}
	}
	if similar == nil {
		t.Fatalf("expected a similar recommendation, got %+v", recs)
	}
	if similar.ID != "similar-story-42" {
		t.Errorf("id = %q, want similar-story-42", similar.ID)
	}
	if similar.Confidence != 0.75 {
		t.Errorf("confidence = %v, want 0.75", similar.Confidence)
	}
}

func TestEngine_ColdStartStillSurfacesContextAndTrending(t *testing.T) {
	engine := newTestEngine(t)

	recs := engine.Refresh(context.Background())
	if len(recs) != 2 {
		t.Fatalf("expected context + trending for a cold start, got %+v", recs)
	}
	if recs[0].ID != "context-morning" || recs[1].ID != "trending-trending-weekly" {
		t.Errorf("unexpected cold-start ranking: %q, %q", recs[0].ID, recs[1].ID)
	}
}

func TestEngine_ClearUserDataResetsPredictionsInputs(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	engine.TrackSearch(ctx, "dragons")
	engine.TrackContentView(ctx, "story-1")
	engine.Refresh(ctx)

	if err := engine.ClearUserData(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	recs := engine.Refresh(ctx)
	for _, rec := range recs {
		if rec.Source == SourceBehavior || rec.Source == SourceSimilar {
			t.Errorf("personal recommendation survived clear: %+v", rec)
		}
	}

	snap := engine.Behavior()
	if len(snap.RecentSearches) != 0 || len(snap.ViewedContent) != 0 {
		t.Errorf("behavior not reset: %+v", snap)
	}
}

func TestEngine_FeedbackRoundtrip(t *testing.T) {
	engine := newTestEngine(t)

	if err := engine.RecordFeedback("behavior-dragons", SentimentPositive); err != nil {
		t.Fatalf("record feedback: %v", err)
	}
	// Repeats overwrite.
	if err := engine.RecordFeedback("behavior-dragons", SentimentNegative); err != nil {
		t.Fatalf("record feedback again: %v", err)
	}

	all := engine.Feedback()
	if all["behavior-dragons"] != SentimentNegative {
		t.Fatalf("expected last write to win, got %q", all["behavior-dragons"])
	}

	if err := engine.RecordFeedback("", SentimentPositive); err == nil {
		t.Error("expected error for empty recommendation id")
	}
	if err := engine.RecordFeedback("x", Sentiment("meh")); err == nil {
		t.Error("expected error for unknown sentiment")
	}
}

func TestEngine_PredictionsReturnLastPublishedList(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	if got := engine.Predictions(); len(got) != 0 {
		t.Fatalf("expected empty predictions before any analysis, got %+v", got)
	}

	engine.TrackSearch(ctx, "dragons")
	published := engine.Refresh(ctx)

	cached := engine.Predictions()
	if len(cached) != len(published) {
		t.Fatalf("cached list length %d, refresh returned %d", len(cached), len(published))
	}
	for i := range cached {
		if cached[i].ID != published[i].ID {
			t.Errorf("cached[%d] = %q, refresh returned %q", i, cached[i].ID, published[i].ID)
		}
	}
}

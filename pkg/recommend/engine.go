package recommend

import (
	"context"

	"github.com/storysearch/surfacer/pkg/behavior"
	"github.com/storysearch/surfacer/pkg/config"
	"github.com/storysearch/surfacer/pkg/content"
)

// Engine wires the behavior store, the strategy set, the aggregator, and the
// feedback sink into the surface the UI consumes: tracking commands, the
// ranked prediction list with its analyzing flag, and feedback recording.
type Engine struct {
	cfg      config.EngineConfig
	store    *behavior.Store
	agg      *Aggregator
	feedback *FeedbackSink
}

func NewEngine(cfg config.EngineConfig, store *behavior.Store, provider content.Provider) *Engine {
	strategies := []Strategy{
		NewBehaviorStrategy(provider),
		NewContextStrategy(provider),
		NewTrendingStrategy(provider),
		NewSimilarStrategy(provider),
	}
	agg := NewAggregator(cfg, strategies, store.Snapshot)
	store.SetOnChange(agg.OnBehaviorChange)

	return &Engine{
		cfg:      cfg,
		store:    store,
		agg:      agg,
		feedback: NewFeedbackSink(),
	}
}

func (e *Engine) TrackSearch(ctx context.Context, query string) {
	e.store.TrackSearch(ctx, query)
}

func (e *Engine) TrackContentView(ctx context.Context, contentID string) {
	e.store.TrackContentView(ctx, contentID)
}

func (e *Engine) TrackTimeOnPage(ctx context.Context) {
	e.store.TrackTimeOnPage(ctx)
}

func (e *Engine) TrackClick(ctx context.Context, contentID, clickContext string) {
	e.store.TrackClick(ctx, contentID, clickContext)
}

// Refresh bypasses the debounce and runs an analysis pass immediately.
func (e *Engine) Refresh(ctx context.Context) []Recommendation {
	return e.agg.Refresh(ctx)
}

func (e *Engine) Predictions() []Recommendation {
	return e.agg.Predictions()
}

func (e *Engine) IsAnalyzing() bool {
	return e.agg.IsAnalyzing()
}

// Behavior returns a point-in-time copy of the tracked activity.
func (e *Engine) Behavior() behavior.UserBehavior {
	return e.store.Snapshot()
}

// ClearUserData wipes tracked activity and its persisted document.
func (e *Engine) ClearUserData(ctx context.Context) error {
	return e.store.Clear(ctx)
}

func (e *Engine) RecordFeedback(recommendationID string, sentiment Sentiment) error {
	return e.feedback.Record(recommendationID, sentiment)
}

func (e *Engine) Feedback() map[string]Sentiment {
	return e.feedback.All()
}

// Close stops the debounce machinery. The behavior store's storage is owned
// by the caller and closed separately.
func (e *Engine) Close() {
	e.agg.Close()
}

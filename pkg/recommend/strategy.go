package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/storysearch/surfacer/pkg/behavior"
	"github.com/storysearch/surfacer/pkg/config"
	"github.com/storysearch/surfacer/pkg/content"
)

// Strategy produces candidate recommendations from one signal source.
// Strategies are independent: none reads another's output, and a failing
// strategy contributes an empty list without blocking the rest.
type Strategy interface {
	Name() string
	// Enabled reports whether the strategy should run for this cycle.
	Enabled(cfg config.EngineConfig, snap behavior.UserBehavior) bool
	Generate(ctx context.Context, snap behavior.UserBehavior, amb Ambient) ([]Recommendation, error)
}

const maxBehaviorTopics = 3

// BehaviorStrategy recommends content for topics extracted from recent
// searches, confidence strictly decreasing by topic rank.
type BehaviorStrategy struct {
	provider content.Provider
}

func NewBehaviorStrategy(provider content.Provider) *BehaviorStrategy {
	return &BehaviorStrategy{provider: provider}
}

func (s *BehaviorStrategy) Name() string { return string(SourceBehavior) }

func (s *BehaviorStrategy) Enabled(cfg config.EngineConfig, snap behavior.UserBehavior) bool {
	return cfg.EnableBehaviorTracking && len(snap.RecentSearches) > 0
}

func (s *BehaviorStrategy) Generate(ctx context.Context, snap behavior.UserBehavior, amb Ambient) ([]Recommendation, error) {
	topics := ExtractTopics(snap.RecentSearches)
	if len(topics) > maxBehaviorTopics {
		topics = topics[:maxBehaviorTopics]
	}

	recs := make([]Recommendation, 0, len(topics))
	for i, topic := range topics {
		rec, err := s.provider.ByTopic(ctx, topic)
		if err != nil {
			return nil, fmt.Errorf("resolve topic %q: %w", topic, err)
		}
		recs = append(recs, Recommendation{
			ID:         "behavior-" + topic,
			Content:    rec,
			Confidence: 0.9 - 0.1*float64(i),
			Reason:     fmt.Sprintf("Matches your search history for %q", topic),
			Source:     SourceBehavior,
		})
	}
	return recs, nil
}

// ExtractTopics tokenizes searches on whitespace, lowercases, drops tokens of
// three characters or fewer, and dedupes preserving first-seen order.
func ExtractTopics(searches []string) []string {
	seen := map[string]struct{}{}
	topics := []string{}
	for _, search := range searches {
		for _, word := range strings.Fields(strings.ToLower(search)) {
			if len(word) <= 3 {
				continue
			}
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			topics = append(topics, word)
		}
	}
	return topics
}

// ContextStrategy recommends content curated for the current daypart.
type ContextStrategy struct {
	provider content.Provider
}

func NewContextStrategy(provider content.Provider) *ContextStrategy {
	return &ContextStrategy{provider: provider}
}

func (s *ContextStrategy) Name() string { return string(SourceContext) }

func (s *ContextStrategy) Enabled(cfg config.EngineConfig, snap behavior.UserBehavior) bool {
	return cfg.EnableContextualAnalysis
}

func (s *ContextStrategy) Generate(ctx context.Context, snap behavior.UserBehavior, amb Ambient) ([]Recommendation, error) {
	rec, err := s.provider.ForDaypart(ctx, amb.Daypart)
	if err != nil {
		return nil, fmt.Errorf("resolve daypart %q: %w", amb.Daypart, err)
	}
	return []Recommendation{{
		ID:         "context-" + amb.Daypart,
		Content:    rec,
		Confidence: 0.85,
		Reason:     fmt.Sprintf("Optimized for %s reading", amb.Daypart),
		Source:     SourceContext,
	}}, nil
}

// TrendingStrategy surfaces the globally popular pick, independent of user
// state.
type TrendingStrategy struct {
	provider content.Provider
}

func NewTrendingStrategy(provider content.Provider) *TrendingStrategy {
	return &TrendingStrategy{provider: provider}
}

func (s *TrendingStrategy) Name() string { return string(SourceTrending) }

func (s *TrendingStrategy) Enabled(cfg config.EngineConfig, snap behavior.UserBehavior) bool {
	return cfg.EnableTrendingContent
}

func (s *TrendingStrategy) Generate(ctx context.Context, snap behavior.UserBehavior, amb Ambient) ([]Recommendation, error) {
	rec, err := s.provider.Trending(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve trending: %w", err)
	}
	return []Recommendation{{
		ID:         "trending-" + rec.ID,
		Content:    rec,
		Confidence: 0.8,
		Reason:     "Trending content in your area of interest",
		Source:     SourceTrending,
	}}, nil
}

// SimilarStrategy anchors on the most recently viewed content. Gated by a
// non-empty view history rather than a config flag.
type SimilarStrategy struct {
	provider content.Provider
}

func NewSimilarStrategy(provider content.Provider) *SimilarStrategy {
	return &SimilarStrategy{provider: provider}
}

func (s *SimilarStrategy) Name() string { return string(SourceSimilar) }

func (s *SimilarStrategy) Enabled(cfg config.EngineConfig, snap behavior.UserBehavior) bool {
	return len(snap.ViewedContent) > 0
}

func (s *SimilarStrategy) Generate(ctx context.Context, snap behavior.UserBehavior, amb Ambient) ([]Recommendation, error) {
	anchor := snap.ViewedContent[0]
	rec, err := s.provider.SimilarTo(ctx, anchor)
	if err != nil {
		return nil, fmt.Errorf("resolve similar to %q: %w", anchor, err)
	}
	return []Recommendation{{
		ID:         "similar-" + anchor,
		Content:    rec,
		Confidence: 0.75,
		Reason:     "Similar to content you recently viewed",
		Source:     SourceSimilar,
	}}, nil
}

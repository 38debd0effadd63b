package digest

import (
	"strings"
	"testing"

	"github.com/storysearch/surfacer/pkg/config"
	"github.com/storysearch/surfacer/pkg/recommend"
)

func TestFormat_EmptyListYieldsEmptyString(t *testing.T) {
	if got := Format(nil); got != "" {
		t.Fatalf("expected empty digest, got %q", got)
	}
}

func TestFormat_RendersNumberedListWithConfidenceAndReason(t *testing.T) {
	recs := []recommend.Recommendation{
		{
			ID:         "behavior-dragons",
			Confidence: 0.9,
			Reason:     `Matches your search history for "dragons"`,
			Source:     recommend.SourceBehavior,
		},
		{
			ID:         "trending-weekly",
			Confidence: 0.8,
			Reason:     "Trending content in your area of interest",
			Source:     recommend.SourceTrending,
		},
	}
	recs[0].Content.Title = "Dragon Tales"
	recs[1].Content.Title = "Popular This Week"

	got := Format(recs)

	if !strings.HasPrefix(got, "**Recommended for you**") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, "1. Dragon Tales (90%)") {
		t.Errorf("missing first entry: %q", got)
	}
	if !strings.Contains(got, `Matches your search history for "dragons"`) {
		t.Errorf("missing reason: %q", got)
	}
	if !strings.Contains(got, "2. Popular This Week (80%)") {
		t.Errorf("missing second entry: %q", got)
	}
}

func TestNewScheduler_RejectsInvalidSchedule(t *testing.T) {
	cfg := config.DigestConfig{Enabled: true, Schedule: "not a cron"}
	if _, err := NewScheduler(cfg, "chan-1", nil, nil); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestNewScheduler_AcceptsValidSchedule(t *testing.T) {
	cfg := config.DigestConfig{Enabled: true, Schedule: "0 9 * * *"}
	s, err := NewScheduler(cfg, "chan-1", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()
}

func TestScheduler_StartIsNoopWhenDisabled(t *testing.T) {
	cfg := config.DigestConfig{Enabled: false, Schedule: "0 9 * * *"}
	s, err := NewScheduler(cfg, "chan-1", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()
}

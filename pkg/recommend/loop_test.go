package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/storysearch/surfacer/pkg/bus"
)

func TestEngineRun_AppliesTrackingEvents(t *testing.T) {
	engine := newTestEngine(t)
	eventBus := bus.NewEventBus()
	defer eventBus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		engine.Run(ctx, eventBus)
		close(done)
	}()

	eventBus.PublishTrack(bus.TrackEvent{ID: "1", Kind: bus.TrackSearch, Query: "dragons"})
	eventBus.PublishTrack(bus.TrackEvent{ID: "2", Kind: bus.TrackContentView, ContentID: "story-1"})
	eventBus.PublishTrack(bus.TrackEvent{ID: "3", Kind: bus.TrackClick, ContentID: "story-1", Context: "results"})
	eventBus.PublishTrack(bus.TrackEvent{ID: "4", Kind: bus.TrackTimeOnPage})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := engine.Behavior()
		if len(snap.RecentSearches) == 1 && len(snap.ViewedContent) == 1 && len(snap.ClickPatterns) == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	snap := engine.Behavior()
	if len(snap.RecentSearches) != 1 || snap.RecentSearches[0] != "dragons" {
		t.Errorf("search not applied: %+v", snap.RecentSearches)
	}
	if len(snap.ViewedContent) != 1 || snap.ViewedContent[0] != "story-1" {
		t.Errorf("view not applied: %+v", snap.ViewedContent)
	}
	if len(snap.ClickPatterns) != 1 || snap.ClickPatterns[0].ContentID != "story-1" {
		t.Errorf("click not applied: %+v", snap.ClickPatterns)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on context cancellation")
	}
}

func TestEngineRun_StopsWhenBusCloses(t *testing.T) {
	engine := newTestEngine(t)
	eventBus := bus.NewEventBus()

	done := make(chan struct{})
	go func() {
		engine.Run(context.Background(), eventBus)
		close(done)
	}()

	eventBus.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop when bus closed")
	}
}

package content

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newContentAPI(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		switch r.URL.Path {
		case "/content/by-topic":
			writeContent(w, Content{ID: "topic-" + r.URL.Query().Get("topic"), Title: "Topic pick"})
		case "/content/by-daypart":
			writeContent(w, Content{ID: "daypart-" + r.URL.Query().Get("daypart"), Title: "Daypart pick"})
		case "/content/trending":
			writeContent(w, Content{ID: "trending-1", Title: "Trending pick"})
		case "/content/similar":
			writeContent(w, Content{ID: "similar-" + r.URL.Query().Get("id"), Title: "Similar pick"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeContent(w http.ResponseWriter, c Content) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

func TestHTTPProvider_ResolvesAllEndpoints(t *testing.T) {
	srv := newContentAPI(t, nil)
	p, err := NewHTTPProvider(srv.URL, 16)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	ctx := context.Background()

	byTopic, err := p.ByTopic(ctx, "dragons")
	if err != nil || byTopic.ID != "topic-dragons" {
		t.Errorf("ByTopic = %+v, err %v", byTopic, err)
	}
	byDaypart, err := p.ForDaypart(ctx, "morning")
	if err != nil || byDaypart.ID != "daypart-morning" {
		t.Errorf("ForDaypart = %+v, err %v", byDaypart, err)
	}
	trending, err := p.Trending(ctx)
	if err != nil || trending.ID != "trending-1" {
		t.Errorf("Trending = %+v, err %v", trending, err)
	}
	similar, err := p.SimilarTo(ctx, "story-1")
	if err != nil || similar.ID != "similar-story-1" {
		t.Errorf("SimilarTo = %+v, err %v", similar, err)
	}
}

func TestHTTPProvider_CachesRepeatedLookups(t *testing.T) {
	var hits atomic.Int64
	srv := newContentAPI(t, &hits)
	p, err := NewHTTPProvider(srv.URL, 16)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := p.ByTopic(ctx, "dragons"); err != nil {
			t.Fatalf("ByTopic: %v", err)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 upstream hit, got %d", hits.Load())
	}
}

func TestHTTPProvider_ErrorStatusSurfacesAndIsNotCached(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	p, err := NewHTTPProvider(srv.URL, 16)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	if _, err := p.ByTopic(context.Background(), "dragons"); err == nil {
		t.Fatal("expected error from failing upstream")
	}
	if _, err := p.ByTopic(context.Background(), "dragons"); err == nil {
		t.Fatal("expected error again")
	}
	if hits.Load() != 2 {
		t.Fatalf("failed responses must not be cached, got %d hits", hits.Load())
	}
}

func TestHTTPProvider_RejectsRecordWithoutID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeContent(w, Content{Title: "anonymous"})
	}))
	t.Cleanup(srv.Close)

	p, err := NewHTTPProvider(srv.URL, 16)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if _, err := p.ByTopic(context.Background(), "dragons"); err == nil {
		t.Fatal("expected error for record without id")
	}
}

func TestNewHTTPProvider_RequiresAPIBase(t *testing.T) {
	if _, err := NewHTTPProvider("   ", 16); err == nil {
		t.Fatal("expected error for empty api base")
	}
}

func TestCatalogProvider_DeterministicRecords(t *testing.T) {
	p := NewCatalogProvider()
	ctx := context.Background()

	a, _ := p.ByTopic(ctx, "dragons")
	b, _ := p.ByTopic(ctx, "dragons")
	if a.ID != b.ID || a.ID != "topic-dragons" {
		t.Errorf("catalog records not stable: %q vs %q", a.ID, b.ID)
	}

	daypart, _ := p.ForDaypart(ctx, "evening")
	if daypart.ID != "daypart-evening" {
		t.Errorf("daypart id = %q", daypart.ID)
	}
	if daypart.Title != "Evening Reading Recommendations" {
		t.Errorf("daypart title = %q", daypart.Title)
	}

	trending, _ := p.Trending(ctx)
	if trending.ID != "trending-weekly" {
		t.Errorf("trending id = %q", trending.ID)
	}

	similar, _ := p.SimilarTo(ctx, "story-1")
	if similar.ID != "similar-story-1" {
		t.Errorf("similar id = %q", similar.ID)
	}
}

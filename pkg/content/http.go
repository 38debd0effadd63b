package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 256

// HTTPProvider resolves content records from a content API. Responses are
// cached in an LRU keyed by endpoint and argument; the trending pick is
// cached under a rotating minute bucket so it can move without a restart.
type HTTPProvider struct {
	apiBase string
	client  *http.Client
	cache   *lru.Cache[string, Content]
}

func NewHTTPProvider(apiBase string, cacheSize int) (*HTTPProvider, error) {
	apiBase = strings.TrimRight(strings.TrimSpace(apiBase), "/")
	if apiBase == "" {
		return nil, fmt.Errorf("content api base is required")
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, Content](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create content cache: %w", err)
	}
	return &HTTPProvider{
		apiBase: apiBase,
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
	}, nil
}

func (p *HTTPProvider) ByTopic(ctx context.Context, topic string) (Content, error) {
	return p.fetch(ctx, "/content/by-topic?topic="+url.QueryEscape(topic), "topic|"+topic)
}

func (p *HTTPProvider) ForDaypart(ctx context.Context, daypart string) (Content, error) {
	return p.fetch(ctx, "/content/by-daypart?daypart="+url.QueryEscape(daypart), "daypart|"+daypart)
}

func (p *HTTPProvider) Trending(ctx context.Context) (Content, error) {
	bucket := time.Now().UTC().Format("2006-01-02T15:04")
	return p.fetch(ctx, "/content/trending", "trending|"+bucket)
}

func (p *HTTPProvider) SimilarTo(ctx context.Context, contentID string) (Content, error) {
	return p.fetch(ctx, "/content/similar?id="+url.QueryEscape(contentID), "similar|"+contentID)
}

func (p *HTTPProvider) fetch(ctx context.Context, path, cacheKey string) (Content, error) {
	if hit, ok := p.cache.Get(cacheKey); ok {
		return hit, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+path, nil)
	if err != nil {
		return Content{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Content{}, fmt.Errorf("content request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Content{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Content{}, fmt.Errorf("content api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var rec Content
	if err := json.Unmarshal(body, &rec); err != nil {
		return Content{}, fmt.Errorf("failed to parse content record: %w", err)
	}
	if rec.ID == "" {
		return Content{}, fmt.Errorf("content api returned record without id")
	}

	p.cache.Add(cacheKey, rec)
	return rec, nil
}

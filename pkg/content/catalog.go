package content

import (
	"context"
	"fmt"
	"time"
)

// CatalogProvider synthesizes deterministic content records in-process. It is
// the default backend and keeps the engine fully functional without a content
// API; records are stable for a given input so ranking stays reproducible.
type CatalogProvider struct {
	now func() time.Time
}

func NewCatalogProvider() *CatalogProvider {
	return &CatalogProvider{now: time.Now}
}

func (p *CatalogProvider) ByTopic(ctx context.Context, topic string) (Content, error) {
	now := p.now()
	return Content{
		ID:        "topic-" + topic,
		Title:     "Recommended: " + topic,
		Body:      fmt.Sprintf("Content about %s, surfaced from your recent searches", topic),
		Type:      "story",
		Tags:      []string{topic},
		URL:       "/content/" + topic,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (p *CatalogProvider) ForDaypart(ctx context.Context, daypart string) (Content, error) {
	now := p.now()
	return Content{
		ID:        "daypart-" + daypart,
		Title:     titleCase(daypart) + " Reading Recommendations",
		Body:      fmt.Sprintf("Content curated for %s browsing", daypart),
		Type:      "story",
		Tags:      []string{daypart, "contextual"},
		URL:       "/context/" + daypart,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (p *CatalogProvider) Trending(ctx context.Context) (Content, error) {
	now := p.now()
	return Content{
		ID:        "trending-weekly",
		Title:     "Trending: Popular Content",
		Body:      "Most viewed content this week",
		Type:      "story",
		Tags:      []string{"trending", "popular"},
		URL:       "/trending",
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (p *CatalogProvider) SimilarTo(ctx context.Context, contentID string) (Content, error) {
	now := p.now()
	return Content{
		ID:        "similar-" + contentID,
		Title:     "Similar to what you viewed",
		Body:      "Content related to your recent views",
		Type:      "story",
		Tags:      []string{"similar", "recommended"},
		URL:       "/similar/" + contentID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func titleCase(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-('a'-'A')) + s[1:]
}

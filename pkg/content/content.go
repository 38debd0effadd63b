package content

import (
	"context"
	"time"
)

// Content is a content record owned by the external content service. The
// surfacing engine treats it as an opaque, well-typed value.
type Content struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"content"`
	Type      string    `json:"type"` // story, component, folder
	Tags      []string  `json:"tags"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Provider looks up content records for the recommendation strategies. Each
// call returns one well-typed record or fails; internals are a black box.
type Provider interface {
	// ByTopic resolves content matching a topic keyword.
	ByTopic(ctx context.Context, topic string) (Content, error)
	// ForDaypart resolves content curated for a time-of-day bucket.
	ForDaypart(ctx context.Context, daypart string) (Content, error)
	// Trending resolves the globally popular pick.
	Trending(ctx context.Context) (Content, error)
	// SimilarTo resolves content similar to a previously viewed record.
	SimilarTo(ctx context.Context, contentID string) (Content, error)
}

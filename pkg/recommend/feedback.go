package recommend

import (
	"fmt"
	"sync"
)

// Sentiment is an explicit user signal on a recommendation.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
)

// FeedbackSink records sentiment keyed by recommendation id, last write wins.
// Entries live for the session only and are never consulted by ranking; the
// sink defines the collection contract for a real system.
type FeedbackSink struct {
	mu      sync.Mutex
	entries map[string]Sentiment
}

func NewFeedbackSink() *FeedbackSink {
	return &FeedbackSink{entries: map[string]Sentiment{}}
}

func (f *FeedbackSink) Record(recommendationID string, sentiment Sentiment) error {
	if recommendationID == "" {
		return fmt.Errorf("recommendation id is required")
	}
	if sentiment != SentimentPositive && sentiment != SentimentNegative {
		return fmt.Errorf("unknown sentiment: %s", sentiment)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[recommendationID] = sentiment
	return nil
}

// Get returns the recorded sentiment for a recommendation, if any.
func (f *FeedbackSink) Get(recommendationID string) (Sentiment, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.entries[recommendationID]
	return s, ok
}

// All returns a copy of every recorded entry.
func (f *FeedbackSink) All() map[string]Sentiment {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]Sentiment, len(f.entries))
	for k, v := range f.entries {
		out[k] = v
	}
	return out
}

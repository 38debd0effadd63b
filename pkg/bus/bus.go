package bus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// TrackKind discriminates inbound tracking events.
type TrackKind string

const (
	TrackSearch      TrackKind = "search"
	TrackContentView TrackKind = "view"
	TrackClick       TrackKind = "click"
	TrackTimeOnPage  TrackKind = "time"
)

// TrackEvent is one user-activity event flowing from an input surface
// (gateway, REPL) to the engine loop.
type TrackEvent struct {
	ID        string
	Kind      TrackKind
	Query     string // search
	ContentID string // view, click
	Context   string // click
	At        time.Time
}

// DigestMessage is a formatted recommendation digest bound for a delivery
// channel.
type DigestMessage struct {
	ID        string
	Channel   string // delivery channel name, e.g. "discord"
	ChatID    string
	Content   string
	CreatedAt time.Time
}

// EventBus decouples input surfaces from the engine and the digest scheduler
// from delivery channels. Publishing never blocks longer than a short grace
// period; overflow is counted and dropped.
type EventBus struct {
	tracks  chan TrackEvent
	digests chan DigestMessage
	closed  bool
	dropped droppedCounters
	mu      sync.RWMutex
}

type droppedCounters struct {
	tracks  atomic.Uint64
	digests atomic.Uint64
}

const publishTimeout = 100 * time.Millisecond

func NewEventBus() *EventBus {
	return &EventBus{
		tracks:  make(chan TrackEvent, 100),
		digests: make(chan DigestMessage, 100),
	}
}

func (b *EventBus) PublishTrack(ev TrackEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	select {
	case b.tracks <- ev:
	default:
		timer := time.NewTimer(publishTimeout)
		defer timer.Stop()
		select {
		case b.tracks <- ev:
		case <-timer.C:
			b.dropped.tracks.Add(1)
		}
	}
}

func (b *EventBus) ConsumeTrack(ctx context.Context) (TrackEvent, bool) {
	select {
	case ev, ok := <-b.tracks:
		if !ok {
			return TrackEvent{}, false
		}
		return ev, true
	case <-ctx.Done():
		return TrackEvent{}, false
	}
}

func (b *EventBus) PublishDigest(msg DigestMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	select {
	case b.digests <- msg:
	default:
		timer := time.NewTimer(publishTimeout)
		defer timer.Stop()
		select {
		case b.digests <- msg:
		case <-timer.C:
			b.dropped.digests.Add(1)
		}
	}
}

func (b *EventBus) ConsumeDigest(ctx context.Context) (DigestMessage, bool) {
	select {
	case msg, ok := <-b.digests:
		if !ok {
			return DigestMessage{}, false
		}
		return msg, true
	case <-ctx.Done():
		return DigestMessage{}, false
	}
}

func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.tracks)
	close(b.digests)
}

func (b *EventBus) DroppedTracks() uint64 {
	return b.dropped.tracks.Load()
}

func (b *EventBus) DroppedDigests() uint64 {
	return b.dropped.digests.Load()
}

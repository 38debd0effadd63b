package digest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/google/uuid"

	"github.com/storysearch/surfacer/pkg/bus"
	"github.com/storysearch/surfacer/pkg/config"
	"github.com/storysearch/surfacer/pkg/logger"
	"github.com/storysearch/surfacer/pkg/recommend"
)

// Scheduler publishes a recommendation digest to the outbound bus on a cron
// schedule. Ticks are checked once a minute against the expression.
type Scheduler struct {
	cfg       config.DigestConfig
	channelID string
	engine    *recommend.Engine
	bus       *bus.EventBus
	gron      *gronx.Gronx

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewScheduler(cfg config.DigestConfig, channelID string, engine *recommend.Engine, eventBus *bus.EventBus) (*Scheduler, error) {
	g := gronx.New()
	if !g.IsValid(cfg.Schedule) {
		return nil, fmt.Errorf("invalid digest schedule %q", cfg.Schedule)
	}
	return &Scheduler{
		cfg:       cfg,
		channelID: channelID,
		engine:    engine,
		bus:       eventBus,
		gron:      g,
		stopCh:    make(chan struct{}),
	}, nil
}

func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		logger.InfoC("digest", "Digest scheduler disabled")
		return nil
	}

	s.wg.Add(1)
	go s.run()
	logger.InfoCF("digest", "Digest scheduler started", map[string]any{
		"schedule": s.cfg.Schedule,
	})
	return nil
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			due, err := s.gron.IsDue(s.cfg.Schedule, now.Truncate(time.Minute))
			if err != nil {
				logger.ErrorCF("digest", "Failed to evaluate digest schedule", map[string]any{
					"error": err.Error(),
				})
				continue
			}
			if due {
				s.publish(now)
			}
		}
	}
}

// Publish refreshes predictions and pushes a digest immediately, bypassing
// the schedule.
func (s *Scheduler) Publish() {
	s.publish(time.Now())
}

func (s *Scheduler) publish(now time.Time) {
	recs := s.engine.Refresh(context.Background())
	text := Format(recs)
	if text == "" {
		logger.InfoC("digest", "Skipping empty digest")
		return
	}

	s.bus.PublishDigest(bus.DigestMessage{
		ID:        uuid.NewString(),
		Channel:   "discord",
		ChatID:    s.channelID,
		Content:   text,
		CreatedAt: now,
	})
	logger.InfoCF("digest", "Digest published", map[string]any{
		"recommendations": len(recs),
	})
}

// Format renders a prediction list as a digest message. Empty input yields an
// empty string.
func Format(recs []recommend.Recommendation) string {
	if len(recs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("**Recommended for you**\n")
	for i, rec := range recs {
		fmt.Fprintf(&b, "%d. %s (%.0f%%)\n   %s\n", i+1, rec.Content.Title, rec.Confidence*100, rec.Reason)
	}
	return strings.TrimSpace(b.String())
}

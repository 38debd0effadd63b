package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/storysearch/surfacer/pkg/behavior"
	"github.com/storysearch/surfacer/pkg/config"
	"github.com/storysearch/surfacer/pkg/logger"
)

// Aggregator orchestrates the strategies and owns the recomputation policy:
// behavior mutations arm a debounce timer so a burst of tracking calls yields
// one analysis pass, while a manual refresh cancels the timer and runs now.
// Runs are single-flight; a refresh during an in-flight run queues exactly
// one rerun against the latest state, so newer results always win.
type Aggregator struct {
	cfg        config.EngineConfig
	strategies []Strategy
	snapshot   func() behavior.UserBehavior
	now        func() time.Time

	mu          sync.Mutex
	debounce    *time.Timer
	running     bool
	pending     bool
	predictions []Recommendation
	closed      bool
}

func NewAggregator(cfg config.EngineConfig, strategies []Strategy, snapshot func() behavior.UserBehavior) *Aggregator {
	if cfg.MaxRecommendations <= 0 {
		cfg.MaxRecommendations = 10
	}
	if cfg.DebounceMS <= 0 {
		cfg.DebounceMS = 1000
	}
	if cfg.StrategyTimeoutMS <= 0 {
		cfg.StrategyTimeoutMS = 4000
	}
	return &Aggregator{
		cfg:         cfg,
		strategies:  strategies,
		snapshot:    snapshot,
		now:         time.Now,
		predictions: []Recommendation{},
	}
}

// OnBehaviorChange re-arms the debounce timer. Called by the behavior store
// after every persisted mutation.
func (a *Aggregator) OnBehaviorChange() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if a.debounce != nil {
		a.debounce.Stop()
	}
	a.debounce = time.AfterFunc(time.Duration(a.cfg.DebounceMS)*time.Millisecond, func() {
		a.Refresh(context.Background())
	})
}

// Refresh cancels any pending debounce and runs analysis immediately. If a
// run is already in flight the refresh is coalesced into one rerun. Returns
// the prediction list visible after this call.
func (a *Aggregator) Refresh(ctx context.Context) []Recommendation {
	a.mu.Lock()
	if a.closed {
		defer a.mu.Unlock()
		return append([]Recommendation{}, a.predictions...)
	}
	if a.debounce != nil {
		a.debounce.Stop()
		a.debounce = nil
	}
	if a.running {
		a.pending = true
		defer a.mu.Unlock()
		return append([]Recommendation{}, a.predictions...)
	}
	a.running = true
	a.mu.Unlock()

	for {
		a.analyzeOnce(ctx)
		a.mu.Lock()
		if !a.pending {
			a.running = false
			out := append([]Recommendation{}, a.predictions...)
			a.mu.Unlock()
			return out
		}
		a.pending = false
		a.mu.Unlock()
	}
}

// Predictions returns the currently visible ranked list.
func (a *Aggregator) Predictions() []Recommendation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Recommendation{}, a.predictions...)
}

// IsAnalyzing reports whether an analysis run is in flight.
func (a *Aggregator) IsAnalyzing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Close stops the debounce timer. Pending timers after Close never fire an
// analysis.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.debounce != nil {
		a.debounce.Stop()
		a.debounce = nil
	}
}

// analyzeOnce runs one full aggregation cycle: synchronous snapshot, parallel
// strategy fan-out, merge, stable rank, truncate, atomic swap. A cycle-level
// panic keeps the previous list (stale-but-valid beats empty).
func (a *Aggregator) analyzeOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorCF("recommend", "Analysis cycle failed, keeping previous predictions", map[string]any{
				"panic": fmt.Sprint(r),
			})
		}
	}()

	snap := a.snapshot()
	amb := ResolveAmbient(a.now())

	enabled := make([]Strategy, 0, len(a.strategies))
	for _, st := range a.strategies {
		if st.Enabled(a.cfg, snap) {
			enabled = append(enabled, st)
		}
	}

	// One result slot per strategy keeps merge order deterministic no matter
	// which goroutine finishes first.
	results := make([][]Recommendation, len(enabled))
	timeout := time.Duration(a.cfg.StrategyTimeoutMS) * time.Millisecond

	g, gctx := errgroup.WithContext(ctx)
	for i, st := range enabled {
		i, st := i, st
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorCF("recommend", "Strategy panicked", map[string]any{
						"strategy": st.Name(),
						"panic":    fmt.Sprint(r),
					})
				}
			}()
			sctx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()
			recs, err := st.Generate(sctx, snap, amb)
			if err != nil {
				logger.WarnCF("recommend", "Strategy failed, contributing nothing", map[string]any{
					"strategy": st.Name(),
					"error":    err.Error(),
				})
				return nil
			}
			results[i] = recs
			return nil
		})
	}
	_ = g.Wait()

	merged := []Recommendation{}
	for _, recs := range results {
		merged = append(merged, recs...)
	}

	// Stable sort: equal confidence keeps strategy registration order.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})
	if len(merged) > a.cfg.MaxRecommendations {
		merged = merged[:a.cfg.MaxRecommendations]
	}

	a.mu.Lock()
	a.predictions = merged
	a.mu.Unlock()

	logger.DebugCF("recommend", "Analysis cycle complete", map[string]any{
		"strategies": len(enabled),
		"candidates": len(merged),
	})
}

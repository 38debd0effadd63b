package recommend

import (
	"context"

	"github.com/storysearch/surfacer/pkg/bus"
	"github.com/storysearch/surfacer/pkg/logger"
)

// Run drains tracking events from the bus into the behavior store until the
// context is cancelled or the bus closes. Each applied event arms the
// aggregator's debounce through the store's change hook.
func (e *Engine) Run(ctx context.Context, eventBus *bus.EventBus) {
	logger.InfoC("engine", "Tracking loop started")

	for {
		ev, ok := eventBus.ConsumeTrack(ctx)
		if !ok {
			logger.InfoC("engine", "Tracking loop stopped")
			return
		}

		switch ev.Kind {
		case bus.TrackSearch:
			e.TrackSearch(ctx, ev.Query)
		case bus.TrackContentView:
			e.TrackContentView(ctx, ev.ContentID)
		case bus.TrackClick:
			e.TrackClick(ctx, ev.ContentID, ev.Context)
		case bus.TrackTimeOnPage:
			e.TrackTimeOnPage(ctx)
		default:
			logger.WarnCF("engine", "Unknown tracking event", map[string]any{
				"kind": string(ev.Kind),
				"id":   ev.ID,
			})
		}
	}
}

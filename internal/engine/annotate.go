package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/zjrosen/folio/internal/engine/motion"
	"github.com/zjrosen/folio/internal/engine/undo"
	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/log"
	"github.com/zjrosen/folio/internal/pubsub"
)

// MaxRating is the highest star rating. Zero means unrated.
const MaxRating = 5

var statusCycle = []library.ReadStatus{
	library.StatusUnread,
	library.StatusReading,
	library.StatusRead,
	library.StatusDropped,
}

// nextStatus returns the status after s in the reading cycle. Unknown or
// empty statuses count as unread.
func nextStatus(s library.ReadStatus) library.ReadStatus {
	for i, st := range statusCycle {
		if st == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return statusCycle[1]
}

// cycleStatus advances the current item's read status as one undo step.
func (e *Engine) cycleStatus(ctx context.Context) {
	e.annotateCurrent(ctx, func(item *library.Item) string {
		item.Status = nextStatus(item.Status)
		return fmt.Sprintf("Status of %s: %s", item.Title, item.Status)
	})
}

// rate sets the current item's rating to count, clamped to MaxRating. With
// no count the rating steps up by one and wraps back to unrated.
func (e *Engine) rate(ctx context.Context, count int, explicit bool) {
	e.annotateCurrent(ctx, func(item *library.Item) string {
		if explicit {
			item.Rating = min(count, MaxRating)
		} else {
			item.Rating = (item.Rating + 1) % (MaxRating + 1)
		}
		if item.Rating == 0 {
			return "Cleared rating of " + item.Title
		}
		return fmt.Sprintf("Rated %s %s", item.Title, strings.Repeat("★", item.Rating))
	})
}

// annotateCurrent applies edit to a fresh copy of the item under the cursor
// and stores it through the history. edit returns the status message.
func (e *Engine) annotateCurrent(ctx context.Context, edit func(*library.Item) string) {
	item, ok := e.Current()
	if !ok || e.panel != motion.PanelList {
		return
	}
	current, err := e.store.Load(ctx, item.ID)
	if err != nil {
		log.ErrorErr(log.CatEngine, "load for update failed", err, "id", item.ID)
		e.setStatusf("Update failed: %s", firstLine(err.Error()))
		return
	}
	updated := current.Clone()
	desc := edit(&updated)
	if updated.Status == current.Status && updated.Rating == current.Rating {
		e.setStatus(desc)
		return
	}
	updated.UpdatedAt = e.clock.Now()

	if _, err := e.history.Do(ctx, e.store, desc, undo.UpsertItems([]library.Item{updated})); err != nil {
		e.setStatusf("Update failed: %s", firstLine(err.Error()))
		return
	}
	e.refresh(ctx)
	e.publish(pubsub.UpdatedEvent, Event{Count: 1})
	e.setStatus(desc)
}

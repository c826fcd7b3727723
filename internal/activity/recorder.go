// Package activity projects domain events onto the places sellers look:
// assignments and due follow-ups become lines on the lead's notes, import
// results a log entry.
package activity

import (
	"context"
	"fmt"

	"recovery_crm_backend/internal/events"
	"recovery_crm_backend/platform/logger"

	"github.com/google/uuid"
)

const systemAuthor = "Sistema"

// NoteAppender writes a timestamped line onto a lead's notes.
type NoteAppender interface {
	AppendNote(ctx context.Context, id uuid.UUID, author, note string) error
}

// Recorder consumes domain events from the bus.
type Recorder struct {
	notes NoteAppender
	log   *logger.Logger
}

// NewRecorder creates a new activity recorder.
func NewRecorder(notes NoteAppender, log *logger.Logger) *Recorder {
	return &Recorder{notes: notes, log: log}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (r *Recorder) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.LeadAssigned{}.EventName(), r)
	bus.Subscribe(events.ImportCompleted{}.EventName(), r)
	bus.Subscribe(events.ScheduleDue{}.EventName(), r)
}

// Handle implements events.Handler.
func (r *Recorder) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadAssigned:
		return r.notes.AppendNote(ctx, e.LeadUUID, systemAuthor,
			fmt.Sprintf("Lead distribuído para %s", e.SellerName))
	case events.ImportCompleted:
		r.log.Info("import batch finished",
			"batch", e.BatchUUID.String(),
			"imported", e.Imported, "updated", e.Updated, "skipped", e.Skipped)
		return nil
	case events.ScheduleDue:
		return r.notes.AppendNote(ctx, e.LeadUUID, systemAuthor,
			fmt.Sprintf("Follow-up agendado para %s venceu", e.ScheduledAt.Format("02/01/2006 15:04")))
	}
	return nil
}

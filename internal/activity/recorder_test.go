package activity

import (
	"context"
	"strings"
	"testing"
	"time"

	"recovery_crm_backend/internal/events"
	"recovery_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type noteCall struct {
	lead   uuid.UUID
	author string
	note   string
}

type fakeNotes struct {
	calls []noteCall
	fail  error
}

func (f *fakeNotes) AppendNote(_ context.Context, id uuid.UUID, author, note string) error {
	if f.fail != nil {
		return f.fail
	}
	f.calls = append(f.calls, noteCall{lead: id, author: author, note: note})
	return nil
}

func TestRecorderNotesAssignment(t *testing.T) {
	notes := &fakeNotes{}
	rec := NewRecorder(notes, logger.New("test"))
	leadUUID := uuid.New()

	err := rec.Handle(context.Background(), events.LeadAssigned{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    1, LeadUUID: leadUUID, SellerID: 2, SellerName: "Bruno",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes.calls) != 1 {
		t.Fatalf("expected 1 note, got %d", len(notes.calls))
	}
	call := notes.calls[0]
	if call.lead != leadUUID || call.author != "Sistema" || !strings.Contains(call.note, "Bruno") {
		t.Errorf("note = %+v", call)
	}
}

func TestRecorderNotesDueFollowUp(t *testing.T) {
	notes := &fakeNotes{}
	rec := NewRecorder(notes, logger.New("test"))
	leadUUID := uuid.New()
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	err := rec.Handle(context.Background(), events.ScheduleDue{
		BaseEvent:  events.NewBaseEvent(),
		ScheduleID: 5, ScheduleUUID: uuid.New(),
		LeadID: 1, LeadUUID: leadUUID, ScheduledAt: at,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes.calls) != 1 {
		t.Fatalf("expected 1 note, got %d", len(notes.calls))
	}
	if notes.calls[0].lead != leadUUID || !strings.Contains(notes.calls[0].note, "14/03/2026 09:30") {
		t.Errorf("note = %+v", notes.calls[0])
	}
}

func TestRecorderImportSummaryWritesNoNote(t *testing.T) {
	notes := &fakeNotes{}
	rec := NewRecorder(notes, logger.New("test"))

	err := rec.Handle(context.Background(), events.ImportCompleted{
		BaseEvent: events.NewBaseEvent(),
		BatchID:   3, BatchUUID: uuid.New(), Imported: 10, Updated: 2, Skipped: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes.calls) != 0 {
		t.Errorf("import summary must not touch lead notes, got %d calls", len(notes.calls))
	}
}

func TestRecorderReceivesSubscribedEventsFromBus(t *testing.T) {
	notes := &fakeNotes{}
	rec := NewRecorder(notes, logger.New("test"))
	bus := events.NewInMemoryBus(logger.New("test"))
	rec.RegisterHandlers(bus)

	err := bus.PublishSync(context.Background(), events.LeadAssigned{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    1, LeadUUID: uuid.New(), SellerID: 7, SellerName: "Ana",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes.calls) != 1 {
		t.Fatalf("subscribed handler not invoked, %d calls", len(notes.calls))
	}
}

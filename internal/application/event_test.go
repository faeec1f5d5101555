package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"rosterbot/internal/domain"
	"rosterbot/internal/domain/entities"
	"rosterbot/internal/ports/input"
	"rosterbot/pkg/tz"
)

func inputEvent(formation string) input.CreateEvent {
	return input.CreateEvent{
		Name:        "Scrim",
		Description: "Friendly",
		ScheduledAt: time.Date(2025, 1, 10, 20, 0, 0, 0, tz.London),
		Formation:   formation,
		CreatorID:   organizer,
	}
}

func TestCreateEventSeedsCardAndThread(t *testing.T) {
	h := newHarness(t)
	ev := h.createEvent("")

	if ev.ChannelID != "chan-default" {
		t.Errorf("channel = %q, want the default channel", ev.ChannelID)
	}
	if ev.MessageID == "" || ev.ThreadID == "" {
		t.Fatalf("message %q thread %q, want both set", ev.MessageID, ev.ThreadID)
	}
	if !equal(h.msg.seeded, entities.Glyphs) {
		t.Errorf("seeded = %v, want %v", h.msg.seeded, entities.Glyphs)
	}
	if len(h.msg.announced) != 0 {
		t.Errorf("announced without a role")
	}
	stored, err := h.events.FindByMessageID(context.Background(), ev.MessageID)
	if err != nil || stored.ID != ev.ID {
		t.Errorf("FindByMessageID = %v, %v", stored, err)
	}
}

func TestCreateEventValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(in *input.CreateEvent)
		want   error
	}{
		{"empty name", func(in *input.CreateEvent) { in.Name = "   " }, domain.ErrEmptyName},
		{"zero time", func(in *input.CreateEvent) { in.ScheduledAt = time.Time{} }, domain.ErrInvalidDateTime},
		{"past", func(in *input.CreateEvent) { in.ScheduledAt = time.Date(2024, 12, 31, 20, 0, 0, 0, tz.London) }, domain.ErrDateTimeInPast},
		{"formation", func(in *input.CreateEvent) { in.Formation = "2-2-2" }, domain.ErrUnknownFormation},
		{"not organizer", func(in *input.CreateEvent) { in.CreatorID = "someone" }, domain.ErrNotOrganizer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			in := inputEvent("")
			tt.modify(&in)
			_, err := h.event.CreateEvent(context.Background(), in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if len(h.events.All(context.Background())) != 0 {
				t.Errorf("event stored despite %v", err)
			}
		})
	}
}

func TestCreateEventWithFormationSpawnsLineupInThread(t *testing.T) {
	h := newHarness(t)
	in := inputEvent("433")
	in.RoleID = "role-players"

	ev, err := h.event.CreateEvent(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	lineups := h.lineups.FindByEventID(context.Background(), ev.ID)
	if len(lineups) != 1 {
		t.Fatalf("lineups = %d, want 1", len(lineups))
	}
	l := lineups[0]
	if l.ChannelID != ev.ThreadID {
		t.Errorf("lineup channel = %q, want thread %q", l.ChannelID, ev.ThreadID)
	}
	if l.FormationName != "4-3-3" || l.RoleID != "role-players" || !l.KickoffAt.Equal(ev.ScheduledAt) {
		t.Errorf("lineup = %+v", l)
	}
	if !equal(h.msg.announced, []uint{ev.ID}) {
		t.Errorf("announced = %v, want [%d]", h.msg.announced, ev.ID)
	}
}

func TestCreateEventWithoutThread(t *testing.T) {
	h := newHarness(t)
	h.msg.threadErr = errBoom

	ev, err := h.event.CreateEvent(context.Background(), inputEvent("442"))
	if err != nil {
		t.Fatalf("thread failure must not fail creation: %v", err)
	}
	if ev.ThreadID != "" {
		t.Errorf("thread = %q, want none", ev.ThreadID)
	}
	lineups := h.lineups.FindByEventID(context.Background(), ev.ID)
	if len(lineups) != 1 || lineups[0].ChannelID != ev.ChannelID {
		t.Errorf("lineup should fall back to the event channel")
	}
}

func TestCloseOpenAreIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ev := h.createEvent("")

	for i := 0; i < 2; i++ {
		got, err := h.event.CloseEvent(ctx, ev.ID, organizer)
		if err != nil || !got.Closed {
			t.Fatalf("close #%d: closed=%v err=%v", i, got != nil && got.Closed, err)
		}
	}
	renders := h.msg.eventRenders
	for i := 0; i < 2; i++ {
		got, err := h.event.OpenEvent(ctx, ev.ID, organizer)
		if err != nil || got.Closed {
			t.Fatalf("open #%d: err=%v", i, err)
		}
	}
	if h.msg.eventRenders != renders+2 {
		t.Errorf("renders = %d, want %d", h.msg.eventRenders, renders+2)
	}
	if _, err := h.event.CloseEvent(ctx, ev.ID, "someone"); !errors.Is(err, domain.ErrNotOrganizer) {
		t.Errorf("close by member: err = %v", err)
	}
	if _, err := h.event.CloseEvent(ctx, 99, organizer); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("close unknown: err = %v", err)
	}
}

func TestCancelEventRemovesEverything(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ev := h.createEvent("442")
	lineup := h.lineups.FindByEventID(ctx, ev.ID)[0]

	if err := h.event.CancelEvent(ctx, ev.ID, organizer); err != nil {
		t.Fatal(err)
	}
	if _, err := h.event.Info(ctx, ev.ID); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("Info after cancel: err = %v", err)
	}
	if !h.msg.wasDeleted(ev.MessageID) || !h.msg.wasDeleted(lineup.MessageID) {
		t.Errorf("deleted = %v, want card and board", h.msg.deleted)
	}
	if !equal(h.msg.deletedThread, []string{ev.ThreadID}) {
		t.Errorf("deleted threads = %v", h.msg.deletedThread)
	}
	if _, err := h.lineups.Get(ctx, lineup.ID); !errors.Is(err, domain.ErrLineupNotFound) {
		t.Errorf("lineup survived cancel: %v", err)
	}
	if _, ok, _ := h.store.Load(ctx, "event:1"); ok {
		t.Errorf("event document still stored")
	}
}

func TestEventIDsAreMonotonic(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first := h.createEvent("")
	if err := h.event.CancelEvent(ctx, first.ID, organizer); err != nil {
		t.Fatal(err)
	}
	second := h.createEvent("")
	if second.ID != first.ID+1 {
		t.Errorf("second id = %d, want %d", second.ID, first.ID+1)
	}
}

package input

import (
	"context"
	"time"

	"rosterbot/internal/domain/entities"
)

// CreateEvent carries the organizer's create-event request.
type CreateEvent struct {
	Name        string
	Description string
	ScheduledAt time.Time
	Formation   string // optional: spawns a lineup in the event thread
	RoleID      string // optional: pinged on creation and used to filter the lineup picker
	StreamURL   string
	ChannelID   string // optional: defaults to the configured channel
	CreatorID   string
}

type EventUseCase interface {
	CreateEvent(ctx context.Context, in CreateEvent) (*entities.Event, error)
	CloseEvent(ctx context.Context, id uint, actorID string) (*entities.Event, error)
	OpenEvent(ctx context.Context, id uint, actorID string) (*entities.Event, error)
	CancelEvent(ctx context.Context, id uint, actorID string) error
	Info(ctx context.Context, id uint) (*entities.Event, error)
}

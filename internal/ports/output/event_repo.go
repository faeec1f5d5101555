package output

import (
	"context"

	"rosterbot/internal/domain/entities"
)

// EventRepository owns event documents. Get and FindByMessageID return copies;
// changes are only visible to others after Save.
type EventRepository interface {
	NextID(ctx context.Context) (uint, error)
	Get(ctx context.Context, id uint) (*entities.Event, error)
	FindByMessageID(ctx context.Context, messageID string) (*entities.Event, error)
	All(ctx context.Context) []*entities.Event
	Save(ctx context.Context, event *entities.Event) error
	Delete(ctx context.Context, id uint) error
}

package output

import (
	"context"

	"rosterbot/internal/domain/entities"
)

type LineupRepository interface {
	NextID(ctx context.Context) (uint, error)
	Get(ctx context.Context, id uint) (*entities.Lineup, error)
	FindByMessageID(ctx context.Context, messageID string) (*entities.Lineup, error)
	FindByEventID(ctx context.Context, eventID uint) []*entities.Lineup
	Save(ctx context.Context, lineup *entities.Lineup) error
	Delete(ctx context.Context, id uint) error
}

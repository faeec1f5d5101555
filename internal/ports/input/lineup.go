package input

import (
	"context"
	"time"

	"rosterbot/internal/domain/entities"
)

type CreateLineup struct {
	Formation string
	Title     string
	RoleID    string
	ChannelID string
	KickoffAt time.Time
	CreatorID string
	EventID   uint
}

// Board addresses one interaction on a lineup card.
type Board struct {
	LineupID uint
	ActorID  string
	View     entities.BoardView
}

type LineupUseCase interface {
	CreateLineup(ctx context.Context, in CreateLineup) (*entities.Lineup, error)
	EditLineup(ctx context.Context, id uint, actorID string) (*entities.Lineup, error)
	DeleteLineup(ctx context.Context, id uint, actorID string) error

	FocusPosition(ctx context.Context, b Board, index int) (entities.BoardView, error)
	PlayerPage(ctx context.Context, b Board, page int) (entities.BoardView, error)
	AssignPlayer(ctx context.Context, b Board, userID string) (entities.BoardView, error)
	ClearSelected(ctx context.Context, b Board) (entities.BoardView, error)
	ClearAll(ctx context.Context, b Board) (entities.BoardView, error)
	BeginFormationChange(ctx context.Context, b Board) (entities.BoardView, error)
	ConfirmFormationChange(ctx context.Context, b Board, formation string) (entities.BoardView, error)
	CancelFormationChange(ctx context.Context, b Board) (entities.BoardView, error)
	Finalize(ctx context.Context, b Board) (pinged []string, view entities.BoardView, err error)
}

package output

import (
	"context"
	"time"

	"rosterbot/internal/domain/entities"
)

// Cards posts and re-renders the structured messages showing entity state.
// Implementations return domain.ErrMessageNotFound-kind errors when the
// target message no longer exists.
type Cards interface {
	PostEventCard(ctx context.Context, channelID string, event *entities.Event) (messageID string, err error)
	UpdateEventCard(ctx context.Context, event *entities.Event) error
	PostLineupCard(ctx context.Context, lineup *entities.Lineup, view entities.BoardView) (messageID string, err error)
	UpdateLineupCard(ctx context.Context, lineup *entities.Lineup, view entities.BoardView) error
	// PromptArrival sends userID a menu of arrival times for event.
	PromptArrival(ctx context.Context, event *entities.Event, userID string, options []time.Time) (messageID string, err error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

type Reactions interface {
	AddReaction(ctx context.Context, channelID, messageID, glyph string) error
	RemoveReaction(ctx context.Context, channelID, messageID, glyph, userID string) error
}

type Threads interface {
	StartThread(ctx context.Context, channelID, messageID, name string) (threadID string, err error)
	DeleteThread(ctx context.Context, threadID string) error
	AddThreadMember(ctx context.Context, threadID, userID string) error
	RemoveThreadMember(ctx context.Context, threadID, userID string) error
}

// Directory resolves permission groups.
type Directory interface {
	MemberRoles(ctx context.Context, userID string) ([]string, error)
	RoleMembers(ctx context.Context, roleID string) ([]entities.Member, error)
}

type Notifier interface {
	// AnnounceEvent pings the event's role, in its thread when it has one.
	AnnounceEvent(ctx context.Context, event *entities.Event) error
	// NotifyLineup pings userIDs in the lineup's channel to confirm their spot.
	NotifyLineup(ctx context.Context, lineup *entities.Lineup, userIDs []string) error
}

// Messenger is everything the core asks of the chat platform.
type Messenger interface {
	Cards
	Reactions
	Threads
	Directory
	Notifier
}

package input

import (
	"context"
	"time"
)

// Reaction is a reaction add or remove reported by the gateway.
type Reaction struct {
	ChannelID string
	MessageID string
	UserID    string
	Glyph     string
}

// Key identifies the (message, user, glyph) triple in the suppression ledger.
func (r Reaction) Key() string {
	return r.MessageID + ":" + r.UserID + ":" + r.Glyph
}

type RSVPUseCase interface {
	HandleReactionAdd(ctx context.Context, r Reaction) error
	HandleReactionRemove(ctx context.Context, r Reaction) error
	ChooseArrival(ctx context.Context, eventID uint, userID string, at time.Time) error
	// DismissPrompt abandons a pending late arrival, returning the user to unset.
	DismissPrompt(ctx context.Context, eventID uint, userID string) error
}

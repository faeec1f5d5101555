package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"rosterbot/internal/domain"
	"rosterbot/internal/ports/input"
)

// HandleBoardComponent handles every button and menu of a lineup card. The
// interaction is acknowledged first; the service edits the card itself.
func (h *Handler) HandleBoardComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer h.recoverPanic("board")
	data := i.MessageComponentData()
	id, ok := parseBoardID(data.CustomID)
	if !ok {
		h.log.WithField("custom_id", data.CustomID).Debug("malformed board custom id")
		return
	}
	deferUpdate(s, i.Interaction)

	ctx := context.Background()
	b := input.Board{LineupID: id.LineupID, ActorID: interactionUserID(i), View: id.View}
	var err error
	if data.ComponentType == discordgo.ButtonComponent {
		err = h.boardButton(ctx, s, i, b, id.Action)
	} else {
		_, err = h.boardSelect(ctx, b, id.Action, data.Values)
	}
	if err != nil {
		followupEphemeral(s, i.Interaction, h.errorMessage("board "+id.Action, err))
	}
}

func (h *Handler) boardButton(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, b input.Board, action string) error {
	var err error
	switch action {
	case actPrev:
		_, err = h.lineups.PlayerPage(ctx, b, b.View.Page-1)
	case actNext:
		_, err = h.lineups.PlayerPage(ctx, b, b.View.Page+1)
	case actClear:
		_, err = h.lineups.ClearSelected(ctx, b)
	case actClearAll:
		_, err = h.lineups.ClearAll(ctx, b)
	case actChangeFormat:
		_, err = h.lineups.BeginFormationChange(ctx, b)
	case actCancelFormat:
		_, err = h.lineups.CancelFormationChange(ctx, b)
	case actFinalize:
		var pinged []string
		pinged, _, err = h.lineups.Finalize(ctx, b)
		if err == nil {
			followupEphemeral(s, i.Interaction, h.finalizeMessage(pinged))
		}
	}
	return err
}

func (h *Handler) finalizeMessage(pinged []string) string {
	if len(pinged) == 0 {
		return h.translate("info.lineup_nobody_new", nil)
	}
	return h.translate("info.lineup_finalized", map[string]any{"Count": len(pinged)})
}

// HandleArrivalDismiss abandons a late prompt; only the prompted user may.
func (h *Handler) HandleArrivalDismiss(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer h.recoverPanic("arrival_dismiss")
	id, ok := parsePromptID(prefixLateDismiss, i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	if interactionUserID(i) != id.UserID {
		respondEphemeral(s, i.Interaction, h.errorMessage("dismiss prompt", domain.ErrNotPrompted))
		return
	}
	deferUpdate(s, i.Interaction)
	if err := h.rsvp.DismissPrompt(context.Background(), id.EventID, id.UserID); err != nil {
		followupEphemeral(s, i.Interaction, h.errorMessage("dismiss prompt", err))
		return
	}
	followupEphemeral(s, i.Interaction, h.translate("info.prompt_dismissed", nil))
}

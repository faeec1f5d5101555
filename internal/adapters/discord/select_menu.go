package discord

import (
	"context"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"rosterbot/internal/domain"
	"rosterbot/internal/domain/entities"
	"rosterbot/internal/ports/input"
	pkgdiscord "rosterbot/pkg/discord"
)

// boardSelect handles the position, player and formation menus of a lineup card.
func (h *Handler) boardSelect(ctx context.Context, b input.Board, action string, values []string) (entities.BoardView, error) {
	if len(values) == 0 {
		return b.View, nil
	}
	switch action {
	case actPosition:
		index, err := strconv.Atoi(values[0])
		if err != nil {
			return b.View, domain.ErrInvalidPosition
		}
		return h.lineups.FocusPosition(ctx, b, index)
	case actPick:
		return h.lineups.AssignPlayer(ctx, b, values[0])
	case actConfirmFormat:
		return h.lineups.ConfirmFormationChange(ctx, b, values[0])
	}
	return b.View, nil
}

// HandleArrivalSelect records the arrival time picked on a late prompt.
func (h *Handler) HandleArrivalSelect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer h.recoverPanic("arrival_select")
	data := i.MessageComponentData()
	id, ok := parsePromptID(prefixLate, data.CustomID)
	if !ok || len(data.Values) == 0 {
		return
	}
	if interactionUserID(i) != id.UserID {
		respondEphemeral(s, i.Interaction, h.errorMessage("choose arrival", domain.ErrNotPrompted))
		return
	}
	secs, err := strconv.ParseInt(data.Values[0], 10, 64)
	if err != nil {
		respondEphemeral(s, i.Interaction, h.errorMessage("choose arrival", domain.ErrInvalidArrival))
		return
	}
	at := time.Unix(secs, 0)

	deferUpdate(s, i.Interaction)
	if err := h.rsvp.ChooseArrival(context.Background(), id.EventID, id.UserID, at); err != nil {
		followupEphemeral(s, i.Interaction, h.errorMessage("choose arrival", err))
		return
	}
	followupEphemeral(s, i.Interaction, h.translate("info.arrival_recorded", map[string]any{
		"Clock": pkgdiscord.FormatClock(at),
	}))
}

package discord

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"rosterbot/internal/ports/input"
	pkgdiscord "rosterbot/pkg/discord"
)

// handleCreateEventModalSubmit gère la soumission du formulaire /event create.
func (h *Handler) handleCreateEventModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ModalSubmitInteractionData) {
	opts, ok := parseEventModal(data.CustomID)
	if !ok {
		respondEphemeral(s, i.Interaction, h.translate("errors.generic", nil))
		return
	}
	values := pkgdiscord.ExtractModalData(data)

	scheduledAt, err := pkgdiscord.ParseEventDateTime(values["date"], values["time"], h.now())
	if err != nil {
		respondEphemeral(s, i.Interaction, h.errorMessage("create event", err))
		return
	}

	// Poster la carte, les réactions et le fil peut dépasser les 3s.
	deferEphemeral(s, i.Interaction)

	ev, err := h.events.CreateEvent(context.Background(), input.CreateEvent{
		Name:        strings.TrimSpace(values["name"]),
		Description: strings.TrimSpace(values["desc"]),
		ScheduledAt: scheduledAt,
		Formation:   opts.Formation,
		RoleID:      opts.RoleID,
		StreamURL:   strings.TrimSpace(values["stream"]),
		ChannelID:   opts.ChannelID,
		CreatorID:   interactionUserID(i),
	})
	if err != nil {
		followupEphemeral(s, i.Interaction, h.errorMessage("create event", err))
		return
	}
	followupEphemeral(s, i.Interaction, h.translate("info.event_created", map[string]any{
		"ID":    ev.ID,
		"Event": ev.Name,
		"When":  pkgdiscord.FormatEventDateTime(ev.ScheduledAt),
	}))
}

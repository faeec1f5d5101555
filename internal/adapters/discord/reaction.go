package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"rosterbot/internal/ports/input"
)

func (h *Handler) reaction(s *discordgo.Session, r *discordgo.MessageReaction) (input.Reaction, bool) {
	if r == nil || r.UserID == "" {
		return input.Reaction{}, false
	}
	if s.State != nil && s.State.User != nil && r.UserID == s.State.User.ID {
		return input.Reaction{}, false
	}
	if h.guildID != "" && r.GuildID != h.guildID {
		return input.Reaction{}, false
	}
	return input.Reaction{
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Glyph:     r.Emoji.APIName(),
	}, true
}

func (h *Handler) HandleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	defer h.recoverPanic("reaction_add")
	in, ok := h.reaction(s, r.MessageReaction)
	if !ok {
		return
	}
	if err := h.rsvp.HandleReactionAdd(context.Background(), in); err != nil {
		h.log.WithField("message_id", in.MessageID).WithError(err).Warn("reaction add not handled")
	}
}

func (h *Handler) HandleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	defer h.recoverPanic("reaction_remove")
	in, ok := h.reaction(s, r.MessageReaction)
	if !ok {
		return
	}
	if err := h.rsvp.HandleReactionRemove(context.Background(), in); err != nil {
		h.log.WithField("message_id", in.MessageID).WithError(err).Warn("reaction remove not handled")
	}
}

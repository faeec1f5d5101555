package discord

import (
	"github.com/bwmarrin/discordgo"

	"rosterbot/internal/domain"
	pkgdiscord "rosterbot/pkg/discord"
)

// Nick > GlobalName > Username
func resolveDisplayName(member *discordgo.Member) string {
	if member == nil || member.User == nil {
		return ""
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

// interactionUserID returns the invoking user in guilds and in DMs.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func respondEphemeral(s *discordgo.Session, i *discordgo.Interaction, content string) {
	_ = s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// deferEphemeral acknowledges a command whose answer comes as a followup.
func deferEphemeral(s *discordgo.Session, i *discordgo.Interaction) {
	_ = s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

// deferUpdate acknowledges a component; the card itself is edited by the services.
func deferUpdate(s *discordgo.Session, i *discordgo.Interaction) {
	_ = s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

func followupEphemeral(s *discordgo.Session, i *discordgo.Interaction, content string) {
	_, _ = s.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

// errorMessage resolves err to the text shown to the user. Transient errors
// are logged here since the user only sees a generic message.
func (h *Handler) errorMessage(op string, err error) string {
	if !domain.IsUserFacing(err) {
		h.log.WithField("op", op).WithError(err).Error("❌ interaction failed")
	}
	return h.translate(pkgdiscord.ErrorKey(err), nil)
}

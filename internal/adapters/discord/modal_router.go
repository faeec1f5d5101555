package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// HandleModalSubmit route les modals en fonction de leur CustomID.
func (h *Handler) HandleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer h.recoverPanic("modal")
	data := i.ModalSubmitData()
	switch {
	case strings.HasPrefix(data.CustomID, prefixEventModal):
		h.handleCreateEventModalSubmit(s, i, data)
	default:
		// Modal inconnu : on ignore.
	}
}

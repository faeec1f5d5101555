package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Intents needed for reactions, thread membership and member role lookups.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsGuildMembers

// Bot is the Discord adapter: it owns the gateway session and routes its
// events to the Handler.
type Bot struct {
	session *discordgo.Session
	handler *Handler
	guildID string
	log     *logrus.Entry
}

// NewBot registers the gateway handlers on s.
func NewBot(s *discordgo.Session, handler *Handler, guildID string, log *logrus.Logger) *Bot {
	s.Identify.Intents = Intents
	s.StateEnabled = true
	bot := &Bot{
		session: s,
		handler: handler,
		guildID: guildID,
		log:     log.WithField("component", "bot"),
	}
	bot.setupHandlers()
	return bot
}

func (b *Bot) setupHandlers() {
	b.session.AddHandler(b.handler.HandleReactionAdd)
	b.session.AddHandler(b.handler.HandleReactionRemove)
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.log.WithField("user", r.User.Username).Info("🤖 bot online")
	})
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handler.HandleCommand(s, i)
	case discordgo.InteractionModalSubmit:
		b.handler.HandleModalSubmit(s, i)
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		switch {
		case strings.HasPrefix(customID, prefixBoard):
			b.handler.HandleBoardComponent(s, i)
		case strings.HasPrefix(customID, prefixLateDismiss):
			b.handler.HandleArrivalDismiss(s, i)
		case strings.HasPrefix(customID, prefixLate):
			b.handler.HandleArrivalSelect(s, i)
		default:
			b.log.WithField("custom_id", customID).Debug("unrouted component")
		}
	}
}

// Start opens the gateway, registers the slash commands on the guild and
// blocks until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway session: %w", err)
	}
	defer b.session.Close()

	if _, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, Commands()); err != nil {
		b.log.WithError(err).Warn("⚠️ slash command registration failed")
	}

	<-ctx.Done()
	b.log.Info("👋 closing gateway session")
	return nil
}

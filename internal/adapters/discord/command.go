package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"rosterbot/internal/domain/entities"
	"rosterbot/internal/ports/input"
	pkgdiscord "rosterbot/pkg/discord"
)

const (
	placeholderName   = "Ex: Scrim vs Rovers"
	placeholderDesc   = "Friendly, home ground..."
	placeholderDate   = "Ex: 10/01/2025 (DD/MM/YYYY)"
	placeholderTime   = "Ex: 20:00"
	placeholderStream = "https://twitch.tv/..."
)

var minID = 1.0

func formationChoices() []*discordgo.ApplicationCommandOptionChoice {
	names := entities.FormationNames()
	out := make([]*discordgo.ApplicationCommandOptionChoice, len(names))
	for i, name := range names {
		out[i] = &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name}
	}
	return out
}

func idOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "id",
		Description: description,
		Required:    true,
		MinValue:    &minID,
	}
}

func subcommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// Commands returns the slash commands registered by the bot.
func Commands() []*discordgo.ApplicationCommand {
	textChannels := []discordgo.ChannelType{discordgo.ChannelTypeGuildText}
	return []*discordgo.ApplicationCommand{
		{
			Name:        "event",
			Description: "Schedule and manage events",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("create", "Create an event (opens a form)",
					&discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionString, Name: "formation", Description: "Spawn a lineup with this formation", Choices: formationChoices()},
					&discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to ping and to pick players from"},
					&discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Channel for the event card", ChannelTypes: textChannels},
				),
				subcommand("close", "Stop accepting RSVPs", idOption("Event id")),
				subcommand("open", "Accept RSVPs again", idOption("Event id")),
				subcommand("cancel", "Delete the event, its card and its thread", idOption("Event id")),
				subcommand("info", "Show the event's attendance", idOption("Event id")),
			},
		},
		{
			Name:        "lineup",
			Description: "Build team lineups",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("create", "Create a lineup board",
					&discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionString, Name: "formation", Description: "Formation", Required: true, Choices: formationChoices()},
					&discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Title"},
					&discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Only members of this role can be picked"},
					&discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Channel for the board", ChannelTypes: textChannels},
					&discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionString, Name: "kickoff", Description: "DD/MM/YYYY HH:MM"},
				),
				subcommand("edit", "Re-post the board at the bottom of its channel", idOption("Lineup id")),
				subcommand("delete", "Delete a lineup", idOption("Lineup id")),
			},
		},
	}
}

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func (o options) string(name string) string {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionString {
		return opt.StringValue()
	}
	return ""
}

func (o options) id(name string) uint {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionInteger {
		if v := opt.IntValue(); v > 0 {
			return uint(v)
		}
	}
	return 0
}

func (o options) role(name string) string {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionRole {
		return opt.RoleValue(nil, "").ID
	}
	return ""
}

func (o options) channel(name string) string {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionChannel {
		return opt.ChannelValue(nil).ID
	}
	return ""
}

// HandleCommand routes /event and /lineup subcommands.
func (h *Handler) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer h.recoverPanic("command")
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	if data.Name == "event" && sub.Name == "create" {
		h.openEventModal(s, i, eventModal{
			Formation: opts.string("formation"),
			RoleID:    opts.role("role"),
			ChannelID: opts.channel("channel"),
		})
		return
	}

	deferEphemeral(s, i.Interaction)
	ctx := context.Background()
	actor := interactionUserID(i)
	reply := func(key string, data map[string]any) {
		followupEphemeral(s, i.Interaction, h.translate(key, data))
	}
	fail := func(err error) {
		followupEphemeral(s, i.Interaction, h.errorMessage(data.Name+" "+sub.Name, err))
	}

	switch data.Name + " " + sub.Name {
	case "event close":
		ev, err := h.events.CloseEvent(ctx, opts.id("id"), actor)
		if err != nil {
			fail(err)
			return
		}
		reply("info.event_closed", map[string]any{"Event": ev.Name})
	case "event open":
		ev, err := h.events.OpenEvent(ctx, opts.id("id"), actor)
		if err != nil {
			fail(err)
			return
		}
		reply("info.event_opened", map[string]any{"Event": ev.Name})
	case "event cancel":
		if err := h.events.CancelEvent(ctx, opts.id("id"), actor); err != nil {
			fail(err)
			return
		}
		reply("info.event_cancelled", nil)
	case "event info":
		ev, err := h.events.Info(ctx, opts.id("id"))
		if err != nil {
			fail(err)
			return
		}
		reply("info.event_summary", eventSummary(ev))
	case "lineup create":
		kickoff, err := pkgdiscord.ParseKickoff(opts.string("kickoff"), h.now())
		if err != nil {
			fail(err)
			return
		}
		channelID := opts.channel("channel")
		if channelID == "" {
			channelID = i.ChannelID
		}
		l, err := h.lineups.CreateLineup(ctx, input.CreateLineup{
			Formation: opts.string("formation"),
			Title:     opts.string("title"),
			RoleID:    opts.role("role"),
			ChannelID: channelID,
			KickoffAt: kickoff,
			CreatorID: actor,
		})
		if err != nil {
			fail(err)
			return
		}
		reply("info.lineup_created", map[string]any{"ID": l.ID})
	case "lineup edit":
		l, err := h.lineups.EditLineup(ctx, opts.id("id"), actor)
		if err != nil {
			fail(err)
			return
		}
		reply("info.lineup_reposted", map[string]any{"ID": l.ID})
	case "lineup delete":
		if err := h.lineups.DeleteLineup(ctx, opts.id("id"), actor); err != nil {
			fail(err)
			return
		}
		reply("info.lineup_deleted", nil)
	default:
		reply("errors.unknown_command", nil)
	}
}

func eventSummary(ev *entities.Event) map[string]any {
	status := "open"
	if ev.Closed {
		status = "closed"
	}
	return map[string]any{
		"ID":     ev.ID,
		"Event":  ev.Name,
		"When":   pkgdiscord.FormatEventDateTime(ev.ScheduledAt),
		"Status": status,
		"Attend": len(ev.WithStatus(entities.StatusAttend)),
		"Maybe":  len(ev.WithStatus(entities.StatusMaybe)),
		"Late":   len(ev.LateArrivals),
		"Absent": len(ev.WithStatus(entities.StatusAbsent)),
	}
}

func (h *Handler) openEventModal(s *discordgo.Session, i *discordgo.InteractionCreate, m eventModal) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: m.String(),
			Title:    h.translate("ui.modal_create_event_title", nil),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "name", Label: h.translate("ui.label_name", nil), Style: discordgo.TextInputShort, Required: true, MaxLength: 100, Placeholder: placeholderName},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "desc", Label: h.translate("ui.label_description", nil), Style: discordgo.TextInputParagraph, Required: false, Placeholder: placeholderDesc},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "date", Label: h.translate("ui.label_date", nil), Style: discordgo.TextInputShort, Required: true, Placeholder: placeholderDate},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "time", Label: h.translate("ui.label_time", nil), Style: discordgo.TextInputShort, Required: true, Placeholder: placeholderTime},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "stream", Label: h.translate("ui.label_stream", nil), Style: discordgo.TextInputShort, Required: false, Placeholder: placeholderStream},
				}},
			},
		},
	})
}

package discord

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"rosterbot/internal/domain"
	"rosterbot/internal/domain/entities"
	"rosterbot/internal/ports/output"
	pkgdiscord "rosterbot/pkg/discord"
)

var _ output.Messenger = (*Messenger)(nil)

const (
	threadArchiveMinutes = 1440
	threadNameLimit      = 100
	membersPageSize      = 1000
)

// Messenger implements the platform port over a discordgo session. Every
// REST call is bounded by the configured timeout.
type Messenger struct {
	session *discordgo.Session
	guildID string
	tr      output.T
	locale  string
	timeout time.Duration
	log     *logrus.Entry
}

func NewMessenger(s *discordgo.Session, guildID string, tr output.T, locale string, timeout time.Duration, log *logrus.Logger) *Messenger {
	return &Messenger{
		session: s,
		guildID: guildID,
		tr:      tr,
		locale:  locale,
		timeout: timeout,
		log:     log.WithField("component", "discord"),
	}
}

func (m *Messenger) translate(key string, data map[string]any) string {
	return m.tr.T(m.locale, key, data)
}

// call bounds one REST request and maps its error onto the domain kinds.
func (m *Messenger) call(ctx context.Context, op string, fn func(opt discordgo.RequestOption) error) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return mapError(op, fn(discordgo.WithContext(ctx)))
}

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
		return domain.NotFound(op, err)
	}
	return domain.Transient(op, err)
}

func (m *Messenger) PostEventCard(ctx context.Context, channelID string, ev *entities.Event) (string, error) {
	var msg *discordgo.Message
	err := m.call(ctx, "post event card", func(opt discordgo.RequestOption) (err error) {
		msg, err = m.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{pkgdiscord.EventEmbed(m.translate, ev)},
		}, opt)
		return err
	})
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (m *Messenger) UpdateEventCard(ctx context.Context, ev *entities.Event) error {
	embeds := []*discordgo.MessageEmbed{pkgdiscord.EventEmbed(m.translate, ev)}
	return m.call(ctx, "update event card", func(opt discordgo.RequestOption) error {
		_, err := m.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:      ev.MessageID,
			Channel: ev.ChannelID,
			Embeds:  &embeds,
		}, opt)
		return err
	})
}

// boardMembers loads the picker page for a focused, role-restricted board.
func (m *Messenger) boardMembers(ctx context.Context, l *entities.Lineup, view entities.BoardView) []entities.Member {
	if !view.HasFocus() || l.RoleID == "" || view.Mode != entities.BoardPicking {
		return nil
	}
	members, err := m.RoleMembers(ctx, l.RoleID)
	if err != nil {
		m.log.WithField("lineup_id", l.ID).WithError(err).Warn("role members unavailable, picker hidden")
		return nil
	}
	return members
}

func (m *Messenger) PostLineupCard(ctx context.Context, l *entities.Lineup, view entities.BoardView) (string, error) {
	components := m.boardComponents(l, view, m.boardMembers(ctx, l, view))
	var msg *discordgo.Message
	err := m.call(ctx, "post lineup card", func(opt discordgo.RequestOption) (err error) {
		msg, err = m.session.ChannelMessageSendComplex(l.ChannelID, &discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{pkgdiscord.LineupEmbed(m.translate, l, view)},
			Components: components,
		}, opt)
		return err
	})
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (m *Messenger) UpdateLineupCard(ctx context.Context, l *entities.Lineup, view entities.BoardView) error {
	embeds := []*discordgo.MessageEmbed{pkgdiscord.LineupEmbed(m.translate, l, view)}
	components := m.boardComponents(l, view, m.boardMembers(ctx, l, view))
	return m.call(ctx, "update lineup card", func(opt discordgo.RequestOption) error {
		_, err := m.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         l.MessageID,
			Channel:    l.ChannelID,
			Embeds:     &embeds,
			Components: &components,
		}, opt)
		return err
	})
}

// PromptArrival posts the arrival menu in the event channel, addressed to userID.
func (m *Messenger) PromptArrival(ctx context.Context, ev *entities.Event, userID string, options []time.Time) (string, error) {
	var msg *discordgo.Message
	err := m.call(ctx, "prompt arrival", func(opt discordgo.RequestOption) (err error) {
		msg, err = m.session.ChannelMessageSendComplex(ev.ChannelID, &discordgo.MessageSend{
			Content: m.translate("prompt.arrival", map[string]any{
				"User":  pkgdiscord.Mention(userID),
				"Event": ev.Name,
			}),
			Components:      m.arrivalComponents(ev.ID, userID, options),
			AllowedMentions: &discordgo.MessageAllowedMentions{Users: []string{userID}},
		}, opt)
		return err
	})
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (m *Messenger) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if messageID == "" {
		return nil
	}
	return m.call(ctx, "delete message", func(opt discordgo.RequestOption) error {
		return m.session.ChannelMessageDelete(channelID, messageID, opt)
	})
}

func (m *Messenger) AddReaction(ctx context.Context, channelID, messageID, glyph string) error {
	return m.call(ctx, "add reaction", func(opt discordgo.RequestOption) error {
		return m.session.MessageReactionAdd(channelID, messageID, glyph, opt)
	})
}

func (m *Messenger) RemoveReaction(ctx context.Context, channelID, messageID, glyph, userID string) error {
	return m.call(ctx, "remove reaction", func(opt discordgo.RequestOption) error {
		return m.session.MessageReactionRemove(channelID, messageID, glyph, userID, opt)
	})
}

func (m *Messenger) StartThread(ctx context.Context, channelID, messageID, name string) (string, error) {
	if len(name) > threadNameLimit {
		name = strings.ToValidUTF8(name[:threadNameLimit], "")
	}
	var ch *discordgo.Channel
	err := m.call(ctx, "start thread", func(opt discordgo.RequestOption) (err error) {
		ch, err = m.session.MessageThreadStartComplex(channelID, messageID, &discordgo.ThreadStart{
			Name:                name,
			AutoArchiveDuration: threadArchiveMinutes,
		}, opt)
		return err
	})
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (m *Messenger) DeleteThread(ctx context.Context, threadID string) error {
	return m.call(ctx, "delete thread", func(opt discordgo.RequestOption) error {
		_, err := m.session.ChannelDelete(threadID, opt)
		return err
	})
}

func (m *Messenger) AddThreadMember(ctx context.Context, threadID, userID string) error {
	return m.call(ctx, "add thread member", func(opt discordgo.RequestOption) error {
		return m.session.ThreadMemberAdd(threadID, userID, opt)
	})
}

func (m *Messenger) RemoveThreadMember(ctx context.Context, threadID, userID string) error {
	return m.call(ctx, "remove thread member", func(opt discordgo.RequestOption) error {
		return m.session.ThreadMemberRemove(threadID, userID, opt)
	})
}

// MemberRoles prefers the gateway state and falls back to REST.
func (m *Messenger) MemberRoles(ctx context.Context, userID string) ([]string, error) {
	if member, err := m.session.State.Member(m.guildID, userID); err == nil && member != nil {
		return member.Roles, nil
	}
	var member *discordgo.Member
	err := m.call(ctx, "guild member", func(opt discordgo.RequestOption) (err error) {
		member, err = m.session.GuildMember(m.guildID, userID, opt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return member.Roles, nil
}

// RoleMembers lists the non-bot members holding roleID, sorted by display name.
func (m *Messenger) RoleMembers(ctx context.Context, roleID string) ([]entities.Member, error) {
	var out []entities.Member
	after := ""
	for {
		var page []*discordgo.Member
		err := m.call(ctx, "guild members", func(opt discordgo.RequestOption) (err error) {
			page, err = m.session.GuildMembers(m.guildID, after, membersPageSize, opt)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, mem := range page {
			if mem.User == nil || mem.User.Bot || !slices.Contains(mem.Roles, roleID) {
				continue
			}
			out = append(out, entities.Member{ID: mem.User.ID, DisplayName: resolveDisplayName(mem)})
		}
		if len(page) < membersPageSize {
			break
		}
		after = page[len(page)-1].User.ID
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].DisplayName), strings.ToLower(out[j].DisplayName)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Messenger) AnnounceEvent(ctx context.Context, ev *entities.Event) error {
	target := ev.ThreadID
	if target == "" {
		target = ev.ChannelID
	}
	return m.call(ctx, "announce event", func(opt discordgo.RequestOption) error {
		_, err := m.session.ChannelMessageSendComplex(target, &discordgo.MessageSend{
			Content: m.translate("notify.event", map[string]any{
				"Role":  pkgdiscord.RoleMention(ev.RoleID),
				"Event": ev.Name,
				"When":  pkgdiscord.FormatEventDateTime(ev.ScheduledAt),
			}),
			AllowedMentions: &discordgo.MessageAllowedMentions{Roles: []string{ev.RoleID}},
		}, opt)
		return err
	})
}

func (m *Messenger) NotifyLineup(ctx context.Context, l *entities.Lineup, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	mentions := make([]string, len(userIDs))
	for i, id := range userIDs {
		mentions[i] = pkgdiscord.Mention(id)
	}
	title := l.Title
	if title == "" {
		title = m.translate("card.lineup_default_title", map[string]any{"ID": l.ID})
	}
	return m.call(ctx, "notify lineup", func(opt discordgo.RequestOption) error {
		_, err := m.session.ChannelMessageSendComplex(l.ChannelID, &discordgo.MessageSend{
			Content: m.translate("notify.lineup", map[string]any{
				"Users":  strings.Join(mentions, " "),
				"Lineup": title,
			}),
			AllowedMentions: &discordgo.MessageAllowedMentions{Users: userIDs},
		}, opt)
		return err
	})
}

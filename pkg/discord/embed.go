package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"rosterbot/internal/domain/entities"
)

const (
	colorOpen     = 0x5865F2
	colorClosed   = 0x99AAB5
	colorLineup   = 0x57F287
	colorChanging = 0xFEE75C

	fieldValueLimit = 1024
)

// Translate resolves an i18n key; data may be nil.
type Translate func(key string, data map[string]any) string

func Mention(userID string) string     { return "<@" + userID + ">" }
func RoleMention(roleID string) string { return "<@&" + roleID + ">" }

// mentionList renders one mention per line, cut short with a "+N" marker
// before it overflows an embed field.
func mentionList(tr Translate, lines []string) string {
	if len(lines) == 0 {
		return tr("card.empty", nil)
	}
	var b strings.Builder
	for i, line := range lines {
		rest := len(lines) - i
		more := tr("card.more", map[string]any{"Count": rest})
		if b.Len()+len(line)+len(more)+2 > fieldValueLimit {
			b.WriteString(more)
			break
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}

func mentions(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = Mention(id)
	}
	return out
}

// EventEmbed renders the RSVP card of ev.
func EventEmbed(tr Translate, ev *entities.Event) *discordgo.MessageEmbed {
	var desc strings.Builder
	if ev.Closed {
		desc.WriteString(tr("card.closed_banner", nil))
		desc.WriteString("\n\n")
	}
	if ev.Description != "" {
		desc.WriteString(ev.Description)
		desc.WriteString("\n\n")
	}
	desc.WriteString(tr("card.when", map[string]any{"When": FormatEventDateTime(ev.ScheduledAt)}))
	if ev.StreamURL != "" {
		desc.WriteString("\n")
		desc.WriteString(tr("card.stream", map[string]any{"URL": ev.StreamURL}))
	}

	attend := ev.WithStatus(entities.StatusAttend)
	maybe := ev.WithStatus(entities.StatusMaybe)
	absent := ev.WithStatus(entities.StatusAbsent)
	late := ev.Late()
	lateLines := make([]string, len(late))
	for i, la := range late {
		lateLines[i] = fmt.Sprintf("%s · %s", Mention(la.UserID), FormatClock(la.At))
	}

	color := colorOpen
	if ev.Closed {
		color = colorClosed
	}
	return &discordgo.MessageEmbed{
		Title:       "📅 " + ev.Name,
		Description: desc.String(),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: tr("card.attend", map[string]any{"Count": len(attend)}), Value: mentionList(tr, mentions(attend)), Inline: true},
			{Name: tr("card.maybe", map[string]any{"Count": len(maybe)}), Value: mentionList(tr, mentions(maybe)), Inline: true},
			{Name: tr("card.late", map[string]any{"Count": len(late)}), Value: mentionList(tr, lateLines), Inline: true},
			{Name: tr("card.absent", map[string]any{"Count": len(absent)}), Value: mentionList(tr, mentions(absent)), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: tr("card.event_footer", map[string]any{"ID": ev.ID}),
		},
	}
}

// LineupEmbed renders the lineup card: one line per formation row, forwards first.
func LineupEmbed(tr Translate, l *entities.Lineup, view entities.BoardView) *discordgo.MessageEmbed {
	title := l.Title
	if title == "" {
		title = tr("card.lineup_default_title", map[string]any{"ID": l.ID})
	}

	var desc strings.Builder
	desc.WriteString(tr("card.formation", map[string]any{"Formation": l.FormationName}))
	if !l.KickoffAt.IsZero() {
		desc.WriteString("\n")
		desc.WriteString(tr("card.kickoff", map[string]any{"When": FormatEventDateTime(l.KickoffAt)}))
	}
	if l.RoleID != "" {
		desc.WriteString("\n")
		desc.WriteString(tr("card.role", map[string]any{"Role": RoleMention(l.RoleID)}))
	}
	desc.WriteString("\n")
	for _, row := range l.Rows() {
		cells := make([]string, len(row))
		for i, p := range row {
			who := tr("card.unassigned", nil)
			if p.Assigned() {
				who = Mention(p.UserID)
			}
			cells[i] = fmt.Sprintf("`%s` %s", p.Code, who)
		}
		desc.WriteString("\n")
		desc.WriteString(strings.Join(cells, "  "))
	}

	status := tr("card.status_draft", nil)
	if l.FinishedOnce {
		status = tr("card.status_finalized", map[string]any{"Count": len(l.NotifiedUsers)})
	}
	color := colorLineup
	if view.Mode == entities.BoardChangingFormation {
		color = colorChanging
		status = tr("card.changing_formation", nil)
	}
	return &discordgo.MessageEmbed{
		Title:       "📋 " + title,
		Description: desc.String(),
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: status},
	}
}

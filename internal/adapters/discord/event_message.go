package discord

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"rosterbot/internal/domain/entities"
	pkgdiscord "rosterbot/pkg/discord"
)

const optionLabelLimit = 100

func truncateLabel(s string) string {
	r := []rune(s)
	if len(r) <= optionLabelLimit {
		return s
	}
	return string(r[:optionLabelLimit-1]) + "…"
}

// arrivalComponents is the menu of arrival times offered to a late user.
func (m *Messenger) arrivalComponents(eventID uint, userID string, options []time.Time) []discordgo.MessageComponent {
	opts := make([]discordgo.SelectMenuOption, len(options))
	for i, at := range options {
		opts[i] = discordgo.SelectMenuOption{
			Label: m.translate("prompt.arrival_option", map[string]any{
				"Clock":   pkgdiscord.FormatClock(at),
				"Minutes": int(entities.LateOffsets[i] / time.Minute),
			}),
			Value: strconv.FormatInt(at.Unix(), 10),
		}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    latePromptCustomID(prefixLate, eventID, userID),
				Placeholder: m.translate("prompt.arrival_placeholder", nil),
				Options:     opts,
			},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    m.translate("prompt.dismiss", nil),
				Style:    discordgo.SecondaryButton,
				CustomID: latePromptCustomID(prefixLateDismiss, eventID, userID),
			},
		}},
	}
}

// boardComponents builds the controls of a lineup card for view. members is
// the role-filtered picker population, nil when the picker is a user select.
func (m *Messenger) boardComponents(l *entities.Lineup, view entities.BoardView, members []entities.Member) []discordgo.MessageComponent {
	if view.Mode == entities.BoardChangingFormation {
		return m.formationComponents(l, view)
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{m.positionSelect(l, view, false)}},
	}
	if view.HasFocus() && view.Focus < len(l.Positions) {
		components = append(components, m.playerPicker(l, view, members)...)
	}
	components = append(components, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{
			Label:    m.translate("board.clear_selected", nil),
			Style:    discordgo.SecondaryButton,
			CustomID: boardCustomID(l.ID, actClear, view),
			Disabled: !view.HasFocus(),
		},
		discordgo.Button{
			Label:    m.translate("board.clear_all", nil),
			Style:    discordgo.DangerButton,
			CustomID: boardCustomID(l.ID, actClearAll, view),
		},
		discordgo.Button{
			Label:    m.translate("board.change_formation", nil),
			Style:    discordgo.SecondaryButton,
			CustomID: boardCustomID(l.ID, actChangeFormat, view),
		},
		discordgo.Button{
			Label:    m.translate("board.finalize", nil),
			Style:    discordgo.SuccessButton,
			CustomID: boardCustomID(l.ID, actFinalize, view),
		},
	}})
	return components
}

func (m *Messenger) positionSelect(l *entities.Lineup, view entities.BoardView, disabled bool) discordgo.SelectMenu {
	opts := make([]discordgo.SelectMenuOption, len(l.Positions))
	for i, p := range l.Positions {
		state := m.translate("board.unassigned", nil)
		if p.Assigned() {
			state = m.translate("board.assigned", nil)
		}
		opts[i] = discordgo.SelectMenuOption{
			Label:   truncateLabel(fmt.Sprintf("%s · %s", p.Code, state)),
			Value:   strconv.Itoa(i),
			Default: i == view.Focus,
		}
	}
	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    boardCustomID(l.ID, actPosition, view),
		Placeholder: m.translate("board.position_placeholder", nil),
		Options:     opts,
		Disabled:    disabled,
	}
}

func (m *Messenger) playerPicker(l *entities.Lineup, view entities.BoardView, members []entities.Member) []discordgo.MessageComponent {
	placeholder := m.translate("board.player_placeholder", map[string]any{"Position": l.Positions[view.Focus].Code})
	if l.RoleID == "" {
		return []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.UserSelectMenu,
					CustomID:    boardCustomID(l.ID, actPick, view),
					Placeholder: placeholder,
				},
			}},
		}
	}
	page := entities.Page(members, view.Page)
	if len(page) == 0 {
		return nil
	}
	current := l.Positions[view.Focus].UserID
	opts := make([]discordgo.SelectMenuOption, len(page))
	for i, mem := range page {
		opts[i] = discordgo.SelectMenuOption{
			Label:   truncateLabel(mem.DisplayName),
			Value:   mem.ID,
			Default: mem.ID == current,
		}
	}
	rows := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    boardCustomID(l.ID, actPick, view),
				Placeholder: placeholder,
				Options:     opts,
			},
		}},
	}
	pages := entities.PageCount(len(members))
	if pages > 1 {
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    m.translate("board.prev", nil),
				Style:    discordgo.SecondaryButton,
				CustomID: boardCustomID(l.ID, actPrev, view),
				Disabled: view.Page == 0,
			},
			discordgo.Button{
				Label:    m.translate("board.next", map[string]any{"Page": view.Page + 1, "Pages": pages}),
				Style:    discordgo.SecondaryButton,
				CustomID: boardCustomID(l.ID, actNext, view),
				Disabled: view.Page >= pages-1,
			},
		}})
	}
	return rows
}

func (m *Messenger) formationComponents(l *entities.Lineup, view entities.BoardView) []discordgo.MessageComponent {
	names := entities.FormationNames()
	opts := make([]discordgo.SelectMenuOption, len(names))
	for i, name := range names {
		opts[i] = discordgo.SelectMenuOption{Label: name, Value: name}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{m.positionSelect(l, view, true)}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    boardCustomID(l.ID, actConfirmFormat, view),
				Placeholder: m.translate("board.formation_placeholder", nil),
				Options:     opts,
			},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    m.translate("board.cancel_formation", nil),
				Style:    discordgo.SecondaryButton,
				CustomID: boardCustomID(l.ID, actCancelFormat, view),
			},
		}},
	}
}

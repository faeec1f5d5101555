package discord

import (
	"fmt"
	"strconv"
	"strings"

	"rosterbot/internal/domain/entities"
)

// Component custom IDs carry everything a handler needs, so the bot keeps
// no per-message interaction state:
//
//	lu:<lineup>:<action>:<focus>:<page>:<mode>   lineup board controls
//	late:<event>:<user>                          arrival time select
//	latex:<event>:<user>                         arrival prompt dismiss
//	evc:<formation>:<role>:<channel>             create-event modal
const (
	prefixBoard       = "lu:"
	prefixLate        = "late:"
	prefixLateDismiss = "latex:"
	prefixEventModal  = "evc:"
)

// Board actions.
const (
	actPosition      = "pos"
	actPick          = "pick"
	actPrev          = "prev"
	actNext          = "next"
	actClear         = "clr"
	actClearAll      = "clra"
	actChangeFormat  = "fmt"
	actConfirmFormat = "fmtok"
	actCancelFormat  = "fmtx"
	actFinalize      = "fin"
)

type boardID struct {
	LineupID uint
	Action   string
	View     entities.BoardView
}

func (b boardID) String() string {
	return fmt.Sprintf("%s%d:%s:%d:%d:%d", prefixBoard, b.LineupID, b.Action, b.View.Focus, b.View.Page, b.View.Mode)
}

func boardCustomID(lineupID uint, action string, view entities.BoardView) string {
	return boardID{LineupID: lineupID, Action: action, View: view}.String()
}

func parseBoardID(s string) (boardID, bool) {
	rest, ok := strings.CutPrefix(s, prefixBoard)
	if !ok {
		return boardID{}, false
	}
	parts := strings.Split(rest, ":")
	if len(parts) != 5 {
		return boardID{}, false
	}
	id, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil || id == 0 {
		return boardID{}, false
	}
	focus, err1 := strconv.Atoi(parts[2])
	page, err2 := strconv.Atoi(parts[3])
	mode, err3 := strconv.Atoi(parts[4])
	if err1 != nil || err2 != nil || err3 != nil || page < 0 {
		return boardID{}, false
	}
	if focus < -1 {
		focus = -1
	}
	view := entities.BoardView{Focus: focus, Page: page, Mode: entities.BoardMode(mode)}
	if view.Mode != entities.BoardPicking && view.Mode != entities.BoardChangingFormation {
		return boardID{}, false
	}
	return boardID{LineupID: uint(id), Action: parts[1], View: view}, true
}

// promptID addresses an arrival prompt sent to one user.
type promptID struct {
	EventID uint
	UserID  string
}

func latePromptCustomID(prefix string, eventID uint, userID string) string {
	return fmt.Sprintf("%s%d:%s", prefix, eventID, userID)
}

func parsePromptID(prefix, s string) (promptID, bool) {
	rest, ok := strings.CutPrefix(s, prefix)
	if !ok {
		return promptID{}, false
	}
	idStr, userID, ok := strings.Cut(rest, ":")
	if !ok || userID == "" {
		return promptID{}, false
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		return promptID{}, false
	}
	return promptID{EventID: uint(id), UserID: userID}, true
}

// eventModal carries the slash command options into the modal submission.
type eventModal struct {
	Formation string
	RoleID    string
	ChannelID string
}

func (m eventModal) String() string {
	return prefixEventModal + m.Formation + ":" + m.RoleID + ":" + m.ChannelID
}

func parseEventModal(s string) (eventModal, bool) {
	rest, ok := strings.CutPrefix(s, prefixEventModal)
	if !ok {
		return eventModal{}, false
	}
	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return eventModal{}, false
	}
	return eventModal{Formation: parts[0], RoleID: parts[1], ChannelID: parts[2]}, true
}

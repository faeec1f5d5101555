package entities

import (
	"sort"
	"time"
)

// Position is one slot of a lineup. An empty UserID means unassigned.
type Position struct {
	Code   string
	UserID string
}

func (p Position) Assigned() bool { return p.UserID != "" }

// Lineup is an instance of a formation with positions assigned to members.
// Positions are addressed by index, so their order is the formation's order
// and only ChangeFormation may change their length.
type Lineup struct {
	ID            uint
	Title         string
	FormationName string
	Positions     []Position
	RoleID        string // when set, only members of this role are assignable
	ChannelID     string
	MessageID     string
	CreatorID     string
	EventID       uint // 0 for standalone lineups
	CreatedAt     time.Time
	UpdatedAt     time.Time
	FinishedOnce  bool
	NotifiedUsers map[string]struct{}
	KickoffAt     time.Time
}

func NewLineup(id uint, title string, f Formation, channelID, creatorID string, now time.Time) *Lineup {
	return &Lineup{
		ID:            id,
		Title:         title,
		FormationName: f.Name,
		Positions:     f.Positions(),
		ChannelID:     channelID,
		CreatorID:     creatorID,
		CreatedAt:     now,
		UpdatedAt:     now,
		NotifiedUsers: map[string]struct{}{},
	}
}

func (l *Lineup) validIndex(i int) bool { return i >= 0 && i < len(l.Positions) }

// Assign puts userID on position i. A user holds at most one position, so a
// previous slot of the same user is vacated. It reports whether anything changed.
func (l *Lineup) Assign(i int, userID string) bool {
	if !l.validIndex(i) || userID == "" {
		return false
	}
	if l.Positions[i].UserID == userID {
		return false
	}
	for j := range l.Positions {
		if l.Positions[j].UserID == userID {
			l.Positions[j].UserID = ""
		}
	}
	l.Positions[i].UserID = userID
	return true
}

// Unassign clears position i and reports whether it was assigned.
func (l *Lineup) Unassign(i int) bool {
	if !l.validIndex(i) || !l.Positions[i].Assigned() {
		return false
	}
	l.Positions[i].UserID = ""
	return true
}

// HasAssignments reports whether at least one position is assigned.
func (l *Lineup) HasAssignments() bool {
	for _, p := range l.Positions {
		if p.Assigned() {
			return true
		}
	}
	return false
}

// ClearAssignments unassigns every position and reports whether any was assigned.
func (l *Lineup) ClearAssignments() bool {
	changed := false
	for i := range l.Positions {
		if l.Positions[i].Assigned() {
			l.Positions[i].UserID = ""
			changed = true
		}
	}
	return changed
}

// ChangeFormation rebuilds the positions from f, all unassigned.
func (l *Lineup) ChangeFormation(f Formation) {
	l.FormationName = f.Name
	l.Positions = f.Positions()
}

// AssignedUsers returns the distinct assigned users in position order.
func (l *Lineup) AssignedUsers() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range l.Positions {
		if !p.Assigned() {
			continue
		}
		if _, dup := seen[p.UserID]; dup {
			continue
		}
		seen[p.UserID] = struct{}{}
		out = append(out, p.UserID)
	}
	return out
}

// PendingNotifications returns assigned users not yet notified, in position order.
func (l *Lineup) PendingNotifications() []string {
	var out []string
	for _, id := range l.AssignedUsers() {
		if _, done := l.NotifiedUsers[id]; !done {
			out = append(out, id)
		}
	}
	return out
}

// MarkNotified unions users into NotifiedUsers and flags the lineup as finished.
func (l *Lineup) MarkNotified(users []string) {
	if l.NotifiedUsers == nil {
		l.NotifiedUsers = map[string]struct{}{}
	}
	for _, id := range users {
		l.NotifiedUsers[id] = struct{}{}
	}
	l.FinishedOnce = true
}

// Notified returns the notified users, sorted.
func (l *Lineup) Notified() []string {
	out := make([]string, 0, len(l.NotifiedUsers))
	for id := range l.NotifiedUsers {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// PositionOf returns the index held by userID, or -1.
func (l *Lineup) PositionOf(userID string) int {
	for i, p := range l.Positions {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

// Rows groups positions by the rows of the lineup's formation. Unknown
// formations fall back to a single row.
func (l *Lineup) Rows() [][]Position {
	f, ok := LookupFormation(l.FormationName)
	if !ok || len(f.Codes()) != len(l.Positions) {
		return [][]Position{l.Positions}
	}
	out := make([][]Position, 0, len(f.Rows))
	i := 0
	for _, row := range f.Rows {
		out = append(out, l.Positions[i:i+len(row)])
		i += len(row)
	}
	return out
}

// Clone returns a deep copy.
func (l *Lineup) Clone() *Lineup {
	c := *l
	c.Positions = append([]Position(nil), l.Positions...)
	c.NotifiedUsers = make(map[string]struct{}, len(l.NotifiedUsers))
	for k := range l.NotifiedUsers {
		c.NotifiedUsers[k] = struct{}{}
	}
	return &c
}

package entities

import (
	"sort"
	"time"
)

// Status is a simple (non-late) attendance answer.
type Status string

const (
	StatusAttend Status = "attend"
	StatusAbsent Status = "absent"
	StatusMaybe  Status = "maybe"
)

// StateKind is the RSVP state of one user on one event.
type StateKind int

const (
	StateUnset StateKind = iota
	StateAttend
	StateAbsent
	StateMaybe
	StatePendingLate
	StateLate
)

// State is what Event.StateOf reports; At is set for StateLate only.
type State struct {
	Kind StateKind
	At   time.Time
}

// Response is a simple attendance answer and when it was given.
type Response struct {
	Status      Status
	RespondedAt time.Time
}

// LateOffsets are the arrival choices offered after the scheduled start.
var LateOffsets = []time.Duration{
	15 * time.Minute,
	30 * time.Minute,
	45 * time.Minute,
	60 * time.Minute,
	90 * time.Minute,
}

// Event is a scheduled gathering whose card collects RSVPs.
//
// A user is held by at most one of Attendance, LateArrivals and PendingLate.
// Every mutation goes through the methods below to keep that true.
type Event struct {
	ID           uint
	Name         string
	Description  string
	ScheduledAt  time.Time
	ChannelID    string
	MessageID    string // set once, when the card is posted
	ThreadID     string
	CreatorID    string
	Closed       bool
	Attendance   map[string]Response
	LateArrivals map[string]time.Time
	PendingLate  map[string]string // user -> prompt message id ("" until sent)
	RoleID       string
	StreamURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewEvent(id uint, name, description string, scheduledAt time.Time, channelID, creatorID string) *Event {
	return &Event{
		ID:           id,
		Name:         name,
		Description:  description,
		ScheduledAt:  scheduledAt,
		ChannelID:    channelID,
		CreatorID:    creatorID,
		Attendance:   map[string]Response{},
		LateArrivals: map[string]time.Time{},
		PendingLate:  map[string]string{},
	}
}

func (e *Event) ensureMaps() {
	if e.Attendance == nil {
		e.Attendance = map[string]Response{}
	}
	if e.LateArrivals == nil {
		e.LateArrivals = map[string]time.Time{}
	}
	if e.PendingLate == nil {
		e.PendingLate = map[string]string{}
	}
}

// StateOf returns the current RSVP state of userID.
func (e *Event) StateOf(userID string) State {
	if r, ok := e.Attendance[userID]; ok {
		switch r.Status {
		case StatusAttend:
			return State{Kind: StateAttend}
		case StatusAbsent:
			return State{Kind: StateAbsent}
		case StatusMaybe:
			return State{Kind: StateMaybe}
		}
	}
	if at, ok := e.LateArrivals[userID]; ok {
		return State{Kind: StateLate, At: at}
	}
	if _, ok := e.PendingLate[userID]; ok {
		return State{Kind: StatePendingLate}
	}
	return State{Kind: StateUnset}
}

// SetStatus records a simple answer and drops any late entry. It reports
// false when the user already had that exact answer.
func (e *Event) SetStatus(userID string, status Status, now time.Time) bool {
	e.ensureMaps()
	if r, ok := e.Attendance[userID]; ok && r.Status == status {
		return false
	}
	delete(e.LateArrivals, userID)
	delete(e.PendingLate, userID)
	e.Attendance[userID] = Response{Status: status, RespondedAt: now}
	return true
}

// BeginLate moves the user to the pending-late state, awaiting a time choice.
// It returns the id of a previous prompt that should be removed, if any.
func (e *Event) BeginLate(userID string) (stalePrompt string) {
	e.ensureMaps()
	stalePrompt = e.PendingLate[userID]
	delete(e.Attendance, userID)
	delete(e.LateArrivals, userID)
	e.PendingLate[userID] = ""
	return stalePrompt
}

// AttachPrompt remembers the prompt sent to a pending user. It is a no-op
// when the user is no longer pending.
func (e *Event) AttachPrompt(userID, promptID string) bool {
	if _, ok := e.PendingLate[userID]; !ok {
		return false
	}
	e.PendingLate[userID] = promptID
	return true
}

// CommitLate turns a pending user into a committed late arrival.
func (e *Event) CommitLate(userID string, at time.Time) bool {
	e.ensureMaps()
	if _, ok := e.PendingLate[userID]; !ok {
		return false
	}
	delete(e.PendingLate, userID)
	e.LateArrivals[userID] = at
	return true
}

// Clear returns the user to the unset state. The returned prompt id, when
// not empty, belongs to a pending prompt that is now obsolete.
func (e *Event) Clear(userID string) (changed bool, stalePrompt string) {
	if _, ok := e.Attendance[userID]; ok {
		delete(e.Attendance, userID)
		changed = true
	}
	if _, ok := e.LateArrivals[userID]; ok {
		delete(e.LateArrivals, userID)
		changed = true
	}
	if p, ok := e.PendingLate[userID]; ok {
		delete(e.PendingLate, userID)
		stalePrompt = p
		changed = true
	}
	return changed, stalePrompt
}

// ThreadEligible is the thread membership predicate: attending, maybe, or
// late with a committed arrival time.
func (e *Event) ThreadEligible(userID string) bool {
	switch e.StateOf(userID).Kind {
	case StateAttend, StateMaybe, StateLate:
		return true
	}
	return false
}

// WithStatus lists users holding status, ordered by response time.
func (e *Event) WithStatus(status Status) []string {
	type entry struct {
		id string
		at time.Time
	}
	var entries []entry
	for id, r := range e.Attendance {
		if r.Status == status {
			entries = append(entries, entry{id, r.RespondedAt})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].at.Equal(entries[j].at) {
			return entries[i].at.Before(entries[j].at)
		}
		return entries[i].id < entries[j].id
	})
	out := make([]string, len(entries))
	for i, en := range entries {
		out[i] = en.id
	}
	return out
}

// LateArrival is a committed late arrival.
type LateArrival struct {
	UserID string
	At     time.Time
}

// Late lists committed late arrivals ordered by arrival time.
func (e *Event) Late() []LateArrival {
	out := make([]LateArrival, 0, len(e.LateArrivals))
	for id, at := range e.LateArrivals {
		out = append(out, LateArrival{UserID: id, At: at})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].At.Equal(out[j].At) {
			return out[i].At.Before(out[j].At)
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// Users returns every user the event knows about, sorted.
func (e *Event) Users() []string {
	seen := map[string]struct{}{}
	for id := range e.Attendance {
		seen[id] = struct{}{}
	}
	for id := range e.LateArrivals {
		seen[id] = struct{}{}
	}
	for id := range e.PendingLate {
		seen[id] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ArrivalOptions returns the instants offered to a late user.
func (e *Event) ArrivalOptions() []time.Time {
	out := make([]time.Time, len(LateOffsets))
	for i, d := range LateOffsets {
		out[i] = e.ScheduledAt.Add(d)
	}
	return out
}

// IsArrivalOption reports whether at is one of ArrivalOptions.
func (e *Event) IsArrivalOption(at time.Time) bool {
	for _, opt := range e.ArrivalOptions() {
		if opt.Equal(at) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (e *Event) Clone() *Event {
	c := *e
	c.Attendance = make(map[string]Response, len(e.Attendance))
	for k, v := range e.Attendance {
		c.Attendance[k] = v
	}
	c.LateArrivals = make(map[string]time.Time, len(e.LateArrivals))
	for k, v := range e.LateArrivals {
		c.LateArrivals[k] = v
	}
	c.PendingLate = make(map[string]string, len(e.PendingLate))
	for k, v := range e.PendingLate {
		c.PendingLate[k] = v
	}
	return &c
}

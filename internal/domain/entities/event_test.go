package entities

import (
	"testing"
	"time"
)

var kickoff = time.Date(2025, 1, 10, 20, 0, 0, 0, time.UTC)

func newTestEvent() *Event {
	return NewEvent(1, "Scrim", "", kickoff, "chan", "org")
}

// exclusive checks that userID is held by at most one of the three maps.
func exclusive(t *testing.T, e *Event, userID string) {
	t.Helper()
	n := 0
	if _, ok := e.Attendance[userID]; ok {
		n++
	}
	if _, ok := e.LateArrivals[userID]; ok {
		n++
	}
	if _, ok := e.PendingLate[userID]; ok {
		n++
	}
	if n > 1 {
		t.Fatalf("user %s held by %d collections", userID, n)
	}
}

func TestEvent_SetStatus(t *testing.T) {
	e := newTestEvent()
	now := kickoff.Add(-time.Hour)

	if !e.SetStatus("u1", StatusAttend, now) {
		t.Fatal("first answer should change state")
	}
	if e.SetStatus("u1", StatusAttend, now.Add(time.Minute)) {
		t.Fatal("same answer should be a no-op")
	}
	if got := e.Attendance["u1"].RespondedAt; !got.Equal(now) {
		t.Fatalf("RespondedAt rewritten to %v", got)
	}
	if !e.SetStatus("u1", StatusAbsent, now) {
		t.Fatal("switching answer should change state")
	}
	if k := e.StateOf("u1").Kind; k != StateAbsent {
		t.Fatalf("state = %v, want absent", k)
	}
	exclusive(t, e, "u1")
}

func TestEvent_LateLifecycle(t *testing.T) {
	e := newTestEvent()
	e.SetStatus("u1", StatusAttend, kickoff)

	if stale := e.BeginLate("u1"); stale != "" {
		t.Fatalf("stale prompt = %q, want none", stale)
	}
	exclusive(t, e, "u1")
	if k := e.StateOf("u1").Kind; k != StatePendingLate {
		t.Fatalf("state = %v, want pending", k)
	}
	if e.ThreadEligible("u1") {
		t.Fatal("pending users are not thread members")
	}

	if !e.AttachPrompt("u1", "prompt-1") {
		t.Fatal("AttachPrompt on pending user")
	}
	if stale := e.BeginLate("u1"); stale != "prompt-1" {
		t.Fatalf("re-begin stale = %q, want prompt-1", stale)
	}

	at := kickoff.Add(30 * time.Minute)
	if !e.CommitLate("u1", at) {
		t.Fatal("CommitLate on pending user")
	}
	st := e.StateOf("u1")
	if st.Kind != StateLate || !st.At.Equal(at) {
		t.Fatalf("state = %+v", st)
	}
	if !e.ThreadEligible("u1") {
		t.Fatal("committed late users are thread members")
	}
	if e.CommitLate("u1", at) {
		t.Fatal("CommitLate on non-pending user should fail")
	}
	exclusive(t, e, "u1")
}

func TestEvent_AttachPromptAfterLeaving(t *testing.T) {
	e := newTestEvent()
	e.BeginLate("u1")
	e.SetStatus("u1", StatusMaybe, kickoff)
	if e.AttachPrompt("u1", "p") {
		t.Fatal("AttachPrompt must not resurrect a pending entry")
	}
	exclusive(t, e, "u1")
}

func TestEvent_Clear(t *testing.T) {
	e := newTestEvent()
	if changed, _ := e.Clear("ghost"); changed {
		t.Fatal("clearing an unknown user is a no-op")
	}
	e.BeginLate("u1")
	e.AttachPrompt("u1", "p1")
	changed, stale := e.Clear("u1")
	if !changed || stale != "p1" {
		t.Fatalf("Clear = %v, %q", changed, stale)
	}
	if k := e.StateOf("u1").Kind; k != StateUnset {
		t.Fatalf("state = %v, want unset", k)
	}
}

func TestEvent_Ordering(t *testing.T) {
	e := newTestEvent()
	e.SetStatus("b", StatusAttend, kickoff.Add(2*time.Minute))
	e.SetStatus("a", StatusAttend, kickoff.Add(3*time.Minute))
	e.SetStatus("c", StatusAttend, kickoff.Add(1*time.Minute))

	got := e.WithStatus(StatusAttend)
	want := []string{"c", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("WithStatus = %v, want %v", got, want)
		}
	}

	e.BeginLate("x")
	e.CommitLate("x", kickoff.Add(time.Hour))
	e.BeginLate("y")
	e.CommitLate("y", kickoff.Add(15*time.Minute))
	late := e.Late()
	if len(late) != 2 || late[0].UserID != "y" || late[1].UserID != "x" {
		t.Fatalf("Late = %+v", late)
	}

	if users := e.Users(); len(users) != 5 || users[0] != "a" {
		t.Fatalf("Users = %v", users)
	}
}

func TestEvent_ArrivalOptions(t *testing.T) {
	e := newTestEvent()
	opts := e.ArrivalOptions()
	if len(opts) != len(LateOffsets) {
		t.Fatalf("got %d options", len(opts))
	}
	if !opts[0].Equal(kickoff.Add(15 * time.Minute)) {
		t.Fatalf("first option = %v", opts[0])
	}
	if !e.IsArrivalOption(kickoff.Add(90 * time.Minute)) {
		t.Fatal("+90 min is offered")
	}
	if e.IsArrivalOption(kickoff.Add(20 * time.Minute)) {
		t.Fatal("+20 min is not offered")
	}
}

func TestEvent_CloneIsDeep(t *testing.T) {
	e := newTestEvent()
	e.SetStatus("u1", StatusAttend, kickoff)
	c := e.Clone()
	c.SetStatus("u2", StatusAbsent, kickoff)
	c.BeginLate("u1")
	if _, ok := e.Attendance["u2"]; ok {
		t.Fatal("clone shares Attendance")
	}
	if _, ok := e.PendingLate["u1"]; ok {
		t.Fatal("clone shares PendingLate")
	}
}

func TestParseGlyph(t *testing.T) {
	for _, g := range Glyphs {
		c, ok := ParseGlyph(g)
		if !ok || c.Glyph() != g {
			t.Fatalf("ParseGlyph(%q) = %v, %v", g, c, ok)
		}
	}
	if c, ok := ParseGlyph("⏰️"); !ok || c != CommandLate {
		t.Fatal("variation selector form of the alarm clock")
	}
	if _, ok := ParseGlyph("👍"); ok {
		t.Fatal("unrelated emoji accepted")
	}
	if _, ok := CommandLate.Status(); ok {
		t.Fatal("late has no simple status")
	}
	if s, ok := CommandMaybe.Status(); !ok || s != StatusMaybe {
		t.Fatalf("maybe status = %v", s)
	}
}

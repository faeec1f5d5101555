package discord

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"rosterbot/internal/domain/entities"
)

func keyTr(key string, data map[string]any) string {
	if len(data) == 0 {
		return key
	}
	return fmt.Sprintf("%s%v", key, data)
}

func TestEventEmbed(t *testing.T) {
	at := time.Date(2025, 1, 10, 20, 0, 0, 0, time.UTC)
	ev := entities.NewEvent(4, "Scrim", "Bring boots", at, "chan", "org")
	ev.SetStatus("a", entities.StatusAttend, at)
	ev.SetStatus("m", entities.StatusMaybe, at)
	ev.BeginLate("l")
	ev.CommitLate("l", at.Add(30*time.Minute))
	ev.BeginLate("p")

	e := EventEmbed(keyTr, ev)
	if len(e.Fields) != 4 {
		t.Fatalf("fields = %d", len(e.Fields))
	}
	if e.Fields[0].Value != "<@a>" || e.Fields[1].Value != "<@m>" {
		t.Fatalf("fields = %+v %+v", e.Fields[0], e.Fields[1])
	}
	if !strings.Contains(e.Fields[2].Value, "<@l> · 20:30") {
		t.Fatalf("late field = %q", e.Fields[2].Value)
	}
	if strings.Contains(e.Fields[2].Value, "<@p>") {
		t.Fatal("pending users are not listed")
	}
	if e.Fields[3].Value != "card.empty" {
		t.Fatalf("absent field = %q", e.Fields[3].Value)
	}
	if strings.Contains(e.Description, "card.closed_banner") {
		t.Fatal("open event shows the closed banner")
	}

	ev.Closed = true
	if !strings.Contains(EventEmbed(keyTr, ev).Description, "card.closed_banner") {
		t.Fatal("closed banner missing")
	}
}

func TestMentionList_Overflow(t *testing.T) {
	lines := make([]string, 200)
	for i := range lines {
		lines[i] = Mention(fmt.Sprintf("%018d", i))
	}
	got := mentionList(keyTr, lines)
	if len(got) > fieldValueLimit {
		t.Fatalf("field is %d bytes", len(got))
	}
	if !strings.Contains(got, "card.more") {
		t.Fatal("overflow marker missing")
	}
}

func TestLineupEmbed(t *testing.T) {
	f, _ := entities.LookupFormation("4-4-2")
	l := entities.NewLineup(2, "", f, "chan", "org", time.Unix(0, 0))
	l.Assign(10, "gk")

	e := LineupEmbed(keyTr, l, entities.NewBoardView())
	if !strings.Contains(e.Title, "card.lineup_default_title") {
		t.Fatalf("title = %q", e.Title)
	}
	lines := strings.Split(e.Description, "\n")
	if last := lines[len(lines)-1]; last != "`GK` <@gk>" {
		t.Fatalf("last row = %q", last)
	}
	if e.Footer.Text != "card.status_draft" {
		t.Fatalf("footer = %q", e.Footer.Text)
	}

	l.MarkNotified([]string{"gk"})
	if got := LineupEmbed(keyTr, l, entities.NewBoardView()).Footer.Text; !strings.HasPrefix(got, "card.status_finalized") {
		t.Fatalf("footer = %q", got)
	}
	if got := LineupEmbed(keyTr, l, entities.NewBoardView().ChangingFormation()).Footer.Text; got != "card.changing_formation" {
		t.Fatalf("footer = %q", got)
	}
}

package discord

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"rosterbot/internal/domain/entities"
)

// keyT renders the key itself, followed by its data when any.
type keyT struct{}

func (keyT) T(_, key string, data map[string]any) string {
	if len(data) == 0 {
		return key
	}
	return fmt.Sprintf("%s%v", key, data)
}

func testMessenger() *Messenger {
	return &Messenger{tr: keyT{}, locale: "en"}
}

func rowsOf(t *testing.T, components []discordgo.MessageComponent) [][]discordgo.MessageComponent {
	t.Helper()
	out := make([][]discordgo.MessageComponent, len(components))
	for i, c := range components {
		row, ok := c.(discordgo.ActionsRow)
		if !ok {
			t.Fatalf("component %d is %T", i, c)
		}
		out[i] = row.Components
	}
	return out
}

func fakeMembers(n int) []entities.Member {
	out := make([]entities.Member, n)
	for i := range out {
		out[i] = entities.Member{ID: fmt.Sprint(1000 + i), DisplayName: fmt.Sprintf("player %02d", i)}
	}
	return out
}

func testLineup(t *testing.T, role string) *entities.Lineup {
	t.Helper()
	f, _ := entities.LookupFormation("4-4-2")
	l := entities.NewLineup(5, "", f, "chan", "org", time.Unix(0, 0))
	l.RoleID = role
	return l
}

func TestBoardComponents_NoFocus(t *testing.T) {
	l := testLineup(t, "")
	got := rowsOf(t, testMessenger().boardComponents(l, entities.NewBoardView(), nil))
	if len(got) != 2 {
		t.Fatalf("rows = %d, want position select and buttons", len(got))
	}
	sel := got[0][0].(discordgo.SelectMenu)
	if len(sel.Options) != 11 {
		t.Fatalf("position options = %d", len(sel.Options))
	}
	clear := got[1][0].(discordgo.Button)
	if !clear.Disabled {
		t.Fatal("clear button enabled without focus")
	}
}

func TestBoardComponents_UserSelectWithoutRole(t *testing.T) {
	l := testLineup(t, "")
	view := entities.NewBoardView().WithFocus(0)
	got := rowsOf(t, testMessenger().boardComponents(l, view, nil))
	if len(got) != 3 {
		t.Fatalf("rows = %d", len(got))
	}
	picker := got[1][0].(discordgo.SelectMenu)
	if picker.MenuType != discordgo.UserSelectMenu {
		t.Fatalf("picker type = %v", picker.MenuType)
	}
	id, ok := parseBoardID(picker.CustomID)
	if !ok || id.Action != actPick || id.View.Focus != 0 {
		t.Fatalf("picker custom id = %q", picker.CustomID)
	}
}

func TestBoardComponents_RolePaging(t *testing.T) {
	l := testLineup(t, "role")
	l.Assign(0, "1030")
	view := entities.NewBoardView().WithFocus(0).WithPage(1, 60)
	got := rowsOf(t, testMessenger().boardComponents(l, view, fakeMembers(60)))
	if len(got) != 4 {
		t.Fatalf("rows = %d, want select, picker, paging, buttons", len(got))
	}
	picker := got[1][0].(discordgo.SelectMenu)
	if len(picker.Options) != entities.PlayersPerPage || picker.Options[0].Value != "1025" {
		t.Fatalf("page 2 starts at %s with %d options", picker.Options[0].Value, len(picker.Options))
	}
	if !picker.Options[5].Default {
		t.Fatal("current holder preselected")
	}
	prev, next := got[2][0].(discordgo.Button), got[2][1].(discordgo.Button)
	if prev.Disabled || next.Disabled {
		t.Fatal("middle page has both directions")
	}
	if !strings.Contains(next.Label, "Pages:3") {
		t.Fatalf("next label = %q", next.Label)
	}
}

func TestBoardComponents_ChangingFormation(t *testing.T) {
	l := testLineup(t, "")
	got := rowsOf(t, testMessenger().boardComponents(l, entities.NewBoardView().ChangingFormation(), nil))
	if len(got) != 3 {
		t.Fatalf("rows = %d", len(got))
	}
	if !got[0][0].(discordgo.SelectMenu).Disabled {
		t.Fatal("position select stays disabled while changing formation")
	}
	formations := got[1][0].(discordgo.SelectMenu)
	if len(formations.Options) != len(entities.FormationNames()) {
		t.Fatal("every formation offered")
	}
}

func TestArrivalComponents(t *testing.T) {
	ev := entities.NewEvent(9, "Scrim", "", kickoffForTest(), "chan", "org")
	got := rowsOf(t, testMessenger().arrivalComponents(ev.ID, "42", ev.ArrivalOptions()))
	sel := got[0][0].(discordgo.SelectMenu)
	if len(sel.Options) != len(entities.LateOffsets) {
		t.Fatalf("options = %d", len(sel.Options))
	}
	want := fmt.Sprint(kickoffForTest().Add(15 * time.Minute).Unix())
	if sel.Options[0].Value != want {
		t.Fatalf("first value = %s, want %s", sel.Options[0].Value, want)
	}
	if id, ok := parsePromptID(prefixLate, sel.CustomID); !ok || id.EventID != 9 || id.UserID != "42" {
		t.Fatalf("select custom id = %q", sel.CustomID)
	}
	dismiss := got[1][0].(discordgo.Button)
	if _, ok := parsePromptID(prefixLateDismiss, dismiss.CustomID); !ok {
		t.Fatalf("dismiss custom id = %q", dismiss.CustomID)
	}
}

func TestTruncateLabel(t *testing.T) {
	long := strings.Repeat("é", 150)
	got := truncateLabel(long)
	if n := len([]rune(got)); n != optionLabelLimit {
		t.Fatalf("truncated to %d runes", n)
	}
	if truncateLabel("short") != "short" {
		t.Fatal("short labels untouched")
	}
}

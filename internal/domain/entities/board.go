package entities

// PlayersPerPage is the page size of the role-filtered player picker.
const PlayersPerPage = 25

// BoardMode is the control mode of a lineup board.
type BoardMode int

const (
	BoardPicking BoardMode = iota
	BoardChangingFormation
)

// BoardView is the interactive state of a lineup card: which position is
// focused, which page of the player picker is shown, and the control mode.
// It holds no lineup data and every transition returns a new value.
type BoardView struct {
	Focus int // -1 when no position is focused
	Page  int
	Mode  BoardMode
}

func NewBoardView() BoardView {
	return BoardView{Focus: -1}
}

func (v BoardView) HasFocus() bool { return v.Focus >= 0 }

// WithFocus focuses position i and resets the picker to its first page.
func (v BoardView) WithFocus(i int) BoardView {
	v.Focus = i
	v.Page = 0
	return v
}

// WithPage moves the picker to page, clamped to [0, pages-1].
func (v BoardView) WithPage(page, total int) BoardView {
	last := PageCount(total) - 1
	if page > last {
		page = last
	}
	if page < 0 {
		page = 0
	}
	v.Page = page
	return v
}

// Assigned is the view after a successful assignment: focus cleared.
func (v BoardView) Assigned() BoardView {
	v.Focus = -1
	v.Page = 0
	return v
}

// ChangingFormation disables the pickers until a formation is confirmed.
func (v BoardView) ChangingFormation() BoardView {
	return BoardView{Focus: -1, Mode: BoardChangingFormation}
}

// Picking re-enables the normal controls.
func (v BoardView) Picking() BoardView {
	return BoardView{Focus: -1, Mode: BoardPicking}
}

// PageCount returns the number of picker pages needed for total players, at least 1.
func PageCount(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + PlayersPerPage - 1) / PlayersPerPage
}

// Page returns the slice of items shown on page.
func Page[T any](items []T, page int) []T {
	start := page * PlayersPerPage
	if start < 0 || start >= len(items) {
		return nil
	}
	end := min(start+PlayersPerPage, len(items))
	return items[start:end]
}

package entities

// Member is a guild member as shown in pickers.
type Member struct {
	ID          string
	DisplayName string
}

package entities

// Command is the attendance intent carried by one of the four RSVP glyphs.
type Command int

const (
	CommandAttend Command = iota + 1
	CommandAbsent
	CommandMaybe
	CommandLate
)

const (
	GlyphAttend = "✅"
	GlyphAbsent = "❌"
	GlyphMaybe  = "🤷"
	GlyphLate   = "⏰"
)

// Glyphs lists the designated glyphs in the order they are seeded on a card.
var Glyphs = []string{GlyphAttend, GlyphMaybe, GlyphLate, GlyphAbsent}

// ParseGlyph maps an emoji to its command. Any other emoji is not a valid input.
func ParseGlyph(emoji string) (Command, bool) {
	switch emoji {
	case GlyphAttend:
		return CommandAttend, true
	case GlyphAbsent:
		return CommandAbsent, true
	case GlyphMaybe:
		return CommandMaybe, true
	case GlyphLate, "⏰️":
		return CommandLate, true
	}
	return 0, false
}

func (c Command) Glyph() string {
	switch c {
	case CommandAttend:
		return GlyphAttend
	case CommandAbsent:
		return GlyphAbsent
	case CommandMaybe:
		return GlyphMaybe
	case CommandLate:
		return GlyphLate
	}
	return ""
}

func (c Command) String() string {
	switch c {
	case CommandAttend:
		return "attend"
	case CommandAbsent:
		return "absent"
	case CommandMaybe:
		return "maybe"
	case CommandLate:
		return "late"
	}
	return "unknown"
}

// Status returns the simple attendance status for the command. CommandLate
// has no simple status.
func (c Command) Status() (Status, bool) {
	switch c {
	case CommandAttend:
		return StatusAttend, true
	case CommandAbsent:
		return StatusAbsent, true
	case CommandMaybe:
		return StatusMaybe, true
	}
	return "", false
}

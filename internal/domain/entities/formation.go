package entities

import (
	"sort"
	"strings"
)

// Formation is a named team layout. Rows run from the forward line down to
// the goalkeeper; flattening them gives the position order of a lineup.
type Formation struct {
	Name string
	Rows [][]string
}

var formations = map[string]Formation{
	"4-4-2": {Name: "4-4-2", Rows: [][]string{
		{"LST", "RST"},
		{"LM", "LCM", "RCM", "RM"},
		{"LB", "LCB", "RCB", "RB"},
		{"GK"},
	}},
	"4-3-3": {Name: "4-3-3", Rows: [][]string{
		{"LW", "ST", "RW"},
		{"LCM", "CM", "RCM"},
		{"LB", "LCB", "RCB", "RB"},
		{"GK"},
	}},
	"4-2-3-1": {Name: "4-2-3-1", Rows: [][]string{
		{"ST"},
		{"LAM", "CAM", "RAM"},
		{"LDM", "RDM"},
		{"LB", "LCB", "RCB", "RB"},
		{"GK"},
	}},
	"3-5-2": {Name: "3-5-2", Rows: [][]string{
		{"LST", "RST"},
		{"LWB", "LCM", "CM", "RCM", "RWB"},
		{"LCB", "CB", "RCB"},
		{"GK"},
	}},
	"3-4-3": {Name: "3-4-3", Rows: [][]string{
		{"LW", "ST", "RW"},
		{"LM", "LCM", "RCM", "RM"},
		{"LCB", "CB", "RCB"},
		{"GK"},
	}},
	"5-3-2": {Name: "5-3-2", Rows: [][]string{
		{"LST", "RST"},
		{"LCM", "CM", "RCM"},
		{"LWB", "LCB", "CB", "RCB", "RWB"},
		{"GK"},
	}},
	"4-1-2-1-2": {Name: "4-1-2-1-2", Rows: [][]string{
		{"LST", "RST"},
		{"CAM"},
		{"LCM", "RCM"},
		{"CDM"},
		{"LB", "LCB", "RCB", "RB"},
		{"GK"},
	}},
}

// LookupFormation finds a formation by name ("442" and "4-4-2" both match).
func LookupFormation(name string) (Formation, bool) {
	name = strings.TrimSpace(name)
	if f, ok := formations[name]; ok {
		return f, true
	}
	compact := strings.ReplaceAll(name, "-", "")
	for _, f := range formations {
		if strings.ReplaceAll(f.Name, "-", "") == compact {
			return f, true
		}
	}
	return Formation{}, false
}

// FormationNames returns every known formation name, sorted.
func FormationNames() []string {
	names := make([]string, 0, len(formations))
	for name := range formations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Codes flattens the rows into the position order used by lineups.
func (f Formation) Codes() []string {
	var out []string
	for _, row := range f.Rows {
		out = append(out, row...)
	}
	return out
}

// Positions builds a fresh, fully unassigned position list.
func (f Formation) Positions() []Position {
	codes := f.Codes()
	out := make([]Position, len(codes))
	for i, c := range codes {
		out[i] = Position{Code: c}
	}
	return out
}

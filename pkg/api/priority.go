package api

import (
	"fmt"
	"strings"
)

// Priority is the user-assigned urgency/status tag of a note
type Priority string

const (
	PriorityNow     Priority = "NOW"
	PriorityLater   Priority = "LATER"
	PrioritySomeday Priority = "SOMEDAY"
	PriorityDone    Priority = "DONE"
)

// DefaultPriority is preselected for new notes
const DefaultPriority = PriorityLater

// Priorities lists every priority in rank order. Sorting, filter cycling and
// statistics labels all read the order from here.
var Priorities = []Priority{PriorityNow, PriorityLater, PrioritySomeday, PriorityDone}

// Rank returns the position of p in Priorities. Unknown values sort last.
func (p Priority) Rank() int {
	for i, known := range Priorities {
		if known == p {
			return i
		}
	}
	return len(Priorities)
}

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	return p.Rank() < len(Priorities)
}

func (p Priority) String() string {
	return string(p)
}

// Next returns the priority following p in rank order, wrapping around
func (p Priority) Next() Priority {
	return Priorities[(p.Rank()+1)%len(Priorities)]
}

// ParsePriority converts user input into a Priority, ignoring case and surrounding space
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

// PriorityNames returns the priorities as plain strings, in rank order
func PriorityNames() []string {
	names := make([]string, len(Priorities))
	for i, p := range Priorities {
		names[i] = string(p)
	}
	return names
}

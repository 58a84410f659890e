package types

import "fmt"

// Priority represents the priority of a task, p1 (highest) to p4 (lowest)
type Priority string

const (
	PriorityP1 Priority = "p1"
	PriorityP2 Priority = "p2"
	PriorityP3 Priority = "p3"
	PriorityP4 Priority = "p4"
)

// DefaultPriority is used when no priority is selected
const DefaultPriority = PriorityP4

// AllPriorities returns all valid priorities in descending urgency
func AllPriorities() []Priority {
	return []Priority{
		PriorityP1,
		PriorityP2,
		PriorityP3,
		PriorityP4,
	}
}

// IsValid checks if the priority is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityP1, PriorityP2, PriorityP3, PriorityP4:
		return true
	default:
		return false
	}
}

// String returns the string representation of the priority
func (p Priority) String() string {
	return string(p)
}

// Label returns the display label of the priority (e.g. "P1")
func (p Priority) Label() string {
	if len(p) != 2 {
		return string(p)
	}
	return "P" + string(p[1])
}

// ParsePriority parses a string into a Priority, treating empty as the default
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return DefaultPriority, nil
	}
	p := Priority(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority: %s", s)
	}
	return p, nil
}

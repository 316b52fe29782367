package domain

import "strings"

// Priority represents the importance level of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists all valid priority values in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// IsValidPriority checks if a priority value is one of the allowed three.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ParsePriority normalizes a raw priority string ("low", "HIGH", ...) to
// its canonical form.
func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	default:
		return "", InvalidPriorityError{Value: raw}
	}
}

// Task represents a single to-do item.
type Task struct {
	ID        int64    `json:"id" yaml:"id" toml:"id"`
	Title     string   `json:"title" yaml:"title" toml:"title"`
	Priority  Priority `json:"priority" yaml:"priority" toml:"priority"`
	Category  string   `json:"category" yaml:"category" toml:"category"`
	Completed bool     `json:"completed" yaml:"completed" toml:"completed"`
}

// NextID returns the identifier for the next task to be created:
// one greater than the highest existing id, 1 for an empty collection.
func NextID(tasks []Task) int64 {
	var max int64
	for _, t := range tasks {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

// Validate reports whether the task satisfies the collection invariants.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return EmptyTitleError{}
	}
	if !IsValidPriority(t.Priority) {
		return InvalidPriorityError{Value: string(t.Priority)}
	}
	return nil
}

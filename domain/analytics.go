package domain

import "sort"

// UncategorizedLabel groups tasks with an empty category in summaries.
const UncategorizedLabel = "Uncategorized"

// Status labels used in the completion-status distribution.
const (
	StatusActive    = "Active"
	StatusCompleted = "Completed"
)

// Summary holds the dashboard aggregates for a task collection.
type Summary struct {
	Total          int              `json:"total"`
	Completed      int              `json:"completed"`
	Remaining      int              `json:"remaining"`
	CompletionRate float64          `json:"completionRate"`
	ByPriority     map[Priority]int `json:"byPriority"`
	ByCategory     map[string]int   `json:"byCategory"`
	ByStatus       map[string]int   `json:"byStatus"`
}

// Summarize computes counts, completion rate, and the grouped
// distributions feeding the priority, category, and status charts.
func Summarize(tasks []Task) Summary {
	s := Summary{
		Total:      len(tasks),
		ByPriority: make(map[Priority]int),
		ByCategory: make(map[string]int),
		ByStatus:   make(map[string]int),
	}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
		s.ByPriority[t.Priority]++
		cat := t.Category
		if cat == "" {
			cat = UncategorizedLabel
		}
		s.ByCategory[cat]++
		if t.Completed {
			s.ByStatus[StatusCompleted]++
		} else {
			s.ByStatus[StatusActive]++
		}
	}
	s.Remaining = s.Total - s.Completed
	if s.Total > 0 {
		s.CompletionRate = float64(s.Completed) / float64(s.Total)
	}
	return s
}

// Categories returns the sorted distinct non-empty categories, used to
// populate filter controls.
func Categories(tasks []Task) []string {
	seen := make(map[string]struct{})
	for _, t := range tasks {
		if t.Category == "" {
			continue
		}
		seen[t.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

package domain

// Filter describes optional task selection criteria. Each provided
// criterion must match; a zero Filter selects everything.
type Filter struct {
	Categories []string
	Priorities []Priority
	Completed  *bool
}

// IsZero reports whether no criteria are set.
func (f Filter) IsZero() bool {
	return len(f.Categories) == 0 && len(f.Priorities) == 0 && f.Completed == nil
}

// Apply returns the tasks matching every provided criterion, preserving
// order. With no criteria the input slice is returned unchanged.
func (f Filter) Apply(tasks []Task) []Task {
	if f.IsZero() {
		return tasks
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Matches reports whether a single task satisfies the filter.
func (f Filter) Matches(t Task) bool {
	if len(f.Categories) > 0 && !containsString(f.Categories, t.Category) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, t.Priority) {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	return true
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func containsPriority(values []Priority, target Priority) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

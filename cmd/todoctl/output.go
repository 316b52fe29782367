package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"todo-api/domain"
)

// Formatter renders command results for humans or machines.
type Formatter interface {
	FormatTask(t domain.Task) string
	FormatTaskList(tasks []domain.Task) string
	FormatSummary(s domain.Summary) string
	FormatMessage(msg string) string
}

type humanFormatter struct{}

func (humanFormatter) FormatTask(t domain.Task) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	category := t.Category
	if category == "" {
		category = domain.UncategorizedLabel
	}
	return fmt.Sprintf("[%s] %-4d %s  (%s, %s)", mark, t.ID, t.Title, t.Priority, category)
}

func (f humanFormatter) FormatTaskList(tasks []domain.Task) string {
	if len(tasks) == 0 {
		return "no tasks"
	}
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, f.FormatTask(t))
	}
	return strings.Join(lines, "\n")
}

func (humanFormatter) FormatSummary(s domain.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "total: %d  completed: %d  remaining: %d  rate: %.0f%%\n", s.Total, s.Completed, s.Remaining, s.CompletionRate*100)
	b.WriteString("by priority:\n")
	for _, p := range domain.Priorities {
		if n := s.ByPriority[p]; n > 0 {
			fmt.Fprintf(&b, "  %-8s %d\n", p, n)
		}
	}
	b.WriteString("by category:\n")
	categories := make([]string, 0, len(s.ByCategory))
	for c := range s.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(&b, "  %-16s %d\n", c, s.ByCategory[c])
	}
	fmt.Fprintf(&b, "status: %d active, %d completed", s.ByStatus[domain.StatusActive], s.ByStatus[domain.StatusCompleted])
	return b.String()
}

func (humanFormatter) FormatMessage(msg string) string {
	return msg
}

type jsonFormatter struct{}

func (jsonFormatter) marshal(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}

func (f jsonFormatter) FormatTask(t domain.Task) string {
	return f.marshal(t)
}

func (f jsonFormatter) FormatTaskList(tasks []domain.Task) string {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return f.marshal(tasks)
}

func (f jsonFormatter) FormatSummary(s domain.Summary) string {
	return f.marshal(s)
}

func (f jsonFormatter) FormatMessage(msg string) string {
	return f.marshal(map[string]string{"message": msg})
}

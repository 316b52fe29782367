package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"todo-api/domain"
	"todo-api/tasks"
)

func parseTaskID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id: %q", arg)
	}
	return id, nil
}

func addCmd() *cobra.Command {
	var priority, category string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := domain.ParsePriority(priority)
			if err != nil {
				return err
			}
			return withRepo(func(ctx context.Context, repo *tasks.Repository) error {
				task, err := repo.Add(ctx, args[0], p, category)
				if err != nil {
					return err
				}
				cmd.Println(formatter.FormatTask(task))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", "Medium", "Task priority: Low, Medium, or High")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Free-text category label")
	return cmd
}

func listCmd() *cobra.Command {
	var (
		categories []string
		priorities []string
		completed  bool
		active     bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter domain.Filter
			filter.Categories = categories
			for _, raw := range priorities {
				p, err := domain.ParsePriority(raw)
				if err != nil {
					return err
				}
				filter.Priorities = append(filter.Priorities, p)
			}
			if completed && active {
				return fmt.Errorf("--completed and --active are mutually exclusive")
			}
			if completed {
				v := true
				filter.Completed = &v
			}
			if active {
				v := false
				filter.Completed = &v
			}
			return withRepo(func(ctx context.Context, repo *tasks.Repository) error {
				all, err := repo.List(ctx)
				if err != nil {
					return err
				}
				cmd.Println(formatter.FormatTaskList(filter.Apply(all)))
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVarP(&categories, "category", "c", nil, "Only tasks in this category (repeatable)")
	cmd.Flags().StringArrayVarP(&priorities, "priority", "p", nil, "Only tasks with this priority (repeatable)")
	cmd.Flags().BoolVar(&completed, "completed", false, "Only completed tasks")
	cmd.Flags().BoolVar(&active, "active", false, "Only active tasks")
	return cmd
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withRepo(func(ctx context.Context, repo *tasks.Repository) error {
				task, err := repo.ToggleComplete(ctx, id)
				if err != nil {
					return err
				}
				cmd.Println(formatter.FormatTask(task))
				return nil
			})
		},
	}
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withRepo(func(ctx context.Context, repo *tasks.Repository) error {
				if err := repo.Delete(ctx, id); err != nil {
					return err
				}
				cmd.Println(formatter.FormatMessage(fmt.Sprintf("deleted task %d", id)))
				return nil
			})
		},
	}
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all completed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepo(func(ctx context.Context, repo *tasks.Repository) error {
				removed, err := repo.ClearCompleted(ctx)
				if err != nil {
					return err
				}
				cmd.Println(formatter.FormatMessage(fmt.Sprintf("removed %d completed task(s)", removed)))
				return nil
			})
		},
	}
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show counts, completion rate, and distributions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepo(func(ctx context.Context, repo *tasks.Repository) error {
				all, err := repo.List(ctx)
				if err != nil {
					return err
				}
				cmd.Println(formatter.FormatSummary(domain.Summarize(all)))
				return nil
			})
		},
	}
}

func exportCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup of the task collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepo(func(ctx context.Context, repo *tasks.Repository) error {
				all, err := repo.List(ctx)
				if err != nil {
					return err
				}
				data, err := encodeTasks(all, format)
				if err != nil {
					return err
				}
				if out == "" {
					cmd.Print(string(data))
					return nil
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("write backup: %w", err)
				}
				cmd.Println(formatter.FormatMessage(fmt.Sprintf("exported %d task(s) to %s", len(all), out)))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Backup format: json, yaml, or toml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Destination file (stdout when omitted)")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the task collection from a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			var imported []domain.Task
			if err := json.Unmarshal(data, &imported); err != nil {
				return fmt.Errorf("parse backup: %w", err)
			}
			return withRepo(func(ctx context.Context, repo *tasks.Repository) error {
				count, err := repo.Replace(ctx, imported)
				if err != nil {
					return err
				}
				cmd.Println(formatter.FormatMessage(fmt.Sprintf("imported %d task(s)", count)))
				return nil
			})
		},
	}
}

func encodeTasks(all []domain.Task, format string) ([]byte, error) {
	if all == nil {
		all = []domain.Task{}
	}
	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(all, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml":
		return yaml.Marshal(all)
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(struct {
			Tasks []domain.Task `toml:"tasks"`
		}{Tasks: all}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %q", format)
	}
}

// todoctl manages the to-do list from the command line, operating
// directly on the same data file the server uses.
package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"todo-api/storage"
	"todo-api/tasks"
)

var (
	dataFile   string
	jsonOutput bool
	formatter  Formatter
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "todoctl",
		Short:        "A file-backed to-do list manager",
		Long:         "todoctl adds, lists, completes, and exports tasks stored in a local JSON file.",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if jsonOutput {
				formatter = jsonFormatter{}
			} else {
				formatter = humanFormatter{}
			}
		},
	}

	defaultFile := os.Getenv("TODO_DATA_FILE")
	if defaultFile == "" {
		defaultFile = "todos.json"
	}
	rootCmd.PersistentFlags().StringVar(&dataFile, "file", defaultFile, "Path to the task data file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(
		addCmd(),
		listCmd(),
		toggleCmd(),
		rmCmd(),
		clearCmd(),
		summaryCmd(),
		exportCmd(),
		importCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withRepo opens the data file, runs fn against a repository, and
// releases the file lock.
func withRepo(fn func(ctx context.Context, repo *tasks.Repository) error) error {
	store, err := storage.New(dataFile)
	if err != nil {
		return err
	}
	defer store.Close()

	logger := log.New()
	logger.SetLevel(log.WarnLevel)
	return fn(context.Background(), tasks.New(store, logger))
}

// Package cli is the minitimer command line: without a subcommand it runs
// the desktop app, subcommands drive the same local tracker headlessly.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"minitimer/internal/logging"
	"minitimer/internal/storage"
	"minitimer/internal/tracker"
)

const appName = "minitimer"

// GUIRunner starts the desktop app.
type GUIRunner func(configPath, databasePath string) error

type rootOptions struct {
	configFile   string
	databasePath string
}

// NewRootCommand builds the command tree. runGUI backs the bare command.
func NewRootCommand(runGUI GUIRunner) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "minitimer",
		Short: "A small desktop time tracker with a command line.",
		Long: `minitimer tracks time entries in a local SQLite database.

Run without a subcommand to open the timer window and tray icon.
Subcommands start, stop and inspect the timer and export tracked time.`,
		Example: `
  # Open the desktop timer
  minitimer

  # Start tracking with a project and tags
  minitimer start "Write release notes" --project 3 --tag docs --tag release

  # Show the running entry and stop it
  minitimer status
  minitimer stop

  # Export the last 200 entries to Excel
  minitimer export --output ./time.xlsx --limit 200
`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runGUI == nil {
				return fmt.Errorf("desktop app is not available in this build")
			}
			return runGUI(opts.configFile, opts.databasePath)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Settings file override (default: <user config dir>/minitimer/settings.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.databasePath, "db", "", "SQLite database override (default: from settings)")

	rootCmd.AddCommand(
		newStartCommand(opts),
		newStopCommand(opts),
		newStatusCommand(opts),
		newExportCommand(opts),
		newWorkspaceCommand(opts),
		newProjectCommand(opts),
		newTaskCommand(opts),
	)
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute(runGUI GUIRunner) {
	if err := NewRootCommand(runGUI).Execute(); err != nil {
		os.Exit(1)
	}
}

// session is an opened store plus a tracker over it.
type session struct {
	store   *storage.SQLiteStore
	tracker *tracker.Tracker
}

func (opts *rootOptions) open() (*session, error) {
	settings, _, err := storage.ResolveSettings(appName, opts.configFile, opts.databasePath)
	if err != nil {
		return nil, err
	}

	store, err := storage.OpenSQLite(settings.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureWorkspace(settings.DefaultWorkspaceID, "Personal"); err != nil {
		_ = store.Close()
		return nil, err
	}

	logger := logging.NewTextLogger(os.Stderr, settings.Debug)
	return &session{
		store:   store,
		tracker: tracker.New(store, nil, tracker.OptionsFromSettings(settings), logger),
	}, nil
}

func (s *session) Close() error {
	s.tracker.Close()
	return s.store.Close()
}

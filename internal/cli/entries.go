package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"minitimer/internal/core/model"
	"minitimer/internal/storage"
	"minitimer/internal/tracker"
)

func newStartCommand(opts *rootOptions) *cobra.Command {
	var (
		workspaceID uint64
		projectID   uint64
		taskID      uint64
		tags        []string
		billable    bool
	)

	cmd := &cobra.Command{
		Use:   "start [description]",
		Short: "Start a new time entry, stopping the running one",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()

			draft := model.TimeEntry{
				Description: strings.TrimSpace(strings.Join(args, " ")),
				WorkspaceID: workspaceID,
				ProjectID:   projectID,
				TaskID:      taskID,
				Tags:        tags,
				Billable:    billable,
			}
			if projectID > 0 {
				project, err := s.store.Project(projectID)
				if err != nil {
					return fmt.Errorf("project %d: %w", projectID, err)
				}
				draft.WorkspaceID = project.WorkspaceID
				if !cmd.Flags().Changed("billable") {
					draft.Billable = project.Billable
				}
			}

			entry, err := s.tracker.Start(draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started %s\n", describe(entry))
			return nil
		},
	}

	cmd.Flags().Uint64Var(&workspaceID, "workspace", 0, "Workspace ID (default: from settings, or the project's workspace)")
	cmd.Flags().Uint64Var(&projectID, "project", 0, "Project ID")
	cmd.Flags().Uint64Var(&taskID, "task", 0, "Task ID")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag name (repeatable)")
	cmd.Flags().BoolVar(&billable, "billable", false, "Mark the entry billable")
	return cmd
}

func newStopCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running time entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()

			entry, err := s.tracker.Stop()
			if errors.Is(err, tracker.ErrNoRunningEntry) {
				fmt.Fprintln(cmd.OutOrStdout(), "No timer running.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped %s\n", describe(entry))
			return nil
		},
	}
}

func newStatusCommand(opts *rootOptions) *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running time entry and recent history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if entry, ok := s.tracker.Current(); ok {
				fmt.Fprintf(out, "Running %s\n", describe(entry))
			} else {
				fmt.Fprintln(out, "No timer running.")
			}

			if recent <= 0 {
				return nil
			}
			entries, err := s.tracker.Entries(recent)
			if err != nil {
				return err
			}
			printEntries(out, entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 0, "Also list this many recent entries")
	return cmd
}

func describe(entry model.TimeEntry) string {
	description := entry.Description
	if description == "" {
		description = "(no description)"
	}
	parts := []string{fmt.Sprintf("%q", description)}
	if summary := model.SummaryOf(entry); summary != nil {
		parts = append(parts, "["+summary.Title()+"]")
	}
	if len(entry.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(entry.Tags, " #"))
	}
	if entry.Duration != "" {
		parts = append(parts, entry.Duration)
	}
	return strings.Join(parts, " ")
}

func printEntries(out io.Writer, entries []model.TimeEntry) {
	for _, entry := range entries {
		marker := " "
		if entry.Running {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s %s\n", marker, entry.Started.Local().Format("2006-01-02 15:04"), describe(entry))
	}
}

func notFound(err error) bool {
	return errors.Is(err, storage.ErrProjectNotFound) || errors.Is(err, storage.ErrWorkspaceNotFound)
}

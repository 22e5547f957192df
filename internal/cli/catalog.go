package cli

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"minitimer/internal/core/model"
)

type workspaceInput struct {
	ID   uint64 `validate:"gt=0"`
	Name string `validate:"required,max=120"`
}

type projectInput struct {
	WorkspaceID uint64 `validate:"gt=0"`
	Name        string `validate:"required,max=120"`
	Client      string `validate:"max=120"`
	Color       string `validate:"omitempty,hexcolor"`
}

type taskInput struct {
	ProjectID uint64 `validate:"gt=0"`
	Name      string `validate:"required,max=120"`
}

var validate = validator.New()

func newWorkspaceCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Manage workspaces",
	}

	var (
		input        workspaceInput
		billableView bool
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add or update a workspace",
		Example: `
  minitimer workspace add --id 2 --name Acme --billable`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Name = strings.TrimSpace(input.Name)
			if err := validate.Struct(input); err != nil {
				return fmt.Errorf("invalid workspace: %w", err)
			}

			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.UpsertWorkspace(model.Workspace{ID: input.ID, Name: input.Name, BillableView: billableView}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Workspace %d saved: %s\n", input.ID, input.Name)
			return nil
		},
	}
	add.Flags().Uint64Var(&input.ID, "id", 0, "Workspace ID")
	add.Flags().StringVar(&input.Name, "name", "", "Workspace name")
	add.Flags().BoolVar(&billableView, "billable", false, "Members can see and set the billable flag")

	list := &cobra.Command{
		Use:   "list",
		Short: "List workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()

			workspaces, err := s.store.ListWorkspaces()
			if err != nil {
				return err
			}
			for _, workspace := range workspaces {
				billable := ""
				if workspace.BillableView {
					billable = " (billable)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s%s\n", workspace.ID, workspace.Name, billable)
			}
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newProjectCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	var (
		input    projectInput
		billable bool
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a project to a workspace",
		Example: `
  minitimer project add --workspace 2 --name Apollo --client NASA --color "#06aaf5"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Name = strings.TrimSpace(input.Name)
			if err := validate.Struct(input); err != nil {
				return fmt.Errorf("invalid project: %w", err)
			}

			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := s.store.Workspace(input.WorkspaceID); err != nil {
				if notFound(err) {
					return fmt.Errorf("workspace %d does not exist", input.WorkspaceID)
				}
				return err
			}

			project, err := s.store.InsertProject(model.Project{
				GUID:        uuid.NewString(),
				WorkspaceID: input.WorkspaceID,
				Name:        input.Name,
				ClientName:  input.Client,
				Color:       input.Color,
				Billable:    billable,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project %d saved: %s\n", project.ID, project.Name)
			return nil
		},
	}
	add.Flags().Uint64Var(&input.WorkspaceID, "workspace", 0, "Workspace ID")
	add.Flags().StringVar(&input.Name, "name", "", "Project name")
	add.Flags().StringVar(&input.Client, "client", "", "Client name")
	add.Flags().StringVar(&input.Color, "color", "", "Project color as #rrggbb")
	add.Flags().BoolVar(&billable, "billable", false, "New entries on this project default to billable")

	list := &cobra.Command{
		Use:   "list",
		Short: "List projects and their tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()

			projects, err := s.store.ListProjects()
			if err != nil {
				return err
			}
			tasks, err := s.store.ListTasks()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, project := range projects {
				summary := model.ProjectSummary{Label: project.Name, ClientLabel: project.ClientName}
				fmt.Fprintf(out, "%d\t%s\t(workspace %d)\n", project.ID, summary.Title(), project.WorkspaceID)
				for _, task := range tasks {
					if task.ProjectID == project.ID {
						fmt.Fprintf(out, "  %d\t%s\n", task.ID, task.Name)
					}
				}
			}
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newTaskCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	var input taskInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a task to a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Name = strings.TrimSpace(input.Name)
			if err := validate.Struct(input); err != nil {
				return fmt.Errorf("invalid task: %w", err)
			}

			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := s.store.Project(input.ProjectID); err != nil {
				if notFound(err) {
					return fmt.Errorf("project %d does not exist", input.ProjectID)
				}
				return err
			}

			task, err := s.store.InsertTask(model.Task{ProjectID: input.ProjectID, Name: input.Name})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d saved: %s\n", task.ID, task.Name)
			return nil
		},
	}
	add.Flags().Uint64Var(&input.ProjectID, "project", 0, "Project ID")
	add.Flags().StringVar(&input.Name, "name", "", "Task name")

	cmd.AddCommand(add)
	return cmd
}

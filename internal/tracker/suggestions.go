package tracker

import (
	"fmt"
	"sort"
	"strings"

	"minitimer/internal/core/model"
)

// Suggestions builds the description autocomplete rows: each workspace gets
// a header row followed by its recent entries, then its projects with their
// tasks.
func (tracker *Tracker) Suggestions() ([]model.Suggestion, error) {
	workspaces, err := tracker.store.ListWorkspaces()
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	projects, err := tracker.store.ListProjects()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	tasks, err := tracker.store.ListTasks()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	entries, err := tracker.store.ListTimeEntries(tracker.options.RecentEntries)
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}

	tasksByProject := make(map[uint64][]model.Task)
	for _, task := range tasks {
		tasksByProject[task.ProjectID] = append(tasksByProject[task.ProjectID], task)
	}
	projectsByWorkspace := make(map[uint64][]model.Project)
	for _, project := range projects {
		projectsByWorkspace[project.WorkspaceID] = append(projectsByWorkspace[project.WorkspaceID], project)
	}
	entriesByWorkspace := make(map[uint64][]model.TimeEntry)
	for _, entry := range entries {
		entriesByWorkspace[entry.WorkspaceID] = append(entriesByWorkspace[entry.WorkspaceID], entry)
	}

	sort.Slice(workspaces, func(i, j int) bool { return workspaces[i].ID < workspaces[j].ID })

	var rows []model.Suggestion
	for _, workspace := range workspaces {
		group := entryRows(entriesByWorkspace[workspace.ID])
		for _, project := range projectsByWorkspace[workspace.ID] {
			group = append(group, projectRow(project, nil))
			for _, task := range tasksByProject[project.ID] {
				group = append(group, projectRow(project, &task))
			}
		}
		if len(group) == 0 {
			continue
		}
		for index := range group {
			group[index].WorkspaceName = workspace.Name
		}
		rows = append(rows, model.Suggestion{
			WorkspaceID:   workspace.ID,
			WorkspaceName: workspace.Name,
			Category:      model.CategoryWorkspace,
		})
		rows = append(rows, group...)
	}
	return rows, nil
}

// entryRows keeps the newest entry for every distinct description and
// project/task pair. Entries without a description are skipped.
func entryRows(entries []model.TimeEntry) []model.Suggestion {
	type key struct {
		description string
		projectID   uint64
		taskID      uint64
	}
	seen := make(map[key]bool)

	var rows []model.Suggestion
	for _, entry := range entries {
		description := strings.TrimSpace(entry.Description)
		if description == "" {
			continue
		}
		k := key{strings.ToLower(description), entry.ProjectID, entry.TaskID}
		if seen[k] {
			continue
		}
		seen[k] = true

		rows = append(rows, model.Suggestion{
			Description:         description,
			WorkspaceID:         entry.WorkspaceID,
			ProjectID:           entry.ProjectID,
			TaskID:              entry.TaskID,
			ProjectGUID:         entry.ProjectGUID,
			ProjectLabel:        entry.ProjectLabel,
			TaskLabel:           entry.TaskLabel,
			ClientLabel:         entry.ClientLabel,
			ProjectAndTaskLabel: entry.ProjectAndTaskLabel,
			ProjectColor:        entry.ProjectColor,
			Billable:            entry.Billable,
			Tags:                entry.Tags,
			Category:            model.CategoryTimeEntry,
		})
	}
	return rows
}

func projectRow(project model.Project, task *model.Task) model.Suggestion {
	row := model.Suggestion{
		ID:                  project.ID,
		WorkspaceID:         project.WorkspaceID,
		ProjectID:           project.ID,
		ProjectGUID:         project.GUID,
		ProjectLabel:        project.Name,
		ClientLabel:         project.ClientName,
		ProjectAndTaskLabel: project.Name,
		ProjectColor:        project.Color,
		Billable:            project.Billable,
		Category:            model.CategoryProject,
	}
	if task != nil {
		row.ID = task.ID
		row.TaskID = task.ID
		row.TaskLabel = task.Name
		row.ProjectAndTaskLabel = task.Name + ". " + project.Name
		row.Category = model.CategoryTask
	}
	return row
}

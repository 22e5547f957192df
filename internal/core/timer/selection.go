package timer

import "minitimer/internal/core/model"

// ApplySuggestion fills the entry from a selected description autocomplete
// row: a previous time entry, a task or a project. Header rows are ignored.
func (binding *Binding) ApplySuggestion(suggestion model.Suggestion) bool {
	if binding.closed || !suggestion.Selectable() {
		return false
	}

	if suggestion.Description != "" {
		binding.setDescription(suggestion.Description)
	}

	binding.applyProject(suggestion)

	binding.setTags(suggestion.Tags)

	// applyProject refreshed CanSeeBillable when the workspace changed.
	visible := binding.entry.CanSeeBillable || (binding.entry.Running && binding.entry.Billable)
	binding.setBillable(model.BillableFor(visible, suggestion.Billable))
	return true
}

// ApplyProject assigns the project and task of a project picker row.
// Switching workspaces clears the tags, which belong to the old workspace.
func (binding *Binding) ApplyProject(suggestion model.Suggestion) bool {
	if binding.closed || !suggestion.Selectable() {
		return false
	}

	if binding.applyProject(suggestion) {
		binding.updateBillableStatus()
		binding.setTags(nil)
	}
	return true
}

// SelectSuggestion applies the row at index of the filtered autocomplete
// list and resets the filter.
func (binding *Binding) SelectSuggestion(index int) bool {
	if binding.suggestions == nil {
		return false
	}
	suggestion, ok := binding.suggestions.Item(index)
	if !ok || !binding.ApplySuggestion(suggestion) {
		return false
	}
	binding.suggestions.ClearFilter()
	return true
}

func (binding *Binding) applyProject(suggestion model.Suggestion) bool {
	isNewWorkspace := suggestion.WorkspaceID != binding.entry.WorkspaceID

	entry := &binding.entry
	entry.WorkspaceID = suggestion.WorkspaceID
	entry.ProjectID = suggestion.ProjectID
	entry.TaskID = suggestion.TaskID
	entry.ProjectGUID = suggestion.ProjectGUID
	entry.ProjectAndTaskLabel = suggestion.ProjectAndTaskLabel
	entry.TaskLabel = suggestion.TaskLabel
	entry.ProjectLabel = suggestion.ProjectLabel
	entry.ClientLabel = suggestion.ClientLabel
	entry.ProjectColor = suggestion.ProjectColor

	if entry.Running && entry.GUID != "" {
		binding.bridge.SetProject(entry.GUID, entry.TaskID, entry.ProjectID, suggestion.ProjectGUID)
	}

	binding.setProject(model.SummaryOf(*entry))

	if isNewWorkspace {
		entry.CanSeeBillable = binding.bridge.CanSeeBillable(binding.workspaceID())
		binding.fetchTags()
	}
	return isNewWorkspace
}

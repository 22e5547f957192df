package model

import "strings"

// SuggestionCategory identifies what kind of row an autocomplete item is.
type SuggestionCategory int

const (
	CategoryWorkspace SuggestionCategory = iota - 1
	CategoryTimeEntry
	CategoryTask
	CategoryProject
)

// Suggestion is a single autocomplete row.
type Suggestion struct {
	ID          uint64
	Description string

	WorkspaceID   uint64
	WorkspaceName string
	ProjectID     uint64
	TaskID        uint64
	ProjectGUID   string

	ProjectLabel        string
	TaskLabel           string
	ClientLabel         string
	ProjectAndTaskLabel string
	ProjectColor        string

	Billable bool
	Tags     []string
	Category SuggestionCategory
}

// Selectable reports whether the row can be applied to an entry.
func (suggestion Suggestion) Selectable() bool {
	return suggestion.Category >= CategoryTimeEntry
}

// Text is the searchable text of the row.
func (suggestion Suggestion) Text() string {
	switch suggestion.Category {
	case CategoryWorkspace:
		return suggestion.WorkspaceName
	case CategoryProject, CategoryTask:
		return strings.TrimSpace(suggestion.ProjectAndTaskLabel + " " + suggestion.ClientLabel)
	}
	parts := []string{suggestion.Description}
	if suggestion.ProjectAndTaskLabel != "" {
		parts = append(parts, suggestion.ProjectAndTaskLabel)
	}
	if suggestion.ClientLabel != "" {
		parts = append(parts, suggestion.ClientLabel)
	}
	return strings.Join(parts, " ")
}

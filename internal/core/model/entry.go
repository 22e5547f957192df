package model

import (
	"slices"
	"time"
)

// TimeEntry is the timer's view of a single tracked interval.
type TimeEntry struct {
	GUID        string
	Description string

	WorkspaceID uint64
	ProjectID   uint64
	TaskID      uint64
	ProjectGUID string

	ProjectLabel        string
	TaskLabel           string
	ClientLabel         string
	ProjectAndTaskLabel string
	ProjectColor        string

	Billable       bool
	CanSeeBillable bool
	Tags           []string

	Running         bool
	Started         time.Time
	Stopped         time.Time
	DurationSeconds int64
	Duration        string
}

// ElapsedSeconds returns the tracked time for the entry at the given moment.
func (entry TimeEntry) ElapsedSeconds(now time.Time) int64 {
	if entry.Running && !entry.Started.IsZero() {
		elapsed := int64(now.Sub(entry.Started) / time.Second)
		if elapsed < 0 {
			return 0
		}
		return elapsed
	}
	return entry.DurationSeconds
}

// Clone returns a copy that does not share the tag slice.
func (entry TimeEntry) Clone() TimeEntry {
	entry.Tags = slices.Clone(entry.Tags)
	return entry
}

// ProjectSummary is the project chip shown next to the description.
type ProjectSummary struct {
	Label       string
	TaskLabel   string
	ClientLabel string
	Color       string
}

// Title renders the summary as "Task. Project - Client".
func (summary ProjectSummary) Title() string {
	title := summary.Label
	if summary.TaskLabel != "" {
		title = summary.TaskLabel + ". " + title
	}
	if summary.ClientLabel != "" {
		title = title + " - " + summary.ClientLabel
	}
	return title
}

// SummaryOf returns the project summary of an entry, or nil when the entry
// has no project.
func SummaryOf(entry TimeEntry) *ProjectSummary {
	if entry.ProjectLabel == "" {
		return nil
	}
	return &ProjectSummary{
		Label:       entry.ProjectLabel,
		TaskLabel:   entry.TaskLabel,
		ClientLabel: entry.ClientLabel,
		Color:       entry.ProjectColor,
	}
}

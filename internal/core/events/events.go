package events

import (
	"time"

	"minitimer/internal/core/model"
)

// Type defines the kind of event carried by the bus.
type Type string

// Commands are published by the timer and handled by the tracker.
const (
	CommandStop          Type = "stop"
	CommandBeginNewEntry Type = "begin_new_entry"
	CommandCloseEditor   Type = "close_editor"
)

// Notifications are published by the tracker or the shell and handled by the timer.
const (
	StateChanged   Type = "state_changed"
	FocusRequested Type = "focus_requested"
	StopRequested  Type = "stop_requested"
	StartRequested Type = "start_requested"
	TagsLoaded     Type = "tags_loaded"
	Tick           Type = "tick"
)

// Event is a single bus message. Entry is nil when there is no entry to show.
type Event struct {
	Type  Type
	Entry *model.TimeEntry
	Tags  []string
	At    time.Time
}

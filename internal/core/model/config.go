package model

import "time"

// BillableState is the tri-state shown by the billable toggle.
type BillableState string

const (
	BillableOn          BillableState = "on"
	BillableOff         BillableState = "off"
	BillableUnavailable BillableState = "unavailable"
)

// BillableFor maps visibility and the stored flag to a BillableState.
func BillableFor(visible, billable bool) BillableState {
	if !visible {
		return BillableUnavailable
	}
	if billable {
		return BillableOn
	}
	return BillableOff
}

// Workspace is a tenant boundary that gates billable tracking.
type Workspace struct {
	ID           uint64
	Name         string
	BillableView bool
}

// Project belongs to a workspace and optionally a client.
type Project struct {
	ID          uint64
	GUID        string
	WorkspaceID uint64
	Name        string
	ClientName  string
	Color       string
	Billable    bool
}

// Task belongs to a project.
type Task struct {
	ID        uint64
	ProjectID uint64
	Name      string
}

// TimerConfig contains runtime settings for the timer binding.
type TimerConfig struct {
	TickInterval time.Duration
}

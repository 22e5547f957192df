// Package tracker is the local time-tracking library behind the timer: it
// owns persistence, answers workspace capability lookups and executes the
// commands the timer publishes.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"minitimer/internal/core/events"
	"minitimer/internal/core/model"
	"minitimer/internal/logging"
	"minitimer/internal/storage"
	"minitimer/internal/ui/preferences"
)

// ErrNoRunningEntry is returned by Stop when nothing is being tracked.
var ErrNoRunningEntry = errors.New("no running time entry")

// Store is the persistence the tracker needs.
type Store interface {
	Workspace(id uint64) (model.Workspace, error)
	ListWorkspaces() ([]model.Workspace, error)
	ListProjects() ([]model.Project, error)
	ListTasks() ([]model.Task, error)
	AddTags(workspaceID uint64, names []string) error
	ListTags(workspaceID uint64) ([]string, error)

	InsertTimeEntry(entry model.TimeEntry) error
	StopTimeEntry(guid string, stoppedAt time.Time) (model.TimeEntry, error)
	TimeEntry(guid string) (model.TimeEntry, error)
	RunningTimeEntry() (model.TimeEntry, error)
	ListTimeEntries(limit int) ([]model.TimeEntry, error)
	UpdateDescription(guid, description string) error
	UpdateBillable(guid string, billable bool) error
	UpdateTags(guid string, tags []string) error
	UpdateProject(guid string, projectID, taskID uint64) error
}

// Options tune tracker behavior.
type Options struct {
	DefaultWorkspaceID uint64
	DurationFormat     string
	RecentEntries      int
}

// OptionsFromSettings converts user preferences to tracker options.
func OptionsFromSettings(settings preferences.Settings) Options {
	return Options{
		DefaultWorkspaceID: settings.DefaultWorkspaceID,
		DurationFormat:     settings.DurationFormat,
		RecentEntries:      settings.RecentEntries,
	}
}

// Tracker implements timer.Bridge on top of a Store.
type Tracker struct {
	store       Store
	bus         *events.Bus
	options     Options
	log         logging.Logger
	now         func() time.Time
	newGUID     func() string
	unsubscribe []func()
}

// New creates a tracker. When bus is non-nil the tracker handles the
// timer's stop and begin commands.
func New(store Store, bus *events.Bus, options Options, logger logging.Logger) *Tracker {
	if logger == nil {
		logger = logging.Discard()
	}
	if options.RecentEntries <= 0 {
		options.RecentEntries = 50
	}

	tracker := &Tracker{
		store:   store,
		bus:     bus,
		options: options,
		log:     logger.With("component", "tracker"),
		now:     time.Now,
		newGUID: uuid.NewString,
	}

	if bus != nil {
		tracker.unsubscribe = []func(){
			bus.Subscribe(events.CommandBeginNewEntry, tracker.handleBegin),
			bus.Subscribe(events.CommandStop, tracker.handleStop),
		}
	}
	return tracker
}

// SetOptions applies changed preferences.
func (tracker *Tracker) SetOptions(options Options) {
	if options.RecentEntries <= 0 {
		options.RecentEntries = tracker.options.RecentEntries
	}
	tracker.options = options
}

// Close stops handling bus commands.
func (tracker *Tracker) Close() {
	for _, unsubscribe := range tracker.unsubscribe {
		unsubscribe()
	}
	tracker.unsubscribe = nil
}

// Start stops any running entry and starts a new one from draft.
func (tracker *Tracker) Start(draft model.TimeEntry) (model.TimeEntry, error) {
	now := tracker.now()

	running, err := tracker.store.RunningTimeEntry()
	switch {
	case err == nil:
		if _, err := tracker.store.StopTimeEntry(running.GUID, now); err != nil {
			return model.TimeEntry{}, fmt.Errorf("stop previous entry: %w", err)
		}
	case !errors.Is(err, storage.ErrTimeEntryNotFound):
		return model.TimeEntry{}, fmt.Errorf("lookup running entry: %w", err)
	}

	entry := draft.Clone()
	entry.GUID = tracker.newGUID()
	entry.Running = true
	entry.Started = now
	entry.Stopped = time.Time{}
	entry.DurationSeconds = 0
	if entry.WorkspaceID == 0 {
		entry.WorkspaceID = tracker.options.DefaultWorkspaceID
	}

	if err := tracker.store.InsertTimeEntry(entry); err != nil {
		return model.TimeEntry{}, err
	}
	if err := tracker.store.AddTags(entry.WorkspaceID, entry.Tags); err != nil {
		tracker.log.Warn(context.Background(), "record tags failed", "guid", entry.GUID, "error", err)
	}

	stored, err := tracker.store.TimeEntry(entry.GUID)
	if err != nil {
		return model.TimeEntry{}, err
	}
	stored.Duration = tracker.FormatDuration(stored.ElapsedSeconds(now))

	tracker.log.Info(context.Background(), "time entry started", "guid", stored.GUID, "workspace", stored.WorkspaceID)
	return stored, nil
}

// Stop stops the running entry.
func (tracker *Tracker) Stop() (model.TimeEntry, error) {
	running, err := tracker.store.RunningTimeEntry()
	if errors.Is(err, storage.ErrTimeEntryNotFound) {
		return model.TimeEntry{}, ErrNoRunningEntry
	}
	if err != nil {
		return model.TimeEntry{}, fmt.Errorf("lookup running entry: %w", err)
	}

	stopped, err := tracker.store.StopTimeEntry(running.GUID, tracker.now())
	if err != nil {
		return model.TimeEntry{}, err
	}
	stopped.Duration = tracker.FormatDuration(stopped.DurationSeconds)

	tracker.log.Info(context.Background(), "time entry stopped", "guid", stopped.GUID, "seconds", stopped.DurationSeconds)
	return stopped, nil
}

// Current returns the running entry, if any.
func (tracker *Tracker) Current() (model.TimeEntry, bool) {
	running, err := tracker.store.RunningTimeEntry()
	if err != nil {
		if !errors.Is(err, storage.ErrTimeEntryNotFound) {
			tracker.log.Error(context.Background(), "lookup running entry failed", "error", err)
		}
		return model.TimeEntry{}, false
	}
	running.Duration = tracker.FormatDuration(running.ElapsedSeconds(tracker.now()))
	return running, true
}

// Publish announces the current state on the bus.
func (tracker *Tracker) Publish() {
	if tracker.bus == nil {
		return
	}
	event := events.Event{Type: events.StateChanged}
	if running, ok := tracker.Current(); ok {
		event.Entry = &running
	}
	tracker.bus.Publish(event)
}

func (tracker *Tracker) handleBegin(event events.Event) {
	draft := model.TimeEntry{}
	if event.Entry != nil {
		draft = *event.Entry
	}

	entry, err := tracker.Start(draft)
	if err != nil {
		tracker.log.Error(context.Background(), "start time entry failed", "error", err)
		return
	}
	tracker.bus.Publish(events.Event{Type: events.StateChanged, Entry: &entry})
}

func (tracker *Tracker) handleStop(events.Event) {
	if _, err := tracker.Stop(); err != nil && !errors.Is(err, ErrNoRunningEntry) {
		tracker.log.Error(context.Background(), "stop time entry failed", "error", err)
	}
	tracker.bus.Publish(events.Event{Type: events.StopRequested})
	tracker.bus.Publish(events.Event{Type: events.StateChanged})
}

// FetchTags loads the workspace's tags and announces them on the bus.
func (tracker *Tracker) FetchTags(workspaceID uint64) {
	tags, err := tracker.store.ListTags(workspaceID)
	if err != nil {
		tracker.log.Error(context.Background(), "fetch tags failed", "workspace", workspaceID, "error", err)
		return
	}
	if tracker.bus != nil {
		tracker.bus.Publish(events.Event{Type: events.TagsLoaded, Tags: tags})
	}
}

func (tracker *Tracker) CanSeeBillable(workspaceID uint64) bool {
	workspace, err := tracker.store.Workspace(workspaceID)
	if err != nil {
		if !errors.Is(err, storage.ErrWorkspaceNotFound) {
			tracker.log.Error(context.Background(), "workspace lookup failed", "workspace", workspaceID, "error", err)
		}
		return false
	}
	return workspace.BillableView
}

func (tracker *Tracker) DefaultWorkspaceID() uint64 {
	return tracker.options.DefaultWorkspaceID
}

func (tracker *Tracker) SetBillable(guid string, billable bool) {
	tracker.logUpdate(guid, "billable", tracker.store.UpdateBillable(guid, billable))
}

func (tracker *Tracker) UpdateTags(guid string, tags []string) {
	if err := tracker.store.UpdateTags(guid, tags); err != nil {
		tracker.logUpdate(guid, "tags", err)
		return
	}
	entry, err := tracker.store.TimeEntry(guid)
	if err != nil {
		tracker.logUpdate(guid, "tags", err)
		return
	}
	tracker.logUpdate(guid, "tags", tracker.store.AddTags(entry.WorkspaceID, tags))
}

func (tracker *Tracker) UpdateDescription(guid string, description string) {
	tracker.logUpdate(guid, "description", tracker.store.UpdateDescription(guid, description))
}

func (tracker *Tracker) SetProject(guid string, taskID, projectID uint64, projectGUID string) {
	err := tracker.store.UpdateProject(guid, projectID, taskID)
	tracker.logUpdate(guid, "project", err)
	if err == nil {
		tracker.log.Debug(context.Background(), "project assigned", "guid", guid, "project_guid", projectGUID)
	}
}

func (tracker *Tracker) FormatDuration(seconds int64) string {
	return FormatDuration(seconds, tracker.options.DurationFormat)
}

func (tracker *Tracker) logUpdate(guid, field string, err error) {
	if err == nil {
		return
	}
	tracker.log.Error(context.Background(), "update time entry failed", "guid", guid, "field", field, "error", err)
}

// Entries returns stored entries newest first.
func (tracker *Tracker) Entries(limit int) ([]model.TimeEntry, error) {
	entries, err := tracker.store.ListTimeEntries(limit)
	if err != nil {
		return nil, err
	}
	now := tracker.now()
	for index := range entries {
		entries[index].Duration = tracker.FormatDuration(entries[index].ElapsedSeconds(now))
	}
	return slices.Clip(entries), nil
}

package tracker

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minitimer/internal/core/events"
	"minitimer/internal/core/model"
	"minitimer/internal/storage"
)

var testNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store   *storage.SQLiteStore
	bus     *events.Bus
	tracker *Tracker
	clock   time.Time
	project model.Project
	task    model.Task
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "tracker_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.UpsertWorkspace(model.Workspace{ID: 1, Name: "Personal"}))
	require.NoError(t, store.UpsertWorkspace(model.Workspace{ID: 2, Name: "Acme", BillableView: true}))
	project, err := store.InsertProject(model.Project{GUID: "proj-apollo", WorkspaceID: 2, Name: "Apollo", ClientName: "NASA", Color: "#06aaf5", Billable: true})
	require.NoError(t, err)
	task, err := store.InsertTask(model.Task{ProjectID: project.ID, Name: "Design"})
	require.NoError(t, err)

	f := &fixture{store: store, bus: events.NewBus(events.Immediate), clock: testNow, project: project, task: task}
	f.tracker = New(store, f.bus, Options{DefaultWorkspaceID: 1, DurationFormat: "improved"}, nil)
	f.tracker.now = func() time.Time { return f.clock }

	guids := 0
	f.tracker.newGUID = func() string {
		guids++
		return fmt.Sprintf("te-%d", guids)
	}
	t.Cleanup(f.tracker.Close)
	return f
}

func (f *fixture) record(types ...events.Type) *[]events.Event {
	var received []events.Event
	for _, eventType := range types {
		f.bus.Subscribe(eventType, func(event events.Event) { received = append(received, event) })
	}
	return &received
}

func TestTracker_StartUsesDefaultWorkspaceAndLabels(t *testing.T) {
	f := newFixture(t)

	entry, err := f.tracker.Start(model.TimeEntry{Description: "inbox"})
	require.NoError(t, err)
	assert.Equal(t, "te-1", entry.GUID)
	assert.Equal(t, uint64(1), entry.WorkspaceID)
	assert.True(t, entry.Running)
	assert.Equal(t, testNow, entry.Started)
	assert.Equal(t, "0:00:00", entry.Duration)
	assert.False(t, entry.CanSeeBillable)

	withProject, err := f.tracker.Start(model.TimeEntry{
		Description: "mockups",
		WorkspaceID: 2,
		ProjectID:   f.project.ID,
		TaskID:      f.task.ID,
		Tags:        []string{"design"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Design. Apollo", withProject.ProjectAndTaskLabel)
	assert.True(t, withProject.CanSeeBillable)

	tags, err := f.store.ListTags(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"design"}, tags)
}

func TestTracker_StartStopsPreviousEntry(t *testing.T) {
	f := newFixture(t)

	_, err := f.tracker.Start(model.TimeEntry{Description: "first"})
	require.NoError(t, err)

	f.clock = testNow.Add(10 * time.Minute)
	_, err = f.tracker.Start(model.TimeEntry{Description: "second"})
	require.NoError(t, err)

	first, err := f.store.TimeEntry("te-1")
	require.NoError(t, err)
	assert.False(t, first.Running)
	assert.Equal(t, int64(600), first.DurationSeconds)

	current, ok := f.tracker.Current()
	require.True(t, ok)
	assert.Equal(t, "te-2", current.GUID)
}

func TestTracker_StopWithoutRunningEntry(t *testing.T) {
	f := newFixture(t)

	_, err := f.tracker.Stop()
	assert.ErrorIs(t, err, ErrNoRunningEntry)

	_, ok := f.tracker.Current()
	assert.False(t, ok)
}

func TestTracker_StopFormatsDuration(t *testing.T) {
	f := newFixture(t)

	_, err := f.tracker.Start(model.TimeEntry{Description: "review"})
	require.NoError(t, err)

	f.clock = testNow.Add(time.Hour + 2*time.Minute + 3*time.Second)
	stopped, err := f.tracker.Stop()
	require.NoError(t, err)
	assert.False(t, stopped.Running)
	assert.Equal(t, "1:02:03", stopped.Duration)
}

func TestTracker_BeginNewEntryCommandPublishesState(t *testing.T) {
	f := newFixture(t)
	received := f.record(events.StateChanged)

	draft := model.TimeEntry{Description: "from bus"}
	f.bus.Publish(events.Event{Type: events.CommandBeginNewEntry, Entry: &draft})

	require.Len(t, *received, 1)
	entry := (*received)[0].Entry
	require.NotNil(t, entry)
	assert.Equal(t, "from bus", entry.Description)
	assert.True(t, entry.Running)
}

func TestTracker_StopCommandPublishesStopThenIdleState(t *testing.T) {
	f := newFixture(t)
	_, err := f.tracker.Start(model.TimeEntry{Description: "work"})
	require.NoError(t, err)

	received := f.record(events.StopRequested, events.StateChanged)
	f.bus.Publish(events.Event{Type: events.CommandStop})

	require.Len(t, *received, 2)
	assert.Equal(t, events.StopRequested, (*received)[0].Type)
	assert.Equal(t, events.StateChanged, (*received)[1].Type)
	assert.Nil(t, (*received)[1].Entry)

	_, ok := f.tracker.Current()
	assert.False(t, ok)
}

func TestTracker_CloseStopsHandlingCommands(t *testing.T) {
	f := newFixture(t)
	f.tracker.Close()

	f.bus.Publish(events.Event{Type: events.CommandBeginNewEntry})

	_, ok := f.tracker.Current()
	assert.False(t, ok)
}

func TestTracker_FetchTagsPublishesTagsLoaded(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.AddTags(2, []string{"meeting", "focus"}))
	received := f.record(events.TagsLoaded)

	f.tracker.FetchTags(2)

	require.Len(t, *received, 1)
	assert.Equal(t, []string{"focus", "meeting"}, (*received)[0].Tags)
}

func TestTracker_CanSeeBillable(t *testing.T) {
	f := newFixture(t)

	assert.True(t, f.tracker.CanSeeBillable(2))
	assert.False(t, f.tracker.CanSeeBillable(1))
	assert.False(t, f.tracker.CanSeeBillable(42))
	assert.Equal(t, uint64(1), f.tracker.DefaultWorkspaceID())
}

func TestTracker_BridgeUpdatesPersist(t *testing.T) {
	f := newFixture(t)
	entry, err := f.tracker.Start(model.TimeEntry{WorkspaceID: 2})
	require.NoError(t, err)

	f.tracker.UpdateDescription(entry.GUID, "renamed")
	f.tracker.SetBillable(entry.GUID, true)
	f.tracker.UpdateTags(entry.GUID, []string{"client"})
	f.tracker.SetProject(entry.GUID, f.task.ID, f.project.ID, f.project.GUID)

	stored, err := f.store.TimeEntry(entry.GUID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Description)
	assert.True(t, stored.Billable)
	assert.Equal(t, []string{"client"}, stored.Tags)
	assert.Equal(t, f.project.ID, stored.ProjectID)
	assert.Equal(t, f.task.ID, stored.TaskID)

	tags, err := f.store.ListTags(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"client"}, tags)

	// Unknown entries are logged, not surfaced.
	assert.NotPanics(t, func() { f.tracker.UpdateDescription("missing", "x") })
}

func TestTracker_Suggestions(t *testing.T) {
	f := newFixture(t)

	_, err := f.tracker.Start(model.TimeEntry{Description: "mockups", WorkspaceID: 2, ProjectID: f.project.ID, TaskID: f.task.ID, Tags: []string{"design"}})
	require.NoError(t, err)
	f.clock = testNow.Add(time.Minute)
	_, err = f.tracker.Start(model.TimeEntry{Description: "Mockups", WorkspaceID: 2, ProjectID: f.project.ID, TaskID: f.task.ID})
	require.NoError(t, err)
	f.clock = testNow.Add(2 * time.Minute)
	_, err = f.tracker.Start(model.TimeEntry{WorkspaceID: 1})
	require.NoError(t, err)

	rows, err := f.tracker.Suggestions()
	require.NoError(t, err)

	// Workspace 1 only holds an entry without description, so it is omitted.
	require.Len(t, rows, 4)

	assert.Equal(t, model.CategoryWorkspace, rows[0].Category)
	assert.Equal(t, "Acme", rows[0].WorkspaceName)

	assert.Equal(t, model.CategoryTimeEntry, rows[1].Category)
	assert.Equal(t, "Mockups", rows[1].Description)
	assert.Empty(t, rows[1].Tags)
	assert.Equal(t, "Acme", rows[1].WorkspaceName)

	assert.Equal(t, model.CategoryProject, rows[2].Category)
	assert.Equal(t, "Apollo", rows[2].ProjectAndTaskLabel)
	assert.True(t, rows[2].Billable)

	assert.Equal(t, model.CategoryTask, rows[3].Category)
	assert.Equal(t, "Design. Apollo", rows[3].ProjectAndTaskLabel)
	assert.Equal(t, f.task.ID, rows[3].TaskID)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		format  string
		want    string
	}{
		{name: "improved zero", seconds: 0, format: "improved", want: "0:00:00"},
		{name: "improved hours", seconds: 3723, format: "improved", want: "1:02:03"},
		{name: "improved long", seconds: 36 * 3600, format: "improved", want: "36:00:00"},
		{name: "negative clamps", seconds: -5, format: "improved", want: "0:00:00"},
		{name: "decimal", seconds: 108, format: "decimal", want: "0.03 h"},
		{name: "decimal hours", seconds: 5400, format: "decimal", want: "1.50 h"},
		{name: "unknown falls back", seconds: 61, format: "classic", want: "0:01:01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.seconds, tt.format))
		})
	}
}

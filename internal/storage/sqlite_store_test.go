package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minitimer/internal/core/model"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "minitimer_test.db"))
	require.NoError(t, err, "open sqlite")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedApollo(t *testing.T, store *SQLiteStore) (model.Project, model.Task) {
	t.Helper()
	require.NoError(t, store.UpsertWorkspace(model.Workspace{ID: 5, Name: "Acme", BillableView: true}))
	project, err := store.InsertProject(model.Project{GUID: "proj-1", WorkspaceID: 5, Name: "Apollo", ClientName: "NASA", Color: "#06aaf5"})
	require.NoError(t, err)
	task, err := store.InsertTask(model.Task{ProjectID: project.ID, Name: "Design"})
	require.NoError(t, err)
	return project, task
}

func TestSQLiteStore_RunningEntryRoundTripsLabels(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	project, task := seedApollo(t, store)

	started := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertTimeEntry(model.TimeEntry{
		GUID:        "te-1",
		Description: "mockups",
		WorkspaceID: 5,
		ProjectID:   project.ID,
		TaskID:      task.ID,
		Billable:    true,
		Tags:        []string{"design", "client"},
		Running:     true,
		Started:     started,
	}))

	running, err := store.RunningTimeEntry()
	require.NoError(t, err)
	assert.Equal(t, "te-1", running.GUID)
	assert.True(t, running.Running)
	assert.True(t, running.Billable)
	assert.True(t, running.CanSeeBillable)
	assert.Equal(t, started, running.Started)
	assert.Equal(t, []string{"design", "client"}, running.Tags)
	assert.Equal(t, "Apollo", running.ProjectLabel)
	assert.Equal(t, "proj-1", running.ProjectGUID)
	assert.Equal(t, "NASA", running.ClientLabel)
	assert.Equal(t, "Design. Apollo", running.ProjectAndTaskLabel)
}

func TestSQLiteStore_StopTimeEntry(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)

	started := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertTimeEntry(model.TimeEntry{GUID: "te-1", Running: true, Started: started}))

	stopped, err := store.StopTimeEntry("te-1", started.Add(90*time.Minute))
	require.NoError(t, err)
	assert.False(t, stopped.Running)
	assert.Equal(t, int64(5400), stopped.DurationSeconds)

	_, err = store.RunningTimeEntry()
	assert.True(t, errors.Is(err, ErrTimeEntryNotFound))

	again, err := store.StopTimeEntry("te-1", started.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(5400), again.DurationSeconds)
}

func TestSQLiteStore_UpdatesByGUID(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	project, _ := seedApollo(t, store)

	require.NoError(t, store.InsertTimeEntry(model.TimeEntry{GUID: "te-1", Running: true, Started: time.Now()}))

	require.NoError(t, store.UpdateDescription("te-1", "renamed"))
	require.NoError(t, store.UpdateBillable("te-1", true))
	require.NoError(t, store.UpdateTags("te-1", []string{"focus"}))
	require.NoError(t, store.UpdateProject("te-1", project.ID, 0))

	entry, err := store.TimeEntry("te-1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", entry.Description)
	assert.True(t, entry.Billable)
	assert.Equal(t, []string{"focus"}, entry.Tags)
	assert.Equal(t, uint64(5), entry.WorkspaceID)
	assert.Equal(t, "Apollo", entry.ProjectAndTaskLabel)

	assert.True(t, errors.Is(store.UpdateDescription("missing", "x"), ErrTimeEntryNotFound))
}

func TestSQLiteStore_TagsPerWorkspace(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)

	require.NoError(t, store.AddTags(5, []string{"meeting", "focus", "meeting"}))
	require.NoError(t, store.AddTags(6, []string{"home"}))

	tags, err := store.ListTags(5)
	require.NoError(t, err)
	assert.Equal(t, []string{"focus", "meeting"}, tags)

	empty, err := store.ListTags(9)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLiteStore_ListTimeEntriesNewestFirst(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)

	base := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	for i, guid := range []string{"a", "b", "c"} {
		require.NoError(t, store.InsertTimeEntry(model.TimeEntry{
			GUID:            guid,
			Started:         base.Add(time.Duration(i) * time.Hour),
			Stopped:         base.Add(time.Duration(i)*time.Hour + 30*time.Minute),
			DurationSeconds: 1800,
		}))
	}

	all, err := store.ListTimeEntries(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].GUID)
	assert.False(t, all[0].Running)

	limited, err := store.ListTimeEntries(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSQLiteStore_WorkspaceLookup(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	seedApollo(t, store)

	workspace, err := store.Workspace(5)
	require.NoError(t, err)
	assert.True(t, workspace.BillableView)

	require.NoError(t, store.UpsertWorkspace(model.Workspace{ID: 5, Name: "Acme", BillableView: false}))
	workspace, err = store.Workspace(5)
	require.NoError(t, err)
	assert.False(t, workspace.BillableView)

	_, err = store.Workspace(99)
	assert.True(t, errors.Is(err, ErrWorkspaceNotFound))

	projects, err := store.ListProjects()
	require.NoError(t, err)
	require.Len(t, projects, 1)
	tasks, err := store.ListTasks()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
}

func TestSQLiteStore_EnsureWorkspaceKeepsExisting(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)

	require.NoError(t, store.EnsureWorkspace(1, "Personal"))
	require.NoError(t, store.UpsertWorkspace(model.Workspace{ID: 1, Name: "Home", BillableView: true}))
	require.NoError(t, store.EnsureWorkspace(1, "Personal"))

	workspace, err := store.Workspace(1)
	require.NoError(t, err)
	assert.Equal(t, "Home", workspace.Name)
	assert.True(t, workspace.BillableView)
}

package timerbar

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minitimer/internal/core/autocomplete"
	"minitimer/internal/core/events"
	"minitimer/internal/core/model"
	"minitimer/internal/core/timer"
)

type stubBridge struct {
	billableCalls []bool
	tagCalls      [][]string
}

func (bridge *stubBridge) FetchTags(uint64) {}
func (bridge *stubBridge) CanSeeBillable(uint64) bool { return false }
func (bridge *stubBridge) DefaultWorkspaceID() uint64 { return 1 }
func (bridge *stubBridge) UpdateDescription(string, string) {}
func (bridge *stubBridge) SetProject(string, uint64, uint64, string) {}
func (bridge *stubBridge) FormatDuration(seconds int64) string { return "formatted" }
func (bridge *stubBridge) SetBillable(_ string, billable bool) { bridge.billableCalls = append(bridge.billableCalls, billable) }
func (bridge *stubBridge) UpdateTags(_ string, tags []string) { bridge.tagCalls = append(bridge.tagCalls, tags) }

type windowHarness struct {
	bridge  *stubBridge
	bus     *events.Bus
	source  *autocomplete.Source
	binding *timer.Binding
	window  *Window
}

func newWindowHarness(t *testing.T) *windowHarness {
	t.Helper()
	app := test.NewTempApp(t)

	harness := &windowHarness{
		bridge: &stubBridge{},
		bus:    events.NewBus(events.Immediate),
		source: autocomplete.New(),
	}
	harness.binding = timer.New(timer.Deps{
		Bridge:      harness.bridge,
		Bus:         harness.bus,
		Suggestions: harness.source,
	}, model.TimerConfig{TickInterval: time.Hour})
	harness.window = New(app, harness.binding, harness.source, harness.bus)

	t.Cleanup(func() {
		harness.binding.Close()
		harness.window.Close()
	})
	return harness
}

func runningEntry() *model.TimeEntry {
	return &model.TimeEntry{
		GUID:           "te-1",
		Description:    "mockups",
		WorkspaceID:    2,
		ProjectLabel:   "Apollo",
		ClientLabel:    "NASA",
		ProjectColor:   "#06aaf5",
		Tags:           []string{"design"},
		Running:        true,
		Billable:       true,
		CanSeeBillable: true,
		Started:        time.Now(),
		Duration:       "0:01:00",
	}
}

func TestWindow_ShowsRunningEntry(t *testing.T) {
	harness := newWindowHarness(t)
	view := harness.window

	harness.bus.Publish(events.Event{Type: events.StateChanged, Entry: runningEntry()})

	assert.Equal(t, "Stop", view.startStop.Text)
	assert.Equal(t, "mockups", view.description.Text)
	assert.Equal(t, "0:01:00", view.duration.Text)
	assert.Equal(t, "design", view.tags.Text)
	assert.Equal(t, "Apollo - NASA", view.project.Text)
	assert.True(t, view.billable.Visible())
	assert.True(t, view.billable.Checked)
	assert.Empty(t, harness.bridge.billableCalls, "showing state must not echo back")
}

func TestWindow_StopResetsWidgets(t *testing.T) {
	harness := newWindowHarness(t)
	view := harness.window

	harness.bus.Publish(events.Event{Type: events.StateChanged, Entry: runningEntry()})
	harness.bus.Publish(events.Event{Type: events.StopRequested})

	assert.Equal(t, "Start", view.startStop.Text)
	assert.Equal(t, "", view.description.Text)
	assert.Equal(t, "", view.duration.Text)
	assert.Equal(t, noProject, view.project.Text)
	assert.False(t, view.billable.Visible())
}

func TestWindow_BillableToggleReachesBridge(t *testing.T) {
	harness := newWindowHarness(t)

	harness.bus.Publish(events.Event{Type: events.StateChanged, Entry: runningEntry()})
	harness.window.billable.SetChecked(false)

	require.Len(t, harness.bridge.billableCalls, 1)
	assert.False(t, harness.bridge.billableCalls[0])
	assert.Equal(t, model.BillableOff, harness.binding.Billable())
}

func TestWindow_TagsSubmitReachesBridge(t *testing.T) {
	harness := newWindowHarness(t)

	harness.bus.Publish(events.Event{Type: events.StateChanged, Entry: runningEntry()})
	harness.window.tags.OnSubmitted("design, meeting")

	require.Len(t, harness.bridge.tagCalls, 1)
	assert.Equal(t, []string{"design", "meeting"}, harness.bridge.tagCalls[0])
}

func TestWindow_TypingFiltersSuggestions(t *testing.T) {
	harness := newWindowHarness(t)
	harness.source.SetItems([]model.Suggestion{
		{WorkspaceID: 2, WorkspaceName: "Acme", Category: model.CategoryWorkspace},
		{Description: "mockups", WorkspaceID: 2, Category: model.CategoryTimeEntry},
		{Description: "review", WorkspaceID: 2, Category: model.CategoryTimeEntry},
	})

	test.Type(harness.window.description, "mock")

	assert.Equal(t, "mock", harness.binding.Description())
	assert.Equal(t, 2, harness.source.Len())
	assert.True(t, harness.window.list.Visible())

	harness.window.list.OnSelected(1)

	assert.Equal(t, "mockups", harness.binding.Description())
	assert.Equal(t, "mockups", harness.window.description.Text)
	assert.False(t, harness.window.list.Visible())
}

func TestWindow_ProjectPickerAppliesProject(t *testing.T) {
	harness := newWindowHarness(t)
	harness.window.SetProjects([]model.Suggestion{
		{WorkspaceName: "Acme", Category: model.CategoryWorkspace},
		{WorkspaceID: 2, ProjectID: 9, ProjectLabel: "Apollo", ProjectAndTaskLabel: "Apollo", Category: model.CategoryProject},
	})

	require.Equal(t, []string{"Apollo"}, harness.window.projects.Options)
	harness.window.projects.SetSelected("Apollo")

	project := harness.binding.Project()
	require.NotNil(t, project)
	assert.Equal(t, "Apollo", project.Label)
	assert.Equal(t, "Apollo", harness.window.project.Text)
}

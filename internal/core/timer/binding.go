package timer

import (
	"context"
	"slices"
	"time"

	"minitimer/internal/core/events"
	"minitimer/internal/core/model"
	"minitimer/internal/logging"
)

// Bridge is the tracking library the timer forwards changes to.
// Every call is fire-and-forget.
type Bridge interface {
	FetchTags(workspaceID uint64)
	CanSeeBillable(workspaceID uint64) bool
	DefaultWorkspaceID() uint64
	SetBillable(guid string, billable bool)
	UpdateTags(guid string, tags []string)
	UpdateDescription(guid string, description string)
	SetProject(guid string, taskID, projectID uint64, projectGUID string)
	FormatDuration(seconds int64) string
}

// SuggestionSource is the filterable description autocomplete list.
type SuggestionSource interface {
	SetFilter(text string)
	ClearFilter()
	Item(index int) (model.Suggestion, bool)
}

// Callbacks are invoked on the main context when a projection changes.
type Callbacks struct {
	OnRunningChanged          func(bool)
	OnDescriptionChanged      func(string)
	OnDurationChanged         func(string)
	OnTagsChanged             func([]string)
	OnTagSelected             func(bool)
	OnProjectSelected         func(*model.ProjectSummary)
	OnBillableChanged         func(model.BillableState)
	OnDescriptionFocusChanged func(bool)

	// IsEditingDescription reports whether the description field has focus.
	IsEditingDescription func() bool
}

// Deps are the collaborators of a Binding.
type Deps struct {
	Bridge      Bridge
	Bus         *events.Bus
	Suggestions SuggestionSource
	Dispatch    events.Dispatch
	Now         func() time.Time
	Logger      logging.Logger
}

// Binding is the timer bar's view of the current time entry. All methods
// must be called on the main sequencing context.
type Binding struct {
	bridge      Bridge
	bus         *events.Bus
	suggestions SuggestionSource
	now         func() time.Time
	log         logging.Logger
	callbacks   Callbacks

	entry              model.TimeEntry
	description        string
	duration           string
	running            bool
	billable           model.BillableState
	tags               []string
	project            *model.ProjectSummary
	descriptionFocused bool

	unsubscribe []func()
	ticker      *ticker
	closed      bool
}

// New creates a Binding, subscribes it to the bus and starts ticking.
func New(deps Deps, config model.TimerConfig) *Binding {
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	if deps.Dispatch == nil {
		deps.Dispatch = events.Immediate
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Bus == nil {
		deps.Bus = events.NewBus(deps.Dispatch)
	}

	binding := &Binding{
		bridge:      deps.Bridge,
		bus:         deps.Bus,
		suggestions: deps.Suggestions,
		now:         deps.Now,
		log:         deps.Logger.With("component", "timer"),
		billable:    model.BillableUnavailable,
	}

	binding.unsubscribe = []func(){
		binding.bus.Subscribe(events.StateChanged, func(event events.Event) {
			binding.updateTimerState(event.Entry)
		}),
		binding.bus.Subscribe(events.FocusRequested, func(events.Event) {
			binding.focusDescription(true)
		}),
		binding.bus.Subscribe(events.StopRequested, func(events.Event) {
			binding.onStop()
		}),
		binding.bus.Subscribe(events.StartRequested, func(events.Event) {
			binding.StartStop()
		}),
	}
	binding.ticker = startTicker(config.TickInterval, deps.Dispatch, binding.tick)

	return binding
}

// SetCallbacks replaces the view callbacks.
func (binding *Binding) SetCallbacks(callbacks Callbacks) {
	binding.callbacks = callbacks
}

// Close stops the ticker and drops all bus subscriptions.
func (binding *Binding) Close() {
	if binding.closed {
		return
	}
	binding.closed = true
	binding.ticker.stop()
	for _, unsubscribe := range binding.unsubscribe {
		unsubscribe()
	}
	binding.unsubscribe = nil
}

// Entry returns a copy of the displayed entry.
func (binding *Binding) Entry() model.TimeEntry {
	return binding.entry.Clone()
}

func (binding *Binding) Description() string { return binding.description }
func (binding *Binding) Duration() string { return binding.duration }
func (binding *Binding) Running() bool { return binding.running }
func (binding *Binding) Billable() model.BillableState { return binding.billable }
func (binding *Binding) Tags() []string { return slices.Clone(binding.tags) }
func (binding *Binding) Project() *model.ProjectSummary { return copySummary(binding.project) }
func (binding *Binding) DescriptionFocused() bool { return binding.descriptionFocused }
func (binding *Binding) Ticking() bool { return !binding.closed }

// StartStop stops the running entry or begins a new one from the current
// projection.
func (binding *Binding) StartStop() {
	if binding.entry.Running {
		binding.bus.Publish(events.Event{Type: events.CommandStop})
		return
	}

	draft := binding.entry.Clone()
	draft.Description = binding.description
	binding.bus.Publish(events.Event{Type: events.CommandCloseEditor})
	binding.bus.Publish(events.Event{Type: events.CommandBeginNewEntry, Entry: &draft})
	binding.focusDescription(false)

	if binding.suggestions != nil {
		binding.suggestions.ClearFilter()
	}
}

// PrepareData requests tags and resolves billable visibility for the
// current workspace.
func (binding *Binding) PrepareData() {
	binding.fetchTags()
	binding.updateBillableStatus()
}

// SetDescription records user input and filters the autocomplete list.
func (binding *Binding) SetDescription(description string) {
	binding.setDescription(description)
	if binding.suggestions != nil {
		binding.suggestions.SetFilter(description)
	}
}

// DescriptionDidEndEditing persists the description of a running entry.
func (binding *Binding) DescriptionDidEndEditing() {
	if binding.entry.Running && binding.entry.GUID != "" {
		binding.bridge.UpdateDescription(binding.entry.GUID, binding.description)
	}
}

// SetBillable records the billable toggle.
func (binding *Binding) SetBillable(isOn bool) {
	binding.setBillable(model.BillableFor(true, isOn))
}

// SetTags replaces the selected tags.
func (binding *Binding) SetTags(tags []string) {
	binding.setTags(tags)
}

func (binding *Binding) updateTimerState(next *model.TimeEntry) {
	if binding.closed {
		return
	}

	entry := model.TimeEntry{}
	if next != nil {
		entry = next.Clone()
	}

	isNewWorkspace := entry.WorkspaceID != binding.entry.WorkspaceID
	wasNotRunning := !binding.entry.Running

	binding.entry = entry

	binding.setRunning(entry.Running)
	duration := entry.Duration
	if duration == "" && entry.Running {
		duration = binding.bridge.FormatDuration(entry.ElapsedSeconds(binding.now()))
	}
	binding.setDuration(duration)
	binding.setTags(entry.Tags)

	if entry.Running {
		isEditing := true
		if binding.callbacks.IsEditingDescription != nil {
			isEditing = binding.callbacks.IsEditingDescription()
		}
		if binding.description == "" || wasNotRunning || !isEditing {
			binding.setDescription(entry.Description)
		}
	}
	binding.entry.Description = binding.description

	binding.setProject(model.SummaryOf(binding.entry))

	if isNewWorkspace {
		binding.fetchTags()
	}
	binding.updateBillableStatus()

	binding.log.Debug(context.Background(), "timer state updated",
		"guid", entry.GUID, "running", entry.Running, "workspace", entry.WorkspaceID)
}

func (binding *Binding) onStop() {
	if binding.closed {
		return
	}

	// The entry may have been stopped by a shortcut before the field synced.
	if binding.description != "" && binding.entry.GUID != "" {
		binding.bridge.UpdateDescription(binding.entry.GUID, binding.description)
	}

	binding.entry = model.TimeEntry{}

	binding.setRunning(false)
	binding.setDescription("")
	binding.setDuration("")
	binding.setTags(nil)
	binding.updateBillableStatus()
	binding.focusDescription(true)
	binding.setProject(nil)
}

func (binding *Binding) workspaceID() uint64 {
	if binding.entry.WorkspaceID > 0 {
		return binding.entry.WorkspaceID
	}
	return binding.bridge.DefaultWorkspaceID()
}

func (binding *Binding) fetchTags() {
	binding.bridge.FetchTags(binding.workspaceID())
}

func (binding *Binding) updateBillableStatus() {
	visible := binding.entry.Running && (binding.entry.CanSeeBillable || binding.entry.Billable)
	if !visible {
		visible = binding.bridge.CanSeeBillable(binding.workspaceID())
	}
	binding.setBillable(model.BillableFor(visible, binding.entry.Billable))
}

func (binding *Binding) setDescription(description string) {
	if description == binding.description {
		return
	}
	binding.description = description
	binding.entry.Description = description
	if binding.callbacks.OnDescriptionChanged != nil {
		binding.callbacks.OnDescriptionChanged(description)
	}
}

func (binding *Binding) setDuration(duration string) {
	binding.entry.Duration = duration
	if duration == binding.duration {
		return
	}
	binding.duration = duration
	if binding.callbacks.OnDurationChanged != nil {
		binding.callbacks.OnDurationChanged(duration)
	}
}

func (binding *Binding) setRunning(running bool) {
	if running == binding.running {
		return
	}
	binding.running = running
	if binding.callbacks.OnRunningChanged != nil {
		binding.callbacks.OnRunningChanged(running)
	}
}

// setBillable keeps the entry flag in line with state even when the state
// itself does not change; only a state change is reported to the view.
func (binding *Binding) setBillable(state model.BillableState) {
	isBillable := state == model.BillableOn
	if binding.entry.Billable != isBillable {
		binding.entry.Billable = isBillable
		if binding.entry.Running && binding.entry.GUID != "" {
			binding.bridge.SetBillable(binding.entry.GUID, isBillable)
		}
	}

	if state == binding.billable {
		return
	}
	binding.billable = state
	if binding.callbacks.OnBillableChanged != nil {
		binding.callbacks.OnBillableChanged(state)
	}
}

func (binding *Binding) setTags(tags []string) {
	if !slices.Equal(binding.entry.Tags, tags) {
		binding.entry.Tags = slices.Clone(tags)
		if binding.entry.Running && binding.entry.GUID != "" {
			binding.bridge.UpdateTags(binding.entry.GUID, slices.Clone(tags))
		}
	}

	if slices.Equal(binding.tags, tags) {
		return
	}
	hadTags := len(binding.tags) > 0
	binding.tags = slices.Clone(tags)
	if binding.callbacks.OnTagsChanged != nil {
		binding.callbacks.OnTagsChanged(slices.Clone(binding.tags))
	}
	if hasTags := len(binding.tags) > 0; hasTags != hadTags && binding.callbacks.OnTagSelected != nil {
		binding.callbacks.OnTagSelected(hasTags)
	}
}

func (binding *Binding) setProject(project *model.ProjectSummary) {
	if sameSummary(project, binding.project) {
		return
	}
	binding.project = copySummary(project)
	if binding.callbacks.OnProjectSelected != nil {
		binding.callbacks.OnProjectSelected(copySummary(project))
	}
}

// focusDescription always reports: the view may lose focus without telling us.
func (binding *Binding) focusDescription(focused bool) {
	binding.descriptionFocused = focused
	if binding.callbacks.OnDescriptionFocusChanged != nil {
		binding.callbacks.OnDescriptionFocusChanged(focused)
	}
}

func sameSummary(left, right *model.ProjectSummary) bool {
	if left == nil || right == nil {
		return left == right
	}
	return *left == *right
}

func copySummary(summary *model.ProjectSummary) *model.ProjectSummary {
	if summary == nil {
		return nil
	}
	copied := *summary
	return &copied
}

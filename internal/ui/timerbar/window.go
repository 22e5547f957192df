// Package timerbar is the timer window: description field with autocomplete,
// running duration, start/stop, billable toggle, tags and project.
package timerbar

import (
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"minitimer/internal/core/autocomplete"
	"minitimer/internal/core/events"
	"minitimer/internal/core/model"
	"minitimer/internal/core/timer"
)

const noProject = "No project"

// Window shows the timer binding. All methods run on the Fyne main thread.
type Window struct {
	window      fyne.Window
	binding     *timer.Binding
	suggestions *autocomplete.Source
	unsubscribe []func()

	description *descriptionEntry
	list        *widget.List
	duration    *widget.Label
	startStop   *widget.Button
	billable    *widget.Check
	tags        *widget.SelectEntry
	tagIcon     *widget.Icon
	project     *canvas.Text
	projects    *widget.Select

	projectRows map[string]model.Suggestion

	// updating is set while binding callbacks write into widgets so their
	// change handlers do not echo the value back.
	updating bool
}

// New builds the timer window and wires it to binding.
func New(app fyne.App, binding *timer.Binding, suggestions *autocomplete.Source, bus *events.Bus) *Window {
	timerWindow := &Window{
		window:      app.NewWindow("MiniTimer"),
		binding:     binding,
		suggestions: suggestions,
		projectRows: make(map[string]model.Suggestion),
	}

	timerWindow.buildWidgets()
	timerWindow.layout()

	binding.SetCallbacks(timer.Callbacks{
		OnRunningChanged:          timerWindow.showRunning,
		OnDescriptionChanged:      timerWindow.showDescription,
		OnDurationChanged:         timerWindow.duration.SetText,
		OnTagsChanged:             timerWindow.showTags,
		OnTagSelected:             timerWindow.showTagSelected,
		OnProjectSelected:         timerWindow.showProject,
		OnBillableChanged:         timerWindow.showBillable,
		OnDescriptionFocusChanged: timerWindow.focusDescription,
		IsEditingDescription:      timerWindow.isEditingDescription,
	})

	suggestions.OnChange(func([]model.Suggestion) {
		timerWindow.refreshSuggestions()
	})

	if bus != nil {
		timerWindow.unsubscribe = []func(){
			bus.Subscribe(events.CommandCloseEditor, func(events.Event) {
				timerWindow.hideSuggestions()
			}),
			bus.Subscribe(events.TagsLoaded, func(event events.Event) {
				timerWindow.tags.SetOptions(event.Tags)
			}),
		}
	}

	timerWindow.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyS,
		Modifier: fyne.KeyModifierShortcutDefault,
	}, func(fyne.Shortcut) {
		if binding.Running() {
			binding.StartStop()
		}
	})
	timerWindow.window.SetCloseIntercept(timerWindow.window.Hide)
	timerWindow.window.Resize(fyne.NewSize(520, 120))

	return timerWindow
}

func (timerWindow *Window) buildWidgets() {
	binding := timerWindow.binding

	timerWindow.description = newDescriptionEntry()
	timerWindow.description.SetPlaceHolder("What are you doing?")
	timerWindow.description.OnChanged = func(text string) {
		if timerWindow.updating {
			return
		}
		binding.SetDescription(text)
	}
	timerWindow.description.OnSubmitted = func(string) {
		if binding.Running() {
			binding.DescriptionDidEndEditing()
			return
		}
		binding.StartStop()
	}
	timerWindow.description.onFocusLost = binding.DescriptionDidEndEditing

	timerWindow.list = widget.NewList(
		timerWindow.suggestions.Len,
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, item fyne.CanvasObject) {
			suggestion, ok := timerWindow.suggestions.Item(id)
			if !ok {
				return
			}
			label := item.(*widget.Label)
			label.TextStyle = fyne.TextStyle{Bold: !suggestion.Selectable()}
			label.SetText(SuggestionLabel(suggestion))
		},
	)
	timerWindow.list.OnSelected = func(id widget.ListItemID) {
		timerWindow.list.UnselectAll()
		if binding.SelectSuggestion(id) {
			timerWindow.hideSuggestions()
		}
	}
	timerWindow.list.Hide()

	timerWindow.duration = widget.NewLabel("")
	timerWindow.duration.TextStyle = fyne.TextStyle{Monospace: true}

	timerWindow.startStop = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), binding.StartStop)
	timerWindow.startStop.Importance = widget.HighImportance

	timerWindow.billable = widget.NewCheck("Billable", func(checked bool) {
		if timerWindow.updating {
			return
		}
		binding.SetBillable(checked)
	})
	timerWindow.billable.Hide()

	timerWindow.tags = widget.NewSelectEntry(nil)
	timerWindow.tags.SetPlaceHolder("tags, comma separated")
	timerWindow.tags.OnSubmitted = func(text string) {
		binding.SetTags(ParseTags(text))
	}
	timerWindow.tagIcon = widget.NewIcon(theme.CheckButtonIcon())

	timerWindow.project = canvas.NewText(noProject, theme.Color(theme.ColorNameDisabled))
	timerWindow.projects = widget.NewSelect(nil, func(label string) {
		if timerWindow.updating {
			return
		}
		if row, ok := timerWindow.projectRows[label]; ok {
			binding.ApplyProject(row)
		}
	})
	timerWindow.projects.PlaceHolder = "Assign project"
}

func (timerWindow *Window) layout() {
	top := container.NewBorder(nil, nil, nil,
		container.NewHBox(timerWindow.duration, timerWindow.startStop),
		timerWindow.description,
	)
	details := container.NewHBox(
		timerWindow.project,
		timerWindow.projects,
		timerWindow.billable,
		timerWindow.tagIcon,
	)
	timerWindow.window.SetContent(container.NewBorder(
		container.NewVBox(top, details, timerWindow.tags),
		nil, nil, nil,
		timerWindow.list,
	))
}

// Show brings the timer window forward.
func (timerWindow *Window) Show() {
	timerWindow.window.Show()
	timerWindow.window.RequestFocus()
}

// Close detaches the window from the bus and closes it.
func (timerWindow *Window) Close() {
	for _, unsubscribe := range timerWindow.unsubscribe {
		unsubscribe()
	}
	timerWindow.unsubscribe = nil
	timerWindow.window.Close()
}

// SetProjects replaces the rows offered by the project picker.
func (timerWindow *Window) SetProjects(rows []model.Suggestion) {
	timerWindow.projectRows = make(map[string]model.Suggestion)
	options := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Category != model.CategoryProject && row.Category != model.CategoryTask {
			continue
		}
		label := SuggestionLabel(row)
		if _, exists := timerWindow.projectRows[label]; exists {
			continue
		}
		timerWindow.projectRows[label] = row
		options = append(options, label)
	}
	timerWindow.projects.SetOptions(options)
}

func (timerWindow *Window) showRunning(running bool) {
	if running {
		timerWindow.startStop.SetText("Stop")
		timerWindow.startStop.SetIcon(theme.MediaStopIcon())
		timerWindow.startStop.Importance = widget.DangerImportance
	} else {
		timerWindow.startStop.SetText("Start")
		timerWindow.startStop.SetIcon(theme.MediaPlayIcon())
		timerWindow.startStop.Importance = widget.HighImportance
	}
	timerWindow.startStop.Refresh()
}

func (timerWindow *Window) showDescription(description string) {
	if timerWindow.description.Text == description {
		return
	}
	timerWindow.withoutEcho(func() {
		timerWindow.description.SetText(description)
	})
}

func (timerWindow *Window) showTags(tags []string) {
	timerWindow.tags.SetText(strings.Join(tags, ", "))
}

func (timerWindow *Window) showTagSelected(selected bool) {
	if selected {
		timerWindow.tagIcon.SetResource(theme.CheckButtonCheckedIcon())
		return
	}
	timerWindow.tagIcon.SetResource(theme.CheckButtonIcon())
}

func (timerWindow *Window) showProject(project *model.ProjectSummary) {
	if project == nil {
		timerWindow.project.Text = noProject
		timerWindow.project.Color = theme.Color(theme.ColorNameDisabled)
		timerWindow.withoutEcho(timerWindow.projects.ClearSelected)
	} else {
		timerWindow.project.Text = project.Title()
		timerWindow.project.Color = ProjectColor(project.Color)
	}
	timerWindow.project.Refresh()
}

func (timerWindow *Window) showBillable(state model.BillableState) {
	if state == model.BillableUnavailable {
		timerWindow.billable.Hide()
		return
	}
	timerWindow.withoutEcho(func() {
		timerWindow.billable.SetChecked(state == model.BillableOn)
	})
	timerWindow.billable.Show()
}

func (timerWindow *Window) focusDescription(focused bool) {
	windowCanvas := timerWindow.window.Canvas()
	if focused {
		windowCanvas.Focus(timerWindow.description)
		return
	}
	if timerWindow.isEditingDescription() {
		windowCanvas.Unfocus()
	}
	timerWindow.hideSuggestions()
}

func (timerWindow *Window) isEditingDescription() bool {
	return timerWindow.window.Canvas().Focused() == fyne.Focusable(timerWindow.description)
}

func (timerWindow *Window) refreshSuggestions() {
	if timerWindow.suggestions.Filter() == "" || timerWindow.suggestions.Len() == 0 {
		timerWindow.hideSuggestions()
		return
	}
	timerWindow.list.Refresh()
	timerWindow.list.Show()
}

func (timerWindow *Window) hideSuggestions() {
	timerWindow.list.Hide()
}

func (timerWindow *Window) withoutEcho(fn func()) {
	timerWindow.updating = true
	defer func() { timerWindow.updating = false }()
	fn()
}

// descriptionEntry reports focus loss so edits are saved when the user
// leaves the field.
type descriptionEntry struct {
	widget.Entry
	onFocusLost func()
}

func newDescriptionEntry() *descriptionEntry {
	entry := &descriptionEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

func (entry *descriptionEntry) FocusLost() {
	entry.Entry.FocusLost()
	if entry.onFocusLost != nil {
		entry.onFocusLost()
	}
}

// ProjectColor parses a "#rrggbb" project color, falling back to the
// theme's foreground color.
func ProjectColor(hex string) color.Color {
	if parsed, ok := ParseHexColor(hex); ok {
		return parsed
	}
	return theme.Color(theme.ColorNameForeground)
}

package preferences

import (
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window        fyne.Window
	settings      Settings
	onSave        func(Settings)
	databasePath  *widget.Entry
	workspace     *widget.Entry
	format        *widget.Select
	recentEntries *widget.Entry
	debug         *widget.Check
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("MiniTimer Settings")

	databasePath := widget.NewEntry()
	databasePath.SetPlaceHolder("minitimer.db beside the settings file")
	workspace := widget.NewEntry()
	format := widget.NewSelect([]string{FormatImproved, FormatDecimal}, nil)
	recentEntries := widget.NewEntry()
	debug := widget.NewCheck("Debug logging", nil)

	form := container.NewVBox(
		widget.NewLabelWithStyle("General", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Database file (applies after restart)"),
		databasePath,
		container.NewHBox(widget.NewLabel("Default workspace"), workspace),
		container.NewHBox(widget.NewLabel("Duration format"), format),
		container.NewHBox(widget.NewLabel("Autocomplete entries"), recentEntries),
		debug,
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", func() {
		window.Hide()
	})
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(420, 320))
	window.SetCloseIntercept(window.Hide)

	prefs := &Window{
		window:        window,
		onSave:        onSave,
		databasePath:  databasePath,
		workspace:     workspace,
		format:        format,
		recentEntries: recentEntries,
		debug:         debug,
	}
	prefs.UpdateSettings(settings)
	saveButton.OnTapped = prefs.handleSave

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.databasePath.SetText(settings.DatabasePath)
	prefs.workspace.SetText(strconv.FormatUint(settings.DefaultWorkspaceID, 10))
	prefs.format.SetSelected(settings.DurationFormat)
	prefs.recentEntries.SetText(strconv.Itoa(settings.RecentEntries))
	prefs.debug.SetChecked(settings.Debug)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if path := strings.TrimSpace(prefs.databasePath.Text); path != "" {
		settings.DatabasePath = path
	}
	if id, err := strconv.ParseUint(strings.TrimSpace(prefs.workspace.Text), 10, 64); err == nil && id > 0 {
		settings.DefaultWorkspaceID = id
	}
	if prefs.format.Selected != "" {
		settings.DurationFormat = prefs.format.Selected
	}
	if count, ok := parsePositiveInt(prefs.recentEntries.Text); ok {
		settings.RecentEntries = count
	}
	settings.Debug = prefs.debug.Checked

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}

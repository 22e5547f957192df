package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"minitimer/internal/core/model"
)

const menuTitle = "MiniTimer"

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnStartStop   func()
	OnShowTimer   func()
	OnPreferences func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app           desktop.App
	statusItem    *fyne.MenuItem
	startStopItem *fyne.MenuItem
	callbacks     Callbacks
	running       bool
	statusLabel   string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:         app,
		callbacks:   callbacks,
		statusLabel: "no timer running",
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true

	manager.startStopItem = fyne.NewMenuItem("Start timer", func() {
		if manager.callbacks.OnStartStop != nil {
			manager.callbacks.OnStartStop()
		}
	})

	manager.refreshStatus()
	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	if status == manager.statusLabel {
		return
	}
	manager.statusLabel = status
	manager.refreshStatus()
}

// SetRunning flips the start/stop item.
func (manager *Manager) SetRunning(running bool) {
	if running == manager.running {
		return
	}
	manager.running = running
	if running {
		manager.startStopItem.Label = "Stop timer"
	} else {
		manager.startStopItem.Label = "Start timer"
	}
	manager.refreshMenu()
}

// Update reflects entry in the status line and the start/stop item.
func (manager *Manager) Update(entry *model.TimeEntry) {
	manager.SetRunning(entry != nil && entry.Running)
	manager.SetStatus(StatusText(entry))
}

// StatusText describes the tracked entry for the tray status line.
func StatusText(entry *model.TimeEntry) string {
	if entry == nil || !entry.Running {
		return "no timer running"
	}
	description := entry.Description
	if description == "" {
		description = "(no description)"
	}
	if entry.Duration == "" {
		return description
	}
	return fmt.Sprintf("%s %s", description, entry.Duration)
}

func (manager *Manager) refreshStatus() {
	manager.statusItem.Label = fmt.Sprintf("Status: %s", manager.statusLabel)
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu(menuTitle,
		manager.statusItem,
		manager.startStopItem,
		fyne.NewMenuItem("Show timer", func() {
			if manager.callbacks.OnShowTimer != nil {
				manager.callbacks.OnShowTimer()
			}
		}),
		fyne.NewMenuItem("Preferences", func() {
			if manager.callbacks.OnPreferences != nil {
				manager.callbacks.OnPreferences()
			}
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	))
}

// Package app runs the desktop timer: tray, timer window and preferences
// wired to the local tracker.
package app

import (
	"context"
	"errors"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"

	"minitimer/internal/core/autocomplete"
	"minitimer/internal/core/events"
	"minitimer/internal/core/timer"
	"minitimer/internal/logging"
	"minitimer/internal/platform"
	"minitimer/internal/storage"
	"minitimer/internal/tracker"
	"minitimer/internal/ui/preferences"
	"minitimer/internal/ui/timerbar"
	"minitimer/internal/ui/tray"
	"minitimer/resources"
)

const (
	AppName = "minitimer"
	appID   = "com.minitimer.app"
)

// Run starts the desktop app and blocks until it quits.
func Run(configPath, databasePath string) error {
	guard, err := platform.AcquireSingleInstance(AppName)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		return platform.ActivateRunning(AppName)
	}
	if err != nil {
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	settings, configPath, err := storage.ResolveSettings(AppName, configPath, databasePath)
	if err != nil {
		return err
	}
	logger := logging.NewTextLogger(os.Stderr, settings.Debug)
	ctx := context.Background()

	store, err := storage.OpenSQLite(settings.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.EnsureWorkspace(settings.DefaultWorkspaceID, "Personal"); err != nil {
		return err
	}

	fyneApp := fyneapp.NewWithID(appID)
	idleIcon := resources.MustLogo(resources.LogoIdle)
	runningIcon := resources.MustLogo(resources.LogoRunning)
	fyneApp.SetIcon(idleIcon)

	bus := events.NewBus(fyne.Do)
	timeTracker := tracker.New(store, bus, tracker.OptionsFromSettings(settings), logger)
	defer timeTracker.Close()

	suggestions := autocomplete.New()
	binding := timer.New(timer.Deps{
		Bridge:      timeTracker,
		Bus:         bus,
		Suggestions: suggestions,
		Dispatch:    fyne.Do,
		Logger:      logger,
	}, settings.TimerConfig())
	defer binding.Close()

	timerWindow := timerbar.New(fyneApp, binding, suggestions, bus)

	reloadSuggestions := func() {
		rows, err := timeTracker.Suggestions()
		if err != nil {
			logger.Error(ctx, "load suggestions failed", "error", err)
			return
		}
		suggestions.SetItems(rows)
		timerWindow.SetProjects(rows)
	}

	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		if err := storage.SaveSettingsFile(configPath, updated); err != nil {
			logger.Error(ctx, "save settings failed", "error", err)
			return
		}
		settings = updated
		timeTracker.SetOptions(tracker.OptionsFromSettings(settings))
		reloadSuggestions()
	})

	showTimer := func() {
		timerWindow.Show()
		bus.Publish(events.Event{Type: events.FocusRequested})
	}
	guard.OnActivate(func() {
		fyne.Do(showTimer)
	})

	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager := tray.New(desktopApp, tray.Callbacks{
			OnStartStop: func() {
				bus.Publish(events.Event{Type: events.StartRequested})
			},
			OnShowTimer:   showTimer,
			OnPreferences: prefsWindow.Show,
			OnQuit:        fyneApp.Quit,
		})
		desktopApp.SetSystemTrayIcon(idleIcon)

		bus.Subscribe(events.StateChanged, func(event events.Event) {
			trayManager.Update(event.Entry)
			if event.Entry != nil && event.Entry.Running {
				desktopApp.SetSystemTrayIcon(runningIcon)
			} else {
				desktopApp.SetSystemTrayIcon(idleIcon)
			}
		})
		bus.Subscribe(events.Tick, func(events.Event) {
			entry := binding.Entry()
			trayManager.Update(&entry)
		})
	} else {
		logger.Warn(ctx, "system tray unsupported on this platform")
	}

	bus.Subscribe(events.StateChanged, func(events.Event) {
		reloadSuggestions()
	})

	fyneApp.Lifecycle().SetOnStarted(func() {
		reloadSuggestions()
		binding.PrepareData()
		timeTracker.Publish()
		showTimer()
	})

	logger.Info(ctx, "minitimer started", "database", settings.DatabasePath)
	fyneApp.Run()
	return nil
}

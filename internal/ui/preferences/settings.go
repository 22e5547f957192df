package preferences

import (
	"time"

	"minitimer/internal/core/model"
)

// Duration display formats understood by the tracker.
const (
	FormatImproved = "improved"
	FormatDecimal  = "decimal"
)

// Settings defines editable user preferences.
type Settings struct {
	DatabasePath       string
	DefaultWorkspaceID uint64
	DurationFormat     string
	RecentEntries      int
	Debug              bool
}

// DefaultSettings returns default settings for minitimer.
func DefaultSettings() Settings {
	return Settings{
		DatabasePath:       "",
		DefaultWorkspaceID: 1,
		DurationFormat:     FormatImproved,
		RecentEntries:      50,
		Debug:              false,
	}
}

// TimerConfig converts settings to the timer binding configuration.
func (settings Settings) TimerConfig() model.TimerConfig {
	return model.TimerConfig{
		TickInterval: time.Second,
	}
}

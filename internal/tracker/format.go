package tracker

import (
	"fmt"
	"strings"
)

// FormatDuration renders seconds in the given display format.
// Unknown formats fall back to "improved" (H:MM:SS).
func FormatDuration(seconds int64, format string) string {
	if seconds < 0 {
		seconds = 0
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "decimal":
		return fmt.Sprintf("%.2f h", float64(seconds)/3600)
	default:
		hours := seconds / 3600
		minutes := (seconds % 3600) / 60
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds%60)
	}
}

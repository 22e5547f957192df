// Package export writes stored time entries to spreadsheet files.
package export

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"minitimer/internal/core/model"
)

type Writer interface {
	Write(path string, entries []model.TimeEntry) error
}

var headers = []string{"GUID", "Start", "Stop", "Duration", "Seconds", "Description", "Workspace", "Project", "Task", "Client", "Billable", "Tags"}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// DetectFormat infers the output format from a file extension, defaulting to csv.
func DetectFormat(path string) string {
	switch strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".") {
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

func row(entry model.TimeEntry) []string {
	stopped := ""
	if !entry.Running && !entry.Stopped.IsZero() {
		stopped = entry.Stopped.Format(time.RFC3339)
	}
	return []string{
		entry.GUID,
		entry.Started.Format(time.RFC3339),
		stopped,
		entry.Duration,
		strconv.FormatInt(entry.DurationSeconds, 10),
		entry.Description,
		strconv.FormatUint(entry.WorkspaceID, 10),
		entry.ProjectLabel,
		entry.TaskLabel,
		entry.ClientLabel,
		strconv.FormatBool(entry.Billable),
		strings.Join(entry.Tags, ", "),
	}
}

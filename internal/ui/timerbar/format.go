package timerbar

import (
	"image/color"
	"strconv"
	"strings"

	"minitimer/internal/core/model"
)

// ParseHexColor parses "#rgb" and "#rrggbb" colors.
func ParseHexColor(hex string) (color.NRGBA, bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, false
	}
	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{
		R: uint8(value >> 16),
		G: uint8(value >> 8),
		B: uint8(value),
		A: 0xff,
	}, true
}

// ParseTags splits comma separated input, dropping blanks and duplicates.
func ParseTags(text string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(text, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// SuggestionLabel is the text of an autocomplete row.
func SuggestionLabel(suggestion model.Suggestion) string {
	switch suggestion.Category {
	case model.CategoryWorkspace:
		return suggestion.WorkspaceName
	case model.CategoryProject, model.CategoryTask:
		if suggestion.ClientLabel == "" {
			return suggestion.ProjectAndTaskLabel
		}
		return suggestion.ProjectAndTaskLabel + " - " + suggestion.ClientLabel
	}
	if suggestion.ProjectAndTaskLabel == "" {
		return suggestion.Description
	}
	return suggestion.Description + " · " + suggestion.ProjectAndTaskLabel
}

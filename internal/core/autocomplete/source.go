// Package autocomplete holds the description suggestion list shown under
// the timer's description field.
package autocomplete

import (
	"strings"
	"sync"

	"minitimer/internal/core/model"
)

// Source is an ordered suggestion list filtered by the text being typed.
type Source struct {
	mu       sync.Mutex
	items    []model.Suggestion
	filter   string
	filtered []model.Suggestion
	onChange func([]model.Suggestion)
}

// New creates an empty source.
func New() *Source {
	return &Source{}
}

// OnChange registers a callback fired with the filtered rows after every
// change. It is called without the lock held.
func (source *Source) OnChange(handler func([]model.Suggestion)) {
	source.mu.Lock()
	source.onChange = handler
	source.mu.Unlock()
}

// SetItems replaces the full list and re-applies the current filter.
func (source *Source) SetItems(items []model.Suggestion) {
	source.mu.Lock()
	source.items = append([]model.Suggestion(nil), items...)
	source.refilterLocked()
	source.notify()
}

// SetFilter narrows the list to rows matching text.
func (source *Source) SetFilter(text string) {
	source.mu.Lock()
	source.filter = text
	source.refilterLocked()
	source.notify()
}

// ClearFilter shows the full list again.
func (source *Source) ClearFilter() {
	source.SetFilter("")
}

// Filter returns the active filter text.
func (source *Source) Filter() string {
	source.mu.Lock()
	defer source.mu.Unlock()
	return source.filter
}

// Items returns the filtered rows.
func (source *Source) Items() []model.Suggestion {
	source.mu.Lock()
	defer source.mu.Unlock()
	return append([]model.Suggestion(nil), source.filtered...)
}

// Len returns the number of filtered rows.
func (source *Source) Len() int {
	source.mu.Lock()
	defer source.mu.Unlock()
	return len(source.filtered)
}

// Item returns the filtered row at index.
func (source *Source) Item(index int) (model.Suggestion, bool) {
	source.mu.Lock()
	defer source.mu.Unlock()
	if index < 0 || index >= len(source.filtered) {
		return model.Suggestion{}, false
	}
	return source.filtered[index], true
}

// notify releases the lock taken by the caller before invoking the handler.
func (source *Source) notify() {
	handler := source.onChange
	rows := append([]model.Suggestion(nil), source.filtered...)
	source.mu.Unlock()
	if handler != nil {
		handler(rows)
	}
}

func (source *Source) refilterLocked() {
	words := strings.Fields(strings.ToLower(source.filter))

	filtered := make([]model.Suggestion, 0, len(source.items))
	var header *model.Suggestion
	for index := range source.items {
		item := source.items[index]
		if item.Category == model.CategoryWorkspace {
			header = &source.items[index]
			continue
		}
		if !matches(item.Text(), words) {
			continue
		}
		if header != nil {
			filtered = append(filtered, *header)
			header = nil
		}
		filtered = append(filtered, item)
	}
	source.filtered = filtered
}

func matches(text string, words []string) bool {
	if len(words) == 0 {
		return true
	}
	text = strings.ToLower(text)
	for _, word := range words {
		if !strings.Contains(text, word) {
			return false
		}
	}
	return true
}

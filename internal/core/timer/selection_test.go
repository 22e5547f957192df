package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minitimer/internal/core/model"
)

func apolloSuggestion() model.Suggestion {
	return model.Suggestion{
		Description:         "Sprint planning",
		WorkspaceID:         5,
		ProjectID:           42,
		TaskID:              7,
		ProjectGUID:         "proj-guid",
		ProjectLabel:        "Apollo",
		TaskLabel:           "Planning",
		ProjectAndTaskLabel: "Planning. Apollo",
		ProjectColor:        "#4dc3ff",
		Tags:                []string{"meeting"},
		Category:            model.CategoryTimeEntry,
	}
}

func TestApplySuggestion_ReplacesDescriptionWhenPresent(t *testing.T) {
	h := newHarness(t)
	h.binding.SetDescription("typed")

	require.True(t, h.binding.ApplySuggestion(apolloSuggestion()))
	assert.Equal(t, "Sprint planning", h.binding.Description())
	assert.Equal(t, "Sprint planning", h.binding.Entry().Description)

	withoutDescription := apolloSuggestion()
	withoutDescription.Description = ""
	withoutDescription.Category = model.CategoryProject
	require.True(t, h.binding.ApplySuggestion(withoutDescription))
	assert.Equal(t, "Sprint planning", h.binding.Description())
}

func TestApplySuggestion_OverwritesProjectAndReplacesTags(t *testing.T) {
	h := newHarness(t)
	entry := &model.TimeEntry{GUID: "a", WorkspaceID: 5, Tags: []string{"old", "other"}}
	h.deliver(entry)

	h.binding.ApplySuggestion(apolloSuggestion())

	got := h.binding.Entry()
	assert.Equal(t, uint64(42), got.ProjectID)
	assert.Equal(t, uint64(7), got.TaskID)
	assert.Equal(t, "Apollo", got.ProjectLabel)
	assert.Equal(t, []string{"meeting"}, h.binding.Tags())
	require.NotNil(t, h.binding.Project())
	assert.Equal(t, "Planning. Apollo", h.binding.Project().Title())
	assert.Empty(t, h.bridge.projects)
	assert.Empty(t, h.bridge.tagUpdates)
}

func TestApplySuggestion_BillableStaysUnavailableWithoutCapability(t *testing.T) {
	h := newHarness(t)
	h.deliver(&model.TimeEntry{GUID: "a", WorkspaceID: 5})
	require.Equal(t, model.BillableUnavailable, h.binding.Billable())

	suggestion := apolloSuggestion()
	suggestion.Billable = true
	h.binding.ApplySuggestion(suggestion)

	assert.Equal(t, model.BillableUnavailable, h.binding.Billable())
	assert.False(t, h.binding.Entry().Billable)
	assert.Equal(t, []uint64{5}, h.bridge.fetchedTags)
}

func TestApplySuggestion_UsesEntryCapabilityWithinWorkspace(t *testing.T) {
	h := newHarness(t)
	h.deliver(&model.TimeEntry{GUID: "a", WorkspaceID: 5, CanSeeBillable: true})

	suggestion := apolloSuggestion()
	suggestion.Billable = true
	h.binding.ApplySuggestion(suggestion)

	assert.Equal(t, model.BillableOn, h.binding.Billable())
}

func TestApplySuggestion_WorkspaceSwitchLooksUpCapability(t *testing.T) {
	h := newHarness(t)
	h.bridge.canSeeBillable[8] = true
	h.deliver(&model.TimeEntry{GUID: "a", WorkspaceID: 5})

	suggestion := apolloSuggestion()
	suggestion.WorkspaceID = 8
	suggestion.Billable = true
	h.binding.ApplySuggestion(suggestion)

	assert.Equal(t, model.BillableOn, h.binding.Billable())
	assert.True(t, h.binding.Entry().CanSeeBillable)
	assert.Equal(t, []uint64{5, 8}, h.bridge.fetchedTags)
	assert.Equal(t, []string{"meeting"}, h.binding.Tags())
}

func TestApplySuggestion_RunningEntryPushesProjectAndTags(t *testing.T) {
	h := newHarness(t)
	h.deliver(runningEntry("guid-1", "x"))

	h.binding.ApplySuggestion(apolloSuggestion())

	assert.Equal(t, []string{"guid-1:7:42:proj-guid"}, h.bridge.projects)
	assert.Equal(t, [][]string{{"meeting"}}, h.bridge.tagUpdates)
}

func TestApplySuggestion_IgnoresWorkspaceHeader(t *testing.T) {
	h := newHarness(t)

	header := model.Suggestion{WorkspaceName: "Acme", WorkspaceID: 3, Category: model.CategoryWorkspace}

	assert.False(t, h.binding.ApplySuggestion(header))
	assert.False(t, h.binding.ApplyProject(header))
	assert.Zero(t, h.binding.Entry().WorkspaceID)
}

func TestApplyProject_WorkspaceSwitchClearsTags(t *testing.T) {
	h := newHarness(t)
	h.bridge.canSeeBillable[8] = true
	h.deliver(&model.TimeEntry{GUID: "a", WorkspaceID: 5, Tags: []string{"meeting"}})

	project := apolloSuggestion()
	project.WorkspaceID = 8
	project.Category = model.CategoryProject
	h.binding.ApplyProject(project)

	assert.Empty(t, h.binding.Tags())
	assert.Equal(t, model.BillableOff, h.binding.Billable())
	assert.Equal(t, []uint64{5, 8}, h.bridge.fetchedTags)
}

func TestApplyProject_SameWorkspaceKeepsTagsAndDescription(t *testing.T) {
	h := newHarness(t)
	h.deliver(&model.TimeEntry{GUID: "a", WorkspaceID: 5, Tags: []string{"meeting"}})
	h.binding.SetDescription("typed")

	h.binding.ApplyProject(apolloSuggestion())

	assert.Equal(t, []string{"meeting"}, h.binding.Tags())
	assert.Equal(t, "typed", h.binding.Description())
	assert.Equal(t, uint64(42), h.binding.Entry().ProjectID)
}

func TestSelectSuggestion_AppliesFilteredRowAndClearsFilter(t *testing.T) {
	h := newHarness(t)
	h.suggestions.items = []model.Suggestion{
		{WorkspaceName: "Acme", Category: model.CategoryWorkspace},
		apolloSuggestion(),
	}

	assert.False(t, h.binding.SelectSuggestion(0))
	assert.False(t, h.binding.SelectSuggestion(5))
	assert.Zero(t, h.suggestions.cleared)

	require.True(t, h.binding.SelectSuggestion(1))
	assert.Equal(t, "Sprint planning", h.binding.Description())
	assert.Equal(t, 1, h.suggestions.cleared)
}

package ui_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relix/internal/release/orchestrator"
	"github.com/temirov/relix/internal/ui"
)

func TestOutcomeFormatterFormatOutcome(testInstance *testing.T) {
	testCases := []struct {
		name            string
		outcome         orchestrator.RepositoryOutcome
		expectedMessage string
	}{
		{
			name:            "released_without_reason",
			outcome:         orchestrator.RepositoryOutcome{RepositoryName: "toolkit", Status: orchestrator.StatusReleased},
			expectedMessage: "toolkit: released",
		},
		{
			name: "skipped_with_reason",
			outcome: orchestrator.RepositoryOutcome{
				RepositoryName: "api-server",
				Status:         orchestrator.StatusSkipped,
				Reason:         "skip_release is configured",
			},
			expectedMessage: "api-server: skipped (skip_release is configured)",
		},
		{
			name:            "blank_reason_treated_as_absent",
			outcome:         orchestrator.RepositoryOutcome{RepositoryName: "toolkit", Status: orchestrator.StatusRehearsed, Reason: "  "},
			expectedMessage: "toolkit: rehearsed",
		},
	}

	formatter := ui.OutcomeFormatter{}
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			require.Equal(subtestInstance, testCase.expectedMessage, formatter.FormatOutcome(testCase.outcome))
		})
	}
}

func TestOutcomeFormatterFormatOutcomes(testInstance *testing.T) {
	formatter := ui.OutcomeFormatter{}

	require.Empty(testInstance, formatter.FormatOutcomes(nil))

	rendered := formatter.FormatOutcomes([]orchestrator.RepositoryOutcome{
		{RepositoryName: "toolkit", Status: orchestrator.StatusReleased},
		{RepositoryName: "api-server", Status: orchestrator.StatusSkipped, Reason: "skip_release is configured"},
	})
	require.Equal(testInstance, "toolkit: released\napi-server: skipped (skip_release is configured)\n", rendered)
}

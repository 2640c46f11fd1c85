// Package ui builds human-readable messages for release run events.
package ui

import (
	"fmt"
	"strings"

	"github.com/temirov/relix/internal/release/orchestrator"
)

const (
	outcomeMessageTemplateConstant           = "%s: %s"
	outcomeWithReasonMessageTemplateConstant = "%s: %s (%s)"
	outcomeLineSeparatorConstant             = "\n"
	emptyStringConstant                      = ""
)

// OutcomeFormatter renders repository outcomes for console output.
type OutcomeFormatter struct{}

// FormatOutcome renders one repository outcome as a single line without a trailing newline.
func (formatter OutcomeFormatter) FormatOutcome(outcome orchestrator.RepositoryOutcome) string {
	if len(strings.TrimSpace(outcome.Reason)) > 0 {
		return fmt.Sprintf(outcomeWithReasonMessageTemplateConstant, outcome.RepositoryName, outcome.Status, outcome.Reason)
	}
	return fmt.Sprintf(outcomeMessageTemplateConstant, outcome.RepositoryName, outcome.Status)
}

// FormatOutcomes renders every outcome on its own line, ending with a newline when any outcome exists.
func (formatter OutcomeFormatter) FormatOutcomes(outcomes []orchestrator.RepositoryOutcome) string {
	if len(outcomes) == 0 {
		return emptyStringConstant
	}

	renderedLines := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		renderedLines = append(renderedLines, formatter.FormatOutcome(outcome))
	}
	return strings.Join(renderedLines, outcomeLineSeparatorConstant) + outcomeLineSeparatorConstant
}

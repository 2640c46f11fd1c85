// Package validate holds the built-in validation-group plugins that verify
// repository content on the release branch without modifying it.
package validate

import (
	"context"

	"github.com/temirov/relix/internal/plugins/modify"
	"github.com/temirov/relix/internal/release/plugin"
)

// ShellValidatorPluginName identifies the shell command plugin in the validation group.
const ShellValidatorPluginName = "shell-validator"

// ShellValidator runs an arbitrary command inside the repository directory to
// validate the prepared release branch, typically a test or lint invocation.
type ShellValidator struct {
	pluginContext plugin.Context
}

// NewShellValidator constructs the shell validation plugin.
func NewShellValidator(pluginContext plugin.Context) (plugin.Validator, error) {
	return &ShellValidator{pluginContext: pluginContext}, nil
}

// Validate executes the configured command; a non-zero exit fails the stage.
func (validator *ShellValidator) Validate(executionContext context.Context, arguments plugin.Arguments) error {
	if executionError := modify.RunShellCommand(executionContext, validator.pluginContext, arguments); executionError != nil {
		return plugin.ValidationError{PluginName: ShellValidatorPluginName, Cause: executionError}
	}
	return nil
}

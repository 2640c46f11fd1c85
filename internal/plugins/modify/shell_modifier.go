package modify

import (
	"context"
	"errors"

	"github.com/temirov/relix/internal/execshell"
	"github.com/temirov/relix/internal/release/plugin"
)

// ShellModifierPluginName identifies the shell command plugin in the modification group.
const ShellModifierPluginName = "shell-modifier"

const shellCommandRequiredMessageConstant = "shell plugins require a non-empty command argument"

type shellCommandOptions struct {
	Command []string `mapstructure:"command"`
}

// ShellModifier runs an arbitrary command inside the repository directory as a
// modification step.
type ShellModifier struct {
	pluginContext plugin.Context
}

// NewShellModifier constructs the shell modification plugin.
func NewShellModifier(pluginContext plugin.Context) (plugin.Modifier, error) {
	return &ShellModifier{pluginContext: pluginContext}, nil
}

// Modify executes the configured command; a non-zero exit fails the stage.
func (modifier *ShellModifier) Modify(executionContext context.Context, arguments plugin.Arguments) error {
	if executionError := RunShellCommand(executionContext, modifier.pluginContext, arguments); executionError != nil {
		return plugin.ModificationError{PluginName: ShellModifierPluginName, Cause: executionError}
	}
	return nil
}

// RunShellCommand decodes the command argument and executes it in the
// repository working directory, so relative paths inside the command resolve
// against the checked-out repository. The validation-group shell plugin
// shares this execution path.
func RunShellCommand(executionContext context.Context, pluginContext plugin.Context, arguments plugin.Arguments) error {
	options := shellCommandOptions{}
	if decodeError := plugin.DecodeArguments(arguments, &options); decodeError != nil {
		return decodeError
	}
	if len(options.Command) == 0 {
		return errors.New(shellCommandRequiredMessageConstant)
	}

	_, executionError := pluginContext.ProgramExecutor.ExecuteProgram(executionContext, options.Command[0], execshell.CommandDetails{
		Arguments:        options.Command[1:],
		WorkingDirectory: pluginContext.RepositoryDirectory,
	})
	return executionError
}

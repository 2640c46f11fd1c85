package validate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/relix/internal/execshell"
	"github.com/temirov/relix/internal/plugins/validate"
	"github.com/temirov/relix/internal/release/config"
	"github.com/temirov/relix/internal/release/plugin"
)

const validatorRepositoryDirectoryConstant = "/workspaces/sample-service"

type recordingProgramExecutor struct {
	executedPrograms []string
	executedDetails  []execshell.CommandDetails
	executionError   error
}

func (executor *recordingProgramExecutor) ExecuteProgram(_ context.Context, programName string, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.executedPrograms = append(executor.executedPrograms, programName)
	executor.executedDetails = append(executor.executedDetails, details)
	return execshell.ExecutionResult{}, executor.executionError
}

func buildValidatorContext(executor *recordingProgramExecutor) plugin.Context {
	return plugin.Context{
		ReleaseEntry:        &config.ReleaseEntry{Name: "sample-service"},
		RepositoryDirectory: validatorRepositoryDirectoryConstant,
		FileSystem:          afero.NewMemMapFs(),
		ProgramExecutor:     executor,
	}
}

func TestShellValidatorRunsCommandInRepositoryDirectory(testInstance *testing.T) {
	executor := &recordingProgramExecutor{}
	validator, creationError := validate.NewShellValidator(buildValidatorContext(executor))
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, validator.Validate(context.Background(), plugin.Arguments{
		"command": []string{"pytest", "-x"},
	}))

	require.Equal(testInstance, []string{"pytest"}, executor.executedPrograms)
	require.Equal(testInstance, []string{"-x"}, executor.executedDetails[0].Arguments)
	require.Equal(testInstance, validatorRepositoryDirectoryConstant, executor.executedDetails[0].WorkingDirectory)
}

func TestShellValidatorWrapsExecutionFailures(testInstance *testing.T) {
	commandFailure := errors.New("exit status 1")
	executor := &recordingProgramExecutor{executionError: commandFailure}
	validator, creationError := validate.NewShellValidator(buildValidatorContext(executor))
	require.NoError(testInstance, creationError)

	validationError := validator.Validate(context.Background(), plugin.Arguments{"command": []string{"pytest"}})
	require.ErrorIs(testInstance, validationError, commandFailure)

	var pluginFailure plugin.ValidationError
	require.ErrorAs(testInstance, validationError, &pluginFailure)
	require.Equal(testInstance, validate.ShellValidatorPluginName, pluginFailure.PluginName)
}

func TestShellValidatorRequiresCommandArgument(testInstance *testing.T) {
	executor := &recordingProgramExecutor{}
	validator, creationError := validate.NewShellValidator(buildValidatorContext(executor))
	require.NoError(testInstance, creationError)

	validationError := validator.Validate(context.Background(), plugin.Arguments{})
	require.Error(testInstance, validationError)
	require.Empty(testInstance, executor.executedPrograms)
}

package release_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	releasecmd "github.com/temirov/relix/cmd/cli/release"
	"github.com/temirov/relix/internal/execshell"
	flagutils "github.com/temirov/relix/internal/utils/flags"
)

const (
	testConfigurationPathConstant = "release_config.yml"
	testRepositoriesRootConstant  = ".relix-repositories"

	testReleaseConfigurationConstant = `global_config:
  git_user_name: Release Bot
  git_user_email: release-bot@example.com
  tag_policy: skip
repositories:
  toolkit:
    url: https://example.com/toolkit.git
    version: 2.0.0
  api-server:
    url: https://example.com/api-server.git
    version: 1.0.0
    dependencies:
      - toolkit
`
)

type scriptedCommandExecutor struct {
	executedCommands []execshell.CommandDetails
	standardOutputs  map[string]string
}

func (executor *scriptedCommandExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.executedCommands = append(executor.executedCommands, details)
	joinedArguments := strings.Join(details.Arguments, " ")
	return execshell.ExecutionResult{StandardOutput: executor.standardOutputs[joinedArguments]}, nil
}

func (executor *scriptedCommandExecutor) ExecuteProgram(_ context.Context, _ string, _ execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return execshell.ExecutionResult{}, nil
}

func (executor *scriptedCommandExecutor) joinedCommands() []string {
	joined := make([]string, 0, len(executor.executedCommands))
	for _, details := range executor.executedCommands {
		joined = append(joined, strings.Join(details.Arguments, " "))
	}
	return joined
}

func buildReleaseCommand(testInstance *testing.T, executor *scriptedCommandExecutor, fileSystem afero.Fs) (*cobra.Command, *bytes.Buffer) {
	testInstance.Helper()

	builder := releasecmd.ReleaseCommandBuilder{
		ConfigurationProvider: func() releasecmd.CommandConfiguration {
			return releasecmd.CommandConfiguration{
				ConfigurationPath: testConfigurationPathConstant,
				RepositoriesRoot:  testRepositoriesRootConstant,
			}
		},
		Executor:   executor,
		FileSystem: fileSystem,
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})
	return command, outputBuffer
}

func writeConfigurationFile(testInstance *testing.T, fileSystem afero.Fs, content string) {
	testInstance.Helper()
	require.NoError(testInstance, afero.WriteFile(fileSystem, testConfigurationPathConstant, []byte(content), 0o644))
}

func TestReleaseCommandReleasesRepositoriesInDependencyOrder(testInstance *testing.T) {
	executor := &scriptedCommandExecutor{}
	fileSystem := afero.NewMemMapFs()
	writeConfigurationFile(testInstance, fileSystem, testReleaseConfigurationConstant)

	command, outputBuffer := buildReleaseCommand(testInstance, executor, fileSystem)
	command.SetArgs([]string{})

	require.NoError(testInstance, command.Execute())
	require.Equal(testInstance, "toolkit: released\napi-server: released\n", outputBuffer.String())

	cloneCommands := []string{}
	for _, joinedCommand := range executor.joinedCommands() {
		if strings.HasPrefix(joinedCommand, "clone ") {
			cloneCommands = append(cloneCommands, joinedCommand)
		}
	}
	require.Equal(testInstance, []string{
		"clone https://example.com/toolkit.git " + testRepositoriesRootConstant + "/toolkit",
		"clone https://example.com/api-server.git " + testRepositoriesRootConstant + "/api-server",
	}, cloneCommands)
}

func TestReleaseCommandRehearsalSuppressesPublishing(testInstance *testing.T) {
	executor := &scriptedCommandExecutor{}
	fileSystem := afero.NewMemMapFs()
	writeConfigurationFile(testInstance, fileSystem, testReleaseConfigurationConstant)

	command, outputBuffer := buildReleaseCommand(testInstance, executor, fileSystem)
	command.SetArgs(flagutils.NormalizeToggleArguments([]string{"--test"}))

	require.NoError(testInstance, command.Execute())
	require.Equal(testInstance, "toolkit: rehearsed\napi-server: rehearsed\n", outputBuffer.String())

	for _, joinedCommand := range executor.joinedCommands() {
		require.NotContains(testInstance, joinedCommand, "push")
	}
}

func TestReleaseCommandAppliesAuthorAndEmailOverrides(testInstance *testing.T) {
	executor := &scriptedCommandExecutor{}
	fileSystem := afero.NewMemMapFs()
	writeConfigurationFile(testInstance, fileSystem, testReleaseConfigurationConstant)

	command, _ := buildReleaseCommand(testInstance, executor, fileSystem)
	command.SetArgs([]string{"--author", "Override Bot", "--email", "override-bot@example.com"})

	require.NoError(testInstance, command.Execute())

	joinedCommands := executor.joinedCommands()
	require.Contains(testInstance, joinedCommands, "config user.name Override Bot")
	require.Contains(testInstance, joinedCommands, "config user.email override-bot@example.com")
}

func TestReleaseCommandOverridesGlobalTagPolicy(testInstance *testing.T) {
	executor := &scriptedCommandExecutor{standardOutputs: map[string]string{
		"tag --list 2.0.0": "2.0.0\n",
		"tag --list 1.0.0": "1.0.0\n",
	}}
	fileSystem := afero.NewMemMapFs()
	writeConfigurationFile(testInstance, fileSystem, testReleaseConfigurationConstant)

	command, outputBuffer := buildReleaseCommand(testInstance, executor, fileSystem)
	command.SetArgs([]string{"--global-tag-policy", "ovr"})

	require.NoError(testInstance, command.Execute())
	require.Equal(testInstance, "toolkit: released\napi-server: released\n", outputBuffer.String())
	require.Contains(testInstance, executor.joinedCommands(), "tag -d 2.0.0")
	require.Contains(testInstance, executor.joinedCommands(), "push --delete origin 2.0.0")
}

func TestReleaseCommandReportsSkipReasonWhenTagExists(testInstance *testing.T) {
	executor := &scriptedCommandExecutor{standardOutputs: map[string]string{"tag --list 2.0.0": "2.0.0\n"}}
	fileSystem := afero.NewMemMapFs()
	writeConfigurationFile(testInstance, fileSystem, testReleaseConfigurationConstant)

	command, outputBuffer := buildReleaseCommand(testInstance, executor, fileSystem)
	command.SetArgs([]string{})

	require.NoError(testInstance, command.Execute())
	require.Contains(testInstance, outputBuffer.String(), "toolkit: skipped (tag 2.0.0 already exists and the tag policy is skip)")
	require.Contains(testInstance, outputBuffer.String(), "api-server: released")
}

func TestReleaseCommandRejectsUnknownTagPolicy(testInstance *testing.T) {
	executor := &scriptedCommandExecutor{}
	fileSystem := afero.NewMemMapFs()
	writeConfigurationFile(testInstance, fileSystem, testReleaseConfigurationConstant)

	command, _ := buildReleaseCommand(testInstance, executor, fileSystem)
	command.SetArgs([]string{"--global-tag-policy", "replace"})

	executionError := command.Execute()
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "replace")
	require.Empty(testInstance, executor.executedCommands)
}

func TestReleaseCommandFailsWhenConfigurationFileIsMissing(testInstance *testing.T) {
	executor := &scriptedCommandExecutor{}
	command, _ := buildReleaseCommand(testInstance, executor, afero.NewMemMapFs())
	command.SetArgs([]string{"--conf", "missing.yml"})

	executionError := command.Execute()
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "unable to load release configuration")
}

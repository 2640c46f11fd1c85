package execshell

import "context"

// CommandName identifies the executable invoked by a ShellCommand.
type CommandName string

// Supported executables.
const (
	// CommandGit names the git executable used for all repository operations.
	CommandGit CommandName = "git"
)

// CommandDetails captures the arguments and execution environment for one invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand couples an executable name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult carries the captured output and exit status of a completed command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner abstracts process execution so tests can substitute recording fakes.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

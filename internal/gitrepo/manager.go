package gitrepo

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/relix/internal/execshell"
)

const (
	executorNotConfiguredMessageConstant = "repository manager requires a git executor"
	gitCloneSubcommandConstant           = "clone"
	gitConfigSubcommandConstant          = "config"
	gitSwitchSubcommandConstant          = "switch"
	gitCheckoutSubcommandConstant        = "checkout"
	gitMergeSubcommandConstant           = "merge"
	gitAddSubcommandConstant             = "add"
	gitCommitSubcommandConstant          = "commit"
	gitPushSubcommandConstant            = "push"
	gitTagSubcommandConstant             = "tag"
	gitCreateBranchFlagConstant          = "-b"
	gitAddAllFlagConstant                = "--all"
	gitMessageFlagConstant               = "-m"
	gitAllowEmptyFlagConstant            = "--allow-empty"
	gitSetUpstreamFlagConstant           = "--set-upstream"
	gitDeleteRemoteFlagConstant          = "--delete"
	gitListFlagConstant                  = "--list"
	gitAnnotateFlagConstant              = "-a"
	gitDeleteTagFlagConstant             = "-d"
)

// ErrExecutorNotConfigured reports a missing git executor dependency.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// GitExecutor exposes the subset of shell execution the repository manager relies on.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager performs Git operations inside one repository working directory.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager validates the executor dependency and constructs a RepositoryManager.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// CloneRepository clones the remote repository at remoteURL into destinationPath.
func (manager *RepositoryManager) CloneRepository(executionContext context.Context, remoteURL string, destinationPath string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{gitCloneSubcommandConstant, remoteURL, destinationPath},
	})
	return executionError
}

// SetConfigValue writes a repository-local git configuration value.
func (manager *RepositoryManager) SetConfigValue(executionContext context.Context, repositoryPath string, configurationKey string, configurationValue string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitConfigSubcommandConstant, configurationKey, configurationValue},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// SwitchBranch switches the working tree to an existing branch.
func (manager *RepositoryManager) SwitchBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitSwitchSubcommandConstant, branchName},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// CreateBranch creates and switches to a new branch starting at the current HEAD.
func (manager *RepositoryManager) CreateBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCheckoutSubcommandConstant, gitCreateBranchFlagConstant, branchName},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// MergeBranch merges the named branch into the currently checked-out branch.
func (manager *RepositoryManager) MergeBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitMergeSubcommandConstant, branchName},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// StageAll stages every change in the working tree, including deletions and untracked files.
func (manager *RepositoryManager) StageAll(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitAddSubcommandConstant, gitAddAllFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// Commit records the staged changes with the supplied message.
//
// Empty commits are permitted so lifecycle commits succeed even when a plugin
// stage produced no file changes.
func (manager *RepositoryManager) Commit(executionContext context.Context, repositoryPath string, commitMessage string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCommitSubcommandConstant, gitAllowEmptyFlagConstant, gitMessageFlagConstant, commitMessage},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// Push publishes the named reference to the remote, optionally recording upstream tracking.
func (manager *RepositoryManager) Push(executionContext context.Context, repositoryPath string, remoteName string, referenceName string, setUpstream bool) error {
	pushArguments := []string{gitPushSubcommandConstant}
	if setUpstream {
		pushArguments = append(pushArguments, gitSetUpstreamFlagConstant)
	}
	pushArguments = append(pushArguments, remoteName, referenceName)

	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        pushArguments,
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// DeleteRemoteReference removes the named reference from the remote.
func (manager *RepositoryManager) DeleteRemoteReference(executionContext context.Context, repositoryPath string, remoteName string, referenceName string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitPushSubcommandConstant, gitDeleteRemoteFlagConstant, remoteName, referenceName},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// TagExists reports whether the repository already carries the named tag locally.
func (manager *RepositoryManager) TagExists(executionContext context.Context, repositoryPath string, tagName string) (bool, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitTagSubcommandConstant, gitListFlagConstant, tagName},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) > 0, nil
}

// CreateAnnotatedTag creates an annotated tag pointing at the named reference.
func (manager *RepositoryManager) CreateAnnotatedTag(executionContext context.Context, repositoryPath string, tagName string, referenceName string, tagMessage string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitTagSubcommandConstant, gitAnnotateFlagConstant, tagName, gitMessageFlagConstant, tagMessage, referenceName},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// DeleteTag removes the named tag from the local repository.
func (manager *RepositoryManager) DeleteTag(executionContext context.Context, repositoryPath string, tagName string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitTagSubcommandConstant, gitDeleteTagFlagConstant, tagName},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

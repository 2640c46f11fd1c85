package gitrepo_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relix/internal/execshell"
	"github.com/temirov/relix/internal/gitrepo"
)

const (
	testRepositoryPathConstant = "/tmp/work/service"
	testRemoteNameConstant     = "origin"
	testBranchNameConstant     = "stable"
	testTagNameConstant        = "1.4.0"
	testTagMessageConstant     = "release 1.4.0"
)

type scriptedGitExecutor struct {
	results          []execshell.ExecutionResult
	recordedCommands []execshell.CommandDetails
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	if len(executor.results) == 0 {
		return execshell.ExecutionResult{}, nil
	}
	nextResult := executor.results[0]
	executor.results = executor.results[1:]
	return nextResult, nil
}

func TestNewRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(nil)
	require.Nil(testInstance, manager)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrExecutorNotConfigured)
}

func TestRepositoryManagerBuildsExpectedGitArguments(testInstance *testing.T) {
	testCases := []struct {
		name              string
		invoke            func(manager *gitrepo.RepositoryManager, executor *scriptedGitExecutor) error
		expectedArguments string
		expectedDirectory string
	}{
		{
			name: "clone",
			invoke: func(manager *gitrepo.RepositoryManager, executor *scriptedGitExecutor) error {
				return manager.CloneRepository(context.Background(), "https://example.com/service.git", testRepositoryPathConstant)
			},
			expectedArguments: "clone https://example.com/service.git " + testRepositoryPathConstant,
		},
		{
			name: "config",
			invoke: func(manager *gitrepo.RepositoryManager, executor *scriptedGitExecutor) error {
				return manager.SetConfigValue(context.Background(), testRepositoryPathConstant, "user.name", "Release Bot")
			},
			expectedArguments: "config user.name Release Bot",
			expectedDirectory: testRepositoryPathConstant,
		},
		{
			name: "switch",
			invoke: func(manager *gitrepo.RepositoryManager, executor *scriptedGitExecutor) error {
				return manager.SwitchBranch(context.Background(), testRepositoryPathConstant, testBranchNameConstant)
			},
			expectedArguments: "switch stable",
			expectedDirectory: testRepositoryPathConstant,
		},
		{
			name: "create_branch",
			invoke: func(manager *gitrepo.RepositoryManager, executor *scriptedGitExecutor) error {
				return manager.CreateBranch(context.Background(), testRepositoryPathConstant, "release")
			},
			expectedArguments: "checkout -b release",
			expectedDirectory: testRepositoryPathConstant,
		},
		{
			name: "merge",
			invoke: func(manager *gitrepo.RepositoryManager, executor *scriptedGitExecutor) error {
				return manager.MergeBranch(context.Background(), testRepositoryPathConstant, "release")
			},
			expectedArguments: "merge release",
			expectedDirectory: testRepositoryPathConstant,
		},
		{
			name: "stage",
			invoke: func(manager *gitrepo.RepositoryManager, executor *scriptedGitExecutor) error {
				return manager.StageAll(context.Background(), testRepositoryPathConstant)
			},
			expectedArguments: "add --all",
			expectedDirectory: testRepositoryPathConstant,
		},
		{
			name: "commit",
			invoke: func(manager *gitrepo.RepositoryManager, executor *scriptedGitExecutor) error {
				return manager.Commit(context.Background(), testRepositoryPathConstant, "release commit")
			},
			expectedArguments: "commit --allow-empty -m release commit",
			expectedDirectory: testRepositoryPathConstant,
		},
		{
			name: "push",
			invoke: func(manager *gitrepo.RepositoryManager, executor *scriptedGitExecutor) error {
				return manager.Push(context.Background(), testRepositoryPathConstant, testRemoteNameConstant, testBranchNameConstant, false)
			},
			expectedArguments: "push origin stable",
			expectedDirectory: testRepositoryPathConstant,
		},
		{
			name: "push_with_upstream",
			invoke: func(manager *gitrepo.RepositoryManager, executor *scriptedGitExecutor) error {
				return manager.Push(context.Background(), testRepositoryPathConstant, testRemoteNameConstant, testBranchNameConstant, true)
			},
			expectedArguments: "push --set-upstream origin stable",
			expectedDirectory: testRepositoryPathConstant,
		},
		{
			name: "delete_remote_reference",
			invoke: func(manager *gitrepo.RepositoryManager, executor *scriptedGitExecutor) error {
				return manager.DeleteRemoteReference(context.Background(), testRepositoryPathConstant, testRemoteNameConstant, testTagNameConstant)
			},
			expectedArguments: "push --delete origin " + testTagNameConstant,
			expectedDirectory: testRepositoryPathConstant,
		},
		{
			name: "create_annotated_tag",
			invoke: func(manager *gitrepo.RepositoryManager, executor *scriptedGitExecutor) error {
				return manager.CreateAnnotatedTag(context.Background(), testRepositoryPathConstant, testTagNameConstant, testBranchNameConstant, testTagMessageConstant)
			},
			expectedArguments: "tag -a " + testTagNameConstant + " -m " + testTagMessageConstant + " " + testBranchNameConstant,
			expectedDirectory: testRepositoryPathConstant,
		},
		{
			name: "delete_tag",
			invoke: func(manager *gitrepo.RepositoryManager, executor *scriptedGitExecutor) error {
				return manager.DeleteTag(context.Background(), testRepositoryPathConstant, testTagNameConstant)
			},
			expectedArguments: "tag -d " + testTagNameConstant,
			expectedDirectory: testRepositoryPathConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &scriptedGitExecutor{}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			require.NoError(testInstance, testCase.invoke(manager, executor))
			require.Len(testInstance, executor.recordedCommands, 1)
			recordedCommand := executor.recordedCommands[0]
			require.Equal(testInstance, testCase.expectedArguments, strings.Join(recordedCommand.Arguments, " "))
			require.Equal(testInstance, testCase.expectedDirectory, recordedCommand.WorkingDirectory)
		})
	}
}

func TestRepositoryManagerExistenceProbes(testInstance *testing.T) {
	testCases := []struct {
		name           string
		probeOutput    string
		expectedExists bool
	}{
		{name: "tag_present", probeOutput: testTagNameConstant + "\n", expectedExists: true},
		{name: "tag_absent", probeOutput: "", expectedExists: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &scriptedGitExecutor{results: []execshell.ExecutionResult{{StandardOutput: testCase.probeOutput}}}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			tagExists, probeError := manager.TagExists(context.Background(), testRepositoryPathConstant, testTagNameConstant)
			require.NoError(testInstance, probeError)
			require.Equal(testInstance, testCase.expectedExists, tagExists)
		})
	}
}

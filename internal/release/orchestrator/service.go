// Package orchestrator drives the release run across every configured
// repository in dependency order.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/relix/internal/gitrepo"
	"github.com/temirov/relix/internal/release/config"
	"github.com/temirov/relix/internal/release/gitflow"
	"github.com/temirov/relix/internal/release/plugin"
	"github.com/temirov/relix/internal/release/resolver"
)

const (
	serviceRegistryRequiredMessageConstant   = "orchestrator requires a plugin registry"
	serviceExecutorRequiredMessageConstant   = "orchestrator requires a command executor"
	serviceFileSystemRequiredMessageConstant = "orchestrator requires a file system"
	serviceRootRequiredMessageConstant       = "orchestrator requires a repositories root"
	escapingRepositoryNameTemplateConstant   = "repository name %q escapes the repositories root %q"
	skipConfiguredReasonConstant             = "skip_release is configured"
	tagExistsReasonTemplateConstant          = "tag %s already exists and the tag policy is skip"
	repositorySkippedMessageConstant         = "repository skipped"
	repositoryReleasedMessageConstant        = "repository released"
	repositoryRehearsedMessageConstant       = "repository release rehearsed"
	startingRepositoryMessageConstant        = "starting repository release"
	logFieldRepositoryNameConstant           = "repository_name"
	logFieldRepositoryOrderConstant          = "repository_order"
	logFieldSkipReasonConstant               = "skip_reason"
	logFieldWorkingDirectoryConstant         = "working_directory"
)

// OutcomeStatus classifies the result for one repository.
type OutcomeStatus string

// Possible repository outcomes.
const (
	// StatusReleased marks a repository that was released and published.
	StatusReleased OutcomeStatus = "released"
	// StatusRehearsed marks a repository that completed a rehearsal run without publishing.
	StatusRehearsed OutcomeStatus = "rehearsed"
	// StatusSkipped marks a repository that was bypassed.
	StatusSkipped OutcomeStatus = "skipped"
)

// Service construction errors.
var (
	ErrRegistryNotConfigured   = errors.New(serviceRegistryRequiredMessageConstant)
	ErrExecutorNotConfigured   = errors.New(serviceExecutorRequiredMessageConstant)
	ErrFileSystemNotConfigured = errors.New(serviceFileSystemRequiredMessageConstant)
	ErrRootNotConfigured       = errors.New(serviceRootRequiredMessageConstant)
)

// EscapingRepositoryNameError reports a repository whose name resolves outside the repositories root.
type EscapingRepositoryNameError struct {
	RepositoryName   string
	RepositoriesRoot string
}

// Error names the offending repository and the guarded root.
func (failure EscapingRepositoryNameError) Error() string {
	return fmt.Sprintf(escapingRepositoryNameTemplateConstant, failure.RepositoryName, failure.RepositoriesRoot)
}

// RepositoryOutcome reports the result of one repository in the run.
type RepositoryOutcome struct {
	RepositoryName string
	Status         OutcomeStatus
	Reason         string
}

// CommandExecutor combines the git and program execution capabilities the run relies on.
type CommandExecutor interface {
	gitrepo.GitExecutor
	plugin.ProgramExecutor
}

// Dependencies configures the collaborators of a Service.
type Dependencies struct {
	Registry         *plugin.Registry
	Executor         CommandExecutor
	FileSystem       afero.Fs
	RepositoriesRoot string
	Logger           *zap.Logger
}

// Service releases every configured repository in dependency order.
type Service struct {
	registry         *plugin.Registry
	executor         CommandExecutor
	fileSystem       afero.Fs
	repositoriesRoot string
	logger           *zap.Logger
}

// NewService validates the dependencies and constructs a Service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Registry == nil {
		return nil, ErrRegistryNotConfigured
	}
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if len(strings.TrimSpace(dependencies.RepositoriesRoot)) == 0 {
		return nil, ErrRootNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		registry:         dependencies.Registry,
		executor:         dependencies.Executor,
		fileSystem:       dependencies.FileSystem,
		repositoriesRoot: dependencies.RepositoriesRoot,
		logger:           logger,
	}, nil
}

// Run releases the configured repositories sequentially in dependency order.
//
// The run stops at the first failing repository; outcomes collected up to
// that point are returned alongside the failure.
func (service *Service) Run(executionContext context.Context, entries []config.ReleaseEntry, globalConfiguration config.GlobalConfig) ([]RepositoryOutcome, error) {
	orderedEntries, orderingError := resolver.Order(entries)
	if orderingError != nil {
		return nil, orderingError
	}

	outcomes := make([]RepositoryOutcome, 0, len(orderedEntries))
	for entryIndex := range orderedEntries {
		releaseEntry := orderedEntries[entryIndex]

		if releaseEntry.Private.ShouldSkip {
			outcomes = append(outcomes, service.skipOutcome(releaseEntry.Name, skipConfiguredReasonConstant))
			continue
		}

		service.logger.Info(
			startingRepositoryMessageConstant,
			zap.String(logFieldRepositoryNameConstant, releaseEntry.Name),
			zap.Int(logFieldRepositoryOrderConstant, entryIndex+1),
		)

		outcome, releaseError := service.releaseRepository(executionContext, &releaseEntry, globalConfiguration)
		if releaseError != nil {
			return outcomes, releaseError
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

func (service *Service) releaseRepository(executionContext context.Context, releaseEntry *config.ReleaseEntry, globalConfiguration config.GlobalConfig) (RepositoryOutcome, error) {
	repositoryDirectory, directoryError := service.repositoryWorkingDirectory(releaseEntry.Name)
	if directoryError != nil {
		return RepositoryOutcome{}, directoryError
	}

	repositoryManager, managerCreationError := gitrepo.NewRepositoryManager(service.executor)
	if managerCreationError != nil {
		return RepositoryOutcome{}, managerCreationError
	}

	repositoryLogger := service.logger.With(zap.String(logFieldRepositoryNameConstant, releaseEntry.Name))

	dispatcher, dispatcherCreationError := plugin.NewDispatcher(service.registry, plugin.Context{
		ReleaseEntry:        releaseEntry,
		GlobalConfiguration: globalConfiguration,
		RepositoryDirectory: repositoryDirectory,
		Logger:              repositoryLogger,
		FileSystem:          service.fileSystem,
		ProgramExecutor:     service.executor,
	})
	if dispatcherCreationError != nil {
		return RepositoryOutcome{}, dispatcherCreationError
	}

	lifecycleHandler, handlerCreationError := gitflow.NewHandler(gitflow.HandlerDependencies{
		ReleaseEntry:        releaseEntry,
		GlobalConfiguration: globalConfiguration,
		RepositoryDirectory: repositoryDirectory,
		RepositoryManager:   repositoryManager,
		FileSystem:          service.fileSystem,
		Dispatcher:          dispatcher,
		Logger:              repositoryLogger,
	})
	if handlerCreationError != nil {
		return RepositoryOutcome{}, handlerCreationError
	}

	repositoryLogger.Debug(
		startingRepositoryMessageConstant,
		zap.String(logFieldWorkingDirectoryConstant, repositoryDirectory),
	)

	if initializationError := lifecycleHandler.Initialize(executionContext); initializationError != nil {
		return RepositoryOutcome{}, initializationError
	}

	tagExists, probeError := lifecycleHandler.TagExists(executionContext)
	if probeError != nil {
		return RepositoryOutcome{}, probeError
	}
	if tagExists && releaseEntry.EffectiveTagPolicy(globalConfiguration) == config.TagPolicySkip {
		skipReason := fmt.Sprintf(tagExistsReasonTemplateConstant, releaseEntry.Public.Version)
		return service.skipOutcome(releaseEntry.Name, skipReason), nil
	}

	if lifecycleError := lifecycleHandler.Run(executionContext); lifecycleError != nil {
		return RepositoryOutcome{}, lifecycleError
	}
	if publishError := lifecycleHandler.Publish(executionContext); publishError != nil {
		return RepositoryOutcome{}, publishError
	}

	if globalConfiguration.TestRun {
		repositoryLogger.Info(repositoryRehearsedMessageConstant)
		return RepositoryOutcome{RepositoryName: releaseEntry.Name, Status: StatusRehearsed}, nil
	}

	repositoryLogger.Info(repositoryReleasedMessageConstant)
	return RepositoryOutcome{RepositoryName: releaseEntry.Name, Status: StatusReleased}, nil
}

// repositoryWorkingDirectory derives the per-repository working directory
// under the repositories root and rejects names that resolve outside it.
func (service *Service) repositoryWorkingDirectory(repositoryName string) (string, error) {
	cleanedRoot := filepath.Clean(service.repositoriesRoot)
	candidateDirectory := filepath.Join(cleanedRoot, repositoryName)
	if candidateDirectory == cleanedRoot || !strings.HasPrefix(candidateDirectory, cleanedRoot+string(filepath.Separator)) {
		return "", EscapingRepositoryNameError{RepositoryName: repositoryName, RepositoriesRoot: cleanedRoot}
	}
	return candidateDirectory, nil
}

func (service *Service) skipOutcome(repositoryName string, skipReason string) RepositoryOutcome {
	service.logger.Info(
		repositorySkippedMessageConstant,
		zap.String(logFieldRepositoryNameConstant, repositoryName),
		zap.String(logFieldSkipReasonConstant, skipReason),
	)
	return RepositoryOutcome{RepositoryName: repositoryName, Status: StatusSkipped, Reason: skipReason}
}

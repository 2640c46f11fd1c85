package gitflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/relix/internal/gitrepo"
	"github.com/temirov/relix/internal/release/config"
)

// Working branch names are fixed by convention; main and stable come from configuration.
const (
	ReleaseBranchName   = "release"
	MergeBackBranchName = "merge_back"
)

const (
	remoteNameConstant                       = "origin"
	gitUserNameConfigurationKeyConstant      = "user.name"
	gitUserEmailConfigurationKeyConstant     = "user.email"
	workingDirectoryPermissionsConstant      = 0o755
	handlerEntryRequiredMessageConstant      = "gitflow handler requires a release entry"
	handlerManagerRequiredMessageConstant    = "gitflow handler requires a repository manager"
	handlerFileSystemRequiredMessageConstant = "gitflow handler requires a file system"
	handlerDispatcherRequiredMessageConstant = "gitflow handler requires a plugin dispatcher"
	handlerDirectoryRequiredMessageConstant  = "gitflow handler requires a repository directory"
	operationErrorTemplateConstant           = "repository %s failed during %s: %v"
	releaseCommitMessageTemplateConstant     = "chore: apply release modification plugins (%s) and validation plugins (%s)"
	stableCommitMessageTemplateConstant      = "chore: release commit for version %s"
	mergeBackCommitMessageTemplateConstant   = "chore: finalize merge-back with plugins (%s)"
	pluginSummaryJoinSeparatorConstant       = ", "
	pluginSummaryEmptyLabelConstant          = "none"
	stableBranchCreatedMessageConstant       = "created missing stable branch from release branch"
	tagAlreadyExistsMessageConstant          = "release tag already exists"
	tagOverrideMessageConstant               = "overriding existing release tag"
	publishSkippedForTestRunMessageConstant  = "publish skipped for rehearsal run"
	logFieldRepositoryConstant               = "repository_name"
	logFieldBranchConstant                   = "branch_name"
	logFieldTagConstant                      = "tag_name"
	logFieldTagPolicyConstant                = "tag_policy"
)

// Lifecycle stage labels used in operation errors.
const (
	StageClone                 = "clone"
	StageReleaseBranch         = "release-branch"
	StageReleaseModification   = "release-modification"
	StageReleaseValidation     = "release-validation"
	StageCommitRelease         = "commit-release"
	StageMergeReleaseToStable  = "merge-release-into-stable"
	StageCommitStable          = "commit-stable"
	StageMergeBackBranch       = "merge-back-branch"
	StageMergeBackFinalization = "merge-back-finalization"
	StageCommitMergeBack       = "commit-merge-back"
	StageMergeBackToMain       = "merge-merge-back-into-main"
	StagePublish               = "publish"
)

// Handler construction errors.
var (
	ErrEntryNotConfigured      = errors.New(handlerEntryRequiredMessageConstant)
	ErrManagerNotConfigured    = errors.New(handlerManagerRequiredMessageConstant)
	ErrFileSystemNotConfigured = errors.New(handlerFileSystemRequiredMessageConstant)
	ErrDispatcherNotConfigured = errors.New(handlerDispatcherRequiredMessageConstant)
	ErrDirectoryNotConfigured  = errors.New(handlerDirectoryRequiredMessageConstant)
)

// OperationError reports a failed lifecycle stage for one repository.
type OperationError struct {
	RepositoryName string
	Stage          string
	Cause          error
}

// Error names the repository, the failing stage, and the underlying cause.
func (failure OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, failure.RepositoryName, failure.Stage, failure.Cause)
}

// Unwrap exposes the underlying cause so plugin and git failures stay inspectable.
func (failure OperationError) Unwrap() error {
	return failure.Cause
}

// PluginDispatcher triggers the three plugin stages of the lifecycle.
type PluginDispatcher interface {
	ModifyReleaseBranch(executionContext context.Context) error
	ValidateReleaseBranch(executionContext context.Context) error
	FinalizeMergeBackBranch(executionContext context.Context) error
}

// HandlerDependencies configures the collaborators of a Handler.
type HandlerDependencies struct {
	ReleaseEntry        *config.ReleaseEntry
	GlobalConfiguration config.GlobalConfig
	RepositoryDirectory string
	RepositoryManager   *gitrepo.RepositoryManager
	FileSystem          afero.Fs
	Dispatcher          PluginDispatcher
	Logger              *zap.Logger
}

type branchNames struct {
	main      string
	stable    string
	release   string
	mergeBack string
}

// Handler executes the branch lifecycle for a single repository.
type Handler struct {
	releaseEntry        *config.ReleaseEntry
	globalConfiguration config.GlobalConfig
	repositoryDirectory string
	repositoryManager   *gitrepo.RepositoryManager
	fileSystem          afero.Fs
	dispatcher          PluginDispatcher
	logger              *zap.Logger
	branches            branchNames
}

// NewHandler validates the dependencies and constructs a Handler.
func NewHandler(dependencies HandlerDependencies) (*Handler, error) {
	if dependencies.ReleaseEntry == nil {
		return nil, ErrEntryNotConfigured
	}
	if dependencies.RepositoryManager == nil {
		return nil, ErrManagerNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.Dispatcher == nil {
		return nil, ErrDispatcherNotConfigured
	}
	if len(strings.TrimSpace(dependencies.RepositoryDirectory)) == 0 {
		return nil, ErrDirectoryNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		releaseEntry:        dependencies.ReleaseEntry,
		globalConfiguration: dependencies.GlobalConfiguration,
		repositoryDirectory: dependencies.RepositoryDirectory,
		repositoryManager:   dependencies.RepositoryManager,
		fileSystem:          dependencies.FileSystem,
		dispatcher:          dependencies.Dispatcher,
		logger:              logger,
		branches: branchNames{
			main:      dependencies.ReleaseEntry.Public.MainBranch,
			stable:    dependencies.ReleaseEntry.Public.StableBranch,
			release:   ReleaseBranchName,
			mergeBack: MergeBackBranchName,
		},
	}, nil
}

// Initialize resets the working directory, clones the repository, and configures the commit identity.
func (handler *Handler) Initialize(executionContext context.Context) error {
	if removalError := handler.fileSystem.RemoveAll(handler.repositoryDirectory); removalError != nil {
		return handler.operationFailure(StageClone, removalError)
	}
	if creationError := handler.fileSystem.MkdirAll(handler.repositoryDirectory, workingDirectoryPermissionsConstant); creationError != nil {
		return handler.operationFailure(StageClone, creationError)
	}

	if cloneError := handler.repositoryManager.CloneRepository(executionContext, handler.releaseEntry.Public.URL, handler.repositoryDirectory); cloneError != nil {
		return handler.operationFailure(StageClone, cloneError)
	}

	if configurationError := handler.repositoryManager.SetConfigValue(executionContext, handler.repositoryDirectory, gitUserNameConfigurationKeyConstant, handler.globalConfiguration.GitUserName); configurationError != nil {
		return handler.operationFailure(StageClone, configurationError)
	}
	if configurationError := handler.repositoryManager.SetConfigValue(executionContext, handler.repositoryDirectory, gitUserEmailConfigurationKeyConstant, handler.globalConfiguration.GitUserEmail); configurationError != nil {
		return handler.operationFailure(StageClone, configurationError)
	}

	return nil
}

// TagExists probes the freshly cloned repository for the configured release tag.
func (handler *Handler) TagExists(executionContext context.Context) (bool, error) {
	version := handler.releaseEntry.Public.Version
	if len(version) == 0 {
		return false, nil
	}
	return handler.repositoryManager.TagExists(executionContext, handler.repositoryDirectory, version)
}

// Run executes the local lifecycle transitions: branching, plugin stages, commits, and merges.
//
// Publishing is a separate step so rehearsal runs never touch the remote
// beyond the initial clone.
func (handler *Handler) Run(executionContext context.Context) error {
	if branchError := handler.checkoutReleaseBranch(executionContext); branchError != nil {
		return branchError
	}

	if modificationError := handler.dispatcher.ModifyReleaseBranch(executionContext); modificationError != nil {
		return handler.operationFailure(StageReleaseModification, modificationError)
	}
	if validationError := handler.dispatcher.ValidateReleaseBranch(executionContext); validationError != nil {
		return handler.operationFailure(StageReleaseValidation, validationError)
	}

	if commitError := handler.commitRelease(executionContext); commitError != nil {
		return commitError
	}

	stableCreated, mergeError := handler.mergeReleaseIntoStable(executionContext)
	if mergeError != nil {
		return mergeError
	}
	if !stableCreated {
		if commitError := handler.commitStable(executionContext); commitError != nil {
			return commitError
		}
	}

	if branchError := handler.checkoutMergeBackBranch(executionContext); branchError != nil {
		return branchError
	}

	if finalizationError := handler.dispatcher.FinalizeMergeBackBranch(executionContext); finalizationError != nil {
		return handler.operationFailure(StageMergeBackFinalization, finalizationError)
	}

	if commitError := handler.commitMergeBack(executionContext); commitError != nil {
		return commitError
	}

	return handler.mergeMergeBackIntoMain(executionContext)
}

// Publish pushes main and stable to the remote and applies the tag policy.
func (handler *Handler) Publish(executionContext context.Context) error {
	if handler.globalConfiguration.TestRun {
		handler.logger.Info(publishSkippedForTestRunMessageConstant, zap.String(logFieldRepositoryConstant, handler.releaseEntry.Name))
		return nil
	}

	if pushError := handler.pushBranch(executionContext, handler.branches.main); pushError != nil {
		return handler.operationFailure(StagePublish, pushError)
	}
	if pushError := handler.pushBranch(executionContext, handler.branches.stable); pushError != nil {
		return handler.operationFailure(StagePublish, pushError)
	}

	return handler.tagStable(executionContext)
}

func (handler *Handler) checkoutReleaseBranch(executionContext context.Context) error {
	if switchError := handler.repositoryManager.SwitchBranch(executionContext, handler.repositoryDirectory, handler.branches.main); switchError != nil {
		return handler.operationFailure(StageReleaseBranch, switchError)
	}
	if creationError := handler.repositoryManager.CreateBranch(executionContext, handler.repositoryDirectory, handler.branches.release); creationError != nil {
		return handler.operationFailure(StageReleaseBranch, creationError)
	}
	return nil
}

func (handler *Handler) commitRelease(executionContext context.Context) error {
	commitMessage := fmt.Sprintf(
		releaseCommitMessageTemplateConstant,
		pluginSummary(handler.releaseEntry.Plugins.ReleaseModification),
		pluginSummary(handler.releaseEntry.Plugins.ReleaseValidation),
	)
	if commitError := handler.commitBranch(executionContext, handler.branches.release, commitMessage); commitError != nil {
		return handler.operationFailure(StageCommitRelease, commitError)
	}
	return nil
}

// mergeReleaseIntoStable merges release into stable. Switching resolves the
// stable branch whether it exists locally or, after a fresh clone, only as a
// remote tracking reference; when the switch fails the branch exists nowhere
// and is created from release instead. The returned flag reports creation, in
// which case the separate stable commit is unnecessary.
func (handler *Handler) mergeReleaseIntoStable(executionContext context.Context) (bool, error) {
	switchError := handler.repositoryManager.SwitchBranch(executionContext, handler.repositoryDirectory, handler.branches.stable)
	if switchError != nil {
		if creationError := handler.createStableFromRelease(executionContext); creationError != nil {
			return false, creationError
		}
		return true, nil
	}

	// Merge conflicts surface as git failures; the working tree is left as-is.
	if mergeError := handler.repositoryManager.MergeBranch(executionContext, handler.repositoryDirectory, handler.branches.release); mergeError != nil {
		return false, handler.operationFailure(StageMergeReleaseToStable, mergeError)
	}
	return false, nil
}

func (handler *Handler) createStableFromRelease(executionContext context.Context) error {
	if switchError := handler.repositoryManager.SwitchBranch(executionContext, handler.repositoryDirectory, handler.branches.release); switchError != nil {
		return handler.operationFailure(StageMergeReleaseToStable, switchError)
	}
	if creationError := handler.repositoryManager.CreateBranch(executionContext, handler.repositoryDirectory, handler.branches.stable); creationError != nil {
		return handler.operationFailure(StageMergeReleaseToStable, creationError)
	}

	handler.logger.Info(
		stableBranchCreatedMessageConstant,
		zap.String(logFieldRepositoryConstant, handler.releaseEntry.Name),
		zap.String(logFieldBranchConstant, handler.branches.stable),
	)

	if !handler.globalConfiguration.TestRun {
		if pushError := handler.repositoryManager.Push(executionContext, handler.repositoryDirectory, remoteNameConstant, handler.branches.stable, true); pushError != nil {
			return handler.operationFailure(StageMergeReleaseToStable, pushError)
		}
	}
	return nil
}

func (handler *Handler) commitStable(executionContext context.Context) error {
	commitMessage := fmt.Sprintf(stableCommitMessageTemplateConstant, handler.releaseEntry.Public.Version)
	if commitError := handler.commitBranch(executionContext, handler.branches.stable, commitMessage); commitError != nil {
		return handler.operationFailure(StageCommitStable, commitError)
	}
	return nil
}

func (handler *Handler) checkoutMergeBackBranch(executionContext context.Context) error {
	if switchError := handler.repositoryManager.SwitchBranch(executionContext, handler.repositoryDirectory, handler.branches.stable); switchError != nil {
		return handler.operationFailure(StageMergeBackBranch, switchError)
	}
	if creationError := handler.repositoryManager.CreateBranch(executionContext, handler.repositoryDirectory, handler.branches.mergeBack); creationError != nil {
		return handler.operationFailure(StageMergeBackBranch, creationError)
	}
	return nil
}

func (handler *Handler) commitMergeBack(executionContext context.Context) error {
	commitMessage := fmt.Sprintf(mergeBackCommitMessageTemplateConstant, pluginSummary(handler.releaseEntry.Plugins.MergeBackFinalization))
	if commitError := handler.commitBranch(executionContext, handler.branches.mergeBack, commitMessage); commitError != nil {
		return handler.operationFailure(StageCommitMergeBack, commitError)
	}
	return nil
}

func (handler *Handler) mergeMergeBackIntoMain(executionContext context.Context) error {
	if switchError := handler.repositoryManager.SwitchBranch(executionContext, handler.repositoryDirectory, handler.branches.main); switchError != nil {
		return handler.operationFailure(StageMergeBackToMain, switchError)
	}
	if mergeError := handler.repositoryManager.MergeBranch(executionContext, handler.repositoryDirectory, handler.branches.mergeBack); mergeError != nil {
		return handler.operationFailure(StageMergeBackToMain, mergeError)
	}
	return nil
}

func (handler *Handler) commitBranch(executionContext context.Context, branchName string, commitMessage string) error {
	if switchError := handler.repositoryManager.SwitchBranch(executionContext, handler.repositoryDirectory, branchName); switchError != nil {
		return switchError
	}
	if stageError := handler.repositoryManager.StageAll(executionContext, handler.repositoryDirectory); stageError != nil {
		return stageError
	}
	return handler.repositoryManager.Commit(executionContext, handler.repositoryDirectory, commitMessage)
}

func (handler *Handler) pushBranch(executionContext context.Context, branchName string) error {
	if switchError := handler.repositoryManager.SwitchBranch(executionContext, handler.repositoryDirectory, branchName); switchError != nil {
		return switchError
	}
	return handler.repositoryManager.Push(executionContext, handler.repositoryDirectory, remoteNameConstant, branchName, false)
}

func (handler *Handler) tagStable(executionContext context.Context) error {
	tagName := handler.releaseEntry.Public.Version
	if len(tagName) == 0 {
		return nil
	}

	tagExists, probeError := handler.repositoryManager.TagExists(executionContext, handler.repositoryDirectory, tagName)
	if probeError != nil {
		return handler.operationFailure(StagePublish, probeError)
	}

	effectivePolicy := handler.releaseEntry.EffectiveTagPolicy(handler.globalConfiguration)
	if tagExists {
		handler.logger.Info(
			tagAlreadyExistsMessageConstant,
			zap.String(logFieldRepositoryConstant, handler.releaseEntry.Name),
			zap.String(logFieldTagConstant, tagName),
			zap.String(logFieldTagPolicyConstant, string(effectivePolicy)),
		)
		if effectivePolicy == config.TagPolicySkip {
			return nil
		}

		handler.logger.Info(
			tagOverrideMessageConstant,
			zap.String(logFieldRepositoryConstant, handler.releaseEntry.Name),
			zap.String(logFieldTagConstant, tagName),
		)
		if deletionError := handler.repositoryManager.DeleteTag(executionContext, handler.repositoryDirectory, tagName); deletionError != nil {
			return handler.operationFailure(StagePublish, deletionError)
		}
		if deletionError := handler.repositoryManager.DeleteRemoteReference(executionContext, handler.repositoryDirectory, remoteNameConstant, tagName); deletionError != nil {
			return handler.operationFailure(StagePublish, deletionError)
		}
	}

	if tagError := handler.repositoryManager.CreateAnnotatedTag(executionContext, handler.repositoryDirectory, tagName, handler.branches.stable, handler.releaseEntry.Private.TagMessage); tagError != nil {
		return handler.operationFailure(StagePublish, tagError)
	}
	if pushError := handler.repositoryManager.Push(executionContext, handler.repositoryDirectory, remoteNameConstant, tagName, false); pushError != nil {
		return handler.operationFailure(StagePublish, pushError)
	}

	return nil
}

func (handler *Handler) operationFailure(stage string, cause error) error {
	return OperationError{RepositoryName: handler.releaseEntry.Name, Stage: stage, Cause: cause}
}

func pluginSummary(requests []config.PluginRequest) string {
	if len(requests) == 0 {
		return pluginSummaryEmptyLabelConstant
	}
	pluginNames := make([]string, 0, len(requests))
	for _, request := range requests {
		pluginNames = append(pluginNames, request.Name)
	}
	return strings.Join(pluginNames, pluginSummaryJoinSeparatorConstant)
}

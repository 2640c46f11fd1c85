package plugin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/relix/internal/release/config"
)

const (
	dispatcherRegistryRequiredMessageConstant = "plugin dispatcher requires a registry"
	dispatcherEntryRequiredMessageConstant    = "plugin dispatcher requires a release entry"
	notRegisteredErrorTemplateConstant        = "plugin %s is not registered in the %s group; available plugins: %s"
	availableNamesJoinSeparatorConstant       = ", "
	noAvailablePluginsLabelConstant           = "(none)"
	executingPluginMessageConstant            = "executing plugin"
	logFieldPluginNameConstant                = "plugin_name"
	logFieldPluginGroupConstant               = "plugin_group"
	logFieldRepositoryNameConstant            = "repository_name"
)

// Validation errors reported by NewDispatcher.
var (
	ErrRegistryNotConfigured = errors.New(dispatcherRegistryRequiredMessageConstant)
	ErrEntryNotConfigured    = errors.New(dispatcherEntryRequiredMessageConstant)
)

// NotRegisteredError reports a configured plugin name missing from its capability group.
type NotRegisteredError struct {
	Group          Group
	PluginName     string
	AvailableNames []string
}

// Error names the unresolved plugin and lists the registered identifiers.
func (failure NotRegisteredError) Error() string {
	availableNames := noAvailablePluginsLabelConstant
	if len(failure.AvailableNames) > 0 {
		availableNames = strings.Join(failure.AvailableNames, availableNamesJoinSeparatorConstant)
	}
	return fmt.Sprintf(notRegisteredErrorTemplateConstant, failure.PluginName, failure.Group, availableNames)
}

// Dispatcher resolves and runs the plugin requests of one repository.
type Dispatcher struct {
	registry      *Registry
	pluginContext Context
	logger        *zap.Logger
}

// NewDispatcher validates its collaborators and constructs a Dispatcher.
func NewDispatcher(registry *Registry, pluginContext Context) (*Dispatcher, error) {
	if registry == nil {
		return nil, ErrRegistryNotConfigured
	}
	if pluginContext.ReleaseEntry == nil {
		return nil, ErrEntryNotConfigured
	}

	logger := pluginContext.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{registry: registry, pluginContext: pluginContext, logger: logger}, nil
}

// ModifyReleaseBranch runs the release-modification plugin requests in order.
func (dispatcher *Dispatcher) ModifyReleaseBranch(executionContext context.Context) error {
	return dispatcher.runModifiers(executionContext, dispatcher.pluginContext.ReleaseEntry.Plugins.ReleaseModification)
}

// ValidateReleaseBranch runs the release-validation plugin requests in order.
func (dispatcher *Dispatcher) ValidateReleaseBranch(executionContext context.Context) error {
	return dispatcher.runValidators(executionContext, dispatcher.pluginContext.ReleaseEntry.Plugins.ReleaseValidation)
}

// FinalizeMergeBackBranch runs the merge-back finalization plugin requests in order.
//
// Finalization reuses the modification capability group.
func (dispatcher *Dispatcher) FinalizeMergeBackBranch(executionContext context.Context) error {
	return dispatcher.runModifiers(executionContext, dispatcher.pluginContext.ReleaseEntry.Plugins.MergeBackFinalization)
}

func (dispatcher *Dispatcher) runModifiers(executionContext context.Context, requests []config.PluginRequest) error {
	for _, request := range requests {
		factory, factoryExists := dispatcher.registry.LookupModifier(request.Name)
		if !factoryExists {
			return NotRegisteredError{
				Group:          GroupModification,
				PluginName:     request.Name,
				AvailableNames: dispatcher.registry.Names(GroupModification),
			}
		}

		modifier, instantiationError := factory(dispatcher.pluginContext)
		if instantiationError != nil {
			return instantiationError
		}

		dispatcher.logPluginExecution(GroupModification, request.Name)
		if modificationError := modifier.Modify(executionContext, Arguments(request.Arguments)); modificationError != nil {
			return modificationError
		}
	}
	return nil
}

func (dispatcher *Dispatcher) runValidators(executionContext context.Context, requests []config.PluginRequest) error {
	for _, request := range requests {
		factory, factoryExists := dispatcher.registry.LookupValidator(request.Name)
		if !factoryExists {
			return NotRegisteredError{
				Group:          GroupValidation,
				PluginName:     request.Name,
				AvailableNames: dispatcher.registry.Names(GroupValidation),
			}
		}

		validator, instantiationError := factory(dispatcher.pluginContext)
		if instantiationError != nil {
			return instantiationError
		}

		dispatcher.logPluginExecution(GroupValidation, request.Name)
		if validationError := validator.Validate(executionContext, Arguments(request.Arguments)); validationError != nil {
			return validationError
		}
	}
	return nil
}

func (dispatcher *Dispatcher) logPluginExecution(group Group, pluginName string) {
	dispatcher.logger.Info(
		executingPluginMessageConstant,
		zap.String(logFieldPluginGroupConstant, string(group)),
		zap.String(logFieldPluginNameConstant, pluginName),
		zap.String(logFieldRepositoryNameConstant, dispatcher.pluginContext.ReleaseEntry.Name),
	)
}

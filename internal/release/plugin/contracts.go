package plugin

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/relix/internal/execshell"
	"github.com/temirov/relix/internal/release/config"
)

const (
	modificationErrorTemplateConstant = "modification plugin %s failed: %v"
	validationErrorTemplateConstant   = "validation plugin %s failed: %v"
)

// Group identifies one of the two capability groups plugins register under.
type Group string

// Capability groups.
const (
	// GroupModification holds plugins that rewrite repository content.
	GroupModification Group = "modification"
	// GroupValidation holds plugins that verify repository content.
	GroupValidation Group = "validation"
)

// Arguments carries the keyword arguments of one plugin request.
type Arguments map[string]any

// ProgramExecutor runs external programs on behalf of shell-based plugins.
type ProgramExecutor interface {
	ExecuteProgram(executionContext context.Context, programName string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Context supplies the per-repository collaborators a plugin is constructed with.
type Context struct {
	ReleaseEntry        *config.ReleaseEntry
	GlobalConfiguration config.GlobalConfig
	RepositoryDirectory string
	Logger              *zap.Logger
	FileSystem          afero.Fs
	ProgramExecutor     ProgramExecutor
}

// Modifier is the capability contract for content-modifying plugins.
type Modifier interface {
	Modify(executionContext context.Context, arguments Arguments) error
}

// Validator is the capability contract for content-validating plugins.
type Validator interface {
	Validate(executionContext context.Context, arguments Arguments) error
}

// ModifierFactory instantiates a Modifier with the repository context.
type ModifierFactory func(pluginContext Context) (Modifier, error)

// ValidatorFactory instantiates a Validator with the repository context.
type ValidatorFactory func(pluginContext Context) (Validator, error)

// ModificationError reports a failed modification plugin.
type ModificationError struct {
	PluginName string
	Cause      error
}

// Error names the failing plugin and its cause.
func (failure ModificationError) Error() string {
	return fmt.Sprintf(modificationErrorTemplateConstant, failure.PluginName, failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure ModificationError) Unwrap() error {
	return failure.Cause
}

// ValidationError reports a failed validation plugin.
type ValidationError struct {
	PluginName string
	Cause      error
}

// Error names the failing plugin and its cause.
func (failure ValidationError) Error() string {
	return fmt.Sprintf(validationErrorTemplateConstant, failure.PluginName, failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure ValidationError) Unwrap() error {
	return failure.Cause
}

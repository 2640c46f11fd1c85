package release

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/relix/internal/plugins"
	"github.com/temirov/relix/internal/release/plugin"
)

const (
	pluginsCommandUseConstant              = "plugins"
	pluginsCommandShortDescriptionConstant = "List the built-in plugins by group"
	pluginsCommandLongDescriptionConstant  = "plugins prints the identifiers of every built-in modification and validation plugin."

	pluginsGroupHeaderTemplateConstant = "%s:\n"
	pluginsEntryTemplateConstant       = "  %s\n"
)

// PluginsCommandBuilder assembles the plugins command.
type PluginsCommandBuilder struct{}

// Build constructs the Cobra command.
func (builder *PluginsCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   pluginsCommandUseConstant,
		Short: pluginsCommandShortDescriptionConstant,
		Long:  pluginsCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command)
		},
	}
	return command, nil
}

func (builder *PluginsCommandBuilder) run(command *cobra.Command) error {
	registry := plugin.NewRegistry()
	if registrationError := plugins.RegisterBuiltins(registry); registrationError != nil {
		return registrationError
	}

	for _, pluginGroup := range []plugin.Group{plugin.GroupModification, plugin.GroupValidation} {
		fmt.Fprintf(command.OutOrStdout(), pluginsGroupHeaderTemplateConstant, pluginGroup)
		for _, pluginName := range registry.Names(pluginGroup) {
			fmt.Fprintf(command.OutOrStdout(), pluginsEntryTemplateConstant, pluginName)
		}
	}
	return nil
}

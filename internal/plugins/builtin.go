// Package plugins registers the built-in release plugins into a registry.
package plugins

import (
	"github.com/temirov/relix/internal/plugins/modify"
	"github.com/temirov/relix/internal/plugins/validate"
	"github.com/temirov/relix/internal/release/plugin"
)

// RegisterBuiltins adds every built-in plugin to the registry under its group.
//
// The registry is left unfrozen so callers can add further plugins before
// freezing it themselves.
func RegisterBuiltins(registry *plugin.Registry) error {
	modifierFactories := map[string]plugin.ModifierFactory{
		modify.RegexReplacerPluginName:             modify.NewRegexReplacer,
		modify.ChangelogVersionUpdaterPluginName:   modify.NewChangelogVersionUpdater,
		modify.ChangelogUnreleasedSetterPluginName: modify.NewChangelogUnreleasedSetter,
		modify.YAMLFileUpdaterPluginName:           modify.NewYAMLFileUpdater,
		modify.DependencyPinUpdaterPluginName:      modify.NewDependencyPinUpdater,
		modify.ShellModifierPluginName:             modify.NewShellModifier,
	}
	for pluginName, factory := range modifierFactories {
		if registrationError := registry.RegisterModifier(pluginName, factory); registrationError != nil {
			return registrationError
		}
	}

	validatorFactories := map[string]plugin.ValidatorFactory{
		validate.ShellValidatorPluginName: validate.NewShellValidator,
	}
	for pluginName, factory := range validatorFactories {
		if registrationError := registry.RegisterValidator(pluginName, factory); registrationError != nil {
			return registrationError
		}
	}

	return nil
}

package plugin

import (
	"fmt"
	"sort"
	"strings"
)

const (
	registryFrozenErrorTemplateConstant     = "plugin registry is frozen; cannot register %s plugin %s"
	registryDuplicateErrorTemplateConstant  = "plugin %s is already registered in the %s group"
	registryEmptyNameErrorTemplateConstant  = "plugin registration in the %s group requires a non-empty name"
	registryNilFactoryErrorTemplateConstant = "plugin %s in the %s group requires a factory"
)

// Registry maps (group, name) to plugin factories.
//
// The registry is mutable only during startup registration; Freeze marks the
// end of initialization, after which further registrations are rejected.
type Registry struct {
	modifierFactories  map[string]ModifierFactory
	validatorFactories map[string]ValidatorFactory
	frozen             bool
}

// NewRegistry constructs an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		modifierFactories:  map[string]ModifierFactory{},
		validatorFactories: map[string]ValidatorFactory{},
	}
}

// RegisterModifier adds a factory to the modification group.
func (registry *Registry) RegisterModifier(pluginName string, factory ModifierFactory) error {
	if registrationError := registry.validateRegistration(GroupModification, pluginName, factory == nil); registrationError != nil {
		return registrationError
	}
	if _, alreadyRegistered := registry.modifierFactories[pluginName]; alreadyRegistered {
		return fmt.Errorf(registryDuplicateErrorTemplateConstant, pluginName, GroupModification)
	}
	registry.modifierFactories[pluginName] = factory
	return nil
}

// RegisterValidator adds a factory to the validation group.
func (registry *Registry) RegisterValidator(pluginName string, factory ValidatorFactory) error {
	if registrationError := registry.validateRegistration(GroupValidation, pluginName, factory == nil); registrationError != nil {
		return registrationError
	}
	if _, alreadyRegistered := registry.validatorFactories[pluginName]; alreadyRegistered {
		return fmt.Errorf(registryDuplicateErrorTemplateConstant, pluginName, GroupValidation)
	}
	registry.validatorFactories[pluginName] = factory
	return nil
}

// Freeze ends the registration phase; subsequent registrations fail.
func (registry *Registry) Freeze() {
	registry.frozen = true
}

// LookupModifier resolves a modification-group factory by name.
func (registry *Registry) LookupModifier(pluginName string) (ModifierFactory, bool) {
	factory, factoryExists := registry.modifierFactories[pluginName]
	return factory, factoryExists
}

// LookupValidator resolves a validation-group factory by name.
func (registry *Registry) LookupValidator(pluginName string) (ValidatorFactory, bool) {
	factory, factoryExists := registry.validatorFactories[pluginName]
	return factory, factoryExists
}

// Names returns the sorted plugin identifiers registered in the given group.
func (registry *Registry) Names(group Group) []string {
	var names []string
	switch group {
	case GroupModification:
		for pluginName := range registry.modifierFactories {
			names = append(names, pluginName)
		}
	case GroupValidation:
		for pluginName := range registry.validatorFactories {
			names = append(names, pluginName)
		}
	}
	sort.Strings(names)
	return names
}

func (registry *Registry) validateRegistration(group Group, pluginName string, factoryMissing bool) error {
	if registry.frozen {
		return fmt.Errorf(registryFrozenErrorTemplateConstant, group, pluginName)
	}
	if len(strings.TrimSpace(pluginName)) == 0 {
		return fmt.Errorf(registryEmptyNameErrorTemplateConstant, group)
	}
	if factoryMissing {
		return fmt.Errorf(registryNilFactoryErrorTemplateConstant, pluginName, group)
	}
	return nil
}

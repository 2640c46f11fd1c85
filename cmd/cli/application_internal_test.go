package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewApplicationRegistersSubcommands(t *testing.T) {
	application := NewApplication()

	registeredNames := []string{}
	for _, subcommand := range application.rootCommand.Commands() {
		registeredNames = append(registeredNames, subcommand.Name())
	}

	require.Contains(t, registeredNames, "release")
	require.Contains(t, registeredNames, "order")
	require.Contains(t, registeredNames, "plugins")
}

func TestInitializeConfigurationAppliesDefaults(t *testing.T) {
	application := NewApplication()

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(t, initializationError)

	require.Equal(t, "info", application.configuration.Common.LogLevel)
	require.Equal(t, "structured", application.configuration.Common.LogFormat)
	require.Equal(t, "release_config.yml", application.configuration.Tools.Release.ConfigurationPath)
	require.Equal(t, ".relix-repositories", application.configuration.Tools.Release.RepositoriesRoot)
	require.NotNil(t, application.logger)
}

func TestInitializeConfigurationHonorsLoggingFlagOverrides(t *testing.T) {
	application := NewApplication()
	rootCommand := application.rootCommand

	require.NoError(t, rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "debug"))
	require.NoError(t, rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, "console"))

	initializationError := application.initializeConfiguration(rootCommand)
	require.NoError(t, initializationError)

	require.Equal(t, "debug", application.configuration.Common.LogLevel)
	require.Equal(t, "console", application.configuration.Common.LogFormat)
}

func TestInitializeConfigurationRejectsUnknownLogLevel(t *testing.T) {
	application := NewApplication()
	rootCommand := application.rootCommand

	require.NoError(t, rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "verbose"))

	initializationError := application.initializeConfiguration(rootCommand)
	require.Error(t, initializationError)
	require.Contains(t, initializationError.Error(), "unable to create logger")
}

package release

import "go.uber.org/zap"

const (
	configurationPathKeySuffixConstant = ".configuration_path"
	repositoriesRootKeySuffixConstant  = ".repositories_root"

	// DefaultReleaseConfigurationPath is the release configuration file
	// consulted when neither the flag nor the application configuration
	// name one.
	DefaultReleaseConfigurationPath = "release_config.yml"
	// DefaultRepositoriesRoot is the directory repositories are cloned
	// into, relative to the current working directory.
	DefaultRepositoriesRoot = ".relix-repositories"
)

// LoggerProvider supplies the logger configured by the CLI entrypoint.
type LoggerProvider func() *zap.Logger

// CommandConfiguration captures persisted settings for the release commands.
type CommandConfiguration struct {
	ConfigurationPath string `mapstructure:"configuration_path"`
	RepositoriesRoot  string `mapstructure:"repositories_root"`
}

// DefaultConfigurationValues exposes Viper defaults for the release commands.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + configurationPathKeySuffixConstant: DefaultReleaseConfigurationPath,
		configurationKeyPrefix + repositoriesRootKeySuffixConstant:  DefaultRepositoriesRoot,
	}
}

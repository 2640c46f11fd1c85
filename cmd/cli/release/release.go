package release

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/relix/internal/execshell"
	"github.com/temirov/relix/internal/plugins"
	"github.com/temirov/relix/internal/release/config"
	"github.com/temirov/relix/internal/release/orchestrator"
	"github.com/temirov/relix/internal/release/plugin"
	"github.com/temirov/relix/internal/ui"
	"github.com/temirov/relix/internal/utils/flags"
	pathutils "github.com/temirov/relix/internal/utils/path"
)

const (
	releaseCommandUseConstant              = "release"
	releaseCommandShortDescriptionConstant = "Release every configured repository in dependency order"
	releaseCommandLongDescriptionConstant  = "release clones the configured repositories, runs their modification and validation plugins on dedicated branches, merges the results, and publishes branches and tags according to the tag policy."

	configurationFlagNameConstant          = "conf"
	configurationFlagUsageConstant         = "Path to the release configuration file."
	testRunFlagNameConstant                = "test"
	testRunFlagUsageConstant               = "Rehearse the release without publishing. Overrides test_run of the global configuration."
	authorFlagNameConstant                 = "author"
	authorFlagUsageConstant                = "Author of the release. Overrides git_user_name of the global configuration."
	emailFlagNameConstant                  = "email"
	emailFlagUsageConstant                 = "The author's email. Overrides git_user_email of the global configuration."
	globalTagPolicyFlagNameConstant        = "global-tag-policy"
	globalTagPolicyFlagDescriptionConstant = "Tag policy applied when a release tag already exists. Overrides tag_policy of the global configuration."
	repositoriesRootFlagNameConstant       = "repositories-root"
	repositoriesRootFlagUsageConstant      = "Directory repositories are cloned into."

	releaseRunFailedErrorTemplateConstant  = "release run failed: %w"
	loadConfigurationErrorTemplateConstant = "unable to load release configuration: %w"
)

var tagPolicyChoices = []string{string(config.TagPolicySkip), string(config.TagPolicyOverride)}

// ReleaseCommandBuilder assembles the release command.
type ReleaseCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration

	// Executor and FileSystem may be overridden in tests; when nil the
	// command uses the operating system implementations.
	Executor   orchestrator.CommandExecutor
	FileSystem afero.Fs
}

// Build constructs the Cobra command.
func (builder *ReleaseCommandBuilder) Build() (*cobra.Command, error) {
	var (
		configurationPathFlagValue string
		testRunFlagValue           bool
		authorFlagValue            string
		emailFlagValue             string
		globalTagPolicyFlagValue   string
		repositoriesRootFlagValue  string
	)

	command := &cobra.Command{
		Use:   releaseCommandUseConstant,
		Short: releaseCommandShortDescriptionConstant,
		Long:  releaseCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, releaseCommandOptions{
				configurationPath: configurationPathFlagValue,
				testRun:           testRunFlagValue,
				author:            authorFlagValue,
				email:             emailFlagValue,
				globalTagPolicy:   globalTagPolicyFlagValue,
				repositoriesRoot:  repositoriesRootFlagValue,
			})
		},
	}

	command.Flags().StringVar(&configurationPathFlagValue, configurationFlagNameConstant, "", configurationFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), &testRunFlagValue, testRunFlagNameConstant, "", false, testRunFlagUsageConstant)
	command.Flags().StringVar(&authorFlagValue, authorFlagNameConstant, "", authorFlagUsageConstant)
	command.Flags().StringVar(&emailFlagValue, emailFlagNameConstant, "", emailFlagUsageConstant)
	command.Flags().StringVar(
		&globalTagPolicyFlagValue,
		globalTagPolicyFlagNameConstant,
		"",
		flags.FormatChoiceUsage(string(config.TagPolicySkip), tagPolicyChoices, globalTagPolicyFlagDescriptionConstant),
	)
	command.Flags().StringVar(&repositoriesRootFlagValue, repositoriesRootFlagNameConstant, "", repositoriesRootFlagUsageConstant)

	return command, nil
}

type releaseCommandOptions struct {
	configurationPath string
	testRun           bool
	author            string
	email             string
	globalTagPolicy   string
	repositoriesRoot  string
}

func (builder *ReleaseCommandBuilder) run(command *cobra.Command, options releaseCommandOptions) error {
	logger := builder.resolveLogger()
	fileSystem := builder.resolveFileSystem()
	homeExpander := pathutils.NewHomeExpander()

	globalConfiguration, releaseEntries, loadError := loadReleaseConfiguration(builder.ConfigurationProvider, fileSystem, homeExpander, options.configurationPath)
	if loadError != nil {
		return loadError
	}

	overrides, overridesError := builder.buildOverrides(command, options)
	if overridesError != nil {
		return overridesError
	}
	globalConfiguration = overrides.Apply(globalConfiguration)

	registry := plugin.NewRegistry()
	if registrationError := plugins.RegisterBuiltins(registry); registrationError != nil {
		return registrationError
	}
	registry.Freeze()

	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	repositoriesRoot := builder.resolveRepositoriesRoot(options.repositoriesRoot, homeExpander)
	service, serviceCreationError := orchestrator.NewService(orchestrator.Dependencies{
		Registry:         registry,
		Executor:         executor,
		FileSystem:       fileSystem,
		RepositoriesRoot: repositoriesRoot,
		Logger:           logger,
	})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	outcomes, runError := service.Run(command.Context(), releaseEntries, globalConfiguration)
	printOutcomes(command, outcomes)
	if runError != nil {
		return fmt.Errorf(releaseRunFailedErrorTemplateConstant, runError)
	}
	return nil
}

// buildOverrides maps only the flags the user actually set, so unset flags
// never clobber file-provided global configuration.
func (builder *ReleaseCommandBuilder) buildOverrides(command *cobra.Command, options releaseCommandOptions) (config.Overrides, error) {
	overrides := config.Overrides{}
	commandFlags := command.Flags()

	if commandFlags.Changed(testRunFlagNameConstant) {
		testRunValue := options.testRun
		overrides.TestRun = &testRunValue
	}
	if commandFlags.Changed(authorFlagNameConstant) {
		authorValue := options.author
		overrides.GitUserName = &authorValue
	}
	if commandFlags.Changed(emailFlagNameConstant) {
		emailValue := options.email
		overrides.GitUserEmail = &emailValue
	}
	if commandFlags.Changed(globalTagPolicyFlagNameConstant) {
		tagPolicyValue, parseError := config.ParseTagPolicy(options.globalTagPolicy)
		if parseError != nil {
			return config.Overrides{}, parseError
		}
		overrides.TagPolicy = &tagPolicyValue
	}

	return overrides, nil
}

func (builder *ReleaseCommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider != nil {
		if logger := builder.LoggerProvider(); logger != nil {
			return logger
		}
	}
	return zap.NewNop()
}

func (builder *ReleaseCommandBuilder) resolveFileSystem() afero.Fs {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return afero.NewOsFs()
}

func (builder *ReleaseCommandBuilder) resolveExecutor(logger *zap.Logger) (orchestrator.CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
}

func (builder *ReleaseCommandBuilder) resolveRepositoriesRoot(flagValue string, homeExpander *pathutils.HomeExpander) string {
	repositoriesRoot := strings.TrimSpace(flagValue)
	if len(repositoriesRoot) == 0 && builder.ConfigurationProvider != nil {
		repositoriesRoot = strings.TrimSpace(builder.ConfigurationProvider().RepositoriesRoot)
	}
	if len(repositoriesRoot) == 0 {
		repositoriesRoot = DefaultRepositoriesRoot
	}
	return homeExpander.Expand(repositoriesRoot)
}

func printOutcomes(command *cobra.Command, outcomes []orchestrator.RepositoryOutcome) {
	outcomeFormatter := ui.OutcomeFormatter{}
	fmt.Fprint(command.OutOrStdout(), outcomeFormatter.FormatOutcomes(outcomes))
}

// loadReleaseConfiguration resolves the configuration path from the flag, the
// application configuration, and the default, then parses the file.
func loadReleaseConfiguration(configurationProvider func() CommandConfiguration, fileSystem afero.Fs, homeExpander *pathutils.HomeExpander, flagValue string) (config.GlobalConfig, []config.ReleaseEntry, error) {
	configurationPath := strings.TrimSpace(flagValue)
	if len(configurationPath) == 0 && configurationProvider != nil {
		configurationPath = strings.TrimSpace(configurationProvider().ConfigurationPath)
	}
	if len(configurationPath) == 0 {
		configurationPath = DefaultReleaseConfigurationPath
	}

	globalConfiguration, releaseEntries, loadError := config.LoadReleaseConfiguration(fileSystem, homeExpander.Expand(configurationPath))
	if loadError != nil {
		return config.GlobalConfig{}, nil, fmt.Errorf(loadConfigurationErrorTemplateConstant, loadError)
	}
	return globalConfiguration, releaseEntries, nil
}

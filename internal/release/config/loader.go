package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	configurationReadErrorTemplateConstant      = "failed to read release configuration: %w"
	configurationParseErrorTemplateConstant     = "failed to parse release configuration: %w"
	configurationPathRequiredMessageConstant    = "release configuration path must be provided"
	configurationRepositoriesMissingMessage     = "release configuration must define at least one repository"
	gitUserNameRequiredMessageConstant          = "global configuration requires git_user_name"
	gitUserEmailRequiredMessageConstant         = "global configuration requires git_user_email"
	repositoryURLRequiredTemplateConstant       = "repository %s requires a url"
	unsupportedTagPolicyTemplateConstant        = "unsupported tag policy %q"
	unknownDependencyErrorTemplateConstant      = "repository %s depends on unknown repository %s"
	pluginRequestShapeErrorMessageConstant      = "plugin request must be a single-key mapping of plugin name to arguments"
	pluginRequestArgumentsErrorTemplateConstant = "plugin %s arguments must form a mapping: %w"
	pluginRequestNameRequiredMessageConstant    = "plugin request requires a non-empty plugin name"
	repositoryNameRequiredMessageConstant       = "repository names must be non-empty"
	globalConfigurationSectionRequiredMessage   = "release configuration must define a global_config section"
)

// UnknownDependencyError reports a dependency reference to a repository that is not configured.
type UnknownDependencyError struct {
	RepositoryName string
	DependencyName string
}

// Error names the dependent repository and the missing dependency.
func (failure UnknownDependencyError) Error() string {
	return fmt.Sprintf(unknownDependencyErrorTemplateConstant, failure.RepositoryName, failure.DependencyName)
}

// ParseTagPolicy validates a raw tag policy value, defaulting empty input to TagPolicySkip.
func ParseTagPolicy(rawValue string) (TagPolicy, error) {
	trimmedValue := strings.TrimSpace(rawValue)
	switch TagPolicy(trimmedValue) {
	case TagPolicySkip, TagPolicyOverride:
		return TagPolicy(trimmedValue), nil
	}
	if len(trimmedValue) == 0 {
		return TagPolicySkip, nil
	}
	return "", fmt.Errorf(unsupportedTagPolicyTemplateConstant, rawValue)
}

type releaseConfigurationDocument struct {
	GlobalConfig *globalConfigDocument         `yaml:"global_config"`
	Repositories map[string]repositoryDocument `yaml:"repositories"`
}

type globalConfigDocument struct {
	GitUserName  string `yaml:"git_user_name"`
	GitUserEmail string `yaml:"git_user_email"`
	TagPolicy    string `yaml:"tag_policy"`
	TestRun      bool   `yaml:"test_run"`
}

type repositoryDocument struct {
	URL          string           `yaml:"url"`
	Version      string           `yaml:"version"`
	MainBranch   string           `yaml:"main_branch"`
	StableBranch string           `yaml:"stable_branch"`
	Dependencies []string         `yaml:"dependencies"`
	TagMessage   string           `yaml:"tag_message"`
	TagPolicy    string           `yaml:"tag_policy"`
	MetaData     map[string]any   `yaml:"meta_data"`
	SkipRelease  bool             `yaml:"skip_release"`
	Plugins      *pluginsDocument `yaml:"plugins"`
}

type pluginsDocument struct {
	ReleaseModification   []pluginRequestDocument `yaml:"release_modification"`
	ReleaseValidation     []pluginRequestDocument `yaml:"release_validation"`
	MergeBackFinalization []pluginRequestDocument `yaml:"merge_back_finalization"`
}

type pluginRequestDocument struct {
	pluginName      string
	pluginArguments map[string]any
}

// UnmarshalYAML decodes the {plugin_name: kwargs_or_null} request shape.
func (document *pluginRequestDocument) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return errors.New(pluginRequestShapeErrorMessageConstant)
	}

	keyNode := node.Content[0]
	valueNode := node.Content[1]

	pluginName := strings.TrimSpace(keyNode.Value)
	if len(pluginName) == 0 {
		return errors.New(pluginRequestNameRequiredMessageConstant)
	}
	document.pluginName = pluginName

	if valueNode.Tag == "!!null" {
		document.pluginArguments = nil
		return nil
	}

	pluginArguments := map[string]any{}
	if decodeError := valueNode.Decode(&pluginArguments); decodeError != nil {
		return fmt.Errorf(pluginRequestArgumentsErrorTemplateConstant, pluginName, decodeError)
	}
	document.pluginArguments = pluginArguments
	return nil
}

// LoadReleaseConfiguration reads and validates the release configuration file.
//
// The returned entries are sorted by repository name; the dependency resolver
// establishes the processing order separately.
func LoadReleaseConfiguration(fileSystem afero.Fs, configurationPath string) (GlobalConfig, []ReleaseEntry, error) {
	trimmedPath := strings.TrimSpace(configurationPath)
	if len(trimmedPath) == 0 {
		return GlobalConfig{}, nil, errors.New(configurationPathRequiredMessageConstant)
	}

	contentBytes, readError := afero.ReadFile(fileSystem, trimmedPath)
	if readError != nil {
		return GlobalConfig{}, nil, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
	}

	return ParseReleaseConfiguration(contentBytes)
}

// ParseReleaseConfiguration converts raw YAML content into the typed release model.
func ParseReleaseConfiguration(contentBytes []byte) (GlobalConfig, []ReleaseEntry, error) {
	var document releaseConfigurationDocument
	if unmarshalError := yaml.Unmarshal(contentBytes, &document); unmarshalError != nil {
		return GlobalConfig{}, nil, fmt.Errorf(configurationParseErrorTemplateConstant, unmarshalError)
	}

	if document.GlobalConfig == nil {
		return GlobalConfig{}, nil, errors.New(globalConfigurationSectionRequiredMessage)
	}
	if len(document.Repositories) == 0 {
		return GlobalConfig{}, nil, errors.New(configurationRepositoriesMissingMessage)
	}

	globalConfiguration, globalError := buildGlobalConfiguration(*document.GlobalConfig)
	if globalError != nil {
		return GlobalConfig{}, nil, globalError
	}

	releaseEntries, entriesError := buildReleaseEntries(document.Repositories)
	if entriesError != nil {
		return GlobalConfig{}, nil, entriesError
	}

	return globalConfiguration, releaseEntries, nil
}

func buildGlobalConfiguration(document globalConfigDocument) (GlobalConfig, error) {
	if len(strings.TrimSpace(document.GitUserName)) == 0 {
		return GlobalConfig{}, errors.New(gitUserNameRequiredMessageConstant)
	}
	if len(strings.TrimSpace(document.GitUserEmail)) == 0 {
		return GlobalConfig{}, errors.New(gitUserEmailRequiredMessageConstant)
	}

	tagPolicy, policyError := ParseTagPolicy(document.TagPolicy)
	if policyError != nil {
		return GlobalConfig{}, policyError
	}

	return GlobalConfig{
		GitUserName:  strings.TrimSpace(document.GitUserName),
		GitUserEmail: strings.TrimSpace(document.GitUserEmail),
		TagPolicy:    tagPolicy,
		TestRun:      document.TestRun,
	}, nil
}

func buildReleaseEntries(repositories map[string]repositoryDocument) ([]ReleaseEntry, error) {
	repositoryNames := make([]string, 0, len(repositories))
	for repositoryName := range repositories {
		if len(strings.TrimSpace(repositoryName)) == 0 {
			return nil, errors.New(repositoryNameRequiredMessageConstant)
		}
		repositoryNames = append(repositoryNames, repositoryName)
	}
	sort.Strings(repositoryNames)

	publicEntries := make(map[string]PublicReleaseEntry, len(repositories))
	for _, repositoryName := range repositoryNames {
		document := repositories[repositoryName]
		if len(strings.TrimSpace(document.URL)) == 0 {
			return nil, fmt.Errorf(repositoryURLRequiredTemplateConstant, repositoryName)
		}
		publicEntries[repositoryName] = buildPublicEntry(repositoryName, document)
	}

	releaseEntries := make([]ReleaseEntry, 0, len(repositories))
	for _, repositoryName := range repositoryNames {
		document := repositories[repositoryName]

		privateEntry, privateError := buildPrivateEntry(repositoryName, document, publicEntries)
		if privateError != nil {
			return nil, privateError
		}

		releaseEntries = append(releaseEntries, ReleaseEntry{
			Name:    repositoryName,
			Public:  publicEntries[repositoryName],
			Private: privateEntry,
			Plugins: buildPluginEntries(document.Plugins),
		})
	}

	return releaseEntries, nil
}

func buildPublicEntry(repositoryName string, document repositoryDocument) PublicReleaseEntry {
	mainBranch := strings.TrimSpace(document.MainBranch)
	if len(mainBranch) == 0 {
		mainBranch = DefaultMainBranchName
	}
	stableBranch := strings.TrimSpace(document.StableBranch)
	if len(stableBranch) == 0 {
		stableBranch = DefaultStableBranchName
	}

	return PublicReleaseEntry{
		Name:         repositoryName,
		URL:          strings.TrimSpace(document.URL),
		Version:      strings.TrimSpace(document.Version),
		MainBranch:   mainBranch,
		StableBranch: stableBranch,
	}
}

func buildPrivateEntry(repositoryName string, document repositoryDocument, publicEntries map[string]PublicReleaseEntry) (PrivateReleaseEntry, error) {
	var tagPolicy TagPolicy
	if len(strings.TrimSpace(document.TagPolicy)) > 0 {
		parsedPolicy, policyError := ParseTagPolicy(document.TagPolicy)
		if policyError != nil {
			return PrivateReleaseEntry{}, policyError
		}
		tagPolicy = parsedPolicy
	}

	dependencies := make(map[string]PublicReleaseEntry, len(document.Dependencies))
	for _, dependencyName := range document.Dependencies {
		publicEntry, dependencyExists := publicEntries[dependencyName]
		if !dependencyExists {
			return PrivateReleaseEntry{}, UnknownDependencyError{RepositoryName: repositoryName, DependencyName: dependencyName}
		}
		dependencies[dependencyName] = publicEntry
	}

	return PrivateReleaseEntry{
		TagMessage:   document.TagMessage,
		TagPolicy:    tagPolicy,
		MetaData:     document.MetaData,
		Dependencies: dependencies,
		ShouldSkip:   document.SkipRelease,
	}, nil
}

func buildPluginEntries(document *pluginsDocument) PluginEntries {
	if document == nil {
		return PluginEntries{}
	}
	return PluginEntries{
		ReleaseModification:   buildPluginRequests(document.ReleaseModification),
		ReleaseValidation:     buildPluginRequests(document.ReleaseValidation),
		MergeBackFinalization: buildPluginRequests(document.MergeBackFinalization),
	}
}

func buildPluginRequests(documents []pluginRequestDocument) []PluginRequest {
	if len(documents) == 0 {
		return nil
	}
	requests := make([]PluginRequest, 0, len(documents))
	for _, document := range documents {
		requests = append(requests, PluginRequest{Name: document.pluginName, Arguments: document.pluginArguments})
	}
	return requests
}

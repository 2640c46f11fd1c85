package modify

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/temirov/relix/internal/release/config"
	"github.com/temirov/relix/internal/release/plugin"
)

// DependencyPinUpdaterPluginName identifies the dependency pin rewriting plugin in the modification group.
const DependencyPinUpdaterPluginName = "dependency-pin-updater"

const (
	defaultRequirementsFileNameConstant = "requirements.txt"
	tomlFileExtensionConstant           = ".toml"
	urlSchemePrefixExpressionConstant   = `(?i)^(?:git@|https://)`
	urlGitSuffixExpressionConstant      = `(?i)\.git.*$`
	dependencyPinTemplateConstant       = `(?mi)(.*%s(?:\.git)?)(@[^\s"']*)?$`
	dependencyPinReplacementConstant    = "${1}@"
	tomlParseErrorTemplateConstant      = "parsing %s failed: %w"
	tomlEncodeErrorTemplateConstant     = "encoding %s failed: %w"
	tomlProjectMissingTemplateConstant  = "%s is not a valid pyproject.toml: missing project section"
	tomlProjectSectionKeyConstant       = "project"
	tomlDependenciesKeyConstant         = "dependencies"
	tomlOptionalDependenciesKeyConstant = "optional-dependencies"
)

var (
	urlSchemePrefixPattern = regexp.MustCompile(urlSchemePrefixExpressionConstant)
	urlGitSuffixPattern    = regexp.MustCompile(urlGitSuffixExpressionConstant)
)

type dependencyPinUpdaterOptions struct {
	Files []string `mapstructure:"files"`
}

// DependencyPinUpdater rewrites git reference pins of configured dependencies
// to the versions released in the same run.
type DependencyPinUpdater struct {
	pluginContext plugin.Context
}

// NewDependencyPinUpdater constructs the dependency pin rewriting plugin.
func NewDependencyPinUpdater(pluginContext plugin.Context) (plugin.Modifier, error) {
	return &DependencyPinUpdater{pluginContext: pluginContext}, nil
}

// Modify rewrites `<url>@<ref>` pins in every configured file.
//
// Rehearsal runs pin dependencies to their main branch instead of the release
// version, so a rehearsal exercises unreleased dependency state. TOML files
// are rewritten structurally through their project dependency arrays; every
// other file is treated as line-oriented text.
func (updater *DependencyPinUpdater) Modify(_ context.Context, arguments plugin.Arguments) error {
	options := dependencyPinUpdaterOptions{}
	if decodeError := plugin.DecodeArguments(arguments, &options); decodeError != nil {
		return updater.failure(decodeError)
	}
	if len(options.Files) == 0 {
		options.Files = []string{defaultRequirementsFileNameConstant}
	}

	for _, relativeFilePath := range options.Files {
		if updateError := updater.updateFile(relativeFilePath); updateError != nil {
			return updater.failure(updateError)
		}
	}
	return nil
}

func (updater *DependencyPinUpdater) updateFile(relativeFilePath string) error {
	filePath := filepath.Join(updater.pluginContext.RepositoryDirectory, relativeFilePath)

	for _, dependency := range updater.sortedDependencies() {
		reference := updater.determineReference(dependency)
		pinPattern, compileError := compilePattern(fmt.Sprintf(dependencyPinTemplateConstant, regexp.QuoteMeta(stripDependencyURL(dependency.URL))))
		if compileError != nil {
			return compileError
		}
		replacement := dependencyPinReplacementConstant + reference

		if strings.EqualFold(filepath.Ext(filePath), tomlFileExtensionConstant) {
			if tomlError := updater.updateTOMLFile(filePath, pinPattern, replacement); tomlError != nil {
				return tomlError
			}
			continue
		}

		// A missing text file or one without a pin for this dependency is left alone.
		fileExists, existenceError := afero.Exists(updater.pluginContext.FileSystem, filePath)
		if existenceError != nil {
			return fmt.Errorf(fileReadErrorTemplateConstant, filePath, existenceError)
		}
		if !fileExists {
			continue
		}
		if _, rewriteError := rewriteFile(updater.pluginContext.FileSystem, filePath, pinPattern, replacement, 0); rewriteError != nil {
			return rewriteError
		}
	}
	return nil
}

// sortedDependencies returns the configured dependencies in name order so
// rewrites are deterministic.
func (updater *DependencyPinUpdater) sortedDependencies() []config.PublicReleaseEntry {
	dependencyNames := make([]string, 0, len(updater.pluginContext.ReleaseEntry.Private.Dependencies))
	for dependencyName := range updater.pluginContext.ReleaseEntry.Private.Dependencies {
		dependencyNames = append(dependencyNames, dependencyName)
	}
	sort.Strings(dependencyNames)

	dependencies := make([]config.PublicReleaseEntry, 0, len(dependencyNames))
	for _, dependencyName := range dependencyNames {
		dependencies = append(dependencies, updater.pluginContext.ReleaseEntry.Private.Dependencies[dependencyName])
	}
	return dependencies
}

// determineReference picks the dependency reference to pin: the main branch
// when no version is configured or during a rehearsal run, the released
// version otherwise.
func (updater *DependencyPinUpdater) determineReference(dependency config.PublicReleaseEntry) string {
	if len(dependency.Version) == 0 || updater.pluginContext.GlobalConfiguration.TestRun {
		return dependency.MainBranch
	}
	return dependency.Version
}

func (updater *DependencyPinUpdater) updateTOMLFile(filePath string, pinPattern *regexp.Regexp, replacement string) error {
	fileContent, readError := afero.ReadFile(updater.pluginContext.FileSystem, filePath)
	if readError != nil {
		return fmt.Errorf(fileReadErrorTemplateConstant, filePath, readError)
	}

	document := map[string]any{}
	if unmarshalError := toml.Unmarshal(fileContent, &document); unmarshalError != nil {
		return fmt.Errorf(tomlParseErrorTemplateConstant, filePath, unmarshalError)
	}

	projectSection, projectSectionExists := document[tomlProjectSectionKeyConstant].(map[string]any)
	if !projectSectionExists {
		return fmt.Errorf(tomlProjectMissingTemplateConstant, filePath)
	}

	if dependencyList, dependencyListExists := projectSection[tomlDependenciesKeyConstant].([]any); dependencyListExists {
		rewriteDependencyList(dependencyList, pinPattern, replacement)
	}
	if optionalGroups, optionalGroupsExist := projectSection[tomlOptionalDependenciesKeyConstant].(map[string]any); optionalGroupsExist {
		for _, groupEntries := range optionalGroups {
			if dependencyList, dependencyListExists := groupEntries.([]any); dependencyListExists {
				rewriteDependencyList(dependencyList, pinPattern, replacement)
			}
		}
	}

	encodedDocument, encodeError := toml.Marshal(document)
	if encodeError != nil {
		return fmt.Errorf(tomlEncodeErrorTemplateConstant, filePath, encodeError)
	}
	return afero.WriteFile(updater.pluginContext.FileSystem, filePath, encodedDocument, rewrittenFilePermissionsConstant)
}

func rewriteDependencyList(dependencyList []any, pinPattern *regexp.Regexp, replacement string) {
	for entryIndex, entry := range dependencyList {
		entryString, entryIsString := entry.(string)
		if !entryIsString {
			continue
		}
		rewrittenEntry, _ := replaceMatches(pinPattern, entryString, replacement, 1)
		dependencyList[entryIndex] = rewrittenEntry
	}
}

// stripDependencyURL removes the scheme or git user prefix and the .git
// suffix so the remaining host/path fragment matches any pin notation.
func stripDependencyURL(dependencyURL string) string {
	strippedURL := urlGitSuffixPattern.ReplaceAllString(dependencyURL, "")
	return urlSchemePrefixPattern.ReplaceAllString(strippedURL, "")
}

func (updater *DependencyPinUpdater) failure(cause error) error {
	return plugin.ModificationError{PluginName: DependencyPinUpdaterPluginName, Cause: cause}
}

package modify

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/temirov/relix/internal/release/plugin"
)

// Changelog plugin identifiers in the modification group.
const (
	ChangelogVersionUpdaterPluginName   = "changelog-version-updater"
	ChangelogUnreleasedSetterPluginName = "changelog-unreleased-setter"
)

// Changelog files follow the keep-a-changelog layout
// (https://keepachangelog.com/en/1.0.0/).
const (
	defaultChangelogFileNameConstant         = "CHANGELOG.md"
	unreleasedHeadingExpressionConstant      = `(?m)^## \[Unreleased\]$`
	releaseSectionExpressionConstant         = `(?m)(^## \[.+\] - \d\d\d\d-\d\d-\d\d$)`
	documentEndExpressionConstant            = `\z`
	releaseDateLayoutConstant                = "2006-01-02"
	releasedHeadingTemplateConstant          = "## [%s] - %s"
	unreleasedSectionMissingTemplateConstant = "%s does not contain an [Unreleased] heading"
	versionRequiredMessageConstant           = "changelog-version-updater requires a version"
	unreleasedSectionSnippetConstant         = `## [Unreleased]

### Known Errors

### Added

### Changed

### Removed

### Fixed

`
)

type changelogOptions struct {
	File    string `mapstructure:"file"`
	Version string `mapstructure:"version"`
}

func (options *changelogOptions) applyDefaults(pluginContext plugin.Context) {
	if len(options.File) == 0 {
		options.File = defaultChangelogFileNameConstant
	}
	if len(options.Version) == 0 {
		options.Version = pluginContext.ReleaseEntry.Public.Version
	}
}

// ChangelogVersionUpdater stamps the [Unreleased] heading with the release version and date.
type ChangelogVersionUpdater struct {
	pluginContext plugin.Context
	currentTime   func() time.Time
}

// NewChangelogVersionUpdater constructs the changelog version stamping plugin.
func NewChangelogVersionUpdater(pluginContext plugin.Context) (plugin.Modifier, error) {
	return &ChangelogVersionUpdater{pluginContext: pluginContext, currentTime: time.Now}, nil
}

// Modify rewrites the [Unreleased] heading to the released version heading.
func (updater *ChangelogVersionUpdater) Modify(_ context.Context, arguments plugin.Arguments) error {
	options := changelogOptions{}
	if decodeError := plugin.DecodeArguments(arguments, &options); decodeError != nil {
		return updater.failure(decodeError)
	}
	options.applyDefaults(updater.pluginContext)
	if len(options.Version) == 0 {
		return updater.failure(errors.New(versionRequiredMessageConstant))
	}

	pattern, compileError := compilePattern(unreleasedHeadingExpressionConstant)
	if compileError != nil {
		return updater.failure(compileError)
	}

	releasedHeading := fmt.Sprintf(releasedHeadingTemplateConstant, options.Version, updater.currentTime().Format(releaseDateLayoutConstant))
	changelogPath := filepath.Join(updater.pluginContext.RepositoryDirectory, options.File)

	replacedCount, rewriteError := rewriteFile(updater.pluginContext.FileSystem, changelogPath, pattern, releasedHeading, 0)
	if rewriteError != nil {
		return updater.failure(rewriteError)
	}
	if replacedCount == 0 {
		return updater.failure(fmt.Errorf(unreleasedSectionMissingTemplateConstant, changelogPath))
	}
	return nil
}

func (updater *ChangelogVersionUpdater) failure(cause error) error {
	return plugin.ModificationError{PluginName: ChangelogVersionUpdaterPluginName, Cause: cause}
}

// ChangelogUnreleasedSetter inserts a fresh [Unreleased] section for the next development cycle.
type ChangelogUnreleasedSetter struct {
	pluginContext plugin.Context
}

// NewChangelogUnreleasedSetter constructs the changelog preparation plugin.
func NewChangelogUnreleasedSetter(pluginContext plugin.Context) (plugin.Modifier, error) {
	return &ChangelogUnreleasedSetter{pluginContext: pluginContext}, nil
}

// Modify inserts an [Unreleased] section above the newest release section.
//
// A changelog that already carries an [Unreleased] heading is left untouched;
// a changelog without any release section gets the section appended.
func (setter *ChangelogUnreleasedSetter) Modify(_ context.Context, arguments plugin.Arguments) error {
	options := changelogOptions{}
	if decodeError := plugin.DecodeArguments(arguments, &options); decodeError != nil {
		return setter.failure(decodeError)
	}
	options.applyDefaults(setter.pluginContext)

	changelogPath := filepath.Join(setter.pluginContext.RepositoryDirectory, options.File)
	fileSystem := setter.pluginContext.FileSystem

	unreleasedPattern, compileError := compilePattern(unreleasedHeadingExpressionConstant)
	if compileError != nil {
		return setter.failure(compileError)
	}

	fileContent, readError := readRepositoryFile(fileSystem, changelogPath)
	if readError != nil {
		return setter.failure(readError)
	}
	if unreleasedPattern.MatchString(fileContent) {
		return nil
	}

	releaseSectionPattern, compileError := compilePattern(releaseSectionExpressionConstant)
	if compileError != nil {
		return setter.failure(compileError)
	}

	replacedCount, rewriteError := rewriteFile(fileSystem, changelogPath, releaseSectionPattern, unreleasedSectionSnippetConstant+"$1", 1)
	if rewriteError != nil {
		return setter.failure(rewriteError)
	}
	if replacedCount > 0 {
		return nil
	}

	documentEndPattern, compileError := compilePattern(documentEndExpressionConstant)
	if compileError != nil {
		return setter.failure(compileError)
	}
	if _, rewriteError := rewriteFile(fileSystem, changelogPath, documentEndPattern, "\n\n"+unreleasedSectionSnippetConstant, 1); rewriteError != nil {
		return setter.failure(rewriteError)
	}
	return nil
}

func (setter *ChangelogUnreleasedSetter) failure(cause error) error {
	return plugin.ModificationError{PluginName: ChangelogUnreleasedSetterPluginName, Cause: cause}
}

package modify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/temirov/relix/internal/release/plugin"
)

// YAMLFileUpdaterPluginName identifies the YAML rewriting plugin in the modification group.
const YAMLFileUpdaterPluginName = "yaml-file-updater"

const (
	yamlUpdaterFileRequiredMessageConstant   = "yaml-file-updater requires a file argument"
	yamlUpdaterValuesRequiredMessageConstant = "yaml-file-updater requires a values argument"
	yamlUpdaterParseErrorTemplateConstant    = "parsing %s failed: %w"
	yamlUpdaterEncodeErrorTemplateConstant   = "encoding %s failed: %w"
	yamlValuePathSeparatorConstant           = "/"
	yamlUpdaterDirectoryPermissionsConstant  = os.FileMode(0o755)
)

type yamlFileUpdaterOptions struct {
	File   string         `mapstructure:"file"`
	Values map[string]any `mapstructure:"values"`
}

// YAMLFileUpdater deep-updates nested mappings inside a YAML configuration file.
type YAMLFileUpdater struct {
	pluginContext plugin.Context
}

// NewYAMLFileUpdater constructs the YAML rewriting plugin.
func NewYAMLFileUpdater(pluginContext plugin.Context) (plugin.Modifier, error) {
	return &YAMLFileUpdater{pluginContext: pluginContext}, nil
}

// Modify applies every configured value path to the YAML document.
//
// Value keys are slash-separated paths into nested mappings; intermediate
// mappings are created as needed and a missing file is created from scratch.
func (updater *YAMLFileUpdater) Modify(_ context.Context, arguments plugin.Arguments) error {
	options := yamlFileUpdaterOptions{}
	if decodeError := plugin.DecodeArguments(arguments, &options); decodeError != nil {
		return updater.failure(decodeError)
	}
	if len(strings.TrimSpace(options.File)) == 0 {
		return updater.failure(errors.New(yamlUpdaterFileRequiredMessageConstant))
	}
	if len(options.Values) == 0 {
		return updater.failure(errors.New(yamlUpdaterValuesRequiredMessageConstant))
	}

	fileSystem := updater.pluginContext.FileSystem
	configurationPath := filepath.Join(updater.pluginContext.RepositoryDirectory, options.File)

	document, loadError := updater.loadDocument(fileSystem, configurationPath)
	if loadError != nil {
		return updater.failure(loadError)
	}

	for valuePath, value := range options.Values {
		applyValuePath(document, valuePath, value)
	}

	encodedDocument, encodeError := yaml.Marshal(document)
	if encodeError != nil {
		return updater.failure(fmt.Errorf(yamlUpdaterEncodeErrorTemplateConstant, configurationPath, encodeError))
	}
	if writeError := afero.WriteFile(fileSystem, configurationPath, encodedDocument, rewrittenFilePermissionsConstant); writeError != nil {
		return updater.failure(fmt.Errorf(fileWriteErrorTemplateConstant, configurationPath, writeError))
	}
	return nil
}

func (updater *YAMLFileUpdater) loadDocument(fileSystem afero.Fs, configurationPath string) (map[string]any, error) {
	pathExists, existenceError := afero.Exists(fileSystem, configurationPath)
	if existenceError != nil {
		return nil, fmt.Errorf(fileReadErrorTemplateConstant, configurationPath, existenceError)
	}
	if !pathExists {
		if directoryError := fileSystem.MkdirAll(filepath.Dir(configurationPath), yamlUpdaterDirectoryPermissionsConstant); directoryError != nil {
			return nil, fmt.Errorf(fileWriteErrorTemplateConstant, configurationPath, directoryError)
		}
		return map[string]any{}, nil
	}

	fileContent, readError := afero.ReadFile(fileSystem, configurationPath)
	if readError != nil {
		return nil, fmt.Errorf(fileReadErrorTemplateConstant, configurationPath, readError)
	}

	document := map[string]any{}
	if unmarshalError := yaml.Unmarshal(fileContent, &document); unmarshalError != nil {
		return nil, fmt.Errorf(yamlUpdaterParseErrorTemplateConstant, configurationPath, unmarshalError)
	}
	if document == nil {
		document = map[string]any{}
	}
	return document, nil
}

func applyValuePath(document map[string]any, valuePath string, value any) {
	pathElements := strings.Split(valuePath, yamlValuePathSeparatorConstant)
	currentBranch := document
	for _, pathElement := range pathElements[:len(pathElements)-1] {
		childBranch, childIsMapping := currentBranch[pathElement].(map[string]any)
		if !childIsMapping {
			childBranch = map[string]any{}
			currentBranch[pathElement] = childBranch
		}
		currentBranch = childBranch
	}
	currentBranch[pathElements[len(pathElements)-1]] = value
}

func (updater *YAMLFileUpdater) failure(cause error) error {
	return plugin.ModificationError{PluginName: YAMLFileUpdaterPluginName, Cause: cause}
}

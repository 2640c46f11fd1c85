package modify

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/relix/internal/release/plugin"
)

// RegexReplacerPluginName identifies the regex replacement plugin in the modification group.
const RegexReplacerPluginName = "regex-replacer"

const (
	regexReplacerFileRequiredMessageConstant     = "regex-replacer requires a file argument"
	regexReplacerPatternRequiredMessageConstant  = "regex-replacer requires a pattern argument"
	regexReplacerNoMatchTemplateConstant         = "%s does not contain a match for %s"
	regexReplacerReplacementTypeTemplateConstant = "regex-replacer replacement must be a string or a list of strings, got %T"
)

type regexReplacerOptions struct {
	File        string `mapstructure:"file"`
	Pattern     string `mapstructure:"pattern"`
	Replacement any    `mapstructure:"replacement"`
	Count       int    `mapstructure:"count"`
}

// RegexReplacer rewrites matches of a regular expression inside one repository file.
type RegexReplacer struct {
	pluginContext plugin.Context
}

// NewRegexReplacer constructs the regex replacement plugin.
func NewRegexReplacer(pluginContext plugin.Context) (plugin.Modifier, error) {
	return &RegexReplacer{pluginContext: pluginContext}, nil
}

// Modify replaces pattern matches in the configured file.
//
// A missing file and a pattern without matches both fail the stage, so a
// misconfigured replacement never slips through a release silently.
func (replacer *RegexReplacer) Modify(_ context.Context, arguments plugin.Arguments) error {
	options := regexReplacerOptions{}
	if decodeError := plugin.DecodeArguments(arguments, &options); decodeError != nil {
		return replacer.failure(decodeError)
	}
	if len(strings.TrimSpace(options.File)) == 0 {
		return replacer.failure(errors.New(regexReplacerFileRequiredMessageConstant))
	}
	if len(options.Pattern) == 0 {
		return replacer.failure(errors.New(regexReplacerPatternRequiredMessageConstant))
	}

	replacement, replacementError := buildReplacementString(options.Replacement)
	if replacementError != nil {
		return replacer.failure(replacementError)
	}

	pattern, compileError := compilePattern(options.Pattern)
	if compileError != nil {
		return replacer.failure(compileError)
	}

	filePath := filepath.Join(replacer.pluginContext.RepositoryDirectory, options.File)
	replacedCount, rewriteError := rewriteFile(replacer.pluginContext.FileSystem, filePath, pattern, replacement, options.Count)
	if rewriteError != nil {
		return replacer.failure(rewriteError)
	}
	if replacedCount == 0 {
		return replacer.failure(fmt.Errorf(regexReplacerNoMatchTemplateConstant, filePath, options.Pattern))
	}
	return nil
}

func (replacer *RegexReplacer) failure(cause error) error {
	return plugin.ModificationError{PluginName: RegexReplacerPluginName, Cause: cause}
}

// buildReplacementString joins list replacements into one string; plain
// strings pass through and nil becomes the empty replacement.
func buildReplacementString(replacement any) (string, error) {
	switch typedReplacement := replacement.(type) {
	case nil:
		return "", nil
	case string:
		return typedReplacement, nil
	case []string:
		return strings.Join(typedReplacement, ""), nil
	case []any:
		segments := make([]string, 0, len(typedReplacement))
		for _, segment := range typedReplacement {
			segmentString, segmentIsString := segment.(string)
			if !segmentIsString {
				return "", fmt.Errorf(regexReplacerReplacementTypeTemplateConstant, segment)
			}
			segments = append(segments, segmentString)
		}
		return strings.Join(segments, ""), nil
	default:
		return "", fmt.Errorf(regexReplacerReplacementTypeTemplateConstant, replacement)
	}
}

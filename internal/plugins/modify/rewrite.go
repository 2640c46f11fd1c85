package modify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

const (
	patternCompileErrorTemplateConstant = "compiling %q as a regular expression failed: %w"
	fileReadErrorTemplateConstant       = "reading %s failed: %w"
	fileWriteErrorTemplateConstant      = "writing %s failed: %w"
	rewrittenFilePermissionsConstant    = 0o644
)

// readRepositoryFile loads the named file into a string.
func readRepositoryFile(fileSystem afero.Fs, filePath string) (string, error) {
	fileContent, readError := afero.ReadFile(fileSystem, filePath)
	if readError != nil {
		return "", fmt.Errorf(fileReadErrorTemplateConstant, filePath, readError)
	}
	return string(fileContent), nil
}

// compilePattern compiles a Go regular expression from plugin arguments.
func compilePattern(expression string) (*regexp.Regexp, error) {
	pattern, compileError := regexp.Compile(expression)
	if compileError != nil {
		return nil, fmt.Errorf(patternCompileErrorTemplateConstant, expression, compileError)
	}
	return pattern, nil
}

// rewriteFile replaces pattern matches in the named file and reports how many
// matches were replaced. A limit of zero replaces every match. The replacement
// string supports Go regexp expansion references such as $1 and ${name}.
func rewriteFile(fileSystem afero.Fs, filePath string, pattern *regexp.Regexp, replacement string, limit int) (int, error) {
	fileContent, readError := afero.ReadFile(fileSystem, filePath)
	if readError != nil {
		return 0, fmt.Errorf(fileReadErrorTemplateConstant, filePath, readError)
	}

	rewrittenContent, replacedCount := replaceMatches(pattern, string(fileContent), replacement, limit)
	if replacedCount == 0 {
		return 0, nil
	}

	if writeError := afero.WriteFile(fileSystem, filePath, []byte(rewrittenContent), rewrittenFilePermissionsConstant); writeError != nil {
		return 0, fmt.Errorf(fileWriteErrorTemplateConstant, filePath, writeError)
	}
	return replacedCount, nil
}

func replaceMatches(pattern *regexp.Regexp, content string, replacement string, limit int) (string, int) {
	matchIndexes := pattern.FindAllStringSubmatchIndex(content, -1)
	if limit > 0 && len(matchIndexes) > limit {
		matchIndexes = matchIndexes[:limit]
	}
	if len(matchIndexes) == 0 {
		return content, 0
	}

	var rewritten strings.Builder
	previousMatchEnd := 0
	for _, matchIndex := range matchIndexes {
		rewritten.WriteString(content[previousMatchEnd:matchIndex[0]])
		rewritten.Write(pattern.ExpandString(nil, replacement, content, matchIndex))
		previousMatchEnd = matchIndex[1]
	}
	rewritten.WriteString(content[previousMatchEnd:])
	return rewritten.String(), len(matchIndexes)
}

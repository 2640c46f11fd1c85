package release_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	releasecmd "github.com/temirov/relix/cmd/cli/release"
)

func TestPluginsCommandListsBuiltinPluginsByGroup(testInstance *testing.T) {
	builder := &releasecmd.PluginsCommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetArgs([]string{})

	require.NoError(testInstance, command.Execute())

	expectedOutput := "modification:\n" +
		"  changelog-unreleased-setter\n" +
		"  changelog-version-updater\n" +
		"  dependency-pin-updater\n" +
		"  regex-replacer\n" +
		"  shell-modifier\n" +
		"  yaml-file-updater\n" +
		"validation:\n" +
		"  shell-validator\n"
	require.Equal(testInstance, expectedOutput, outputBuffer.String())
}

package pathutils_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/relix/internal/utils/path"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	homeDirectory := filepath.Join("/home", "release-bot")
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return homeDirectory, nil
	})

	testCases := []struct {
		name          string
		candidatePath string
		expectedPath  string
	}{
		{name: "bare_tilde", candidatePath: "~", expectedPath: homeDirectory},
		{name: "tilde_with_segment", candidatePath: "~/workspaces", expectedPath: filepath.Join(homeDirectory, "workspaces")},
		{name: "absolute_path_untouched", candidatePath: "/var/workspaces", expectedPath: "/var/workspaces"},
		{name: "relative_path_untouched", candidatePath: "workspaces", expectedPath: "workspaces"},
		{name: "empty_path_untouched", candidatePath: "", expectedPath: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			require.Equal(subtestInstance, testCase.expectedPath, expander.Expand(testCase.candidatePath))
		})
	}
}

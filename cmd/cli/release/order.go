package release

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/temirov/relix/internal/release/resolver"
	pathutils "github.com/temirov/relix/internal/utils/path"
)

const (
	orderCommandUseConstant              = "order"
	orderCommandShortDescriptionConstant = "Print the repositories in the order they would be released"
	orderCommandLongDescriptionConstant  = "order resolves the dependency graph from the release configuration and prints one repository name per line in release order."

	orderLineTemplateConstant = "%s\n"
)

// OrderCommandBuilder assembles the order command.
type OrderCommandBuilder struct {
	ConfigurationProvider func() CommandConfiguration

	// FileSystem may be overridden in tests.
	FileSystem afero.Fs
}

// Build constructs the Cobra command.
func (builder *OrderCommandBuilder) Build() (*cobra.Command, error) {
	var configurationPathFlagValue string

	command := &cobra.Command{
		Use:   orderCommandUseConstant,
		Short: orderCommandShortDescriptionConstant,
		Long:  orderCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, configurationPathFlagValue)
		},
	}

	command.Flags().StringVar(&configurationPathFlagValue, configurationFlagNameConstant, "", configurationFlagUsageConstant)

	return command, nil
}

func (builder *OrderCommandBuilder) run(command *cobra.Command, configurationPathFlagValue string) error {
	fileSystem := builder.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}

	_, releaseEntries, loadError := loadReleaseConfiguration(builder.ConfigurationProvider, fileSystem, pathutils.NewHomeExpander(), configurationPathFlagValue)
	if loadError != nil {
		return loadError
	}

	orderedEntries, orderError := resolver.Order(releaseEntries)
	if orderError != nil {
		return orderError
	}

	outputBuilder := &strings.Builder{}
	for _, releaseEntry := range orderedEntries {
		fmt.Fprintf(outputBuilder, orderLineTemplateConstant, releaseEntry.Name)
	}
	fmt.Fprint(command.OutOrStdout(), outputBuilder.String())
	return nil
}

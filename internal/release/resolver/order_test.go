package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relix/internal/release/config"
	"github.com/temirov/relix/internal/release/resolver"
)

func buildEntry(repositoryName string, dependencyNames ...string) config.ReleaseEntry {
	dependencies := make(map[string]config.PublicReleaseEntry, len(dependencyNames))
	for _, dependencyName := range dependencyNames {
		dependencies[dependencyName] = config.PublicReleaseEntry{Name: dependencyName}
	}
	return config.ReleaseEntry{
		Name:    repositoryName,
		Public:  config.PublicReleaseEntry{Name: repositoryName},
		Private: config.PrivateReleaseEntry{Dependencies: dependencies},
	}
}

func orderedNames(entries []config.ReleaseEntry) []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	return names
}

func indexOf(names []string, target string) int {
	for index, name := range names {
		if name == target {
			return index
		}
	}
	return -1
}

func TestOrderPlacesDependenciesBeforeDependents(testInstance *testing.T) {
	entries := []config.ReleaseEntry{
		buildEntry("repo-1", "repo-2", "repo-4"),
		buildEntry("repo-2", "repo-3"),
		buildEntry("repo-3"),
		buildEntry("repo-4"),
	}

	orderedEntries, orderError := resolver.Order(entries)
	require.NoError(testInstance, orderError)
	require.Len(testInstance, orderedEntries, len(entries))

	names := orderedNames(orderedEntries)
	require.Less(testInstance, indexOf(names, "repo-3"), indexOf(names, "repo-2"))
	require.Less(testInstance, indexOf(names, "repo-2"), indexOf(names, "repo-1"))
	require.Less(testInstance, indexOf(names, "repo-4"), indexOf(names, "repo-1"))
}

func TestOrderIsDeterministicForIndependentEntries(testInstance *testing.T) {
	entries := []config.ReleaseEntry{
		buildEntry("gamma"),
		buildEntry("alpha"),
		buildEntry("beta"),
	}

	orderedEntries, orderError := resolver.Order(entries)
	require.NoError(testInstance, orderError)
	require.Equal(testInstance, []string{"alpha", "beta", "gamma"}, orderedNames(orderedEntries))
}

func TestOrderRejectsDirectCycle(testInstance *testing.T) {
	entries := []config.ReleaseEntry{
		buildEntry("repo-a", "repo-b"),
		buildEntry("repo-b", "repo-a"),
	}

	orderedEntries, orderError := resolver.Order(entries)
	require.Nil(testInstance, orderedEntries)
	require.Error(testInstance, orderError)

	var cycleFailure resolver.DependencyCycleError
	require.ErrorAs(testInstance, orderError, &cycleFailure)
	require.ElementsMatch(testInstance, []string{"repo-a", "repo-b"}, cycleFailure.RepositoryNames)
	require.Contains(testInstance, orderError.Error(), "repo-a")
	require.Contains(testInstance, orderError.Error(), "repo-b")
}

func TestOrderRejectsSelfDependency(testInstance *testing.T) {
	entries := []config.ReleaseEntry{buildEntry("repo-a", "repo-a")}

	orderedEntries, orderError := resolver.Order(entries)
	require.Nil(testInstance, orderedEntries)

	var cycleFailure resolver.DependencyCycleError
	require.ErrorAs(testInstance, orderError, &cycleFailure)
	require.Equal(testInstance, []string{"repo-a"}, cycleFailure.RepositoryNames)
}

func TestOrderRejectsUnknownDependency(testInstance *testing.T) {
	entries := []config.ReleaseEntry{buildEntry("repo-a", "missing")}

	orderedEntries, orderError := resolver.Order(entries)
	require.Nil(testInstance, orderedEntries)

	var unknownFailure resolver.UnknownDependencyError
	require.ErrorAs(testInstance, orderError, &unknownFailure)
	require.Equal(testInstance, "repo-a", unknownFailure.RepositoryName)
	require.Equal(testInstance, "missing", unknownFailure.DependencyName)
}

func TestOrderHandlesLargerAcyclicGraph(testInstance *testing.T) {
	entries := []config.ReleaseEntry{
		buildEntry("edge-service", "core", "storage"),
		buildEntry("storage", "core"),
		buildEntry("core"),
		buildEntry("tooling", "core"),
		buildEntry("frontend", "edge-service"),
	}

	orderedEntries, orderError := resolver.Order(entries)
	require.NoError(testInstance, orderError)

	names := orderedNames(orderedEntries)
	require.Less(testInstance, indexOf(names, "core"), indexOf(names, "storage"))
	require.Less(testInstance, indexOf(names, "storage"), indexOf(names, "edge-service"))
	require.Less(testInstance, indexOf(names, "edge-service"), indexOf(names, "frontend"))
	require.Less(testInstance, indexOf(names, "core"), indexOf(names, "tooling"))
}

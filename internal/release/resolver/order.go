package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/temirov/relix/internal/release/config"
)

const (
	unknownDependencyErrorTemplateConstant = "repository %s depends on unknown repository %s"
	dependencyCycleErrorTemplateConstant   = "dependency cycle among repositories: %s"
	cycleMemberJoinSeparatorConstant       = ", "
)

// UnknownDependencyError reports an entry whose dependencies reference a repository outside the entry set.
type UnknownDependencyError struct {
	RepositoryName string
	DependencyName string
}

// Error names the dependent repository and the unresolved dependency.
func (failure UnknownDependencyError) Error() string {
	return fmt.Sprintf(unknownDependencyErrorTemplateConstant, failure.RepositoryName, failure.DependencyName)
}

// DependencyCycleError reports that the remaining entries form one or more dependency cycles.
type DependencyCycleError struct {
	RepositoryNames []string
}

// Error lists the repositories participating in the cyclic relation.
func (failure DependencyCycleError) Error() string {
	return fmt.Sprintf(dependencyCycleErrorTemplateConstant, strings.Join(failure.RepositoryNames, cycleMemberJoinSeparatorConstant))
}

// Order computes a topological order of the release entries.
//
// Every repository appears after all repositories it depends on. Among the
// entries that become ready at the same time, names are processed
// alphabetically so the order is deterministic.
func Order(releaseEntries []config.ReleaseEntry) ([]config.ReleaseEntry, error) {
	entryLookup := make(map[string]config.ReleaseEntry, len(releaseEntries))
	for _, releaseEntry := range releaseEntries {
		entryLookup[releaseEntry.Name] = releaseEntry
	}

	unresolvedDependencyCounts := make(map[string]int, len(releaseEntries))
	dependents := make(map[string][]string, len(releaseEntries))

	for _, releaseEntry := range releaseEntries {
		unresolvedDependencyCounts[releaseEntry.Name] = len(releaseEntry.Private.Dependencies)
		for dependencyName := range releaseEntry.Private.Dependencies {
			if _, dependencyExists := entryLookup[dependencyName]; !dependencyExists {
				return nil, UnknownDependencyError{RepositoryName: releaseEntry.Name, DependencyName: dependencyName}
			}
			dependents[dependencyName] = append(dependents[dependencyName], releaseEntry.Name)
		}
	}

	readyNames := make([]string, 0, len(releaseEntries))
	for repositoryName, unresolvedCount := range unresolvedDependencyCounts {
		if unresolvedCount == 0 {
			readyNames = append(readyNames, repositoryName)
		}
	}
	sort.Strings(readyNames)

	orderedEntries := make([]config.ReleaseEntry, 0, len(releaseEntries))
	for len(readyNames) > 0 {
		currentName := readyNames[0]
		readyNames = readyNames[1:]
		orderedEntries = append(orderedEntries, entryLookup[currentName])

		releasedDependents := make([]string, 0, len(dependents[currentName]))
		for _, dependentName := range dependents[currentName] {
			unresolvedDependencyCounts[dependentName]--
			if unresolvedDependencyCounts[dependentName] == 0 {
				releasedDependents = append(releasedDependents, dependentName)
			}
		}
		if len(releasedDependents) > 0 {
			sort.Strings(releasedDependents)
			readyNames = mergeSortedNames(readyNames, releasedDependents)
		}
	}

	if len(orderedEntries) != len(releaseEntries) {
		cyclicNames := make([]string, 0, len(releaseEntries)-len(orderedEntries))
		for repositoryName, unresolvedCount := range unresolvedDependencyCounts {
			if unresolvedCount > 0 {
				cyclicNames = append(cyclicNames, repositoryName)
			}
		}
		sort.Strings(cyclicNames)
		return nil, DependencyCycleError{RepositoryNames: cyclicNames}
	}

	return orderedEntries, nil
}

func mergeSortedNames(existingNames []string, additionalNames []string) []string {
	mergedNames := make([]string, 0, len(existingNames)+len(additionalNames))
	existingIndex, additionalIndex := 0, 0
	for existingIndex < len(existingNames) && additionalIndex < len(additionalNames) {
		if existingNames[existingIndex] <= additionalNames[additionalIndex] {
			mergedNames = append(mergedNames, existingNames[existingIndex])
			existingIndex++
		} else {
			mergedNames = append(mergedNames, additionalNames[additionalIndex])
			additionalIndex++
		}
	}
	mergedNames = append(mergedNames, existingNames[existingIndex:]...)
	mergedNames = append(mergedNames, additionalNames[additionalIndex:]...)
	return mergedNames
}

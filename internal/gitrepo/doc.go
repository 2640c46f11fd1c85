// Package gitrepo contains helpers for manipulating Git repositories.
//
// It exposes RepositoryManager for the structured Git operations the release
// lifecycle requires: cloning, branch creation and switching, merging,
// committing, tagging, and pushing.
package gitrepo

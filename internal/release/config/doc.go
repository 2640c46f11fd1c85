// Package config defines the typed release configuration model.
//
// It loads the release configuration file into GlobalConfig plus one
// ReleaseEntry per repository, applies branch-name defaults, resolves
// dependency references to the public entries of the named repositories, and
// applies command-line overrides to the global configuration. All entities are
// built once at load time and treated as immutable for the rest of the run.
package config

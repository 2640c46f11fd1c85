// Package resolver orders release entries so dependencies precede dependents.
//
// It implements Kahn's algorithm over the repository dependency graph and
// rejects unknown dependency references and dependency cycles with typed
// errors that name the offending repositories.
package resolver

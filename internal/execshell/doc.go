// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions relix uses to run
// git and plugin-supplied shell commands in a testable manner.
package execshell

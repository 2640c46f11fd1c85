// Package modify holds the built-in modification-group plugins that rewrite
// repository content on the release and merge-back branches.
package modify

// Package plugin defines the extension points of the release lifecycle.
//
// Extensions implement one of two capability contracts: Modifier plugins
// rewrite files inside the repository working directory, Validator plugins
// check the working tree without a required side effect. A process-wide
// Registry maps (group, name) to plugin factories and is populated once at
// startup; the Dispatcher resolves configured plugin requests against the
// registry and invokes them in configuration order.
package plugin

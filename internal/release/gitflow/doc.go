// Package gitflow drives the branch lifecycle of one repository release.
//
// Handler executes the fixed transition sequence: clone and initialize,
// branch release off main, run modification and validation plugins, commit,
// merge into stable (creating it when absent), branch merge_back off stable,
// run finalization plugins, merge back into main, and finally publish
// branches and the release tag according to the effective tag policy.
package gitflow

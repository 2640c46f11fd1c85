package config

// TagPolicy controls how an already-existing release tag is handled.
type TagPolicy string

// Supported tag policies.
const (
	// TagPolicySkip leaves repositories untouched when the release tag already exists.
	TagPolicySkip TagPolicy = "skip"
	// TagPolicyOverride deletes an existing release tag locally and remotely before re-tagging.
	TagPolicyOverride TagPolicy = "ovr"
)

// Default branch names applied when a repository omits them.
const (
	DefaultMainBranchName   = "main"
	DefaultStableBranchName = "stable"
)

// GlobalConfig carries the settings shared by every release entry.
type GlobalConfig struct {
	GitUserName  string
	GitUserEmail string
	TagPolicy    TagPolicy
	TestRun      bool
}

// PublicReleaseEntry holds the repository settings visible to dependent repositories.
type PublicReleaseEntry struct {
	Name         string
	URL          string
	Version      string
	MainBranch   string
	StableBranch string
}

// PrivateReleaseEntry holds repository-local settings hidden from other entries.
type PrivateReleaseEntry struct {
	TagMessage string
	TagPolicy  TagPolicy
	MetaData   map[string]any
	// Dependencies maps a dependency name to that repository's public entry.
	Dependencies map[string]PublicReleaseEntry
	ShouldSkip   bool
}

// PluginRequest names a plugin together with its optional keyword arguments.
type PluginRequest struct {
	Name      string
	Arguments map[string]any
}

// PluginEntries lists the plugin requests per lifecycle stage, in execution order.
type PluginEntries struct {
	ReleaseModification   []PluginRequest
	ReleaseValidation     []PluginRequest
	MergeBackFinalization []PluginRequest
}

// ReleaseEntry aggregates the full configuration of one repository.
type ReleaseEntry struct {
	Name    string
	Public  PublicReleaseEntry
	Private PrivateReleaseEntry
	Plugins PluginEntries
}

// EffectiveTagPolicy resolves the repository tag policy, falling back to the global one.
func (entry ReleaseEntry) EffectiveTagPolicy(globalConfiguration GlobalConfig) TagPolicy {
	if len(entry.Private.TagPolicy) > 0 {
		return entry.Private.TagPolicy
	}
	return globalConfiguration.TagPolicy
}

// Overrides captures optional command-line values that replace loaded global settings.
type Overrides struct {
	TestRun      *bool
	GitUserName  *string
	GitUserEmail *string
	TagPolicy    *TagPolicy
}

// Apply returns a copy of the global configuration with the overrides folded in.
func (overrides Overrides) Apply(globalConfiguration GlobalConfig) GlobalConfig {
	if overrides.TestRun != nil {
		globalConfiguration.TestRun = *overrides.TestRun
	}
	if overrides.GitUserName != nil {
		globalConfiguration.GitUserName = *overrides.GitUserName
	}
	if overrides.GitUserEmail != nil {
		globalConfiguration.GitUserEmail = *overrides.GitUserEmail
	}
	if overrides.TagPolicy != nil {
		globalConfiguration.TagPolicy = *overrides.TagPolicy
	}
	return globalConfiguration
}

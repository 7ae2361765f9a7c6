package config

import "context"

// Model is the release configuration for one repository.
type Model struct {
	// Inputs are project or solution paths in declaration order, resolved
	// against the configuration file's directory.
	Inputs []string

	// Branches is the allow-list of branch names a publish may run from.
	Branches []string

	// TagPrefix is the literal prefix a version tag carries, e.g. "v".
	TagPrefix string

	// DraftForBuild permits creating a draft release during plain builds.
	DraftForBuild bool

	GitHub GitHubPolicy
	NuGet  NuGetPolicy
}

// GitHubPolicy configures publication to the hosting service.
type GitHubPolicy struct {
	Publish    bool
	Token      string
	TokenExtra string
}

// NuGetPolicy configures publication to the package registry.
type NuGetPolicy struct {
	Publish bool
	Token   string
}

// Loader loads a Model from a configuration file.
type Loader interface {
	Load(ctx context.Context, path string) (*Model, error)
}

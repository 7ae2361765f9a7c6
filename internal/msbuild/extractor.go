// Package msbuild is the boundary to the project build tool. The Extractor
// interface is what the loader consumes; CLIExtractor is the concrete
// implementation that shells out to the dotnet CLI.
package msbuild

import (
	"context"
	"strings"

	"github.com/capstan-dev/capstan/internal/model"
)

// Fact names returned by the full package-info query.
const (
	FactPackageID        = "PackageId"
	FactAssemblyName     = "AssemblyName"
	FactVersion          = "PackageVersion"
	FactDescription      = "PackageDescription"
	FactLicense          = "PackageLicenseExpression"
	FactOutputType       = "PackageOutputType"
	FactProjectURL       = "PackageProjectUrl"
	FactUsingWebSDK      = "UsingWebSdk"
	FactIsPackable       = "IsPackable"
	FactIsTestProject    = "IsTestProject"
	FactTargetFramework  = "TargetFramework"
	FactTargetFrameworks = "TargetFrameworks"
)

// DefaultDescription substitutes for an absent package description.
const DefaultDescription = "No description found"

// FactSet holds the raw key/value build facts for one project, plus the
// repeated project-reference items.
type FactSet struct {
	Properties        map[string]string
	ProjectReferences []string
}

// Property returns the named fact, or fallback when absent or blank.
func (f FactSet) Property(name, fallback string) string {
	if v, ok := f.Properties[name]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// Bool interprets the named fact as an MSBuild boolean.
func (f FactSet) Bool(name string) bool {
	return strings.EqualFold(f.Property(name, ""), "true")
}

// Extractor obtains build facts from a project. Implementations report
// failure through the returned error; they never partially succeed.
type Extractor interface {
	// TargetFrameworks runs the framework-discovery query.
	TargetFrameworks(ctx context.Context, projectPath string) (model.TargetFrameworks, error)
	// PackageInfo runs the full package-info query, pinned to the given
	// framework when it is non-empty.
	PackageInfo(ctx context.Context, projectPath, framework string) (FactSet, error)
}

// ParseFrameworks interprets the framework-discovery facts: TargetFrameworks
// is a semicolon-joined list and wins over the single TargetFramework.
func ParseFrameworks(facts FactSet) model.TargetFrameworks {
	if multi := facts.Property(FactTargetFrameworks, ""); multi != "" {
		var monikers []string
		for _, m := range strings.Split(multi, ";") {
			if m = strings.TrimSpace(m); m != "" {
				monikers = append(monikers, m)
			}
		}
		return model.TargetFrameworks{Multi: len(monikers) > 1, Monikers: monikers}
	}
	if single := facts.Property(FactTargetFramework, ""); single != "" {
		return model.TargetFrameworks{Monikers: []string{single}}
	}
	return model.TargetFrameworks{}
}

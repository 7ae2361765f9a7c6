package loader

import (
	"path/filepath"
	"strings"

	"github.com/capstan-dev/capstan/internal/diag"
	"github.com/capstan-dev/capstan/internal/model"
	"github.com/capstan-dev/capstan/internal/msbuild"
)

// buildRecord assembles a typed ProjectRecord from raw facts. Reference
// paths are resolved against the project's directory and normalized so they
// compare equal to descriptor identities.
func buildRecord(path string, facts msbuild.FactSet, frameworks model.TargetFrameworks) (*model.ProjectRecord, *diag.Diagnostic) {
	kind, err := model.ParseOutputKind(facts.Property(msbuild.FactOutputType, ""))
	if err != nil {
		return nil, diag.Newf(diag.UnsupportedOutputKind, "project %s: %v", path, err)
	}

	baseName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	record := &model.ProjectRecord{
		Path:         path,
		PackageID:    facts.Property(msbuild.FactPackageID, baseName),
		AssemblyName: facts.Property(msbuild.FactAssemblyName, baseName),
		OutputKind:   kind,
		Version:      facts.Property(msbuild.FactVersion, ""),
		Description:  facts.Property(msbuild.FactDescription, msbuild.DefaultDescription),
		License:      facts.Property(msbuild.FactLicense, ""),
		ProjectURL:   facts.Property(msbuild.FactProjectURL, ""),
		Packable:     facts.Bool(msbuild.FactIsPackable),
		TestProject:  facts.Bool(msbuild.FactIsTestProject),
		WebApp:       facts.Bool(msbuild.FactUsingWebSDK),
		Frameworks:   frameworks,
	}

	dir := filepath.Dir(path)
	for _, ref := range facts.ProjectReferences {
		refPath := filepath.FromSlash(strings.ReplaceAll(ref, `\`, "/"))
		if !filepath.IsAbs(refPath) {
			refPath = filepath.Join(dir, refPath)
		}
		normalized, err := model.NormalizePath(refPath)
		if err != nil {
			return nil, diag.Newf(diag.ExtractionFailure, "project %s references %q: %v", path, ref, err)
		}
		record.References = append(record.References, normalized)
	}
	return record, nil
}

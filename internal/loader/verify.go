package loader

import (
	"context"

	"github.com/capstan-dev/capstan/internal/ctxlog"
	"github.com/capstan-dev/capstan/internal/diag"
	"github.com/capstan-dev/capstan/internal/model"
)

// VerifyVersions walks the ordered collections and determines the unified
// release version: the version of the first packable project encountered.
// Every later packable project that disagrees yields a VersionMismatch
// diagnostic; the walk never stops early and never rewrites a record. When
// packable projects exist but no version was found, MissingVersion is added.
func VerifyVersions(ctx context.Context, collections []*model.ProjectCollection) (string, []*diag.Diagnostic) {
	logger := ctxlog.FromContext(ctx)

	version := ""
	seenPackable := false
	var diags []*diag.Diagnostic

	for _, c := range collections {
		for _, p := range c.Projects {
			if !p.Packable {
				continue
			}
			if !seenPackable {
				seenPackable = true
				version = p.Version
				logger.Debug("Unified version determined.", "version", version, "project", p.Path)
				continue
			}
			if p.Version != version {
				diags = append(diags, diag.Newf(diag.VersionMismatch,
					"project %s has version %q, expected %q", p.Path, p.Version, version))
			}
		}
	}

	if seenPackable && version == "" {
		diags = append(diags, diag.Newf(diag.MissingVersion,
			"no version found while packable projects exist"))
	}
	return version, diags
}

// Package release decides what a run is allowed to do. The decision engine
// converts the requested build kind, CI trigger, token presence, and branch
// policy into a terminal action recorded on the BuildInformation aggregate.
package release

import (
	"context"
	"slices"

	"github.com/capstan-dev/capstan/internal/ci"
	"github.com/capstan-dev/capstan/internal/ctxlog"
	"github.com/capstan-dev/capstan/internal/diag"
	"github.com/capstan-dev/capstan/internal/model"
)

// Inputs carries every already-gathered fact the decision engine consumes.
// Token fields gate decisions by presence only; validity is checked later by
// the services themselves.
type Inputs struct {
	Kind    model.BuildKind
	Trigger *ci.Context // nil outside CI

	GitHubPublish bool
	NuGetPublish  bool
	DraftForBuild bool

	Branches  []string
	TagPrefix string

	GitHubToken      string
	GitHubTokenExtra string
	NuGetToken       string
}

// Decide runs the one-shot validation state machine and records the final
// action and draft permission on info. Every check is fail-fast: the first
// fatal condition aborts and the caller must not proceed with the run.
func Decide(ctx context.Context, in Inputs, info *model.BuildInformation) error {
	logger := ctxlog.FromContext(ctx)

	kind := in.Kind
	if kind == model.KindRun {
		if in.GitHubToken == "" {
			return diag.Newf(diag.InvalidCommandContext,
				"the run command requires a hosting token")
		}
		if in.Trigger == nil {
			return diag.Newf(diag.InvalidCommandContext,
				"the run command requires a CI trigger context")
		}
		if Classify(ctx, in.Trigger, in.TagPrefix) == model.ActionPublish {
			kind = model.KindPublish
		} else {
			kind = model.KindBuild
		}
		logger.Debug("Run command classified.", "kind", kind.String())
	}

	// Draft eligibility keys off the kind as requested, before any run
	// conversion happened.
	requiresDraftForBuild := (in.Kind == model.KindRun || in.Kind == model.KindBuild) &&
		in.GitHubToken != "" && in.DraftForBuild

	requiresBranchAndCommit := (kind == model.KindPublish && in.GitHubPublish) ||
		requiresDraftForBuild || in.Kind == model.KindRun
	if requiresBranchAndCommit && info.Git == nil {
		return diag.Newf(diag.MissingGitContext,
			"a git branch and commit are required but no repository was found")
	}

	validateBranch := false
	if kind == model.KindPublish {
		if in.GitHubPublish {
			if in.GitHubToken == "" {
				return diag.Newf(diag.MissingCredential,
					"publishing a release requires a hosting token")
			}
			validateBranch = true
			info.AllowDraft = true
		}
		if in.NuGetPublish && in.NuGetToken == "" && info.PackableCount() > 0 {
			return diag.Newf(diag.MissingCredential,
				"publishing packages requires a registry token")
		}
	}

	if validateBranch && !slices.Contains(in.Branches, info.Git.Branch) {
		return diag.Newf(diag.BranchNotAllowed,
			"branch %q is not in the allowed branches %v", info.Git.Branch, in.Branches)
	}

	// A build from an allowed branch may also draft, independently of the
	// publish path above.
	if requiresDraftForBuild && slices.Contains(in.Branches, info.Git.Branch) {
		info.AllowDraft = true
	}

	switch kind {
	case model.KindPublish:
		info.Action = model.ActionPublish
	default:
		info.Action = model.ActionBuild
	}
	logger.Info("Release action decided.",
		"action", info.Action.String(), "allowDraft", info.AllowDraft)
	return nil
}

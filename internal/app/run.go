package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/capstan-dev/capstan/internal/ci"
	"github.com/capstan-dev/capstan/internal/ctxlog"
	"github.com/capstan-dev/capstan/internal/gitinfo"
	"github.com/capstan-dev/capstan/internal/loader"
	"github.com/capstan-dev/capstan/internal/model"
	"github.com/capstan-dev/capstan/internal/release"
)

// Run executes one release-orchestration pass: load and order the projects,
// verify version consistency, decide the release action, and report the
// resulting plan. It returns an error without a usable result on any fatal
// condition.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.appConfig.Command)

	collections, err := loader.New(a.extractor, a.appConfig.WorkerCount).Load(ctx, a.model.Inputs)
	if err != nil {
		return fmt.Errorf("failed to load project graph: %w", err)
	}
	a.logger.Info("Project graph loaded.", "collections", len(collections))

	version, vdiags := loader.VerifyVersions(ctx, collections)
	if len(vdiags) > 0 {
		errs := make([]error, len(vdiags))
		for i, d := range vdiags {
			a.logger.Error("Version verification failed.", "error", d.Message)
			errs[i] = d
		}
		return errors.Join(errs...)
	}

	info := &model.BuildInformation{
		Version:     version,
		Collections: collections,
	}

	repoDir := filepath.Dir(a.appConfig.ConfigPath)
	git, err := gitinfo.Resolve(repoDir)
	if err != nil {
		return fmt.Errorf("failed to resolve git state: %w", err)
	}
	info.Git = git
	if git != nil {
		a.logger.Debug("Git state resolved.", "branch", git.Branch, "commit", git.Commit)
	}

	if err := release.Decide(ctx, a.decisionInputs(), info); err != nil {
		return err
	}

	a.reportPlan(info)
	a.logger.Debug("App.Run method finished.")
	return nil
}

// decisionInputs gathers the decision engine's facts from the configuration,
// the CI environment, and the token sources. Tokens fall back to their
// conventional environment variables when the config names none.
func (a *App) decisionInputs() release.Inputs {
	githubToken := a.model.GitHub.Token
	if githubToken == "" {
		githubToken = a.getenv("GITHUB_TOKEN")
	}
	nugetToken := a.model.NuGet.Token
	if nugetToken == "" {
		nugetToken = a.getenv("NUGET_TOKEN")
	}

	return release.Inputs{
		Kind:             buildKind(a.appConfig.Command),
		Trigger:          ci.FromEnviron(a.getenv),
		GitHubPublish:    a.model.GitHub.Publish,
		NuGetPublish:     a.model.NuGet.Publish,
		DraftForBuild:    a.model.DraftForBuild,
		Branches:         a.model.Branches,
		TagPrefix:        a.model.TagPrefix,
		GitHubToken:      githubToken,
		GitHubTokenExtra: a.model.GitHub.TokenExtra,
		NuGetToken:       nugetToken,
	}
}

func buildKind(command string) model.BuildKind {
	switch command {
	case CommandPublish:
		return model.KindPublish
	case CommandRun:
		return model.KindRun
	case CommandBuild:
		return model.KindBuild
	default:
		return model.KindNone
	}
}

// reportPlan writes the decided plan in established order.
func (a *App) reportPlan(info *model.BuildInformation) {
	fmt.Fprintf(a.outW, "action: %s\n", info.Action)
	if info.Version != "" {
		fmt.Fprintf(a.outW, "version: %s\n", info.Version)
	}
	if info.AllowDraft {
		fmt.Fprintln(a.outW, "draft release: allowed")
	}
	for _, c := range info.Collections {
		key := c.SolutionKey
		if key == "" {
			key = "(no solution)"
		}
		fmt.Fprintf(a.outW, "%s\n", key)
		for i, p := range c.Projects {
			fmt.Fprintf(a.outW, "  %2d. %s %s\n", i+1, p.AssemblyName, p.OutputKind)
		}
	}
}

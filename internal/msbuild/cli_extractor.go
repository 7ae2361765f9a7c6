package msbuild

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/capstan-dev/capstan/internal/ctxlog"
	"github.com/capstan-dev/capstan/internal/model"
)

// CLIExtractor extracts facts by invoking `dotnet msbuild` with -getProperty
// and -getItem flags, which emit a single JSON document on stdout.
type CLIExtractor struct {
	// DotnetPath overrides the dotnet executable; defaults to "dotnet".
	DotnetPath string
}

var packageInfoFacts = []string{
	FactPackageID,
	FactAssemblyName,
	FactVersion,
	FactDescription,
	FactLicense,
	FactOutputType,
	FactProjectURL,
	FactUsingWebSDK,
	FactIsPackable,
	FactIsTestProject,
}

type msbuildResult struct {
	Properties map[string]string `json:"Properties"`
	Items      struct {
		ProjectReference []struct {
			FullPath string `json:"FullPath"`
			Identity string `json:"Identity"`
		} `json:"ProjectReference"`
	} `json:"Items"`
}

func (e *CLIExtractor) dotnet() string {
	if e.DotnetPath != "" {
		return e.DotnetPath
	}
	return "dotnet"
}

// TargetFrameworks implements Extractor.
func (e *CLIExtractor) TargetFrameworks(ctx context.Context, projectPath string) (model.TargetFrameworks, error) {
	res, err := e.query(ctx, projectPath, []string{
		"-getProperty:" + FactTargetFramework,
		"-getProperty:" + FactTargetFrameworks,
	})
	if err != nil {
		return model.TargetFrameworks{}, err
	}
	return ParseFrameworks(FactSet{Properties: res.Properties}), nil
}

// PackageInfo implements Extractor.
func (e *CLIExtractor) PackageInfo(ctx context.Context, projectPath, framework string) (FactSet, error) {
	args := make([]string, 0, len(packageInfoFacts)+2)
	for _, fact := range packageInfoFacts {
		args = append(args, "-getProperty:"+fact)
	}
	args = append(args, "-getItem:ProjectReference")
	if framework != "" {
		args = append(args, "-p:TargetFramework="+framework)
	}

	res, err := e.query(ctx, projectPath, args)
	if err != nil {
		return FactSet{}, err
	}

	facts := FactSet{Properties: res.Properties}
	for _, ref := range res.Items.ProjectReference {
		path := ref.FullPath
		if path == "" {
			path = ref.Identity
		}
		if path != "" {
			facts.ProjectReferences = append(facts.ProjectReferences, path)
		}
	}
	return facts, nil
}

func (e *CLIExtractor) query(ctx context.Context, projectPath string, args []string) (*msbuildResult, error) {
	logger := ctxlog.FromContext(ctx)

	cmdArgs := append([]string{"msbuild", projectPath, "-nologo"}, args...)
	cmd := exec.CommandContext(ctx, e.dotnet(), cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("Invoking msbuild query.", "project", projectPath, "args", args)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("msbuild query for %s failed: %w: %s", projectPath, err, stderr.String())
	}

	var res msbuildResult
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		return nil, fmt.Errorf("decoding msbuild output for %s: %w", projectPath, err)
	}
	return &res, nil
}

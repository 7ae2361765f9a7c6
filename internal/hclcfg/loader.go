// Package hclcfg is the HCL implementation of the config.Loader interface.
// It decodes a single capstan.hcl file, evaluating attribute expressions
// against an `env` object built from the process environment.
package hclcfg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/capstan-dev/capstan/internal/config"
	"github.com/capstan-dev/capstan/internal/ctxlog"
)

// Loader loads capstan configuration from HCL.
type Loader struct{}

// NewLoader creates an HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

type fileRoot struct {
	Branches      []string     `hcl:"branches,optional"`
	TagPrefix     *string      `hcl:"tag_prefix,optional"`
	DraftForBuild *bool        `hcl:"draft_for_build,optional"`
	Solutions     []inputBlock `hcl:"solution,block"`
	Projects      []inputBlock `hcl:"project,block"`
	GitHub        *githubBlock `hcl:"github,block"`
	NuGet         *nugetBlock  `hcl:"nuget,block"`
}

type inputBlock struct {
	Path string `hcl:"path,label"`
}

type githubBlock struct {
	Publish    *bool  `hcl:"publish,optional"`
	Token      string `hcl:"token,optional"`
	TokenExtra string `hcl:"token_extra,optional"`
}

type nugetBlock struct {
	Publish *bool  `hcl:"publish,optional"`
	Token   string `hcl:"token,optional"`
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL config loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing config %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &root); diags.HasErrors() {
		return nil, fmt.Errorf("decoding config %s: %w", path, diags)
	}

	model := &config.Model{
		Branches:      root.Branches,
		TagPrefix:     "v",
		DraftForBuild: true,
	}
	if len(model.Branches) == 0 {
		model.Branches = []string{"main"}
	}
	if root.TagPrefix != nil {
		model.TagPrefix = *root.TagPrefix
	}
	if root.DraftForBuild != nil {
		model.DraftForBuild = *root.DraftForBuild
	}

	dir := filepath.Dir(path)
	for _, blocks := range [][]inputBlock{root.Solutions, root.Projects} {
		for _, b := range blocks {
			p := filepath.FromSlash(b.Path)
			if !filepath.IsAbs(p) {
				p = filepath.Join(dir, p)
			}
			model.Inputs = append(model.Inputs, p)
		}
	}
	if len(model.Inputs) == 0 {
		return nil, fmt.Errorf("config %s declares no solution or project blocks", path)
	}

	if root.GitHub != nil {
		model.GitHub = config.GitHubPolicy{
			Publish:    root.GitHub.Publish == nil || *root.GitHub.Publish,
			Token:      root.GitHub.Token,
			TokenExtra: root.GitHub.TokenExtra,
		}
	}
	if root.NuGet != nil {
		model.NuGet = config.NuGetPolicy{
			Publish: root.NuGet.Publish == nil || *root.NuGet.Publish,
			Token:   root.NuGet.Token,
		}
	}

	logger.Debug("HCL config loaded.",
		"inputs", len(model.Inputs), "branches", model.Branches)
	return model, nil
}

// evalContext exposes the process environment as an `env` object so token
// attributes can be written as env.GITHUB_TOKEN.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k != "" {
			vars[k] = cty.StringVal(v)
		}
	}
	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

package hclcfg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capstan.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	t.Setenv("CAPSTAN_TEST_TOKEN", "gh-secret")

	path := writeConfig(t, `
branches        = ["main", "release/2.x"]
tag_prefix      = ""
draft_for_build = false

solution "src/All.sln" {}
project "tools/Gen/Gen.csproj" {}

github {
  token = env.CAPSTAN_TEST_TOKEN
}

nuget {
  publish = false
}
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, []string{
		filepath.Join(dir, "src", "All.sln"),
		filepath.Join(dir, "tools", "Gen", "Gen.csproj"),
	}, model.Inputs)
	assert.Equal(t, []string{"main", "release/2.x"}, model.Branches)
	assert.Equal(t, "", model.TagPrefix)
	assert.False(t, model.DraftForBuild)

	assert.True(t, model.GitHub.Publish)
	assert.Equal(t, "gh-secret", model.GitHub.Token)
	assert.False(t, model.NuGet.Publish)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
solution "All.sln" {}
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"main"}, model.Branches)
	assert.Equal(t, "v", model.TagPrefix)
	assert.True(t, model.DraftForBuild)
	assert.False(t, model.GitHub.Publish)
	assert.False(t, model.NuGet.Publish)
}

func TestLoadNoInputs(t *testing.T) {
	path := writeConfig(t, `branches = ["main"]`)

	_, err := NewLoader().Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no solution or project blocks")
}

func TestLoadInvalidHCL(t *testing.T) {
	path := writeConfig(t, `solution "x.sln" {`)

	_, err := NewLoader().Load(context.Background(), path)
	assert.Error(t, err)
}

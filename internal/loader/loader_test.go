package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capstan-dev/capstan/internal/diag"
	"github.com/capstan-dev/capstan/internal/model"
	"github.com/capstan-dev/capstan/internal/msbuild"
)

// fakeExtractor serves canned facts keyed by normalized project path and
// records every call it receives.
type fakeExtractor struct {
	mu sync.Mutex

	frameworks    map[string]model.TargetFrameworks
	facts         map[string]msbuild.FactSet
	frameworkErrs map[string]error
	factErrs      map[string]error

	packageInfoCalls map[string]string // path -> pinned framework
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{
		frameworks:       make(map[string]model.TargetFrameworks),
		facts:            make(map[string]msbuild.FactSet),
		frameworkErrs:    make(map[string]error),
		factErrs:         make(map[string]error),
		packageInfoCalls: make(map[string]string),
	}
}

func (f *fakeExtractor) TargetFrameworks(_ context.Context, path string) (model.TargetFrameworks, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.frameworkErrs[path]; err != nil {
		return model.TargetFrameworks{}, err
	}
	if tf, ok := f.frameworks[path]; ok {
		return tf, nil
	}
	return model.TargetFrameworks{Monikers: []string{"net8.0"}}, nil
}

func (f *fakeExtractor) PackageInfo(_ context.Context, path, framework string) (msbuild.FactSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.packageInfoCalls[path] = framework
	if err := f.factErrs[path]; err != nil {
		return msbuild.FactSet{}, err
	}
	if facts, ok := f.facts[path]; ok {
		return facts, nil
	}
	return msbuild.FactSet{Properties: map[string]string{}}, nil
}

// addProject registers a project under dir and returns its normalized path.
func (f *fakeExtractor) addProject(t *testing.T, dir, name, version string, packable bool, refs ...string) string {
	t.Helper()
	path, err := model.NormalizePath(filepath.Join(dir, name, name+".csproj"))
	require.NoError(t, err)
	props := map[string]string{
		msbuild.FactPackageID:    name,
		msbuild.FactAssemblyName: name,
		msbuild.FactVersion:      version,
		msbuild.FactIsPackable:   fmt.Sprint(packable),
	}
	f.facts[path] = msbuild.FactSet{Properties: props, ProjectReferences: refs}
	return path
}

func paths(c *model.ProjectCollection) []string {
	out := make([]string, len(c.Projects))
	for i, p := range c.Projects {
		out[i] = p.Path
	}
	return out
}

func TestLoadOrdersReferences(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeExtractor()
	core := fake.addProject(t, dir, "core", "1.0.0", true)
	lib := fake.addProject(t, dir, "lib", "1.0.0", true, core)
	app := fake.addProject(t, dir, "app", "1.0.0", false, lib)

	// Path-sorted order is app, core, lib; references must still win.
	collections, err := New(fake, 4).Load(context.Background(), []string{app, core, lib})
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, "", collections[0].SolutionKey)
	assert.Equal(t, []string{core, lib, app}, paths(collections[0]))
}

func TestLoadIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeExtractor()
	var inputs []string
	for _, name := range []string{"echo", "alpha", "delta", "bravo", "charlie"} {
		inputs = append(inputs, fake.addProject(t, dir, name, "1.0.0", false))
	}

	first, err := New(fake, 8).Load(context.Background(), inputs)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := New(fake, 8).Load(context.Background(), inputs)
		require.NoError(t, err)
		require.Len(t, again, 1)
		assert.Equal(t, paths(first[0]), paths(again[0]))
	}
}

func TestLoadReferencePrecedesReferrerProperty(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeExtractor()
	a := fake.addProject(t, dir, "a", "1.0.0", false)
	b := fake.addProject(t, dir, "b", "1.0.0", false, a)
	c := fake.addProject(t, dir, "c", "1.0.0", false, a, b)
	d := fake.addProject(t, dir, "d", "1.0.0", false, c)

	collections, err := New(fake, 4).Load(context.Background(), []string{d, c, b, a})
	require.NoError(t, err)
	require.Len(t, collections, 1)

	index := make(map[string]int)
	for i, p := range collections[0].Projects {
		index[p.Path] = i
	}
	for _, p := range collections[0].Projects {
		for _, ref := range p.References {
			assert.Less(t, index[ref], index[p.Path],
				"reference %s must precede %s", ref, p.Path)
		}
	}
}

func TestLoadDuplicateDirectInput(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeExtractor()
	a := fake.addProject(t, dir, "a", "1.0.0", false)

	_, err := New(fake, 2).Load(context.Background(), []string{a, a})
	require.Error(t, err)
	assert.True(t, diag.HasKind(err, diag.DuplicateInput))
	// Discovery failure aborts before any extraction happens.
	assert.Empty(t, fake.packageInfoCalls)
}

func TestLoadDuplicateViaSolution(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeExtractor()
	a := fake.addProject(t, dir, "a", "1.0.0", false)

	slnPath := filepath.Join(dir, "all.sln")
	slnBody := fmt.Sprintf("Project(\"{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}\") = \"a\", \"%s\", \"{1}\"\nEndProject\n", a)
	require.NoError(t, os.WriteFile(slnPath, []byte(slnBody), 0o644))

	_, err := New(fake, 2).Load(context.Background(), []string{a, slnPath})
	require.Error(t, err)
	assert.True(t, diag.HasKind(err, diag.DuplicateInput))
}

func TestLoadSolutionGrouping(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeExtractor()
	a := fake.addProject(t, dir, "a", "1.0.0", false)
	b := fake.addProject(t, dir, "b", "1.0.0", false)
	tool := fake.addProject(t, dir, "tool", "1.0.0", false)

	slnPath := filepath.Join(dir, "all.sln")
	slnBody := fmt.Sprintf("Project(\"{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}\") = \"a\", \"%s\", \"{1}\"\nEndProject\n"+
		"Project(\"{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}\") = \"b\", \"%s\", \"{2}\"\nEndProject\n", a, b)
	require.NoError(t, os.WriteFile(slnPath, []byte(slnBody), 0o644))

	collections, err := New(fake, 2).Load(context.Background(), []string{slnPath, tool})
	require.NoError(t, err)
	require.Len(t, collections, 2)

	normalizedSln, err := model.NormalizePath(slnPath)
	require.NoError(t, err)
	assert.Equal(t, normalizedSln, collections[0].SolutionKey)
	assert.Equal(t, []string{a, b}, paths(collections[0]))
	assert.Equal(t, "", collections[1].SolutionKey)
	assert.Equal(t, []string{tool}, paths(collections[1]))
}

func TestLoadCycleNamesAllProjects(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeExtractor()
	a, err := model.NormalizePath(filepath.Join(dir, "a", "a.csproj"))
	require.NoError(t, err)
	b, err := model.NormalizePath(filepath.Join(dir, "b", "b.csproj"))
	require.NoError(t, err)
	c, err := model.NormalizePath(filepath.Join(dir, "c", "c.csproj"))
	require.NoError(t, err)

	fake.facts[a] = msbuild.FactSet{Properties: map[string]string{msbuild.FactAssemblyName: "a"}, ProjectReferences: []string{b}}
	fake.facts[b] = msbuild.FactSet{Properties: map[string]string{msbuild.FactAssemblyName: "b"}, ProjectReferences: []string{c}}
	fake.facts[c] = msbuild.FactSet{Properties: map[string]string{msbuild.FactAssemblyName: "c"}, ProjectReferences: []string{a}}

	_, err = New(fake, 2).Load(context.Background(), []string{a, b, c})
	require.Error(t, err)
	assert.True(t, diag.HasKind(err, diag.UnresolvedDependency))
	assert.Contains(t, err.Error(), "a")
	assert.Contains(t, err.Error(), "b")
	assert.Contains(t, err.Error(), "c")
}

func TestLoadForeignReferenceImposesNoConstraint(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeExtractor()
	outside := filepath.Join(dir, "elsewhere", "x.csproj")
	a := fake.addProject(t, dir, "a", "1.0.0", false, outside)

	collections, err := New(fake, 2).Load(context.Background(), []string{a})
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, []string{a}, paths(collections[0]))
}

func TestLoadPhase1FailureAbortsBeforePhase2(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeExtractor()
	a := fake.addProject(t, dir, "a", "1.0.0", false)
	b := fake.addProject(t, dir, "b", "1.0.0", false)
	fake.frameworkErrs[b] = errors.New("msbuild exploded")

	_, err := New(fake, 2).Load(context.Background(), []string{a, b})
	require.Error(t, err)
	assert.True(t, diag.HasKind(err, diag.ExtractionFailure))
	assert.Empty(t, fake.packageInfoCalls)
}

func TestLoadPhase2FailureDoesNotCancelSiblings(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeExtractor()
	a := fake.addProject(t, dir, "a", "1.0.0", false)
	b := fake.addProject(t, dir, "b", "1.0.0", false)
	fake.factErrs[a] = errors.New("bad project")

	_, err := New(fake, 2).Load(context.Background(), []string{a, b})
	require.Error(t, err)
	assert.True(t, diag.HasKind(err, diag.ExtractionFailure))
	// Both units ran to completion despite the failure.
	assert.Len(t, fake.packageInfoCalls, 2)
}

func TestLoadPinsMultiTargetProjects(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeExtractor()
	a := fake.addProject(t, dir, "a", "1.0.0", false)
	fake.frameworks[a] = model.TargetFrameworks{
		Multi:    true,
		Monikers: []string{"netstandard2.0", "net6.0", "net8.0"},
	}

	_, err := New(fake, 2).Load(context.Background(), []string{a})
	require.NoError(t, err)
	assert.Equal(t, "net8.0", fake.packageInfoCalls[a])
}

func TestLoadUnsupportedOutputKind(t *testing.T) {
	dir := t.TempDir()
	fake := newFakeExtractor()
	a := fake.addProject(t, dir, "a", "1.0.0", false)
	fake.facts[a].Properties[msbuild.FactOutputType] = "Module"

	_, err := New(fake, 2).Load(context.Background(), []string{a})
	require.Error(t, err)
	assert.True(t, diag.HasKind(err, diag.UnsupportedOutputKind))
}

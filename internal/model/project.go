package model

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// OutputKind classifies the artifact a project produces.
type OutputKind int

const (
	OutputLibrary OutputKind = iota
	OutputExe
	OutputWinExe
	OutputAppContainerExe
)

// ParseOutputKind maps an MSBuild OutputType fact onto an OutputKind.
func ParseOutputKind(s string) (OutputKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "library", "":
		return OutputLibrary, nil
	case "exe":
		return OutputExe, nil
	case "winexe":
		return OutputWinExe, nil
	case "appcontainerexe":
		return OutputAppContainerExe, nil
	}
	return OutputLibrary, fmt.Errorf("unsupported output kind %q", s)
}

func (k OutputKind) String() string {
	switch k {
	case OutputExe:
		return "Exe"
	case OutputWinExe:
		return "WinExe"
	case OutputAppContainerExe:
		return "AppContainerExe"
	default:
		return "Library"
	}
}

// TargetFrameworks carries a project's framework monikers in declaration
// order, plus whether the project multi-targets.
type TargetFrameworks struct {
	Multi    bool
	Monikers []string
}

// Last returns the last-declared moniker, or "" when none are known.
func (t TargetFrameworks) Last() string {
	if len(t.Monikers) == 0 {
		return ""
	}
	return t.Monikers[len(t.Monikers)-1]
}

// NormalizePath converts a descriptor path into its identity form: absolute,
// cleaned, and case-folded on platforms whose filesystems ignore case.
func NormalizePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("normalizing path %q: %w", path, err)
	}
	abs = filepath.Clean(abs)
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		abs = strings.ToLower(abs)
	}
	return abs, nil
}

// SolutionGrouping maps a solution identity (or "" for projects supplied
// directly) to the ordered descriptor paths it contains. Every descriptor
// appears in exactly one grouping.
type SolutionGrouping map[string][]string

// ProjectRecord is the loaded metadata for one project. The Path is its
// identity. Only PublishProfile is assigned after loading.
type ProjectRecord struct {
	Path         string
	PackageID    string
	AssemblyName string
	OutputKind   OutputKind
	Version      string
	Description  string
	License      string
	ProjectURL   string
	Packable     bool
	TestProject  bool
	// References holds resolved absolute paths to referenced projects, in
	// declaration order.
	References []string
	Frameworks TargetFrameworks
	WebApp     bool

	// PublishProfile is the web-app publish profile slot, assigned post-load.
	PublishProfile string
}

// ProjectCollection is an ordered sequence of records sharing one solution
// grouping key. After loading it is ordered topologically: every in-set
// reference of a record appears before that record.
type ProjectCollection struct {
	SolutionKey string
	Projects    []*ProjectRecord
}

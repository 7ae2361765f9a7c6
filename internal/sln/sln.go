// Package sln consumes the Visual Studio solution text format. Only project
// entries in the native project formats are surfaced; everything else in a
// solution (folders, nested sections) is ignored.
package sln

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// projectLine matches entries such as:
//
//	Project("{GUID}") = "Name", "src\App\App.csproj", "{GUID}"
var projectLine = regexp.MustCompile(`^Project\("\{[^}]+\}"\)\s*=\s*"[^"]*",\s*"([^"]+)",`)

var projectExtensions = map[string]bool{
	".csproj": true,
	".fsproj": true,
	".vbproj": true,
}

// Projects parses the solution file at path and returns the member project
// paths in declaration order, resolved against the solution's directory.
func Projects(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening solution %s: %w", path, err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	var projects []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := projectLine.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		rel := filepath.FromSlash(strings.ReplaceAll(m[1], `\`, "/"))
		if !projectExtensions[strings.ToLower(filepath.Ext(rel))] {
			continue
		}
		if filepath.IsAbs(rel) {
			projects = append(projects, rel)
		} else {
			projects = append(projects, filepath.Join(dir, rel))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading solution %s: %w", path, err)
	}
	return projects, nil
}

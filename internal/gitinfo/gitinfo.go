// Package gitinfo resolves the current branch and commit of a local git
// repository by reading the repository's on-disk state directly.
package gitinfo

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/capstan-dev/capstan/internal/model"
)

// Resolve walks upward from startDir looking for a repository and returns
// its branch and commit. It returns (nil, nil) when no repository exists;
// whether that is fatal is the caller's decision.
func Resolve(startDir string) (*model.GitInfo, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		gitDir, ok, err := gitDirAt(dir)
		if err != nil {
			return nil, err
		}
		if ok {
			return readHead(gitDir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// gitDirAt locates the actual git directory for dir, following the
// "gitdir:" indirection used by worktrees and submodules.
func gitDirAt(dir string) (string, bool, error) {
	path := filepath.Join(dir, ".git")
	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if fi.IsDir() {
		return path, true, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, err
	}
	target := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(string(data)), "gitdir:"))
	if target == "" {
		return "", false, fmt.Errorf("malformed .git file at %s", path)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	return target, true, nil
}

func readHead(gitDir string) (*model.GitInfo, error) {
	data, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return nil, fmt.Errorf("reading HEAD in %s: %w", gitDir, err)
	}
	head := strings.TrimSpace(string(data))

	// Detached HEAD stores the commit directly and names no branch.
	if !strings.HasPrefix(head, "ref: ") {
		return &model.GitInfo{Commit: head}, nil
	}

	ref := strings.TrimSpace(strings.TrimPrefix(head, "ref: "))
	info := &model.GitInfo{Branch: strings.TrimPrefix(ref, "refs/heads/")}

	commit, err := resolveRef(gitDir, ref)
	if err != nil {
		return nil, err
	}
	info.Commit = commit
	return info, nil
}

func resolveRef(gitDir, ref string) (string, error) {
	if data, err := os.ReadFile(filepath.Join(gitDir, filepath.FromSlash(ref))); err == nil {
		return strings.TrimSpace(string(data)), nil
	}

	// An unborn branch has no loose ref and no packed entry; packed-refs may
	// be absent entirely in that case.
	f, err := os.Open(filepath.Join(gitDir, "packed-refs"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "^") {
			continue
		}
		sha, name, ok := strings.Cut(line, " ")
		if ok && name == ref {
			return sha, nil
		}
	}
	return "", scanner.Err()
}

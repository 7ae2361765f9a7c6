// Package ci reads the CI trigger context from the environment. Only GitHub
// Actions is recognized; outside CI the context is absent.
package ci

import "strings"

// RefKind classifies the git ref a CI run was triggered from.
type RefKind int

const (
	RefBranch RefKind = iota
	RefTag
	RefOther
)

func (k RefKind) String() string {
	switch k {
	case RefTag:
		return "tag"
	case RefBranch:
		return "branch"
	default:
		return "other"
	}
}

// Context describes one CI trigger.
type Context struct {
	EventName string
	RefKind   RefKind
	RefName   string
}

// FromEnviron builds a Context from the given environment lookup, or nil
// when the process is not running under a recognized CI system.
func FromEnviron(getenv func(string) string) *Context {
	if getenv("GITHUB_ACTIONS") != "true" {
		return nil
	}
	kind, name := classifyRef(getenv("GITHUB_REF"))
	return &Context{
		EventName: getenv("GITHUB_EVENT_NAME"),
		RefKind:   kind,
		RefName:   name,
	}
}

func classifyRef(ref string) (RefKind, string) {
	switch {
	case strings.HasPrefix(ref, "refs/tags/"):
		return RefTag, strings.TrimPrefix(ref, "refs/tags/")
	case strings.HasPrefix(ref, "refs/heads/"):
		return RefBranch, strings.TrimPrefix(ref, "refs/heads/")
	default:
		return RefOther, ref
	}
}

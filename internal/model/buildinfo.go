package model

// BuildKind is the build intent requested on the command line. KindRun is
// transient: the release decision procedure converts it into a terminal
// ReleaseAction before anything is executed.
type BuildKind int

const (
	KindNone BuildKind = iota
	KindBuild
	KindPublish
	KindRun
)

func (k BuildKind) String() string {
	switch k {
	case KindBuild:
		return "build"
	case KindPublish:
		return "publish"
	case KindRun:
		return "run"
	default:
		return "none"
	}
}

// ReleaseAction is the finalized action recorded on the aggregate. There is
// deliberately no auto-detect variant: detection happens before a value of
// this type is produced.
type ReleaseAction int

const (
	ActionUnset ReleaseAction = iota
	ActionBuild
	ActionPublish
)

func (a ReleaseAction) String() string {
	switch a {
	case ActionBuild:
		return "build"
	case ActionPublish:
		return "publish"
	default:
		return "unset"
	}
}

// GitInfo is the resolved state of the local repository.
type GitInfo struct {
	Branch string
	Commit string
}

// BuildOutput accumulates the artifacts produced for one project.
type BuildOutput struct {
	NuGetPackages []string
	AppPackages   []string
}

// BuildInformation is the aggregate root for one release run. It is created
// after loading, ordering and verification complete; Action and AllowDraft
// are the only fields mutated afterwards, by the decision engine.
type BuildInformation struct {
	Version     string
	Collections []*ProjectCollection
	Git         *GitInfo

	AllowDraft bool
	Action     ReleaseAction

	outputs map[*ProjectRecord]*BuildOutput
}

// PackableCount reports how many loaded projects are flagged packable.
func (b *BuildInformation) PackableCount() int {
	n := 0
	for _, c := range b.Collections {
		for _, p := range c.Projects {
			if p.Packable {
				n++
			}
		}
	}
	return n
}

// OutputFor returns the build-output accumulator for a record, allocating it
// on first use.
func (b *BuildInformation) OutputFor(p *ProjectRecord) *BuildOutput {
	if b.outputs == nil {
		b.outputs = make(map[*ProjectRecord]*BuildOutput)
	}
	out, ok := b.outputs[p]
	if !ok {
		out = &BuildOutput{}
		b.outputs[p] = out
	}
	return out
}

// Projects iterates all records across collections in established order.
func (b *BuildInformation) Projects() []*ProjectRecord {
	var all []*ProjectRecord
	for _, c := range b.Collections {
		all = append(all, c.Projects...)
	}
	return all
}

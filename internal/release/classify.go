package release

import (
	"context"
	"regexp"

	"github.com/capstan-dev/capstan/internal/ci"
	"github.com/capstan-dev/capstan/internal/ctxlog"
	"github.com/capstan-dev/capstan/internal/model"
)

// Classify decides what an automatic CI run does. A push of a tag whose name
// starts with tagPrefix followed by a dotted number selects publish; every
// other trigger selects a plain build.
//
// The tag pattern is a prefix match on purpose: a name like "v1.2.3-rc1"
// still counts as a release tag. The prefix is inserted verbatim, so callers
// must supply a regex-safe value.
func Classify(ctx context.Context, trigger *ci.Context, tagPrefix string) model.ReleaseAction {
	logger := ctxlog.FromContext(ctx)

	if trigger.EventName == "push" && trigger.RefKind == ci.RefTag {
		pattern, err := regexp.Compile(`^` + tagPrefix + `\d+(\.\d+)*`)
		if err != nil {
			logger.Warn("Invalid version-tag prefix, treating trigger as a plain build.",
				"prefix", tagPrefix, "error", err)
			return model.ActionBuild
		}
		if pattern.MatchString(trigger.RefName) {
			logger.Info("Tag matches the version pattern, the run will publish.",
				"tag", trigger.RefName)
			return model.ActionPublish
		}
	}

	logger.Info("CI trigger is not a release tag, the run will only build.",
		"event", trigger.EventName, "ref", trigger.RefName, "refKind", trigger.RefKind.String())
	return model.ActionBuild
}

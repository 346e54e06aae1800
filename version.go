package zen

import (
	_ "embed"
	"regexp"
	"runtime"
	"strings"
)

var semverRE = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?(?:\+[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?$`)

//go:embed VERSION
var embeddedVersion string

// Version is the release in SemVer form, without the leading v.
func Version() string {
	return strings.TrimSpace(embeddedVersion)
}

// VersionTag is Version as a git tag.
func VersionTag() string {
	return "v" + Version()
}

// UserAgent identifies zen to the AI relay.
func UserAgent() string {
	return "zen/" + VersionTag() + " (" + runtime.GOOS + "/" + runtime.GOARCH + ")"
}

func IsSemver(v string) bool {
	return semverRE.MatchString(strings.TrimSpace(v))
}

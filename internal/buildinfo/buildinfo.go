// Package buildinfo carries the version stamped in with -ldflags, e.g.
//
//	go build -ldflags "-X pianoscape/internal/buildinfo.Version=v0.3.0"
package buildinfo

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns the version, or the commit for untagged builds.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// Long adds the commit and build date to Short, for --version.
func Long() string {
	return Short() + " (" + Commit + ", " + Date + ")"
}

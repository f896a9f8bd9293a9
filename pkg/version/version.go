// Package version holds build metadata injected with -ldflags -X.
package version

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

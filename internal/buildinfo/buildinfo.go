package buildinfo

// set by goreleaser ldflags
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

package version

// Version is overridden at build time with -ldflags "-X scopeidx/internal/version.Version=...".
var Version = "0.1.0-dev"

func String() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

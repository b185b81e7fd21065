package version

// Version is the engine version. Set at build time with
// -ldflags "-X github.com/rxtech-lab/argo-replay/internal/version.Version=v0.4.1".
// "main" marks a development build.
var Version = "v0.4.0"

// GetVersion returns the current engine version.
func GetVersion() string {
	return Version
}

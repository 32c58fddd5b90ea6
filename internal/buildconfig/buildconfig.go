package buildconfig

import "fmt"

// Set with -ldflags "-X github.com/trackflow-app/trackflow/internal/buildconfig.version=..."
var (
	version = "dev"
	commit  = "unknown"
)

func Version() string {
	return version
}

func Commit() string {
	return commit
}

// VersionInfo is reported by the health endpoint.
func VersionInfo() map[string]string {
	return map[string]string{
		"version": version,
		"commit":  commit,
	}
}

// UserAgent identifies the API client on outgoing requests.
func UserAgent() string {
	return fmt.Sprintf("trackflow/%s (%s)", version, commit)
}

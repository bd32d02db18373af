// Package misc keeps build time information about the program.
package misc

// Set by the linker: -X svgvar/misc.version=... -X svgvar/misc.gitHash=...
var (
	version = "dev"
	gitHash = "unknown"
)

const appName = "svgvar"

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns commit hash the program was built from.
func GetGitHash() string {
	return gitHash
}

// GetAppName returns the name used for logs, temporary files and reports.
func GetAppName() string {
	return appName
}

package config

import "fmt"

// ModuleName is the go module identifier of this service.
const ModuleName = "github/chapool/hw-bridge"

// Build arguments, overridden via -ldflags at build time.
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// GetFormattedBuildArgs returns "<module> @ <commit> (<build date>)".
func GetFormattedBuildArgs() string {
	return fmt.Sprintf("%v @ %v (%v)", ModuleName, Commit, BuildDate)
}

package version

import (
	"strings"

	"github.com/fatih/color"

	"jeff/internal/ir"
)

// Version information for the jeff CLI.
// These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Tool is the producer name recorded in modules this CLI writes.
const Tool = "jeff-go"

// Format is the module format version this build reads and writes.
func Format() ir.Version { return ir.CurrentVersion }

// Colored renders Version with each numeric component highlighted.
// Anything that is not major.minor.patch[-suffix] comes back unchanged.
func Colored() string {
	core, suffix, hasSuffix := strings.Cut(Version, "-")
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version
	}
	out := versionMajorColor.Sprint(parts[0]) + "." + versionMinorColor.Sprint(parts[1]) + "." + versionPatchColor.Sprint(parts[2])
	if hasSuffix {
		out += "-" + suffix
	}
	return out
}

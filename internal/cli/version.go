package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X resumetailor/internal/cli.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// buildRevision falls back to the VCS stamp the go tool embeds when the
// ldflags were not set.
func buildRevision() (commit, date string) {
	commit, date = GitCommit, BuildDate
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, date
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && commit == "unknown":
			commit = s.Value
		case s.Key == "vcs.time" && date == "unknown":
			date = s.Value
		}
	}
	return commit, date
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		commit, date := buildRevision()
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "resumetailor version %s\n", Version)
		_, _ = fmt.Fprintf(out, "  commit: %s\n  built:  %s\n  go:     %s %s/%s\n",
			commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

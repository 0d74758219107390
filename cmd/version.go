package cmd

import (
	"runtime"

	"github.com/huangsam/solaredge/internal/api"
	"github.com/spf13/cobra"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of solaredge.",
	Long: `Display the solaredge build stamp and the Go runtime it was compiled with.

Release builds set the version, commit and build date through -ldflags
(-X github.com/huangsam/solaredge/cmd.version=...); local builds report "dev",
"none" and "unknown". Include this output when reporting API or parsing issues.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("solaredge CLI\n")
		cmd.Printf("  Version: %s\n", version)
		cmd.Printf("  Commit:  %s\n", commit)
		cmd.Printf("  Built:   %s\n", date)
		cmd.Printf("  Runtime: %s\n", runtime.Version())
		cmd.Printf("  Agent:   %s\n", api.UserAgent(version))
	},
}

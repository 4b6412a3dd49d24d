package cmd

import (
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// This will be set by goreleaser
	version = "dev"
)

var (
	versionNameColor = color.New(color.FgCyan, color.Bold)
	versionColor     = color.New(color.FgGreen, color.Bold)
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		versionNameColor.Fprint(w, "jalias")
		versionColor.Fprintf(w, " %s", version)
		color.New(color.Faint).Fprintf(w, " (%s %s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

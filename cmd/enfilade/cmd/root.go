package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "enfilade",
	Short: "Adaptive three-tier expression runtime demos",
	Long: `enfilade drives the small built-in demo programs of the
enfilade runtime: a profiling interpreter that hands a function off to a
type-specializing compiler once it runs often enough, all behind one
mutable call target per function.

This CLI is scaffolding around pkg/enfilade, not the runtime itself —
host code embeds the library directly, the way this program's own demo
package does.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file overriding the compile threshold and monomorphic-cache reporting")
}

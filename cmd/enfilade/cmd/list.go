package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in demo programs",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		for _, name := range listDemoNames() {
			fmt.Printf("%-12s %s\n", name, demos[name].description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

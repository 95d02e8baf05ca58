package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <demo>",
	Short: "Run a built-in demo program",
	Long: fmt.Sprintf(`Build one of the built-in demo programs, drive it through its
warmup calls, make one final call, and print the result alongside the
tier (PROFILING, COMPILING, or COMPILED) that produced it.

Known demos: %v`, listDemoNames()),
	Args: cobra.ExactArgs(1),
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDemo(_ *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	name := args[0]
	d, ok := demos[name]
	if !ok {
		return demoNotFound(name)
	}

	entry, warmup, final := d.build()
	for i, call := range warmup {
		if _, err := invoke(entry, call); err != nil {
			return fmt.Errorf("warmup call %d: %w", i, err)
		}
	}

	result, err := invoke(entry, final)
	if err != nil {
		fmt.Printf("%s%v -> error: %v (tier: %s)\n", name, final, err, entry.State())
		return nil
	}
	fmt.Printf("%s%v -> %s (tier: %s)\n", name, final, result, entry.State())
	return nil
}

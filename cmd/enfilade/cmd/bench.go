package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var benchIterations int

var benchCmd = &cobra.Command{
	Use:   "bench <demo>",
	Short: "Repeatedly call a built-in demo and report timing per tier",
	Long: fmt.Sprintf(`Build a demo, run its own warmup calls once, then call its final
arguments --iterations times and report the elapsed time and the tier
that served the calls.

Known demos: %v`, listDemoNames()),
	Args: cobra.ExactArgs(1),
	RunE: benchDemo,
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().IntVar(&benchIterations, "iterations", 1000, "number of timed calls")
}

func benchDemo(_ *cobra.Command, args []string) error {
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

	start := time.Now()
	for i := 0; i < benchIterations; i++ {
		if _, err := invoke(entry, final); err != nil {
			// A demo like badcond's type mismatch legitimately
			// errors on some/all calls; bench
			// reports timing regardless, not correctness.
			continue
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("%s: %d calls in %s (%s/call), tier: %s\n",
		name, benchIterations, elapsed, elapsed/time.Duration(benchIterations), entry.State())
	return nil
}

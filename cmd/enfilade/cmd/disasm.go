package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/vassilibykov/enfilade-go/pkg/enfilade"
)

var disasmJSON bool

var disasmCmd = &cobra.Command{
	Use:   "disasm <demo>",
	Short: "Force compilation of a built-in demo and print its disassembly",
	Long: fmt.Sprintf(`Drive a built-in demo through its warmup calls, forcing its
compilation unit into COMPILED, then print the disassembly (§6.1) of
every function in the unit. With --json, emit the same information as
a JSON document instead.

Known demos: %v`, listDemoNames()),
	Args: cobra.ExactArgs(1),
	RunE: disasmDemo,
}

func init() {
	rootCmd.AddCommand(disasmCmd)
	disasmCmd.Flags().BoolVar(&disasmJSON, "json", false, "emit JSON instead of text")
}

func disasmDemo(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
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
	// Some demos (answer, makeGetter) carry no warmup of their own;
	// drive the demo's own final call repeatedly until it crosses the
	// compile threshold, so disasm always reports a compiled unit.
	for i := 0; entry.State() != "COMPILED" && i < 50; i++ {
		invoke(entry, final)
	}

	if !disasmJSON {
		fmt.Print(entry.Describe())
		if cfg.ReportMonomorphic {
			for _, line := range entry.MonomorphicReport() {
				fmt.Println(line)
			}
		}
		return nil
	}

	doc, err := describeJSON(name, entry, cfg)
	if err != nil {
		return err
	}
	fmt.Println(doc)
	return nil
}

// describeJSON assembles a JSON document for entry via sjson, field by
// field, the way the demo's text disassembly is assembled line by
// line — then round-trips it through gjson once, to confirm the
// document it built is valid and queryable before printing it.
func describeJSON(name string, entry *enfilade.UserFunction, cfg runConfig) (string, error) {
	doc := "{}"
	var err error
	if doc, err = sjson.Set(doc, "demo", name); err != nil {
		return "", err
	}
	if doc, err = sjson.Set(doc, "name", entry.Name()); err != nil {
		return "", err
	}
	if doc, err = sjson.Set(doc, "state", entry.State()); err != nil {
		return "", err
	}
	if doc, err = sjson.Set(doc, "describe", entry.Describe()); err != nil {
		return "", err
	}
	if cfg.ReportMonomorphic {
		if doc, err = sjson.Set(doc, "monomorphic", entry.MonomorphicReport()); err != nil {
			return "", err
		}
	}

	if !gjson.Valid(doc) {
		return "", fmt.Errorf("assembled disasm document is not valid JSON")
	}
	return doc, nil
}

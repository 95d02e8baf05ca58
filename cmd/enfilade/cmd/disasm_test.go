package cmd

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/tidwall/gjson"
)

func TestDisasmTextIncludesEveryUnitMember(t *testing.T) {
	disasmJSON = false
	output, err := captureStdout(t, func() error {
		return disasmDemo(disasmCmd, []string{"makeGetter"})
	})
	if err != nil {
		t.Fatalf("disasmDemo failed: %v\noutput: %s", err, output)
	}
	if !strings.Contains(output, "== makeGetter ==") || !strings.Contains(output, "== getter ==") {
		t.Errorf("output = %q, want blocks for both makeGetter and getter", output)
	}
}

func TestDisasmJSONIsQueryable(t *testing.T) {
	disasmJSON = true
	defer func() { disasmJSON = false }()

	output, err := captureStdout(t, func() error {
		return disasmDemo(disasmCmd, []string{"answer"})
	})
	if err != nil {
		t.Fatalf("disasmDemo failed: %v\noutput: %s", err, output)
	}
	output = strings.TrimSpace(output)

	if !gjson.Valid(output) {
		t.Fatalf("output is not valid JSON: %s", output)
	}
	if got := gjson.Get(output, "demo").String(); got != "answer" {
		t.Errorf("demo = %q, want \"answer\"", got)
	}
	if got := gjson.Get(output, "state").String(); got != "COMPILED" {
		t.Errorf("state = %q, want \"COMPILED\" after forcing compilation", got)
	}
	if !gjson.Get(output, "describe").Exists() {
		t.Error("expected a \"describe\" field in the JSON disasm output")
	}

	snaps.MatchSnapshot(t, "answer_disasm_fields", []string{
		gjson.Get(output, "demo").String(),
		gjson.Get(output, "name").String(),
		gjson.Get(output, "state").String(),
	})
}

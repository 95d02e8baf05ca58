package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w

	callErr := fn()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String(), callErr
}

func TestRunDemoAnswer(t *testing.T) {
	output, err := captureStdout(t, func() error {
		return runDemo(runCmd, []string{"answer"})
	})
	if err != nil {
		t.Fatalf("runDemo failed: %v\noutput: %s", err, output)
	}
	if !strings.Contains(output, "42") {
		t.Errorf("output = %q, want it to mention 42", output)
	}
}

func TestRunDemoFibPoisonBranch(t *testing.T) {
	output, err := captureStdout(t, func() error {
		return runDemo(runCmd, []string{"fib"})
	})
	if err != nil {
		t.Fatalf("runDemo failed: %v\noutput: %s", err, output)
	}
	if !strings.Contains(output, "error") {
		t.Errorf("output = %q, want the poison branch's \"error\" result", output)
	}
}

func TestListCommandCoversEveryDemo(t *testing.T) {
	output, err := captureStdout(t, func() error {
		return listCmd.RunE(listCmd, nil)
	})
	if err != nil {
		t.Fatalf("list failed: %v\noutput: %s", err, output)
	}
	for name := range demos {
		if !strings.Contains(output, name) {
			t.Errorf("list output missing demo %q:\n%s", name, output)
		}
	}
}

func TestBenchDemoReportsTierAndCount(t *testing.T) {
	benchIterations = 15
	defer func() { benchIterations = 1000 }()

	output, err := captureStdout(t, func() error {
		return benchDemo(benchCmd, []string{"answer"})
	})
	if err != nil {
		t.Fatalf("benchDemo failed: %v\noutput: %s", err, output)
	}
	if !strings.Contains(output, "15 calls") {
		t.Errorf("output = %q, want it to report 15 calls", output)
	}
	if !strings.Contains(output, "COMPILED") {
		t.Errorf("output = %q, want it to report the COMPILED tier after 15 calls", output)
	}
}

func TestRunDemoUnknownName(t *testing.T) {
	if err := runDemo(runCmd, []string{"no-such-demo"}); err == nil {
		t.Error("expected an error for an unknown demo name")
	}
}

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vassilibykov/enfilade-go/internal/interp"
)

func TestLoadConfigOverridesCompileThreshold(t *testing.T) {
	oldThreshold := interp.CompileThreshold
	oldConfigPath := configPath
	defer func() {
		interp.CompileThreshold = oldThreshold
		configPath = oldConfigPath
	}()

	path := filepath.Join(t.TempDir(), "enfilade.yaml")
	if err := os.WriteFile(path, []byte("compileThreshold: 3\nreportMonomorphic: true\n"), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	configPath = path

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.CompileThreshold != 3 {
		t.Errorf("cfg.CompileThreshold = %d, want 3", cfg.CompileThreshold)
	}
	if !cfg.ReportMonomorphic {
		t.Error("cfg.ReportMonomorphic = false, want true")
	}
	if interp.CompileThreshold != 3 {
		t.Errorf("interp.CompileThreshold = %d, want 3", interp.CompileThreshold)
	}
}

func TestLoadConfigWithoutPathIsANoOp(t *testing.T) {
	oldConfigPath := configPath
	defer func() { configPath = oldConfigPath }()
	configPath = ""

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.CompileThreshold != 0 || cfg.ReportMonomorphic {
		t.Errorf("cfg = %+v, want the zero value", cfg)
	}
}

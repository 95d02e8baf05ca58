package cmd

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/vassilibykov/enfilade-go/internal/interp"
)

// runConfig is the shape of the optional --config file (§6.1): a
// couple of knobs a demo run can be pointed at without recompiling the
// binary, the way the teacher's auxiliary tooling favors a structured
// config file over a wall of flags.
type runConfig struct {
	// CompileThreshold overrides interp.CompileThreshold when positive.
	CompileThreshold int64 `yaml:"compileThreshold"`
	// ReportMonomorphic, when true, has disasm include each parameter's
	// observed monomorphic-cache candidate object in its output.
	ReportMonomorphic bool `yaml:"reportMonomorphic"`
}

var configPath string

func loadConfig() (runConfig, error) {
	cfg := runConfig{}
	if configPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.CompileThreshold > 0 {
		interp.CompileThreshold = cfg.CompileThreshold
	}
	return cfg, nil
}

// Package config loads tablook CLI configuration.
//
// Values are layered with koanf: built-in defaults, then tablook.yaml,
// then TABLOOK_ environment variables, then explicitly set flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/tablook/internal/qa"
	"github.com/leapstack-labs/tablook/pkg/core"
)

// Default configuration values.
const (
	DefaultOutputDir = "tablook_out"
	DefaultStateFile = ".tablook/state.db"
	DefaultOutput    = "auto" // TTY=text, non-TTY=markdown
	DefaultFormat    = "json"
	DefaultDebounce  = 300 * time.Millisecond
)

// Config holds all CLI configuration options.
type Config struct {
	OutputDir string      `koanf:"output_dir"`
	StatePath string      `koanf:"state_path"`
	Output    string      `koanf:"output"`
	Format    string      `koanf:"format"`
	Verbose   bool        `koanf:"verbose"`
	Parallel  bool        `koanf:"parallel"`
	ReuseRuns bool        `koanf:"reuse_runs"`
	Watch     WatchConfig `koanf:"watch"`
	QA        QAConfig    `koanf:"qa"`

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string `koanf:"-"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// QAConfig configures the QA rules.
type QAConfig struct {
	DisabledRules       []string          `koanf:"disabled_rules"`
	Severity            map[string]string `koanf:"severity"` // rule ID -> severity name
	ComplexityThreshold float64           `koanf:"complexity_threshold"`
}

// AnalyzerConfig converts the QA section into analyzer configuration.
func (q QAConfig) AnalyzerConfig() (*qa.AnalyzerConfig, error) {
	cfg := qa.NewAnalyzerConfig()
	for _, id := range q.DisabledRules {
		cfg.DisabledRules[strings.ToUpper(strings.TrimSpace(id))] = true
	}
	for id, name := range q.Severity {
		sev, ok := core.ParseSeverity(name)
		if !ok {
			return nil, fmt.Errorf("qa.severity.%s: unknown severity %q", id, name)
		}
		cfg.SeverityOverrides[strings.ToUpper(id)] = sev
	}
	if q.ComplexityThreshold > 0 {
		cfg.ComplexityThreshold = q.ComplexityThreshold
	}
	return cfg, nil
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		OutputDir: DefaultOutputDir,
		StatePath: DefaultStateFile,
		Output:    DefaultOutput,
		Format:    DefaultFormat,
		Watch:     WatchConfig{Debounce: DefaultDebounce},
		QA:        QAConfig{ComplexityThreshold: qa.DefaultComplexityThreshold},
	}
}

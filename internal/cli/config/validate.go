package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/tablook/internal/cli/output"
	"github.com/leapstack-labs/tablook/internal/engine"
	"github.com/leapstack-labs/tablook/internal/qa"
)

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	var errs []error
	if !output.Valid(c.Output) {
		errs = append(errs, fmt.Errorf("output: unknown mode %q (want auto, text, markdown or json)", c.Output))
	}
	if _, err := engine.ParseFormat(c.Format); err != nil {
		errs = append(errs, fmt.Errorf("format: %w", err))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce: must not be negative, got %s", c.Watch.Debounce))
	}
	if c.QA.ComplexityThreshold < 0 || c.QA.ComplexityThreshold > 1 {
		errs = append(errs, fmt.Errorf("qa.complexity_threshold: must be between 0 and 1, got %g", c.QA.ComplexityThreshold))
	}
	for _, id := range c.QA.DisabledRules {
		if _, ok := qa.GetByID(strings.ToUpper(strings.TrimSpace(id))); !ok {
			errs = append(errs, fmt.Errorf("qa.disabled_rules: unknown rule %q", id))
		}
	}
	if _, err := c.QA.AnalyzerConfig(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/tablook/pkg/core"
)

// Artifact file names.
const (
	ModelFileJSON  = "semantic_model.json"
	ModelFileYAML  = "semantic_model.yaml"
	ReportFileName = "qa_report.json"
)

// Format is the encoding of the semantic model artifact.
type Format string

// Supported artifact formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json or yaml)", s)
	}
}

// EncodeModel renders a semantic model in the given format.
func EncodeModel(m *core.SemanticModel, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(m)
	default:
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

// WriteArtifacts writes the semantic model and QA report into dir and
// returns the paths written.
func WriteArtifacts(dir string, res *Result, format Format) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	modelData, err := EncodeModel(res.Model, format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode semantic model: %w", err)
	}
	name := ModelFileJSON
	if format == FormatYAML {
		name = ModelFileYAML
	}
	modelPath := filepath.Join(dir, name)
	if err := os.WriteFile(modelPath, modelData, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write semantic model: %w", err)
	}

	reportData, err := json.MarshalIndent(res.Report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode qa report: %w", err)
	}
	reportPath := filepath.Join(dir, ReportFileName)
	if err := os.WriteFile(reportPath, append(reportData, '\n'), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write qa report: %w", err)
	}
	return []string{modelPath, reportPath}, nil
}

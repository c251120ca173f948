// Package main provides tests for the tablook CLI.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/tablook/internal/cli"
	"github.com/leapstack-labs/tablook/internal/testutil"
)

func fixturePath(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	return filepath.Join(wd, "..", "..", "internal", "extract", "testdata", "superstore.twb")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	testutil.Chdir(t, t.TempDir())

	output, err := run(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "tablook") {
		t.Errorf("version output should contain 'tablook', got: %s", output)
	}
}

func TestConvertEndToEnd(t *testing.T) {
	dir := t.TempDir()
	testutil.Chdir(t, dir)
	fixture := fixturePath(t)

	if _, err := run(t, "convert", fixture, "-d", "out"); err != nil {
		t.Fatalf("convert command error = %v", err)
	}
	for _, name := range []string{"semantic_model.json", "qa_report.json"} {
		if _, err := os.Stat(filepath.Join(dir, "out", name)); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, ".tablook", "state.db")); err != nil {
		t.Errorf("expected state database: %v", err)
	}

	output, err := run(t, "runs", "-o", "json")
	if err != nil {
		t.Fatalf("runs command error = %v", err)
	}
	var runs []map[string]any
	if err := json.Unmarshal([]byte(output), &runs); err != nil {
		t.Fatalf("runs output is not JSON: %v\n%s", err, output)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestConfigFileAndReuse(t *testing.T) {
	dir := t.TempDir()
	testutil.Chdir(t, dir)
	config := "state_path: state/runs.db\nreuse_runs: true\noutput: json\n"
	if err := os.WriteFile(filepath.Join(dir, "tablook.yaml"), []byte(config), 0o600); err != nil {
		t.Fatal(err)
	}
	fixture := fixturePath(t)

	for i := 0; i < 2; i++ {
		output, err := run(t, "convert", fixture)
		if err != nil {
			t.Fatalf("convert #%d error = %v", i, err)
		}
		var summaries []struct {
			Reused bool `json:"reused"`
		}
		if err := json.Unmarshal([]byte(output), &summaries); err != nil {
			t.Fatalf("convert output is not JSON: %v\n%s", err, output)
		}
		if want := i == 1; summaries[0].Reused != want {
			t.Errorf("convert #%d reused = %v, want %v", i, summaries[0].Reused, want)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "state", "runs.db")); err != nil {
		t.Errorf("expected state database from config file: %v", err)
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	testutil.Chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "tablook.yaml"), []byte("output: html\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, "rules")
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("expected invalid configuration error, got %v", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	output, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion command error = %v", err)
	}
	if !strings.Contains(output, "tablook") {
		t.Error("bash completion should mention tablook")
	}
}

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesConsoleAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer

	logger, closer, err := New(Options{Dir: dir, Console: &console})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info().Str("material", "molded-pulp").Msg("forecast computed")
	logger.Debug().Msg("hidden at info level")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if !strings.Contains(console.String(), "forecast computed") {
		t.Errorf("expected console output, got %q", console.String())
	}
	if strings.Contains(console.String(), "hidden at info level") {
		t.Errorf("debug output leaked at info level")
	}

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), `"material":"molded-pulp"`) {
		t.Errorf("expected structured json in file, got %q", string(data))
	}
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	var console bytes.Buffer
	logger, _, err := New(Options{Verbose: true, Console: &console})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Debug().Msg("trial batch done")
	if !strings.Contains(console.String(), "trial batch done") {
		t.Errorf("expected debug output, got %q", console.String())
	}
}

func TestNew_UnwritableDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := New(Options{Dir: filepath.Join(file, "logs")}); err == nil {
		t.Error("expected error for a log directory below a regular file")
	}
}

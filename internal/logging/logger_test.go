package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatdesk.log")
	Init(Config{Level: "debug", Format: "json", File: path})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Logger.Info().Str("event", "started").Msg("file sink active")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "file sink active") {
		t.Errorf("log file missing message, got: %q", out)
	}
	if !strings.Contains(out, `"event":"started"`) {
		t.Errorf("log file missing structured field, got: %q", out)
	}
}

func TestInitFileUnavailableFallsBackToStderr(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-dir", "chatdesk.log")
	Init(Config{Level: "info", Format: "json", File: missing})
	t.Cleanup(func() { Init(DefaultConfig()) })

	if _, err := os.Stat(missing); err == nil {
		t.Fatalf("log file should not have been created")
	}
	// Logging still works against stderr.
	Logger.Info().Msg("still alive")
}

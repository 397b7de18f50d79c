package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestInit_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "killer.log")
	if err := Init(path, true); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(Nop)

	Log.Debug("generation started", zap.Int("players", 4))
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "generation started" || entry["players"] != float64(4) {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestInit_DebugHiddenByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "killer.log")
	if err := Init(path, false); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(Nop)

	Log.Debug("noise")
	Sync()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "noise") {
		t.Error("debug entry written without verbose")
	}
}

func TestInit_BadPath(t *testing.T) {
	if err := Init(filepath.Join(t.TempDir(), "missing", "killer.log"), false); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

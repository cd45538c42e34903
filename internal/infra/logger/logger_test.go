package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSetup_WritesJSONLines(t *testing.T) {
	root := t.TempDir()

	cleanup, err := Setup(Config{Root: root, Command: "classify"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := IsReady(); err != nil {
		t.Fatalf("expected logger ready: %v", err)
	}
	want := filepath.Join(root, ".diagroute", "logs", "diagroute.log")
	if Path() != want {
		t.Fatalf("expected path %s, got %s", want, Path())
	}

	L().Info("classify.done", "tool", "DESMOS", Since(time.Now()))
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	f, err := os.Open(want)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var records []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("log line is not JSON: %q", sc.Text())
		}
		records = append(records, m)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	last := records[1]
	if last["msg"] != "classify.done" || last["tool"] != "DESMOS" || last["cmd"] != "classify" {
		t.Fatalf("unexpected record: %v", last)
	}
	if _, ok := last["duration_ms"]; !ok {
		t.Fatalf("expected duration_ms attribute: %v", last)
	}
	if ts, _ := last["time"].(string); ts == "" || ts[len(ts)-1] != 'Z' {
		t.Fatalf("expected UTC timestamp, got %v", last["time"])
	}
}

func TestCleanup_ResetsToDiscard(t *testing.T) {
	cleanup, err := Setup(Config{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	_ = cleanup()

	if IsReady() == nil {
		t.Fatalf("expected logger not ready after cleanup")
	}
	if Path() != "" || !InitTime().IsZero() {
		t.Fatalf("expected state reset, path=%q", Path())
	}
	// Must not panic.
	L().Info("after.cleanup")
}

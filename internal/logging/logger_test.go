package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestHelpersBeforeInitAreSafe(t *testing.T) {
	Logger = nil
	Info("ignored")
	Error("ignored", "k", "v")
	if WithPrefix("coord") == nil {
		t.Fatal("WithPrefix returned nil before Init")
	}
}

func TestSetOutputCapturesKeyvals(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer func() { Logger = nil }()

	WithPrefix("coord").Warn("fetch failed", "op", "graph")
	out := buf.String()
	if !strings.Contains(out, "fetch failed") || !strings.Contains(out, "op=graph") {
		t.Fatalf("log output = %q", out)
	}
	if !strings.Contains(out, "coord") {
		t.Fatalf("prefix missing from %q", out)
	}
}

func TestInitDirCreatesDatedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	if err := InitDir(dir, "test"); err != nil {
		t.Fatalf("InitDir: %v", err)
	}
	Close()
	Logger = nil

	want := filepath.Join(dir, "minescope-"+time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "minescope started") {
		t.Fatalf("log = %q", data)
	}
}

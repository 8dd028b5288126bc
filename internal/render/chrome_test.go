package render

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFindChromeHonoursEnv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit check differs on windows")
	}
	path := filepath.Join(t.TempDir(), "fake-chrome")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHROME_PATH", path)

	if got := FindChrome(); got != path {
		t.Errorf("FindChrome() = %q, want %q", got, path)
	}
}

func TestIsExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit check differs on windows")
	}
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if isExecutable(plain) {
		t.Error("non-executable file reported executable")
	}
	if isExecutable(dir) {
		t.Error("directory reported executable")
	}
	if isExecutable(filepath.Join(dir, "missing")) {
		t.Error("missing file reported executable")
	}
}

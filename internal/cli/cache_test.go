package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCachePathCommand(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out); got != filepath.Join(custom, appName) {
		t.Errorf("cache path = %q", got)
	}
}

func TestRenderUsesCache(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)
	dir := filepath.Join(custom, appName)

	out := filepath.Join(t.TempDir(), "plan.svg")
	args := []string{"render", "--cols", "3", "--rows", "2", "--no-obstacles", "-o", out}
	if _, err := execute(t, args...); err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(out)

	entries := countEntries(t, dir)
	if entries != 1 {
		t.Fatalf("cache holds %d entries after one render, want 1", entries)
	}

	if _, err := execute(t, args...); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(out)
	if string(first) != string(second) {
		t.Error("cached render differs from the first render")
	}
	if n := countEntries(t, dir); n != 1 {
		t.Errorf("cache holds %d entries after a repeated render, want 1", n)
	}

	if _, err := execute(t, append(args, "--no-cache", "--labels")...); err != nil {
		t.Fatal(err)
	}
	if n := countEntries(t, dir); n != 1 {
		t.Errorf("--no-cache wrote to the cache")
	}

	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if n := countEntries(t, dir); n != 0 {
		t.Errorf("cache holds %d entries after clear", n)
	}
}

func countEntries(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	return n
}

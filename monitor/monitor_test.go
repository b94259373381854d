package monitor

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestMonitor_ScanPicksUpExisting(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "movie.mkv"))
	writeFile(t, filepath.Join(dir, "notes.txt"))
	writeFile(t, filepath.Join(dir, "sub", "episode.mp4"))

	var got []string
	m := New(dir, []string{".mkv", ".mp4"}, func(path string) {
		got = append(got, path)
	})

	m.scan()

	if len(got) != 2 {
		t.Fatalf("Expected 2 files, got %d: %v", len(got), got)
	}
	for _, path := range got {
		if filepath.Ext(path) == ".txt" {
			t.Errorf("Non-video file enqueued: %s", path)
		}
	}
}

func TestMonitor_ScanEnqueuesNewFilesOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.mkv"))

	var got []string
	m := New(dir, []string{".mkv"}, func(path string) {
		got = append(got, path)
	})

	m.scan()
	if len(got) != 1 {
		t.Fatalf("Expected 1 file after first scan, got %d", len(got))
	}

	// A second scan over unchanged contents adds nothing.
	m.scan()
	if len(got) != 1 {
		t.Fatalf("Expected no duplicates on rescan, got %d", len(got))
	}

	writeFile(t, filepath.Join(dir, "b.mkv"))
	m.scan()
	if len(got) != 2 {
		t.Fatalf("Expected new file on rescan, got %d", len(got))
	}
	if filepath.Base(got[1]) != "b.mkv" {
		t.Errorf("Expected b.mkv, got %s", got[1])
	}
}

func TestMonitor_ExtensionNormalization(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "movie.MKV"))

	var got []string
	// Extensions given without the dot and with stray whitespace.
	m := New(dir, []string{"mkv", " .mp4 "}, func(path string) {
		got = append(got, path)
	})

	m.scan()
	if len(got) != 1 {
		t.Fatalf("Expected case-insensitive extension match, got %d files", len(got))
	}
}

package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/usbutler/usbutler/media"
)

func TestResolve_Movie(t *testing.T) {
	root := t.TempDir()
	r := New()

	info := media.Info{Kind: media.KindMovie, Title: "The Matrix", Year: 1999, Ext: ".mkv"}
	dest, err := r.Resolve(root, "/downloads/The.Matrix.1999.mkv", info)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := filepath.Join(root, "Movies", "The Matrix (1999).mkv")
	if dest != want {
		t.Errorf("Expected %s, got %s", want, dest)
	}
}

func TestResolve_Episode(t *testing.T) {
	root := t.TempDir()
	r := New()

	info := media.Info{Kind: media.KindEpisode, Title: "Breaking Bad", Season: 1, Episode: 2, Ext: ".mkv"}
	dest, err := r.Resolve(root, "/downloads/Breaking.Bad.S01E02.mkv", info)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := filepath.Join(root, "Breaking Bad", "Season 01", "Breaking Bad - S01E02.mkv")
	if dest != want {
		t.Errorf("Expected %s, got %s", want, dest)
	}
}

func TestResolve_UnknownKeepsName(t *testing.T) {
	root := t.TempDir()
	r := New()

	info := media.Info{Kind: media.KindUnknown, Raw: "holiday?clip.mov", Ext: ".mov"}
	dest, err := r.Resolve(root, "/downloads/holiday?clip.mov", info)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := filepath.Join(root, "holidayclip.mov")
	if dest != want {
		t.Errorf("Expected %s, got %s", want, dest)
	}
}

func TestResolve_CustomMovieDir(t *testing.T) {
	root := t.TempDir()
	r := &Resolver{MovieDir: "Films"}

	info := media.Info{Kind: media.KindMovie, Title: "Heat", Year: 1995, Ext: ".mp4"}
	dest, err := r.Resolve(root, "/downloads/Heat.1995.mp4", info)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := filepath.Join(root, "Films", "Heat (1995).mp4")
	if dest != want {
		t.Errorf("Expected %s, got %s", want, dest)
	}
}

func TestResolve_Conflict(t *testing.T) {
	root := t.TempDir()
	r := New()

	info := media.Info{Kind: media.KindMovie, Title: "Heat", Year: 1995, Ext: ".mkv"}

	dest, err := r.Resolve(root, "/downloads/Heat.1995.mkv", info)
	if err != nil {
		t.Fatalf("First resolve failed: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(dest, []byte("existing"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	conflictDest, err := r.Resolve(root, "/downloads/Heat.1995.mkv", info)
	if !errors.Is(err, ErrDestinationConflict) {
		t.Fatalf("Expected ErrDestinationConflict, got %v", err)
	}
	if conflictDest != dest {
		t.Errorf("Expected conflicting path %s, got %s", dest, conflictDest)
	}
}

package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/usbutler/usbutler/store"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestTruncateName(t *testing.T) {
	if got := truncateName("short.mkv", 44); got != "short.mkv" {
		t.Errorf("Expected short name untouched, got %q", got)
	}

	long := strings.Repeat("a", 60) + ".mkv"
	got := truncateName(long, 20)
	if len(got) != 20 {
		t.Errorf("Expected length 20, got %d", len(got))
	}
	if !strings.HasPrefix(got, "...") {
		t.Errorf("Expected leading ellipsis, got %q", got)
	}
	if !strings.HasSuffix(got, ".mkv") {
		t.Errorf("Expected the tail of the name kept, got %q", got)
	}
}

func TestCountStatuses(t *testing.T) {
	jobs := []JobView{
		{Status: store.StatusDone},
		{Status: store.StatusDone},
		{Status: store.StatusFailed},
		{Status: store.StatusSkipped},
		{Status: store.StatusPending},
		{Status: store.StatusInProgress},
	}

	done, failed, skipped, pending := countStatuses(jobs)
	if done != 2 || failed != 1 || skipped != 1 || pending != 2 {
		t.Errorf("countStatuses = %d/%d/%d/%d, want 2/1/1/2", done, failed, skipped, pending)
	}
}

func TestModel_ViewBeforeSize(t *testing.T) {
	m := NewModel(UIState{}, nil)
	if got := m.View(); got != "Initializing..." {
		t.Errorf("Expected placeholder before the first WindowSizeMsg, got %q", got)
	}
}

func TestModel_ViewRendersJobs(t *testing.T) {
	m := NewModel(UIState{
		DriveRoot: "/media/usb",
		Jobs: []JobView{
			{DisplayName: "The Matrix (1999)", Status: store.StatusDone},
			{DisplayName: "Heat (1995)", Status: store.StatusPending},
		},
	}, nil)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)

	view := m.View()
	for _, want := range []string{"usbutler", "/media/usb", "The Matrix (1999)", "Heat (1995)", "Done: 1"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}
}

func TestModel_QuitInvokesCallbackOnce(t *testing.T) {
	calls := 0
	m := NewModel(UIState{}, func() { calls++ })

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("Expected a quit command")
	}
	m = updated.(Model)

	if _, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); calls != 1 {
		t.Errorf("Expected quit callback exactly once, got %d", calls)
	}
}

func TestModel_HaltFooter(t *testing.T) {
	m := NewModel(UIState{Halted: true, HaltReason: "drive disconnected"}, nil)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)

	if !strings.Contains(m.View(), "drive disconnected") {
		t.Error("Expected halt reason in the footer")
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/usbutler/usbutler/config"
	"github.com/usbutler/usbutler/drive"
	"github.com/usbutler/usbutler/engine"
	"github.com/usbutler/usbutler/monitor"
	"github.com/usbutler/usbutler/resolve"
	"github.com/usbutler/usbutler/store"
	"github.com/usbutler/usbutler/ui"
)

func main() {
	var (
		dest       string
		sourceDir  string
		monitorOn  bool
		stateDir   string
		bufferSize int
		tuiEnabled bool
		listDrives bool
	)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	flag.StringVar(&dest, "dest", "", "Destination root (default: first writable removable drive)")
	flag.StringVar(&sourceDir, "source", cfg.Source.Folder, "Source folder for -monitor")
	flag.BoolVar(&monitorOn, "monitor", cfg.Source.Monitor, "Auto-queue new videos appearing under the source folder")
	flag.StringVar(&stateDir, "state-dir", cfg.Transfer.StateDir, "Directory for the transfer ledger")
	flag.IntVar(&bufferSize, "buffer-size", cfg.Transfer.BufferSize, "Copy buffer size in bytes")
	flag.BoolVar(&tuiEnabled, "tui", true, "Enable TUI (disable for headless operation)")
	flag.BoolVar(&listDrives, "list-drives", false, "List removable drives and exit")
	flag.Parse()

	if listDrives {
		printDrives()
		return
	}

	paths := flag.Args()
	if len(paths) == 0 && !monitorOn {
		fmt.Println("Usage: usbutler [options] <file-or-folder>...")
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  usbutler ~/Downloads/movie.2020.mkv")
		fmt.Println("  usbutler -dest /media/usb0 ~/Downloads/shows/")
		fmt.Println("  usbutler -monitor -source ~/Downloads")
		os.Exit(1)
	}

	root, err := pickDrive(dest)
	if err != nil {
		log.Fatalf("No usable destination: %v", err)
	}

	if err := os.MkdirAll(stateDir, 0755); err != nil {
		log.Fatalf("Failed to create state directory: %v", err)
	}
	ledger, err := store.NewBoltStore(filepath.Join(stateDir, "ledger.db"))
	if err != nil {
		log.Fatalf("Failed to open transfer ledger: %v", err)
	}
	defer ledger.Close()

	queue := engine.NewQueue()
	expander := engine.NewExpander(queue, cfg.Transfer.VideoExtensions, cfg.Transfer.ArchiveExtensions)
	defer expander.Cleanup()

	resolver := resolve.New()
	if cfg.Transfer.MovieDir != "" {
		resolver.MovieDir = cfg.Transfer.MovieDir
	}

	tracker := engine.NewTracker(ledger, engine.DefaultCheckpointConfig)
	copier := engine.NewCopier(engine.NewBufferPool(bufferSize))
	runner := engine.NewRunner(queue, resolver, copier, tracker, root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	for _, p := range paths {
		n, err := expander.Add(ctx, p)
		if err != nil && !errors.Is(err, engine.ErrAlreadyQueued) {
			log.Fatalf("Failed to queue %s: %v", p, err)
		}
		log.Printf("Queued %d file(s) from %s", n, p)
	}

	// Drive unplug mid-copy cancels the in-flight write; the runner
	// reports the halt.
	watcher, err := drive.NewWatcher(root)
	if err != nil {
		log.Fatalf("Failed to watch drive: %v", err)
	}
	defer watcher.Close()
	go func() {
		select {
		case <-watcher.Gone():
			cancel()
		case <-ctx.Done():
		}
	}()

	if monitorOn {
		mon := monitor.New(sourceDir, cfg.Transfer.VideoExtensions, func(path string) {
			if _, err := expander.Add(ctx, path); err != nil && !errors.Is(err, engine.ErrAlreadyQueued) {
				log.Printf("Failed to queue %s: %v", path, err)
			}
		})
		go func() {
			if err := mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Folder monitor stopped: %v", err)
			}
		}()
	}

	if tuiEnabled {
		runTUI(ctx, cancel, queue, runner, root, monitorOn)
	} else {
		runHeadless(ctx, queue, runner, monitorOn)
	}

	printSummary(queue)
}

// runHeadless drains the queue with plain log output. In monitor mode
// it keeps polling for newly queued jobs until interrupted.
func runHeadless(ctx context.Context, queue *engine.Queue, runner *engine.Runner, monitorOn bool) {
	runner.Logf = log.Printf

	for {
		err := runner.Run(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("Queue halted: %v", err)
			}
			return
		}
		if !monitorOn {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// runTUI drains the queue behind a bubbletea program fed by periodic
// queue snapshots.
func runTUI(ctx context.Context, cancel context.CancelFunc, queue *engine.Queue, runner *engine.Runner, root string, monitorOn bool) {
	state := ui.UIState{DriveRoot: root, Jobs: snapshot(queue)}
	program := tea.NewProgram(ui.NewModel(state, cancel), tea.WithAltScreen())

	runner.Logf = func(format string, args ...any) {
		program.Send(ui.LogMsg(fmt.Sprintf(format, args...)))
	}

	done := make(chan error, 1)
	go func() {
		for {
			err := runner.Run(ctx)
			if err != nil || !monitorOn {
				done <- err
				return
			}
			select {
			case <-ctx.Done():
				done <- ctx.Err()
				return
			case <-time.After(500 * time.Millisecond):
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()

		halted := false
		haltReason := ""
		finished := false

		for {
			select {
			case err := <-done:
				if err != nil && !errors.Is(err, context.Canceled) {
					halted = true
					haltReason = err.Error()
				} else {
					finished = true
				}
			case <-ticker.C:
			}

			program.Send(ui.UpdateMsg{State: ui.UIState{
				DriveRoot:  root,
				Jobs:       snapshot(queue),
				Halted:     halted,
				HaltReason: haltReason,
				Done:       finished,
			}})
		}
	}()

	if _, err := program.Run(); err != nil {
		log.Printf("TUI error: %v", err)
	}
	cancel()
}

func snapshot(queue *engine.Queue) []ui.JobView {
	jobs := queue.Jobs()
	views := make([]ui.JobView, len(jobs))
	for i, job := range jobs {
		views[i] = ui.JobView{
			DisplayName: job.DisplayName,
			Status:      job.Status,
			BytesCopied: job.BytesCopied,
			Size:        job.Size,
		}
		if job.Err != nil {
			views[i].Err = job.Err.Error()
		}
	}
	return views
}

// pickDrive returns the destination root: an explicit -dest wins,
// otherwise the first writable removable drive.
func pickDrive(dest string) (string, error) {
	if dest != "" {
		if err := drive.Check(dest); err != nil {
			return "", err
		}
		if !drive.Writable(dest) {
			return "", fmt.Errorf("%s is not writable", dest)
		}
		return dest, nil
	}

	roots, err := drive.Removable()
	if err != nil {
		return "", fmt.Errorf("drive detection failed: %w", err)
	}
	for _, root := range roots {
		if drive.Writable(root) {
			return root, nil
		}
	}
	return "", errors.New("no writable removable drive found (use -dest)")
}

func printDrives() {
	roots, err := drive.Removable()
	if err != nil {
		log.Fatalf("Drive detection failed: %v", err)
	}
	if len(roots) == 0 {
		fmt.Println("No removable drives found.")
		return
	}
	for _, root := range roots {
		status := "read-only"
		if drive.Writable(root) {
			status = "writable"
		}
		fmt.Printf("%s\t%s\n", root, status)
	}
}

func printSummary(queue *engine.Queue) {
	var done, failed, skipped, pending int
	for _, job := range queue.Jobs() {
		switch job.Status {
		case store.StatusDone:
			done++
		case store.StatusFailed:
			failed++
		case store.StatusSkipped:
			skipped++
		default:
			pending++
		}
	}
	fmt.Printf("\nDone: %d  Failed: %d  Skipped: %d  Pending: %d\n", done, failed, skipped, pending)
}

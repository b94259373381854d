// Package drive discovers removable destination drives, probes them
// for writability, and watches a chosen drive root for disconnection.
package drive

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrDriveGone indicates the destination drive disappeared. The queue
// halts on it; remaining jobs stay pending.
var ErrDriveGone = errors.New("destination drive disconnected")

// Check verifies the drive root is still present and reachable.
func Check(root string) error {
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("%w: %s", ErrDriveGone, root)
	}
	return nil
}

// Writable reports whether root accepts new files. Freshly inserted
// drives can refuse writes for a moment while the OS finishes
// mounting, so the probe retries briefly before giving up.
func Writable(root string) bool {
	for attempt := 0; attempt < 3; attempt++ {
		f, err := os.CreateTemp(root, "usbutler_probe_*")
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		name := f.Name()
		_, werr := f.Write([]byte("x"))
		f.Close()
		os.Remove(name)
		if werr == nil {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}

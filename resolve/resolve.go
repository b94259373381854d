// Package resolve computes the final write path for a transfer on the
// destination drive. The drive root is an explicit parameter on every
// call, so a single Resolver serves any drive and tests can point it
// at a plain directory.
package resolve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/usbutler/usbutler/media"
)

// ErrDestinationConflict indicates a file with the target name already
// exists on the drive. Jobs hitting it are skipped, never overwritten;
// it is deliberately distinct from a copy failure.
var ErrDestinationConflict = errors.New("destination already exists")

// DefaultMovieDir is the drive subfolder movies are filed under.
const DefaultMovieDir = "Movies"

// Resolver maps parsed media info to destination paths.
type Resolver struct {
	// MovieDir is the subfolder for movies, relative to the drive root.
	MovieDir string
}

// New returns a Resolver with the default layout.
func New() *Resolver {
	return &Resolver{MovieDir: DefaultMovieDir}
}

// Resolve returns the final write path for src on the drive rooted at
// root. Episodes are filed under "Show/Season NN/Show - SNNENN.ext",
// movies under the movie folder as "Title (Year).ext", and anything
// unparsed keeps its sanitized original name at the root.
//
// If a file already exists at the computed path, Resolve returns the
// path together with ErrDestinationConflict.
func (r *Resolver) Resolve(root, src string, info media.Info) (string, error) {
	movieDir := r.MovieDir
	if movieDir == "" {
		movieDir = DefaultMovieDir
	}

	var dest string
	switch info.Kind {
	case media.KindEpisode:
		show := media.Sanitize(info.Title)
		name := fmt.Sprintf("%s - S%02dE%02d%s", show, info.Season, info.Episode, info.Ext)
		dest = filepath.Join(root, show, fmt.Sprintf("Season %02d", info.Season), name)
	case media.KindMovie:
		dest = filepath.Join(root, movieDir, info.Label()+info.Ext)
	default:
		dest = filepath.Join(root, media.Sanitize(filepath.Base(src)))
	}

	if _, err := os.Stat(dest); err == nil {
		return dest, fmt.Errorf("%s: %w", dest, ErrDestinationConflict)
	}
	return dest, nil
}

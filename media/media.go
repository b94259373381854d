// Package media derives human-readable labels from media filenames.
// Parsing is delegated to a release-name parser and is strictly best
// effort: a filename that cannot be parsed keeps its original name and
// never blocks a transfer.
package media

import (
	"fmt"
	"path/filepath"
	"strings"

	ptn "github.com/middelink/go-parse-torrent-name"
)

// Kind classifies a parsed filename.
type Kind int

const (
	KindUnknown Kind = iota
	KindMovie
	KindEpisode
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindMovie:
		return "Movie"
	case KindEpisode:
		return "Episode"
	default:
		return "Unknown"
	}
}

// Info holds the metadata extracted from a single filename.
type Info struct {
	Kind     Kind
	Title    string
	Year     int
	Season   int
	Episode  int
	Language string // English display name of an embedded language tag, if any
	Ext      string // original extension, including the dot
	Raw      string // original base name, untouched
}

// Extract parses a filename into an Info. On parse failure, or when the
// parser yields an empty title, the returned Info is KindUnknown and
// Label falls back to the raw filename.
func Extract(filename string) Info {
	base := filepath.Base(filename)
	info := Info{
		Kind: KindUnknown,
		Ext:  filepath.Ext(base),
		Raw:  base,
	}

	parsed, err := ptn.Parse(base)
	if err != nil || parsed == nil || strings.TrimSpace(parsed.Title) == "" {
		return info
	}

	info.Title = strings.TrimSpace(parsed.Title)
	info.Year = parsed.Year
	if parsed.Season > 0 && parsed.Episode > 0 {
		info.Kind = KindEpisode
		info.Season = parsed.Season
		info.Episode = parsed.Episode
	} else {
		info.Kind = KindMovie
	}
	if name, ok := LanguageName(parsed.Language); ok {
		info.Language = name
	}
	return info
}

// Label returns the display label for the file: "Title (Year)" for
// movies, "Show - S01E02" for episodes, and the raw filename when
// nothing could be parsed.
func (i Info) Label() string {
	switch i.Kind {
	case KindEpisode:
		return fmt.Sprintf("%s - S%02dE%02d", Sanitize(i.Title), i.Season, i.Episode)
	case KindMovie:
		if i.Year > 0 {
			return fmt.Sprintf("%s (%d)", Sanitize(i.Title), i.Year)
		}
		return Sanitize(i.Title)
	default:
		return i.Raw
	}
}

// invalidRunes are rejected by FAT/exFAT/NTFS, the filesystems found on
// removable drives.
const invalidRunes = `<>:"/\|?*`

// Sanitize strips characters that are invalid in filenames on common
// removable-drive filesystems and collapses runs of whitespace. The
// result is never empty.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if !strings.ContainsRune(invalidRunes, r) {
			b.WriteRune(r)
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	if out == "" {
		return "unnamed"
	}
	return out
}

//go:build !windows

package drive

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strings"
)

// mountsFile is the kernel mount table. A variable so tests can point
// it at a fixture.
var mountsFile = "/proc/self/mounts"

// mountPrefixes are the mount locations desktop environments use for
// removable media.
var mountPrefixes = []string{"/media/", "/run/media/", "/mnt/"}

// Removable returns the mount points of candidate removable drives,
// sorted and deduplicated.
func Removable() ([]string, error) {
	f, err := os.Open(mountsFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseMounts(f), nil
}

// parseMounts reads an fstab-format mount table and keeps mount points
// under the removable-media prefixes.
func parseMounts(r io.Reader) []string {
	seen := make(map[string]bool)
	var roots []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		mp := unescapeMount(fields[1])
		for _, prefix := range mountPrefixes {
			if strings.HasPrefix(mp, prefix) && !seen[mp] {
				seen[mp] = true
				roots = append(roots, mp)
				break
			}
		}
	}

	sort.Strings(roots)
	return roots
}

// unescapeMount decodes the octal escapes the kernel uses for spaces,
// tabs and backslashes in mount points ("/media/My\040Drive").
func unescapeMount(mp string) string {
	replacer := strings.NewReplacer(
		`\040`, " ",
		`\011`, "\t",
		`\012`, "\n",
		`\134`, `\`,
	)
	return replacer.Replace(mp)
}

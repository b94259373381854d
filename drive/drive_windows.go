//go:build windows

package drive

import (
	"golang.org/x/sys/windows"
)

// Removable scans drive letters A: through Z: and returns the roots
// whose drive type is removable.
func Removable() ([]string, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, err
	}

	var roots []string
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		root := string(rune('A'+i)) + `:\`
		p, err := windows.UTF16PtrFromString(root)
		if err != nil {
			continue
		}
		if windows.GetDriveType(p) == windows.DRIVE_REMOVABLE {
			roots = append(roots, root)
		}
	}
	return roots, nil
}

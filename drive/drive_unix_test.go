//go:build !windows

package drive

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseMounts(t *testing.T) {
	mounts := strings.Join([]string{
		"/dev/nvme0n1p2 / ext4 rw,relatime 0 0",
		"/dev/sda1 /media/usb0 vfat rw,nosuid 0 0",
		"/dev/sdb1 /run/media/frank/BACKUP exfat rw 0 0",
		"/dev/sdc1 /media/My\\040Drive vfat rw 0 0",
		"tmpfs /tmp tmpfs rw 0 0",
		"/dev/sda1 /media/usb0 vfat rw,nosuid 0 0", // duplicate
		"garbage-line",
	}, "\n")

	got := parseMounts(strings.NewReader(mounts))
	want := []string{
		"/media/My Drive",
		"/media/usb0",
		"/run/media/frank/BACKUP",
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseMounts = %v, want %v", got, want)
	}
}

func TestParseMounts_Empty(t *testing.T) {
	got := parseMounts(strings.NewReader("/dev/root / ext4 rw 0 0\n"))
	if len(got) != 0 {
		t.Errorf("Expected no removable mounts, got %v", got)
	}
}

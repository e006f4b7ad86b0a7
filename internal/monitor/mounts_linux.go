package monitor

import (
	"fmt"
	"os"
)

// SystemMounts lists the real filesystems from /proc/mounts
func SystemMounts() ([]Mount, error) {
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return nil, fmt.Errorf("read mount table: %w", err)
	}
	defer f.Close()
	return ParseMounts(f)
}

//go:build !linux

package monitor

import (
	"os"
	"path/filepath"
)

// SystemMounts returns the root of the current volume; there is no mount
// table to read on this platform
func SystemMounts() ([]Mount, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root := filepath.VolumeName(wd) + string(filepath.Separator)
	return []Mount{{Path: root}}, nil
}

//go:build !windows

package scanner

import (
	"io/fs"
	"syscall"

	"golang.org/x/sys/unix"
)

// rootDevice returns the device id of the filesystem holding path
func rootDevice(path string) (uint64, bool) {
	var stat unix.Stat_t
	if err := unix.Stat(path, &stat); err != nil {
		return 0, false
	}
	return uint64(stat.Dev), true
}

// deviceID returns the device id recorded in info
func deviceID(info fs.FileInfo) (uint64, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return uint64(stat.Dev), true
}

// diskUsage returns the allocated bytes for info (st_blocks is in 512-byte units)
func diskUsage(info fs.FileInfo) int64 {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.Size()
	}
	return int64(stat.Blocks) * 512
}

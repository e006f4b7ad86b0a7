//go:build darwin

package ui

import (
	"os"
	"syscall"
	"time"
)

// getCreationTime returns the birth time recorded by APFS/HFS+
func getCreationTime(info os.FileInfo) time.Time {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec)
	}
	return time.Time{}
}

//go:build windows

package scanner

import "io/fs"

// Drives are separate roots on Windows, so device ids are never compared.
func rootDevice(path string) (uint64, bool) {
	return 0, false
}

func deviceID(info fs.FileInfo) (uint64, bool) {
	return 0, false
}

func diskUsage(info fs.FileInfo) int64 {
	return info.Size()
}

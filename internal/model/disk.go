package model

import "fmt"

// DiskSpace describes capacity of the filesystem holding a path
type DiskSpace struct {
	TotalBytes int64
	FreeBytes  int64
}

// UsedBytes returns bytes used on the filesystem
func (d DiskSpace) UsedBytes() int64 {
	return d.TotalBytes - d.FreeBytes
}

// UsedPercent returns percentage of the filesystem used
func (d DiskSpace) UsedPercent() float64 {
	if d.TotalBytes == 0 {
		return 0
	}
	return float64(d.UsedBytes()) / float64(d.TotalBytes) * 100
}

// GetDiskSpace returns capacity information for the filesystem holding path
func GetDiskSpace(path string) (DiskSpace, error) {
	total, free, err := getDiskSpace(path)
	if err != nil {
		return DiskSpace{}, fmt.Errorf("disk space for %s: %w", path, err)
	}
	return DiskSpace{TotalBytes: total, FreeBytes: free}, nil
}

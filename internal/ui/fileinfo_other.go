//go:build !darwin

package ui

import (
	"os"
	"time"
)

// getCreationTime returns zero time where birth time is not exposed by os.FileInfo
func getCreationTime(os.FileInfo) time.Time {
	return time.Time{}
}

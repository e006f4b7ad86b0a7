//go:build !windows && !darwin

package ui

import (
	"os"
	"os/exec"
	"path/filepath"
)

// openInFileManager opens the directory holding path with xdg-open
func openInFileManager(path string) error {
	dir := path
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		dir = filepath.Dir(path)
	}
	return exec.Command("xdg-open", dir).Start()
}

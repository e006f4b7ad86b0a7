package scanner

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrPathNotFound matches ScanErrors whose root does not exist
var ErrPathNotFound = errors.New("path not found")

// ErrorKind classifies fatal scan errors
type ErrorKind int

const (
	KindIO ErrorKind = iota
	KindNotFound
)

func (k ErrorKind) String() string {
	if k == KindNotFound {
		return "not found"
	}
	return "io"
}

// ScanError is returned when the scan root itself cannot be resolved or read.
// Failures below the root are recorded on the tree instead.
type ScanError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	if e.Kind == KindNotFound {
		return fmt.Sprintf("path not found: %s", e.Path)
	}
	return fmt.Sprintf("io error at path '%s': %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrPathNotFound) match not-found scan errors
func (e *ScanError) Is(target error) bool {
	return target == ErrPathNotFound && e.Kind == KindNotFound
}

func rootError(path string, err error) *ScanError {
	kind := KindIO
	if errors.Is(err, fs.ErrNotExist) {
		kind = KindNotFound
	}
	return &ScanError{Kind: kind, Path: path, Err: err}
}

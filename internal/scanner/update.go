package scanner

import "github.com/lumipallolabs/sweeper/internal/model"

// ScanUpdate is a message from ScanProgressive. Exactly one CompleteUpdate
// or ErrorUpdate ends every stream.
type ScanUpdate interface {
	isUpdate()
}

// ProgressUpdate carries a partial tree before the Index-th of Total
// top-level children is scanned
type ProgressUpdate struct {
	Tree     *model.Entry
	Scanning string // "(i/N) name"
	Index    int
	Total    int
}

// CompleteUpdate carries the finished tree
type CompleteUpdate struct {
	Tree *model.Entry
}

// ErrorUpdate reports a scan that could not run to completion
type ErrorUpdate struct {
	Message string
}

func (ProgressUpdate) isUpdate() {}
func (CompleteUpdate) isUpdate() {}
func (ErrorUpdate) isUpdate()    {}

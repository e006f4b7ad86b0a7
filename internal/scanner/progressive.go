package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/lumipallolabs/sweeper/internal/logging"
	"github.com/lumipallolabs/sweeper/internal/model"
)

// ScanProgressive scans root one top-level child at a time, each child in
// parallel internally, and streams a partial tree before every child. It
// runs on the calling goroutine and closes updates when it returns.
func ScanProgressive(ctx context.Context, root string, opts Options, updates chan<- ScanUpdate) {
	defer close(updates)

	canon, info, err := resolveRoot(root)
	if err != nil {
		send(ctx, updates, ErrorUpdate{Message: fmt.Sprintf("Cannot access path: %v", err)})
		return
	}
	if IsVirtualFS(canon) {
		send(ctx, updates, CompleteUpdate{Tree: model.NewDir(canon, info.ModTime())})
		return
	}

	dir, err := os.Open(canon)
	if err != nil {
		send(ctx, updates, ErrorUpdate{Message: fmt.Sprintf("Cannot read directory: %v", err)})
		return
	}
	// Directory-read order, unsorted
	listing, err := dir.ReadDir(-1)
	dir.Close()
	if err != nil {
		send(ctx, updates, ErrorUpdate{Message: fmt.Sprintf("Cannot read directory: %v", err)})
		return
	}

	sc := newScanContext(canon, opts)
	if opts.limited(0) {
		listing = nil
	}
	top := listing[:0]
	for _, de := range listing {
		if sc.admit(filepath.Join(canon, de.Name()), de.Name()) {
			top = append(top, de)
		}
	}

	ps, err := newParallelScan(ctx, sc)
	if err != nil {
		send(ctx, updates, ErrorUpdate{Message: err.Error()})
		return
	}
	defer ps.release()

	total := len(top)
	children := make([]*model.Entry, 0, total)
	for i, de := range top {
		label := fmt.Sprintf("(%d/%d) %s", i+1, total, de.Name())
		logging.Scanner.Debug().Str("root", canon).Msg(label)

		progress := ProgressUpdate{
			Tree:     partialTree(canon, info, children),
			Scanning: label,
			Index:    i + 1,
			Total:    total,
		}
		if !send(ctx, updates, progress) {
			return
		}

		path := filepath.Join(canon, de.Name())
		if child := ps.scanChild(path, path, de.IsDir(), 1, nil); child != nil {
			children = append(children, child)
		}
	}

	if err := ctx.Err(); err != nil {
		// The consumer may be gone, so never block here
		select {
		case updates <- ErrorUpdate{Message: fmt.Sprintf("Scan cancelled: %v", err)}:
		default:
		}
		return
	}
	send(ctx, updates, CompleteUpdate{Tree: partialTree(canon, info, children)})
}

// partialTree wraps a copy of children in a fresh root. Child subtrees are
// shared with earlier snapshots and are never modified after they are built.
func partialTree(root string, info os.FileInfo, children []*model.Entry) *model.Entry {
	tree := model.NewDir(root, info.ModTime())
	tree.Children = slices.Clone(children)
	tree.RecalculateTotals()
	model.SortBySize(tree.Children)
	return tree
}

// send delivers u unless ctx is done first
func send(ctx context.Context, updates chan<- ScanUpdate, u ScanUpdate) bool {
	select {
	case updates <- u:
		return true
	case <-ctx.Done():
		return false
	}
}

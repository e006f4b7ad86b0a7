package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/lumipallolabs/sweeper/internal/logging"
	"github.com/lumipallolabs/sweeper/internal/model"
)

// Walker is the single-threaded scanner. It collects a flat table of
// entries and assembles the tree bottom-up afterwards.
type Walker struct {
	opts Options
}

// NewWalker creates a sequential walker
func NewWalker(opts Options) *Walker {
	return &Walker{opts: opts}
}

// Scan walks root and returns the aggregated tree sorted by size
func (w *Walker) Scan(ctx context.Context, root string) (*model.Entry, error) {
	canon, info, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	if entry, ok := rootEntry(canon, info); ok {
		return entry, nil
	}

	logging.Scanner.Debug().Str("root", canon).Int("max_depth", w.opts.MaxDepth).Msg("sequential scan")

	sc := newScanContext(canon, w.opts)
	rootNode := model.NewDir(canon, info.ModTime())

	// Use channels for lock-free entry collection
	entryChan := make(chan *model.Entry, 4096)
	entries := map[string]*model.Entry{canon: rootNode}
	var entriesWg sync.WaitGroup

	entriesWg.Add(1)
	go func() {
		defer entriesWg.Done()
		for e := range entryChan {
			// A later record for the same path replaces the earlier one,
			// which is how unreadable directories become error entries.
			entries[e.Path] = e
		}
	}()

	record := func(e *model.Entry) { entryChan <- e }

	walkErr := error(nil)
	if !w.opts.limited(0) {
		walkErr = w.walkDir(ctx, sc, canon, canon, 0, nil, record)
	}

	close(entryChan)
	entriesWg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", canon, err)
	}
	if walkErr != nil {
		return nil, &ScanError{Kind: KindIO, Path: canon, Err: walkErr}
	}

	return buildTree(canon, entries), nil
}

// walkDir walks realDir with fastwalk and records every entry under
// displayDir. Followed directory symlinks start a nested walk of their
// target so the children keep the link's path.
func (w *Walker) walkDir(ctx context.Context, sc *scanContext, realDir, displayDir string, baseDepth int, chain linkChain, record func(*model.Entry)) error {
	conf := &fastwalk.Config{
		Follow:     false, // links are resolved by inspect
		NumWorkers: 1,
	}

	return fastwalk.Walk(conf, realDir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		display := path
		if realDir != displayDir {
			display = filepath.Join(displayDir, strings.TrimPrefix(path[len(realDir):], string(filepath.Separator)))
		}

		if err != nil {
			// Second callback for a directory whose listing failed
			logging.Scanner.Trace().Str("path", display).Err(err).Msg("read dir failed")
			record(model.NewError(display, d == nil || d.IsDir(), err))
			return nil
		}

		// The walk root was recorded by the caller
		if path == realDir {
			return nil
		}

		if !sc.admit(display, d.Name()) {
			return skipEntry(d)
		}

		depth := baseDepth + componentsBelow(realDir, path)
		info, infoErr := d.Info()
		v := sc.inspect(display, path, info, infoErr, chain)
		if v.entry == nil {
			return skipEntry(d)
		}
		record(v.entry)

		if !v.descend || w.opts.limited(depth) {
			return skipEntry(d)
		}
		if v.realDir != path {
			if err := w.walkDir(ctx, sc, v.realDir, display, depth, v.chain, record); err != nil {
				if ctx.Err() != nil {
					return err
				}
				record(model.NewError(display, true, err))
			}
		}
		return nil
	})
}

// skipEntry stops descent into directories; files just continue
func skipEntry(d fs.DirEntry) error {
	if d != nil && d.IsDir() {
		return fs.SkipDir
	}
	return nil
}

// componentsBelow counts path elements of path below dir
func componentsBelow(dir, path string) int {
	rel := strings.TrimPrefix(path[len(dir):], string(filepath.Separator))
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// buildTree reparents the flat table deepest-first. Entries whose parent
// was filtered out, or whose parent became an error entry after a partial
// listing, are dropped.
func buildTree(rootPath string, entries map[string]*model.Entry) *model.Entry {
	paths := make([]string, 0, len(entries))
	for path := range entries {
		if path != rootPath {
			paths = append(paths, path)
		}
	}
	sep := string(filepath.Separator)
	sort.Slice(paths, func(i, j int) bool {
		return strings.Count(paths[i], sep) > strings.Count(paths[j], sep)
	})

	for _, path := range paths {
		node := entries[path]
		delete(entries, path)
		if parent, ok := entries[filepath.Dir(path)]; ok && parent.IsDir && !parent.HasError() {
			parent.Children = append(parent.Children, node)
		}
	}

	rootNode := entries[rootPath]
	rootNode.ComputeTotals()
	rootNode.SortBySize()
	return rootNode
}

package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lumipallolabs/sweeper/internal/logging"
	"github.com/lumipallolabs/sweeper/internal/model"
	"github.com/panjf2000/ants/v2"
)

// ParallelWalker scans sibling subtrees concurrently on a bounded pool.
// Every recursive call returns its own aggregated subtree; nothing is
// shared between calls.
type ParallelWalker struct {
	opts Options
}

// NewParallelWalker creates a parallel walker
func NewParallelWalker(opts Options) *ParallelWalker {
	return &ParallelWalker{opts: opts}
}

// Scan walks root in parallel and returns the aggregated tree sorted by size
func (w *ParallelWalker) Scan(ctx context.Context, root string) (*model.Entry, error) {
	canon, info, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	if entry, ok := rootEntry(canon, info); ok {
		return entry, nil
	}

	ps, err := newParallelScan(ctx, newScanContext(canon, w.opts))
	if err != nil {
		return nil, err
	}
	defer ps.release()

	tree := ps.scanDir(model.NewDir(canon, info.ModTime()), canon, 0, nil)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", canon, err)
	}
	return tree, nil
}

// parallelScan carries the pool for one scan
type parallelScan struct {
	ctx  context.Context
	sc   *scanContext
	pool *ants.Pool
}

func newParallelScan(ctx context.Context, sc *scanContext) (*parallelScan, error) {
	workers := sc.opts.workers()
	// Nonblocking: a saturated pool makes Submit fail fast and the caller
	// runs the task itself. Parents wait on children while holding a
	// worker, so a blocking pool could deadlock on deep trees.
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	logging.Scanner.Debug().Str("root", sc.root).Int("workers", workers).Msg("parallel scan")
	return &parallelScan{ctx: ctx, sc: sc, pool: pool}, nil
}

func (p *parallelScan) release() {
	p.pool.Release()
}

// scanDir fills dir with its children. realDir is the directory actually
// read, which differs from dir.Path below a followed symlink.
func (p *parallelScan) scanDir(dir *model.Entry, realDir string, depth int, chain linkChain) *model.Entry {
	if err := p.ctx.Err(); err != nil {
		return model.NewError(dir.Path, true, err)
	}
	if p.sc.opts.limited(depth) {
		return dir
	}

	listing, err := os.ReadDir(realDir)
	if err != nil {
		logging.Scanner.Trace().Str("path", dir.Path).Err(err).Msg("read dir failed")
		return model.NewError(dir.Path, true, err)
	}

	type job struct {
		path, realPath string
		isDir          bool
	}
	jobs := make([]job, 0, len(listing))
	for _, de := range listing {
		path := filepath.Join(dir.Path, de.Name())
		if !p.sc.admit(path, de.Name()) {
			continue
		}
		jobs = append(jobs, job{path: path, realPath: filepath.Join(realDir, de.Name()), isDir: de.IsDir()})
	}

	results := make([]*model.Entry, len(jobs))
	var wg sync.WaitGroup
	for i, j := range jobs {
		task := func() {
			defer wg.Done()
			results[i] = p.scanChild(j.path, j.realPath, j.isDir, depth+1, chain)
		}
		wg.Add(1)
		if err := p.pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	children := make([]*model.Entry, 0, len(results))
	for _, child := range results {
		if child != nil {
			children = append(children, child)
		}
	}
	dir.Children = children
	dir.RecalculateTotals()
	model.SortBySize(dir.Children)
	return dir
}

// scanChild inspects one admitted child and recurses into directories.
// nil means the child is excluded.
func (p *parallelScan) scanChild(path, realPath string, isDir bool, depth int, chain linkChain) *model.Entry {
	if err := p.ctx.Err(); err != nil {
		return model.NewError(path, isDir, err)
	}
	info, err := os.Lstat(realPath)
	v := p.sc.inspect(path, realPath, info, err, chain)
	if v.entry == nil || !v.descend {
		return v.entry
	}
	return p.scanDir(v.entry, v.realDir, depth, v.chain)
}

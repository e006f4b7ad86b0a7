package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lumipallolabs/sweeper/internal/logging"
	"github.com/lumipallolabs/sweeper/internal/model"
)

// virtualFSRoots report sizes that are not disk usage and are never descended
var virtualFSRoots = []string{"/proc", "/dev", "/sys", "/run"}

// IsVirtualFS reports whether path is a kernel pseudo-filesystem root or
// lies beneath one. "/devices" is not "/dev".
func IsVirtualFS(path string) bool {
	for _, root := range virtualFSRoots {
		if path == root || strings.HasPrefix(path, root+"/") {
			return true
		}
	}
	return false
}

// scanContext is the per-scan policy shared by every walker. The root
// device is captured once up front.
type scanContext struct {
	opts     Options
	root     string
	rootDev  uint64
	checkDev bool
}

func newScanContext(root string, opts Options) *scanContext {
	sc := &scanContext{opts: opts, root: root}
	if opts.OneFileSystem {
		sc.rootDev, sc.checkDev = rootDevice(root)
	}
	return sc
}

// admit applies the rules that need only the path and name, before any
// metadata is read
func (sc *scanContext) admit(path, name string) bool {
	if IsVirtualFS(path) {
		return false
	}
	if !sc.opts.IncludeHidden && strings.HasPrefix(name, ".") {
		return false
	}
	for _, pattern := range sc.opts.Exclude {
		if ok, _ := filepath.Match(pattern, name); ok {
			return false
		}
	}
	return true
}

func (sc *scanContext) sameDevice(info fs.FileInfo) bool {
	if !sc.checkDev {
		return true
	}
	dev, ok := deviceID(info)
	return !ok || dev == sc.rootDev
}

// linkChain holds the real parent directory of every symlink followed on
// the way down. A link whose target contains one of them would recurse
// forever.
type linkChain []string

func (c linkChain) loops(target, realParent string) bool {
	if target == realParent || isWithin(realParent, target) {
		return true
	}
	for _, dir := range c {
		if target == dir || isWithin(dir, target) {
			return true
		}
	}
	return false
}

func (c linkChain) with(dir string) linkChain {
	next := make(linkChain, len(c), len(c)+1)
	copy(next, c)
	return append(next, dir)
}

func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// visit is the outcome of inspecting one admitted child
type visit struct {
	entry   *model.Entry // nil when the child is excluded
	descend bool         // entry is a directory whose children should be read
	realDir string       // directory to read, the link target for followed links
	chain   linkChain
}

// inspect turns a child's lstat result into an entry. path is where the
// child appears in the tree, realPath where it lives on disk.
func (sc *scanContext) inspect(path, realPath string, info fs.FileInfo, infoErr error, chain linkChain) visit {
	if infoErr != nil {
		logging.Scanner.Trace().Str("path", path).Err(infoErr).Msg("metadata failed")
		return visit{entry: model.NewError(path, false, infoErr)}
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		return sc.inspectLink(path, realPath, info, chain)
	}

	if !sc.sameDevice(info) {
		return visit{}
	}
	if info.IsDir() {
		return visit{
			entry:   model.NewDir(path, info.ModTime()),
			descend: true,
			realDir: realPath,
			chain:   chain,
		}
	}
	return visit{entry: model.NewFile(path, info.Size(), diskUsage(info), info.ModTime())}
}

func (sc *scanContext) inspectLink(path, realPath string, info fs.FileInfo, chain linkChain) visit {
	unfollowed := visit{entry: model.NewFile(path, 0, 0, info.ModTime())}
	if !sc.opts.FollowSymlinks {
		return unfollowed
	}

	target, err := filepath.EvalSymlinks(realPath)
	if err != nil {
		logging.Scanner.Trace().Str("path", path).Err(err).Msg("broken symlink")
		return visit{entry: model.NewError(path, false, err)}
	}
	tinfo, err := os.Stat(target)
	if err != nil {
		return visit{entry: model.NewError(path, false, err)}
	}
	if !sc.sameDevice(tinfo) {
		return visit{}
	}
	if !tinfo.IsDir() {
		return visit{entry: model.NewFile(path, tinfo.Size(), diskUsage(tinfo), tinfo.ModTime())}
	}

	realParent := filepath.Dir(realPath)
	if chain.loops(target, realParent) {
		logging.Scanner.Debug().Str("path", path).Str("target", target).Msg("symlink loop")
		return unfollowed
	}
	return visit{
		entry:   model.NewDir(path, tinfo.ModTime()),
		descend: true,
		realDir: target,
		chain:   chain.with(realParent),
	}
}

// resolveRoot canonicalizes root and stats it. Any failure is fatal.
func resolveRoot(root string) (string, fs.FileInfo, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", nil, rootError(root, err)
	}
	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", nil, rootError(abs, err)
	}
	info, err := os.Stat(canon)
	if err != nil {
		return "", nil, rootError(canon, err)
	}
	return canon, info, nil
}

// rootEntry builds the entry for an unreadable-by-design root: a file, or
// a directory inside a virtual filesystem. ok is false for ordinary
// directories, which must be walked.
func rootEntry(canon string, info fs.FileInfo) (*model.Entry, bool) {
	if IsVirtualFS(canon) {
		return model.NewDir(canon, info.ModTime()), true
	}
	if !info.IsDir() {
		return model.NewFile(canon, info.Size(), diskUsage(info), info.ModTime()), true
	}
	return nil, false
}

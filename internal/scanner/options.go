package scanner

import "runtime"

// NoDepthLimit disables the depth limit
const NoDepthLimit = -1

// Options controls what a scan visits
type Options struct {
	// MaxDepth limits recursion: 0 = root only, 1 = root + children.
	// NoDepthLimit means unlimited.
	MaxDepth int

	// IncludeHidden keeps names starting with "." (the root is always kept)
	IncludeHidden bool

	// OneFileSystem stops at entries on a different device than the root
	OneFileSystem bool

	// FollowSymlinks traverses symlinks instead of recording them as
	// zero-size files
	FollowSymlinks bool

	// Threads is the parallel walker's pool size; 0 picks runtime.NumCPU
	Threads int

	// Exclude holds glob patterns matched against entry names
	Exclude []string
}

// DefaultOptions returns unlimited depth with every filter at its default
func DefaultOptions() Options {
	return Options{MaxDepth: NoDepthLimit}
}

// WithMaxDepth returns a copy of o limited to depth
func (o Options) WithMaxDepth(depth int) Options {
	o.MaxDepth = depth
	return o
}

// WithHidden returns a copy of o with hidden entries included or not
func (o Options) WithHidden(include bool) Options {
	o.IncludeHidden = include
	return o
}

// limited reports whether depth is at or beyond the depth limit
func (o Options) limited(depth int) bool {
	return o.MaxDepth >= 0 && depth >= o.MaxDepth
}

// workers returns the effective pool size
func (o Options) workers() int {
	if o.Threads > 0 {
		return o.Threads
	}
	return runtime.NumCPU()
}

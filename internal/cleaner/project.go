package cleaner

import (
	"context"
	"sort"
	"time"

	"github.com/lumipallolabs/sweeper/internal/logging"
	"github.com/lumipallolabs/sweeper/internal/model"
	"github.com/lumipallolabs/sweeper/internal/scanner"
)

// artifactNames are skipped when looking for the newest source change
var artifactNames = map[string]bool{
	"target":       true,
	"build":        true,
	"node_modules": true,
	".gradle":      true,
	"bin":          true,
	"obj":          true,
	"venv":         true,
	".venv":        true,
	"__pycache__":  true,
}

// Project is a directory recognised by a detector
type Project struct {
	Path string
	Type string // detector id
	Name string // detector display name

	// Artifacts are the absolute paths of the artifact entries found
	Artifacts []string
	// Size and DiskUsage total the artifacts, apparent and allocated bytes
	Size      int64
	DiskUsage int64

	// LastModified is the newest modification time outside artifact
	// directories
	LastModified time.Time
}

// FindOptions controls project discovery in a scanned tree
type FindOptions struct {
	// MaxDepth is how many levels below the root projects are looked for.
	// scanner.NoDepthLimit searches everything.
	MaxDepth int

	// IncludeCommandOnly reports projects cleaned only by a native command
	// (go, bazel). They have no measurable artifacts.
	IncludeCommandOnly bool
}

// Find scans root and returns the projects below it, largest first. The
// scan always includes hidden entries and has no depth limit so artifact
// sizes are complete; scan supplies the remaining filters.
func Find(ctx context.Context, root string, reg *Registry, scan scanner.Options, opts FindOptions) ([]Project, *model.Entry, error) {
	scan.IncludeHidden = true
	scan.MaxDepth = scanner.NoDepthLimit

	tree, err := scanner.ScanParallel(ctx, root, scan)
	if err != nil {
		return nil, nil, err
	}
	projects := Detect(tree, reg, opts)
	logging.Debug.Debug().Str("root", tree.Path).Int("projects", len(projects)).Msg("cleaner: detection done")
	return projects, tree, nil
}

// Detect walks tree and returns every project, largest first. Detection
// does not descend into a project once one is found.
func Detect(tree *model.Entry, reg *Registry, opts FindOptions) []Project {
	var projects []Project
	var visit func(dir *model.Entry, depth int)
	visit = func(dir *model.Entry, depth int) {
		if !dir.IsDir || dir.HasError() {
			return
		}
		if p, ok := detectProject(dir, reg, opts.IncludeCommandOnly); ok {
			projects = append(projects, p)
			return
		}
		if opts.MaxDepth >= 0 && depth >= opts.MaxDepth {
			return
		}
		for _, c := range dir.Children {
			visit(c, depth+1)
		}
	}
	visit(tree, 0)

	sort.SliceStable(projects, func(i, j int) bool {
		if projects[i].Size != projects[j].Size {
			return projects[i].Size > projects[j].Size
		}
		return projects[i].Path < projects[j].Path
	})
	return projects
}

// detectProject applies the detectors in order. The first one that both
// recognises dir and finds artifacts wins.
func detectProject(dir *model.Entry, reg *Registry, commandOnly bool) (Project, bool) {
	for _, d := range reg.Detectors() {
		if !d.Detect(dir) {
			continue
		}
		if d.CommandOnly() {
			if commandOnly {
				return newProject(dir, d, nil), true
			}
			continue
		}
		if artifacts := d.FindArtifacts(dir); len(artifacts) > 0 {
			return newProject(dir, d, artifacts), true
		}
	}
	return Project{}, false
}

func newProject(dir *model.Entry, d Detector, artifacts []*model.Entry) Project {
	p := Project{
		Path:         dir.Path,
		Type:         d.ID,
		Name:         d.Name,
		LastModified: sourceModTime(dir),
	}
	for _, a := range artifacts {
		p.Artifacts = append(p.Artifacts, a.Path)
		p.Size += a.Size
		p.DiskUsage += a.DiskUsage
	}
	return p
}

// sourceModTime returns the newest modification time in dir, skipping
// artifact directories
func sourceModTime(dir *model.Entry) time.Time {
	var latest time.Time
	dir.Walk(func(e *model.Entry) bool {
		if e != dir && artifactNames[e.Name] {
			return false
		}
		if e.ModTime.After(latest) {
			latest = e.ModTime
		}
		return true
	})
	return latest
}

// FilterByAge keeps projects whose sources have not changed for at least
// minAge before now
func FilterByAge(projects []Project, minAge time.Duration, now time.Time) []Project {
	cutoff := now.Add(-minAge)
	var kept []Project
	for _, p := range projects {
		if p.LastModified.Before(cutoff) {
			kept = append(kept, p)
		}
	}
	return kept
}

// Total sums the artifact sizes of projects
func Total(projects []Project) (size, usage int64) {
	for _, p := range projects {
		size += p.Size
		usage += p.DiskUsage
	}
	return size, usage
}

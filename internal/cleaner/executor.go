package cleaner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/lumipallolabs/sweeper/internal/logging"
)

// Status is the outcome of cleaning one project
type Status int

const (
	StatusCleaned Status = iota
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusCleaned:
		return "cleaned"
	case StatusFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Result reports what happened to one project
type Result struct {
	Project Project
	Status  Status
	// Freed is the allocated bytes released, or that would be released in
	// a dry run
	Freed int64
	// Native is set when the project's own clean command did the work
	Native bool
	Err    error
}

// RunFunc runs argv in dir
type RunFunc func(ctx context.Context, dir string, argv []string) error

// Executor cleans single projects
type Executor struct {
	// DryRun reports what would be freed without touching the disk
	DryRun bool
	// NativeCommands tries the detector's clean command before deleting
	// artifacts
	NativeCommands bool

	reg *Registry
	run RunFunc
}

// NewExecutor returns an executor that resolves project types through reg
func NewExecutor(reg *Registry) *Executor {
	return &Executor{reg: reg, run: runCommand}
}

// WithRunner replaces how native commands are started
func (e *Executor) WithRunner(run RunFunc) *Executor {
	e.run = run
	return e
}

// Clean cleans p. A failing native command falls back to deleting the
// artifacts.
func (e *Executor) Clean(ctx context.Context, p Project) Result {
	res := Result{Project: p}
	if err := ctx.Err(); err != nil {
		res.Status = StatusSkipped
		res.Err = err
		return res
	}
	if e.DryRun {
		res.Status = StatusCleaned
		res.Freed = p.DiskUsage
		return res
	}

	d, ok := e.reg.Get(p.Type)
	if e.NativeCommands && ok && len(d.Command) > 0 {
		err := e.run(ctx, p.Path, d.Command)
		if err == nil {
			logging.Debug.Info().Str("project", p.Path).Strs("command", d.Command).Msg("cleaner: native clean")
			res.Status = StatusCleaned
			res.Freed = p.DiskUsage
			res.Native = true
			return res
		}
		logging.Debug.Warn().Err(err).Str("project", p.Path).Msg("cleaner: native clean failed, deleting artifacts")
	}

	if len(p.Artifacts) == 0 {
		res.Status = StatusSkipped
		res.Err = errors.New("no artifacts to delete")
		return res
	}
	for _, path := range p.Artifacts {
		if err := removeArtifact(p.Path, path); err != nil {
			res.Status = StatusFailed
			res.Err = err
			return res
		}
	}
	res.Status = StatusCleaned
	res.Freed = p.DiskUsage
	return res
}

// removeArtifact deletes path, which must lie strictly inside project
func removeArtifact(project, path string) error {
	rel, err := filepath.Rel(project, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("artifact %s is outside project %s", path, project)
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	logging.Debug.Info().Str("path", path).Msg("cleaner: deleted artifact")
	return nil
}

func runCommand(ctx context.Context, dir string, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", strings.Join(argv, " "), err, msg)
		}
		return fmt.Errorf("%s: %w", strings.Join(argv, " "), err)
	}
	return nil
}

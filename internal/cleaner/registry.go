package cleaner

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lumipallolabs/sweeper/internal/model"
)

// Builtin returns the built-in detectors in detection order
func Builtin() []Detector {
	return []Detector{
		{
			ID:      "bazel",
			Name:    "Bazel",
			Markers: []string{"WORKSPACE", "WORKSPACE.bazel"},
			Command: []string{"bazel", "clean", "--expunge"},
		},
		{
			ID:        "cargo",
			Name:      "Rust/Cargo",
			Markers:   []string{"Cargo.toml"},
			Artifacts: []string{"target"},
			Command:   []string{"cargo", "clean"},
		},
		{
			ID:        "cmake",
			Name:      "CMake",
			Artifacts: []string{"build"},
			Match: func(dir *model.Entry) bool {
				build := child(dir, "build")
				return child(dir, "CMakeLists.txt") != nil && build != nil && build.IsDir
			},
		},
		{
			ID:        "dotnet",
			Name:      ".NET",
			Artifacts: []string{"bin", "obj"},
			Command:   []string{"dotnet", "clean"},
			Match: func(dir *model.Entry) bool {
				for _, c := range dir.Children {
					if ext := filepath.Ext(c.Name); !c.IsDir && (ext == ".csproj" || ext == ".sln") {
						return true
					}
				}
				return false
			},
		},
		{
			ID:      "go",
			Name:    "Go",
			Markers: []string{"go.mod"},
			Command: []string{"go", "clean", "-cache"},
		},
		{
			ID:        "gradle",
			Name:      "Gradle/Android",
			Markers:   []string{"build.gradle", "build.gradle.kts", "gradlew"},
			Artifacts: []string{"build", ".gradle", "app/build"},
			Command:   []string{"./gradlew", "clean"},
		},
		{
			ID:        "maven",
			Name:      "Maven",
			Markers:   []string{"pom.xml"},
			Artifacts: []string{"target"},
			Command:   []string{"mvn", "clean"},
		},
		{
			ID:        "npm",
			Name:      "npm/Node.js",
			Markers:   []string{"package.json"},
			Artifacts: []string{"node_modules"},
		},
		{
			ID:        "python",
			Name:      "Python venv",
			Markers:   []string{"venv", ".venv"},
			Artifacts: []string{"venv", ".venv", "__pycache__"},
		},
	}
}

// Registry is an ordered set of detectors
type Registry struct {
	detectors []Detector
}

// NewRegistry returns a registry of the built-in detectors
func NewRegistry() *Registry {
	return &Registry{detectors: Builtin()}
}

// Select keeps only the detectors named in ids. An unknown id is an error
// that lists the valid ones; an empty ids keeps everything.
func (r *Registry) Select(ids []string) (*Registry, error) {
	if len(ids) == 0 {
		return r, nil
	}
	var unknown []string
	for _, id := range ids {
		if _, ok := r.Get(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown project type %s (valid: %s)",
			strings.Join(unknown, ", "), strings.Join(r.IDs(), ", "))
	}
	return r.filter(func(d Detector) bool { return slices.Contains(ids, d.ID) }), nil
}

// Without drops the detectors named in ids
func (r *Registry) Without(ids []string) *Registry {
	return r.filter(func(d Detector) bool { return !slices.Contains(ids, d.ID) })
}

func (r *Registry) filter(keep func(Detector) bool) *Registry {
	out := &Registry{}
	for _, d := range r.detectors {
		if keep(d) {
			out.detectors = append(out.detectors, d)
		}
	}
	return out
}

// Get returns the detector with the given id
func (r *Registry) Get(id string) (Detector, bool) {
	for _, d := range r.detectors {
		if d.ID == id {
			return d, true
		}
	}
	return Detector{}, false
}

// IDs lists detector ids in detection order
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.detectors))
	for i, d := range r.detectors {
		ids[i] = d.ID
	}
	return ids
}

// Detectors returns the detectors in detection order
func (r *Registry) Detectors() []Detector {
	return r.detectors
}

func (r *Registry) Len() int {
	return len(r.detectors)
}

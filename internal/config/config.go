// Package config holds Ember's build-time constants and the project-level
// settings an ember.yaml file can override, matching the style of the
// teacher's internal/config package (a Version var plus recognized source
// extensions) extended with the ext/config.go-style yaml.v3 decoding for
// the settings an ember project actually needs: GC tuning and debug flags.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Version is the current Ember version.
var Version = "0.1.0"

const SourceFileExt = ".ember"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".ember"}

// HasSourceExt returns true if path ends with a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// GC holds the tunables spec.md §4.3 exposes: the heap-grow factor and the
// initial collection threshold, in bytes.
type GC struct {
	HeapGrowFactor int `yaml:"heap_grow_factor,omitempty"`
	InitialThresholdBytes int `yaml:"initial_threshold_bytes,omitempty"`
}

// Debug holds the debug toggles spec.md §4.3/§5 allow: stress-GC (force a
// collection on every allocation) and TraceExec. TraceExec is decoded but
// nothing reads it; the VM has no execution tracer.
type Debug struct {
	StressGC  bool `yaml:"stress_gc,omitempty"`
	TraceExec bool `yaml:"trace_exec,omitempty"`
}

// ProjectConfig is the shape of an ember.yaml project file, decoded with
// gopkg.in/yaml.v3 exactly as internal/ext/config.go decodes funxy.yaml.
type ProjectConfig struct {
	GC    GC    `yaml:"gc,omitempty"`
	Debug Debug `yaml:"debug,omitempty"`
}

// LoadProjectFile reads and decodes path into a ProjectConfig. A missing
// file is not an error — callers get the zero-value config back, which
// means "use Ember's built-in defaults".
func LoadProjectFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ProjectConfig{}, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}

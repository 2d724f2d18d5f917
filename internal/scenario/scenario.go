// Package scenario provides scripted demo playback: YAML-defined event
// sequences played through the same ingest path as the live transport, so
// the whole interpretation pipeline can be exercised without the agent
// backend on the line.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Step is one timed event in a scenario script.
type Step struct {
	DelayMS int            `yaml:"delay_ms"`
	Kind    string         `yaml:"kind"`
	Payload map[string]any `yaml:"payload"`
}

// Scenario is one playable script.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Validate checks the minimal structural requirements of a scenario file.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario: name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q: at least one step is required", s.Name)
	}
	for i, st := range s.Steps {
		if st.Kind == "" {
			return fmt.Errorf("scenario %q: step %d has no kind", s.Name, i)
		}
	}
	return nil
}

// Parse decodes one scenario document.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario: parse: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Registry holds the loaded scenarios, keyed by name. It is safe for
// concurrent use; the watcher reloads entries as files change.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Scenario
	byFile map[string]string // file path -> scenario name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Scenario),
		byFile: make(map[string]string),
	}
}

// LoadDir loads every .yaml/.yml file in dir. Files that fail to parse are
// skipped; the first error encountered is returned after the walk so one bad
// file does not hide the rest.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scenario: read dir: %w", err)
	}
	var firstErr error
	for _, e := range entries {
		if e.IsDir() || !isScenarioFile(e.Name()) {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, e.Name())); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// LoadFile loads or reloads a single scenario file.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("scenario: read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.byFile[path]; ok && old != s.Name {
		delete(r.byName, old)
	}
	r.byName[s.Name] = s
	r.byFile[path] = s.Name
	return nil
}

// RemoveFile drops the scenario loaded from path, if any.
func (r *Registry) RemoveFile(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name, ok := r.byFile[path]; ok {
		delete(r.byName, name)
		delete(r.byFile, path)
	}
}

// Get returns the scenario with the given name.
func (r *Registry) Get(name string) (*Scenario, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[name]
	return s, ok
}

// List returns all scenarios sorted by name.
func (r *Registry) List() []*Scenario {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Scenario, 0, len(r.byName))
	for _, s := range r.byName {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func isScenarioFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

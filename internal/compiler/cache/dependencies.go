package cache

import (
	"path/filepath"
	"sort"
	"sync"
)

// FileDependency is one stylesheet in the import graph
type FileDependency struct {
	Path       string   // The file path
	DependsOn  []string // Files this file imports
	DependedBy []string // Files that import this file
}

// DependencyGraph tracks which stylesheets import which
type DependencyGraph struct {
	nodes map[string]*FileDependency
	mu    sync.RWMutex
}

// NewDependencyGraph creates a new dependency graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]*FileDependency),
	}
}

func (dg *DependencyGraph) node(path string) *FileDependency {
	n, ok := dg.nodes[path]
	if !ok {
		n = &FileDependency{Path: path}
		dg.nodes[path] = n
	}
	return n
}

// AddFile adds a file to the dependency graph
func (dg *DependencyGraph) AddFile(path string) {
	dg.mu.Lock()
	defer dg.mu.Unlock()
	dg.node(filepath.Clean(path))
}

// AddDependency records that from imports to
func (dg *DependencyGraph) AddDependency(from, to string) {
	dg.mu.Lock()
	defer dg.mu.Unlock()
	dg.addDependency(filepath.Clean(from), filepath.Clean(to))
}

func (dg *DependencyGraph) addDependency(from, to string) {
	if from == to {
		return
	}
	f, t := dg.node(from), dg.node(to)
	if !contains(f.DependsOn, to) {
		f.DependsOn = append(f.DependsOn, to)
	}
	if !contains(t.DependedBy, from) {
		t.DependedBy = append(t.DependedBy, from)
	}
}

// Record replaces the imports of entry with includes, as reported by its
// latest compilation.
func (dg *DependencyGraph) Record(entry string, includes []string) {
	dg.mu.Lock()
	defer dg.mu.Unlock()

	entry = filepath.Clean(entry)
	n := dg.node(entry)
	for _, dep := range n.DependsOn {
		if d, ok := dg.nodes[dep]; ok {
			d.DependedBy = removeString(d.DependedBy, entry)
		}
	}
	n.DependsOn = nil
	for _, inc := range includes {
		dg.addDependency(entry, filepath.Clean(inc))
	}
}

// GetDependencies returns the files path imports
func (dg *DependencyGraph) GetDependencies(path string) []string {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	if n, ok := dg.nodes[filepath.Clean(path)]; ok {
		return append([]string(nil), n.DependsOn...)
	}
	return nil
}

// GetDependents returns the files that import path directly
func (dg *DependencyGraph) GetDependents(path string) []string {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	if n, ok := dg.nodes[filepath.Clean(path)]; ok {
		return append([]string(nil), n.DependedBy...)
	}
	return nil
}

// GetTransitiveDependents returns every file that imports path directly or
// indirectly, sorted.
func (dg *DependencyGraph) GetTransitiveDependents(path string) []string {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	path = filepath.Clean(path)
	visited := map[string]bool{path: true}
	var result []string

	queue := []string{path}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		n, ok := dg.nodes[current]
		if !ok {
			continue
		}
		for _, dependent := range n.DependedBy {
			if !visited[dependent] {
				visited[dependent] = true
				result = append(result, dependent)
				queue = append(queue, dependent)
			}
		}
	}

	sort.Strings(result)
	return result
}

// RemoveFile removes a file and its edges from the graph
func (dg *DependencyGraph) RemoveFile(path string) {
	dg.mu.Lock()
	defer dg.mu.Unlock()

	path = filepath.Clean(path)
	n, ok := dg.nodes[path]
	if !ok {
		return
	}
	for _, dep := range n.DependsOn {
		if d, ok := dg.nodes[dep]; ok {
			d.DependedBy = removeString(d.DependedBy, path)
		}
	}
	for _, dependent := range n.DependedBy {
		if d, ok := dg.nodes[dependent]; ok {
			d.DependsOn = removeString(d.DependsOn, path)
		}
	}
	delete(dg.nodes, path)
}

// Clear removes all nodes from the graph
func (dg *DependencyGraph) Clear() {
	dg.mu.Lock()
	defer dg.mu.Unlock()
	dg.nodes = make(map[string]*FileDependency)
}

// Size returns the number of files in the graph
func (dg *DependencyGraph) Size() int {
	dg.mu.RLock()
	defer dg.mu.RUnlock()
	return len(dg.nodes)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func removeString(slice []string, item string) []string {
	result := make([]string, 0, len(slice))
	for _, s := range slice {
		if s != item {
			result = append(result, s)
		}
	}
	return result
}

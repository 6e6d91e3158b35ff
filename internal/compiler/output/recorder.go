package output

import "github.com/conduit-lang/gosass/internal/compiler/ast"

// Position is a 0-based line and byte column in the generated CSS.
type Position struct {
	Line   int
	Column int
}

// SourceMap is notified around every node the emitter writes. at is the
// generated position where the node's text starts or ends.
type SourceMap interface {
	OpenMapping(node ast.Node, at Position)
	CloseMapping(node ast.Node, at Position)
}

// Mapping ties a span of generated CSS to the source node it came from.
type Mapping struct {
	Original ast.SourceLocation
	Start    Position
	End      Position
}

// Recorder is a SourceMap that keeps every mapping in memory.
type Recorder struct {
	mappings []Mapping
	open     []int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// OpenMapping starts a mapping for node at the given position.
func (r *Recorder) OpenMapping(node ast.Node, at Position) {
	r.open = append(r.open, len(r.mappings))
	r.mappings = append(r.mappings, Mapping{Original: node.Location(), Start: at, End: at})
}

// CloseMapping ends the most recently opened mapping.
func (r *Recorder) CloseMapping(_ ast.Node, at Position) {
	if len(r.open) == 0 {
		return
	}
	i := r.open[len(r.open)-1]
	r.open = r.open[:len(r.open)-1]
	r.mappings[i].End = at
}

// Mappings returns the recorded mappings ordered by their start position.
func (r *Recorder) Mappings() []Mapping {
	return append([]Mapping(nil), r.mappings...)
}

// Sources lists the distinct source paths that were mapped, in first-seen order.
func (r *Recorder) Sources() []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range r.mappings {
		if m.Original.Path == "" || seen[m.Original.Path] {
			continue
		}
		seen[m.Original.Path] = true
		out = append(out, m.Original.Path)
	}
	return out
}

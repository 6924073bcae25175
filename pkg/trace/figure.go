package trace

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrTooFewEdges    = errors.New("figure needs at least 3 edges")
	ErrEdgeTooShort   = errors.New("edge too short")
	ErrCornerTooSharp = errors.New("corner too sharp")
	ErrNotFinalized   = errors.New("figure geometry not finalized")
)

// ValidationError describes why a figure was rejected. Kind is one of
// ErrTooFewEdges, ErrEdgeTooShort or ErrCornerTooSharp.
type ValidationError struct {
	Kind  error
	Index int
	Value float64
}

func (e *ValidationError) Error() string {
	if errors.Is(e.Kind, ErrTooFewEdges) {
		return fmt.Sprintf("%v: got %d", e.Kind, e.Index)
	}
	return fmt.Sprintf("%v: edge %d (%.3f)", e.Kind, e.Index, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// Figure is a closed polygon: an ordered cyclic sequence of edges it owns.
// A figure is built with NewFigure, checked with Validate and completed with
// FinalizeGeometry; after that it is read-only.
type Figure struct {
	edges     []*Edge
	cfg       Config
	validated bool
	err       error
	tolerance float64
	finalized bool
}

// NewFigure builds a provisional figure from ordered edge records and links
// the edges into a cycle. It does not validate.
func NewFigure(records []EdgeRecord, cfg Config) *Figure {
	edges := make([]*Edge, len(records))
	for i, r := range records {
		edges[i] = EdgeFromRecord(r)
	}
	return newFigure(edges, cfg)
}

// newFigureFromPoints builds a provisional figure whose vertices are pts in order.
func newFigureFromPoints(pts []Point, cfg Config) *Figure {
	edges := make([]*Edge, len(pts))
	for i := range pts {
		edges[i] = NewEdge(pts[i], pts[(i+1)%len(pts)])
	}
	return newFigure(edges, cfg)
}

func newFigure(edges []*Edge, cfg Config) *Figure {
	n := len(edges)
	for i, e := range edges {
		e.prev = edges[(i-1+n)%n]
		e.next = edges[(i+1)%n]
	}
	return &Figure{edges: edges, cfg: cfg.withDefaults()}
}

// LoadFigure builds, validates and finalizes a figure. The figure is returned
// even when validation fails so callers can report it; check the error or Valid.
func LoadFigure(records []EdgeRecord, cfg Config) (*Figure, error) {
	f := NewFigure(records, cfg)
	if err := f.Validate(); err != nil {
		return f, err
	}
	return f, f.FinalizeGeometry()
}

// Validate checks edge count, edge lengths and corner angles, in that order,
// stopping at the first failure.
func (f *Figure) Validate() error {
	f.validated = true
	f.err = f.check()
	if f.err != nil {
		Logger().Warn("figure rejected", "err", f.err)
	}
	return f.err
}

func (f *Figure) check() error {
	if len(f.edges) < 3 {
		return &ValidationError{Kind: ErrTooFewEdges, Index: len(f.edges)}
	}
	for i, e := range f.edges {
		if l := e.Length(); l < f.cfg.MinEdgeLength {
			return &ValidationError{Kind: ErrEdgeTooShort, Index: i, Value: l}
		}
	}
	for i, e := range f.edges {
		if c := e.Corner(); c < f.cfg.MinCornerAllowed {
			return &ValidationError{Kind: ErrCornerTooSharp, Index: i, Value: c}
		}
	}
	return nil
}

// FinalizeGeometry computes the match tolerance once all edge positions are
// settled. It validates first if Validate has not run.
func (f *Figure) FinalizeGeometry() error {
	if !f.validated {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	if f.err != nil {
		return f.err
	}
	sharpest := math.Inf(1)
	for _, e := range f.edges {
		sharpest = math.Min(sharpest, e.Corner())
	}
	f.tolerance = sharpest / f.cfg.Sensitivity
	f.finalized = true
	return nil
}

// Valid reports whether the figure passed validation.
func (f *Figure) Valid() bool { return f.validated && f.err == nil }

// Err returns the validation error, if any.
func (f *Figure) Err() error { return f.err }

// Finalized reports whether MatchTolerance is available.
func (f *Figure) Finalized() bool { return f.finalized }

// MatchTolerance is the largest angular difference, in degrees, at which a
// drawn line still equals an edge. It is zero until FinalizeGeometry succeeds.
func (f *Figure) MatchTolerance() float64 { return f.tolerance }

// Len returns the number of edges.
func (f *Figure) Len() int { return len(f.edges) }

// Edge returns the i-th edge.
func (f *Figure) Edge(i int) *Edge { return f.edges[i] }

// Edges returns a copy of the edge order.
func (f *Figure) Edges() []*Edge {
	return append([]*Edge(nil), f.edges...)
}

// Corners returns, per edge, the angle to its cyclic predecessor.
func (f *Figure) Corners() []float64 {
	out := make([]float64, len(f.edges))
	for i, e := range f.edges {
		out[i] = e.Corner()
	}
	return out
}

// Records returns the persisted form of every edge, valid or not.
func (f *Figure) Records() []EdgeRecord {
	out := make([]EdgeRecord, len(f.edges))
	for i, e := range f.edges {
		out[i] = e.Record()
	}
	return out
}

// SaveFigure returns the records of a figure, refusing figures that fail validation.
func SaveFigure(f *Figure) ([]EdgeRecord, error) {
	if !f.validated {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.Records(), nil
}

// release drops the cyclic links so a discarded figure holds no references.
func (f *Figure) release() {
	for _, e := range f.edges {
		e.prev, e.next = nil, nil
	}
	f.edges = nil
}

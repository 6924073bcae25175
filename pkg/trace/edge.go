package trace

import "math"

// EdgeRecord is the persisted form of an edge: its midpoint, length and direction in degrees.
type EdgeRecord struct {
	CenterX float64
	CenterY float64
	Length  float64
	Angle   float64
}

// Edge is one straight side of a figure. Prev and Next link it to its cyclic
// neighbours and are only valid while the owning Figure is alive.
type Edge struct {
	start Point
	end   Point
	angle float64
	prev  *Edge
	next  *Edge
}

// NewEdge returns an unlinked edge from start to end.
func NewEdge(start, end Point) *Edge {
	e := &Edge{}
	e.setGeometry(start, end)
	return e
}

// EdgeFromRecord rebuilds an edge from its persisted centre, length and angle.
func EdgeFromRecord(r EdgeRecord) *Edge {
	rad := r.Angle * math.Pi / 180
	half := Point{X: math.Cos(rad), Y: math.Sin(rad)}.Mul(r.Length / 2)
	center := Point{X: r.CenterX, Y: r.CenterY}
	e := &Edge{}
	e.setGeometry(center.Sub(half), center.Add(half))
	// The stored angle is authoritative; recomputing it from the endpoints only adds rounding.
	e.angle = Normalize(r.Angle)
	return e
}

func (e *Edge) setGeometry(start, end Point) {
	e.start = start
	e.end = end
	e.angle = VectorAngle(start, end)
}

// Start returns the first endpoint.
func (e *Edge) Start() Point { return e.start }

// End returns the second endpoint.
func (e *Edge) End() Point { return e.end }

// Angle returns the direction from Start to End against the X axis, in (-180, 180].
func (e *Edge) Angle() float64 { return e.angle }

// Length returns the distance between the endpoints.
func (e *Edge) Length() float64 { return e.end.Sub(e.start).Length() }

// Prev returns the cyclic predecessor, or nil for an unlinked edge.
func (e *Edge) Prev() *Edge { return e.prev }

// Next returns the cyclic successor, or nil for an unlinked edge.
func (e *Edge) Next() *Edge { return e.next }

// Corner returns the angle between this edge and its predecessor.
func (e *Edge) Corner() float64 {
	if e.prev == nil {
		return 0
	}
	return Separation(e.angle, e.prev.angle)
}

// Record returns the persisted form of e.
func (e *Edge) Record() EdgeRecord {
	c := e.start.Add(e.end).Mul(0.5)
	return EdgeRecord{
		CenterX: c.X,
		CenterY: c.Y,
		Length:  e.Length(),
		Angle:   e.angle,
	}
}

// Matches reports whether a drawn direction lies strictly within tolerance of this edge.
func (e *Edge) Matches(angle, tolerance float64) bool {
	return Separation(angle, e.angle) < tolerance
}

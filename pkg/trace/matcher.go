package trace

import "fmt"

// Direction is the winding in which a figure is traced.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// candidate is one hypothesis: the lines drawn so far equal run consecutive
// edges ending at last.
type candidate struct {
	last *Edge
	run  int
}

// Matcher tracks which runs of a figure's edges agree with the drawn lines,
// in one direction.
type Matcher struct {
	figure    *Figure
	tolerance float64
	dir       Direction

	candidates    []candidate
	firstLineSeen bool

	match signal[Direction]
}

// NewMatcher returns a matcher for a finalized figure.
func NewMatcher(f *Figure, dir Direction) (*Matcher, error) {
	if !f.Finalized() {
		return nil, fmt.Errorf("new %s matcher: %w", dir, ErrNotFinalized)
	}
	m := &Matcher{
		figure:    f,
		tolerance: f.MatchTolerance(),
		dir:       dir,
	}
	m.StartAttempt()
	return m, nil
}

// OnMatch registers fn for a completed trace.
func (m *Matcher) OnMatch(fn func(Direction)) Subscription {
	return m.match.subscribe(fn)
}

// Direction returns the winding this matcher follows.
func (m *Matcher) Direction() Direction { return m.dir }

// StartAttempt forgets every candidate. Call it before every try.
func (m *Matcher) StartAttempt() {
	m.candidates = make([]candidate, 0, m.figure.Len())
	m.firstLineSeen = false
}

// SubmitLine feeds one committed line direction and reports whether some
// rotation of the figure has now been traced completely.
//
// New candidates are only seeded by the first line of an attempt; after that a
// candidate either continues with the next edge in order or is dropped.
func (m *Matcher) SubmitLine(angle float64) bool {
	if m.dir == Backward {
		angle = Reverse(angle)
	}

	ends := make(map[*Edge]int, len(m.candidates))
	for _, c := range m.candidates {
		ends[c.last] = c.run
	}

	next := make([]candidate, 0, len(m.candidates)+1)
	for _, e := range m.figure.edges {
		if !e.Matches(angle, m.tolerance) {
			continue
		}
		pred := e.prev
		if m.dir == Backward {
			pred = e.next
		}
		if run, ok := ends[pred]; ok {
			next = append(next, candidate{last: e, run: run + 1})
			continue
		}
		if !m.firstLineSeen {
			next = append(next, candidate{last: e, run: 1})
		}
	}
	m.candidates = next
	m.firstLineSeen = true

	Logger().Debug("line submitted", "dir", m.dir, "angle", angle, "candidates", len(next))

	for _, c := range next {
		if c.run == m.figure.Len() {
			Logger().Info("figure matched", "dir", m.dir)
			m.match.emit(m.dir)
			return true
		}
	}
	return false
}

// Progress returns the longest run of edges matched so far.
func (m *Matcher) Progress() int {
	best := 0
	for _, c := range m.candidates {
		best = max(best, c.run)
	}
	return best
}

// Alive reports whether any candidate survives. A matcher that is not alive
// after the first line cannot match until the next StartAttempt.
func (m *Matcher) Alive() bool {
	return !m.firstLineSeen || len(m.candidates) > 0
}

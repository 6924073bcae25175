package trace

import "testing"

func rectangle(t *testing.T) *Figure {
	t.Helper()
	f, err := LoadFigure(rectangleRecords(), rectangleConfig())
	if err != nil {
		t.Fatalf("LoadFigure: %v", err)
	}
	return f
}

func newMatcher(t *testing.T, f *Figure, dir Direction) (*Matcher, *int) {
	t.Helper()
	m, err := NewMatcher(f, dir)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	matches := new(int)
	m.OnMatch(func(Direction) { *matches++ })
	return m, matches
}

// submitAll returns the 1-based index of the submission that matched, or 0.
func submitAll(m *Matcher, angles ...float64) int {
	at := 0
	for i, a := range angles {
		if m.SubmitLine(a) && at == 0 {
			at = i + 1
		}
	}
	return at
}

func TestMatcher_ForwardRectangle(t *testing.T) {
	m, matches := newMatcher(t, rectangle(t), Forward)
	if at := submitAll(m, 0, 90, 180, -90); at != 4 {
		t.Errorf("matched at %d, want 4", at)
	}
	if *matches != 1 {
		t.Errorf("Match fired %d times, want 1", *matches)
	}
}

func TestMatcher_NeverMatchesEarly(t *testing.T) {
	m, matches := newMatcher(t, rectangle(t), Forward)
	for i, a := range []float64{0, 90, 180} {
		if m.SubmitLine(a) {
			t.Fatalf("matched at submission %d", i+1)
		}
	}
	if *matches != 0 {
		t.Errorf("Match fired %d times before the cycle closed", *matches)
	}
	if m.Progress() != 3 {
		t.Errorf("Progress %d, want 3", m.Progress())
	}
}

func TestMatcher_RotationInvariant(t *testing.T) {
	f := rectangle(t)
	angles := []float64{0, 90, 180, -90}
	for k := range angles {
		m, _ := newMatcher(t, f, Forward)
		rotated := append(append([]float64(nil), angles[k:]...), angles[:k]...)
		if at := submitAll(m, rotated...); at != 4 {
			t.Errorf("offset %d: matched at %d, want 4", k, at)
		}
	}
}

func TestMatcher_BackwardRectangle(t *testing.T) {
	f := rectangle(t)
	fwd, fwdMatches := newMatcher(t, f, Forward)
	bwd, bwdMatches := newMatcher(t, f, Backward)
	for _, a := range []float64{-90, 180, 90, 0} {
		fwd.SubmitLine(a)
		bwd.SubmitLine(a)
	}
	if *bwdMatches != 1 {
		t.Errorf("backward matches %d, want 1", *bwdMatches)
	}
	if *fwdMatches != 0 {
		t.Errorf("forward matches %d, want 0", *fwdMatches)
	}
}

func TestMatcher_ForwardTraceDoesNotMatchBackward(t *testing.T) {
	bwd, matches := newMatcher(t, rectangle(t), Backward)
	submitAll(bwd, 0, 90, 180, -90)
	if *matches != 0 {
		t.Errorf("backward matches %d, want 0", *matches)
	}
}

func TestMatcher_WithinTolerance(t *testing.T) {
	m, _ := newMatcher(t, rectangle(t), Forward)
	if at := submitAll(m, 0, 95, 180, -90); at != 4 {
		t.Errorf("matched at %d, want 4", at)
	}
}

func TestMatcher_ToleranceIsStrict(t *testing.T) {
	f := rectangle(t)
	tol := f.MatchTolerance()

	m, _ := newMatcher(t, f, Forward)
	if at := submitAll(m, 0, 90+tol, 180, -90); at != 0 {
		t.Errorf("angle exactly tolerance away matched at %d", at)
	}

	m, _ = newMatcher(t, f, Forward)
	if at := submitAll(m, 0, 90+tol-1, 180, -90); at != 4 {
		t.Errorf("angle one degree inside tolerance matched at %d, want 4", at)
	}
}

func TestMatcher_DivergenceIsFatal(t *testing.T) {
	m, _ := newMatcher(t, rectangle(t), Forward)
	// 140 is nearest the 180 edge, which does not follow the 0 edge.
	if at := submitAll(m, 0, 140, 180, -90); at != 0 {
		t.Errorf("diverged trace matched at %d", at)
	}
	if m.Alive() {
		t.Error("matcher should have no candidates left")
	}
}

func TestMatcher_NoReseedAfterFirstLine(t *testing.T) {
	m, _ := newMatcher(t, rectangle(t), Forward)
	// A false start at 45 seeds nothing; the full trace afterwards cannot reseed.
	if at := submitAll(m, 45, 0, 90, 180, -90); at != 0 {
		t.Errorf("matched at %d after a false start", at)
	}
}

func TestMatcher_StartAttemptReplaysIdentically(t *testing.T) {
	m, _ := newMatcher(t, rectangle(t), Forward)
	trace := []float64{90, 180, -90, 0}
	m.StartAttempt()
	first := submitAll(m, trace...)
	m.StartAttempt()
	second := submitAll(m, trace...)
	if first != 4 || second != first {
		t.Errorf("replays matched at %d and %d, want 4 twice", first, second)
	}
}

func TestMatcher_AmbiguousSeedsAllSurvive(t *testing.T) {
	// Regular hexagon with an 80 degree tolerance: every line also hits both
	// neighbouring edges, so three candidates are seeded and all keep extending.
	cfg := rectangleConfig()
	cfg.Sensitivity = 0.75
	pts := []Point{{2, 0}, {1, 1.7320508075688772}, {-1, 1.7320508075688772}, {-2, 0}, {-1, -1.7320508075688772}, {1, -1.7320508075688772}}
	f := newFigureFromPoints(pts, cfg)
	if err := f.FinalizeGeometry(); err != nil {
		t.Fatalf("FinalizeGeometry: %v", err)
	}
	m, matches := newMatcher(t, f, Forward)
	angles := make([]float64, f.Len())
	for i := range angles {
		angles[i] = f.Edge(i).Angle()
	}
	if at := submitAll(m, angles...); at != f.Len() {
		t.Errorf("matched at %d, want %d", at, f.Len())
	}
	if *matches != 1 {
		t.Errorf("Match fired %d times, want 1", *matches)
	}
}

func TestNewMatcher_RequiresFinalizedFigure(t *testing.T) {
	f := NewFigure(rectangleRecords(), rectangleConfig())
	if _, err := NewMatcher(f, Forward); err == nil {
		t.Error("NewMatcher should fail before FinalizeGeometry")
	}
}

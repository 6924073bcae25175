package trace

import (
	"errors"
	"testing"
)

func squareRecords() []EdgeRecord {
	return []EdgeRecord{
		{CenterX: 5, CenterY: 0, Length: 10, Angle: 0},
		{CenterX: 10, CenterY: 5, Length: 10, Angle: 90},
		{CenterX: 5, CenterY: 10, Length: 10, Angle: 180},
		{CenterX: 0, CenterY: 5, Length: 10, Angle: -90},
	}
}

type events struct {
	ready   []ReadyEvent
	lines   []float64
	angles  int
	success []Direction
}

func watch(r *Recognizer) *events {
	ev := &events{}
	r.OnReady(func(e ReadyEvent) { ev.ready = append(ev.ready, e) })
	r.OnLineDetected(func(a float64) { ev.lines = append(ev.lines, a) })
	r.OnLineAngleChanged(func(float64) { ev.angles++ })
	r.OnDrawSuccess(func(d Direction) { ev.success = append(ev.success, d) })
	return ev
}

func drag(r *Recognizer, start Point, legs ...leg) {
	r.TouchStart(start)
	for _, p := range walk(start, legs...) {
		r.PointerMove(p)
	}
	r.TouchEnd()
}

func TestRecognizer_LoadRaisesReady(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	ev := watch(r)
	if err := r.Load(squareRecords()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ev.ready) != 1 || !ev.ready[0].Valid {
		t.Fatalf("ready %+v, want one valid event", ev.ready)
	}
	if !r.Loaded() {
		t.Error("Loaded should be true")
	}
}

func TestRecognizer_InvalidFigureStillRaisesReady(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	ev := watch(r)
	err := r.Load(squareRecords()[:2])
	if !errors.Is(err, ErrTooFewEdges) {
		t.Fatalf("err %v, want ErrTooFewEdges", err)
	}
	if len(ev.ready) != 1 || ev.ready[0].Valid {
		t.Fatalf("ready %+v, want one invalid event", ev.ready)
	}
	if r.Loaded() {
		t.Error("invalid figure should leave the recogniser unloaded")
	}
	if r.Figure() == nil || r.Figure().Valid() {
		t.Error("the rejected figure should be exposed as invalid")
	}

	// Input is ignored rather than panicking.
	drag(r, Point{}, squareLegs()...)
	if len(ev.success) != 0 || len(ev.lines) != 0 {
		t.Error("unloaded recogniser should not emit")
	}
}

func TestRecognizer_ForwardTrace(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	ev := watch(r)
	if err := r.Load(squareRecords()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	drag(r, Point{}, squareLegs()...)

	if len(ev.lines) != 4 {
		t.Errorf("lines %v, want 4", ev.lines)
	}
	if len(ev.success) != 1 || ev.success[0] != Forward {
		t.Errorf("success %v, want [forward]", ev.success)
	}
	if ev.angles == 0 {
		t.Error("expected live angle updates")
	}
}

func TestRecognizer_BackwardTrace(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	ev := watch(r)
	_ = r.Load(squareRecords())
	drag(r, Point{}, leg{north, 8}, leg{east, 9}, leg{south, 9}, leg{west, 9})

	if len(ev.success) != 1 || ev.success[0] != Backward {
		t.Errorf("success %v, want [backward]", ev.success)
	}
}

func TestRecognizer_StartingMidFigure(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	ev := watch(r)
	_ = r.Load(squareRecords())
	drag(r, Point{10, 10}, leg{west, 8}, leg{south, 9}, leg{east, 9}, leg{north, 9})

	if len(ev.success) != 1 {
		t.Errorf("success %v, want one", ev.success)
	}
}

func TestRecognizer_TouchStartResetsAttempt(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	ev := watch(r)
	_ = r.Load(squareRecords())

	// A false start along the diagonal cannot complete the square.
	drag(r, Point{}, leg{Point{1, 1}, 8})
	drag(r, Point{}, squareLegs()...)

	if len(ev.success) != 1 {
		t.Errorf("success %v, want one after retry", ev.success)
	}
}

func TestRecognizer_LostUntilNextTouch(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	_ = r.Load(squareRecords())
	if r.Lost() {
		t.Fatal("fresh attempt should not be lost")
	}

	// East then straight back west: the 180 edge never follows the 0 edge.
	drag(r, Point{}, leg{east, 8}, leg{west, 9})
	if !r.Lost() {
		t.Fatal("doubling back should lose the attempt")
	}

	r.TouchStart(Point{})
	if r.Lost() {
		t.Error("TouchStart should begin a fresh attempt")
	}
}

func TestRecognizer_IdenticalReplays(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	ev := watch(r)
	_ = r.Load(squareRecords())

	r.StartAttempt()
	drag(r, Point{}, squareLegs()...)
	r.StartAttempt()
	drag(r, Point{}, squareLegs()...)

	if len(ev.success) != 2 || ev.success[0] != ev.success[1] {
		t.Errorf("success %v, want two identical outcomes", ev.success)
	}
}

func TestRecognizer_UnloadStopsEvents(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	ev := watch(r)
	_ = r.Load(squareRecords())
	r.Unload()
	drag(r, Point{}, squareLegs()...)

	if r.Loaded() || r.Figure() != nil {
		t.Error("Unload should drop the figure")
	}
	if len(ev.lines) != 0 || len(ev.success) != 0 {
		t.Error("no events expected after Unload")
	}
}

func TestRecognizer_ReloadInsideHandler(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	reloads := 0
	r.OnDrawSuccess(func(Direction) {
		reloads++
		_ = r.Load(squareRecords())
	})
	_ = r.Load(squareRecords())
	drag(r, Point{}, squareLegs()...)
	if reloads != 1 {
		t.Errorf("reloads %d, want 1", reloads)
	}
	if !r.Loaded() {
		t.Error("figure loaded from the handler should stay loaded")
	}
}

func TestRecognizer_ExplicitVertexAngle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinVertexAngle = 100
	r := NewRecognizer(cfg)
	ev := watch(r)
	_ = r.Load(squareRecords())
	drag(r, Point{}, squareLegs()...)

	// 90 degree turns are below the corner threshold and get smoothed into the current line.
	if len(ev.success) != 0 {
		t.Errorf("success %v, want none", ev.success)
	}
	if len(ev.lines) >= 4 {
		t.Errorf("lines %v, want fewer than one per side", ev.lines)
	}
}

package game

import (
	"testing"
	"time"

	"figtrace/internal/figures"
	"figtrace/pkg/trace"
)

func squareLibrary() *figures.Library {
	return &figures.Library{Figures: []figures.Figure{{
		Name: "square",
		Records: []trace.EdgeRecord{
			{CenterX: 5, CenterY: 0, Length: 10, Angle: 0},
			{CenterX: 10, CenterY: 5, Length: 10, Angle: 90},
			{CenterX: 5, CenterY: 10, Length: 10, Angle: 180},
			{CenterX: 0, CenterY: 5, Length: 10, Angle: -90},
		},
	}}}
}

func brokenFigure() figures.Figure {
	return figures.Figure{Name: "line", Records: []trace.EdgeRecord{{Length: 10}}}
}

func testSettings() Settings {
	s := DefaultSettings()
	s.RoundMax = time.Second
	s.RoundMin = 250 * time.Millisecond
	s.RoundCount = 3
	s.Cooldown = 100 * time.Millisecond
	s.Seed = 7
	return s
}

// squareTrace draws the square counter-clockwise from the origin.
func squareTrace() []PointerEvent {
	events := []PointerEvent{{Type: PointerStart}}
	x, y := 0.0, 0.0
	legs := []struct {
		dx, dy float64
		steps  int
	}{{1, 0, 8}, {0, 1, 9}, {-1, 0, 9}, {0, -1, 9}}
	for _, l := range legs {
		for i := 0; i < l.steps; i++ {
			x += l.dx
			y += l.dy
			events = append(events, PointerEvent{Type: PointerMove, X: x, Y: y})
		}
	}
	return append(events, PointerEvent{Type: PointerEnd, X: x, Y: y})
}

func TestNewGame(t *testing.T) {
	g := NewGame(squareLibrary(), testSettings())
	if g == nil {
		t.Fatal("NewGame returned nil")
	}
	if g.ID == "" {
		t.Error("ID is empty")
	}
	if g.Status != StatusLobby {
		t.Errorf("Status %q, want %q", g.Status, StatusLobby)
	}
	if g.Rounds.Total() != 3 {
		t.Errorf("Rounds %d, want 3", g.Rounds.Total())
	}
}

func TestGame_Start(t *testing.T) {
	now := time.Now().UTC()
	g := NewGame(squareLibrary(), testSettings())
	if err := g.Start(now); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if g.Status != StatusInProgress {
		t.Errorf("Status %q, want %q", g.Status, StatusInProgress)
	}
	if g.Rounds.CurrentRound != 1 {
		t.Errorf("CurrentRound %d, want 1", g.Rounds.CurrentRound)
	}
	fig, idx, ok := g.Figure()
	if !ok || idx != 0 || fig.Name != "square" {
		t.Errorf("Figure %q/%d/%v, want square/0/true", fig.Name, idx, ok)
	}

	if err := g.Start(now); err == nil {
		t.Error("second Start should return error")
	}
}

func TestGame_PointerCompletesRound(t *testing.T) {
	now := time.Now().UTC()
	g := NewGame(squareLibrary(), testSettings())
	_ = g.Start(now)

	res, err := g.Pointer(squareTrace(), now.Add(10*time.Millisecond))
	if err != nil {
		t.Fatalf("Pointer: %v", err)
	}
	if !res.Accepted {
		t.Fatal("input should be accepted during a running round")
	}
	if !res.Matched {
		t.Fatalf("expected a match, got lines %v", res.Lines)
	}
	if res.Direction != trace.Forward.String() {
		t.Errorf("Direction %q, want %q", res.Direction, trace.Forward.String())
	}
	if len(res.Lines) != 4 {
		t.Errorf("lines %v, want 4", res.Lines)
	}
	if g.Points != 1 {
		t.Errorf("Points %d, want 1", g.Points)
	}
	if g.Rounds.CompletedAt.IsZero() {
		t.Error("round should be marked complete")
	}
}

func TestGame_PointerIgnoredDuringCooldown(t *testing.T) {
	now := time.Now().UTC()
	g := NewGame(squareLibrary(), testSettings())
	_ = g.Start(now)
	_, _ = g.Pointer(squareTrace(), now)

	res, err := g.Pointer(squareTrace(), now.Add(10*time.Millisecond))
	if err != nil {
		t.Fatalf("Pointer: %v", err)
	}
	if res.Accepted || res.Matched {
		t.Errorf("input during cooldown should be dropped, got %+v", res)
	}
	if g.Points != 1 {
		t.Errorf("Points %d, want 1", g.Points)
	}
}

func TestGame_PartialTraceDoesNotScore(t *testing.T) {
	now := time.Now().UTC()
	g := NewGame(squareLibrary(), testSettings())
	_ = g.Start(now)

	events := squareTrace()
	res, err := g.Pointer(events[:20], now)
	if err != nil {
		t.Fatalf("Pointer: %v", err)
	}
	if res.Matched {
		t.Error("two edges should not match a square")
	}
	if res.Progress != 2 {
		t.Errorf("Progress %d, want 2", res.Progress)
	}
	if !res.HasAngle {
		t.Error("expected a live angle")
	}
	if g.Points != 0 {
		t.Errorf("Points %d, want 0", g.Points)
	}
	if res.Lost {
		t.Error("a partial trace along the edges is not lost")
	}
}

func TestGame_PointerReportsLostTrace(t *testing.T) {
	now := time.Now().UTC()
	g := NewGame(squareLibrary(), testSettings())
	_ = g.Start(now)

	events := []PointerEvent{{Type: PointerStart}}
	for x := 1; x <= 8; x++ {
		events = append(events, PointerEvent{Type: PointerMove, X: float64(x)})
	}
	for x := 7; x >= -1; x-- {
		events = append(events, PointerEvent{Type: PointerMove, X: float64(x)})
	}
	res, err := g.Pointer(events, now)
	if err != nil {
		t.Fatalf("Pointer: %v", err)
	}
	if !res.Lost {
		t.Error("doubling back should lose the attempt")
	}
	if snap := g.Snapshot(now); !snap.Lost {
		t.Error("Snapshot should report the lost attempt")
	}

	res, _ = g.Pointer([]PointerEvent{{Type: PointerStart}}, now)
	if res.Lost {
		t.Error("a new touch should start a fresh attempt")
	}
}

func TestGame_PointerBeforeStart(t *testing.T) {
	g := NewGame(squareLibrary(), testSettings())
	if _, err := g.Pointer(squareTrace(), time.Now().UTC()); err == nil {
		t.Error("Pointer in the lobby should return error")
	}
}

func TestGame_NextRoundAfterCooldown(t *testing.T) {
	now := time.Now().UTC()
	g := NewGame(squareLibrary(), testSettings())
	_ = g.Start(now)
	_, _ = g.Pointer(squareTrace(), now)

	if g.AdvanceIfNeeded(now.Add(50 * time.Millisecond)) {
		t.Error("should not advance during cooldown")
	}
	if !g.AdvanceIfNeeded(now.Add(150 * time.Millisecond)) {
		t.Fatal("should advance after cooldown")
	}
	if g.Rounds.CurrentRound != 2 {
		t.Errorf("CurrentRound %d, want 2", g.Rounds.CurrentRound)
	}
	if g.Status != StatusInProgress {
		t.Errorf("Status %q, want %q", g.Status, StatusInProgress)
	}
	if _, _, ok := g.Figure(); !ok {
		t.Error("the only figure should be reused for round 2")
	}
}

func TestGame_ExpiryEndsGame(t *testing.T) {
	now := time.Now().UTC()
	g := NewGame(squareLibrary(), testSettings())
	_ = g.Start(now)
	_, _ = g.Pointer(squareTrace(), now)
	g.AdvanceIfNeeded(now.Add(150 * time.Millisecond))

	if !g.AdvanceIfNeeded(now.Add(2 * time.Second)) {
		t.Fatal("expired round should advance")
	}
	if g.Status != StatusFinished {
		t.Errorf("Status %q, want %q", g.Status, StatusFinished)
	}
	if g.Message != "out of time" {
		t.Errorf("Message %q, want out of time", g.Message)
	}
	if g.Points != 1 || g.Best != 1 {
		t.Errorf("Points %d Best %d, want 1 and 1", g.Points, g.Best)
	}
	if _, ok := g.NextTimer(now.Add(2 * time.Second)); ok {
		t.Error("NextTimer should be inactive after the game ends")
	}
}

func TestGame_AllRoundsComplete(t *testing.T) {
	now := time.Now().UTC()
	s := testSettings()
	s.RoundCount = 1
	g := NewGame(squareLibrary(), s)
	_ = g.Start(now)
	_, _ = g.Pointer(squareTrace(), now)

	g.AdvanceIfNeeded(now.Add(200 * time.Millisecond))
	if g.Status != StatusFinished {
		t.Errorf("Status %q, want %q", g.Status, StatusFinished)
	}
	if g.Message != "all rounds complete" {
		t.Errorf("Message %q, want all rounds complete", g.Message)
	}
}

func TestGame_SkipsInvalidFigures(t *testing.T) {
	lib := squareLibrary()
	lib.Figures = append([]figures.Figure{brokenFigure()}, lib.Figures...)
	lib.Figures = append(lib.Figures, brokenFigure())
	for seed := uint64(1); seed <= 5; seed++ {
		s := testSettings()
		s.Seed = seed
		g := NewGame(lib, s)
		_ = g.Start(time.Now().UTC())
		fig, idx, ok := g.Figure()
		if !ok || idx != 1 || fig.Name != "square" {
			t.Errorf("seed %d: Figure %q/%d/%v, want square/1/true", seed, fig.Name, idx, ok)
		}
	}
}

func TestGame_NoValidFiguresFinishes(t *testing.T) {
	lib := &figures.Library{Figures: []figures.Figure{brokenFigure()}}
	g := NewGame(lib, testSettings())
	if err := g.Start(time.Now().UTC()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if g.Status != StatusFinished {
		t.Errorf("Status %q, want %q", g.Status, StatusFinished)
	}
	if g.Message == "" {
		t.Error("Message should explain the early finish")
	}
}

func TestGame_Restart(t *testing.T) {
	now := time.Now().UTC()
	g := NewGame(squareLibrary(), testSettings())
	_ = g.Start(now)
	_, _ = g.Pointer(squareTrace(), now)
	g.AdvanceIfNeeded(now.Add(150 * time.Millisecond))
	g.AdvanceIfNeeded(now.Add(5 * time.Second))

	later := now.Add(10 * time.Second)
	g.Restart(later)
	if g.Status != StatusInProgress {
		t.Errorf("Status %q, want %q", g.Status, StatusInProgress)
	}
	if g.Rounds.CurrentRound != 1 {
		t.Errorf("CurrentRound %d, want 1", g.Rounds.CurrentRound)
	}
	if g.Points != 0 {
		t.Errorf("Points %d, want 0", g.Points)
	}
	if g.Best != 1 {
		t.Errorf("Best %d, want 1 kept across restarts", g.Best)
	}
	if !g.Rounds.RoundStarted.Equal(later) {
		t.Errorf("RoundStarted %v, want %v", g.Rounds.RoundStarted, later)
	}
}

func TestGame_Snapshot(t *testing.T) {
	now := time.Now().UTC()
	g := NewGame(squareLibrary(), testSettings())
	_ = g.Start(now)

	snap := g.Snapshot(now)
	if snap.ID != g.ID {
		t.Errorf("ID %q, want %q", snap.ID, g.ID)
	}
	if snap.Status != StatusInProgress {
		t.Errorf("Status %q, want %q", snap.Status, StatusInProgress)
	}
	if snap.CurrentRound != 1 || snap.Rounds != 3 {
		t.Errorf("round %d of %d, want 1 of 3", snap.CurrentRound, snap.Rounds)
	}
	if snap.RoundDuration != time.Second {
		t.Errorf("RoundDuration %v, want 1s", snap.RoundDuration)
	}
	if snap.FigureName != "square" || snap.FigureEdges != 4 {
		t.Errorf("figure %q with %d edges, want square with 4", snap.FigureName, snap.FigureEdges)
	}
	if snap.Tolerance != 45 {
		t.Errorf("Tolerance %v, want 45", snap.Tolerance)
	}

	_, _ = g.Pointer(squareTrace(), now)
	snap = g.Snapshot(now)
	if snap.Points != 1 {
		t.Errorf("Points %d, want 1", snap.Points)
	}
	if !snap.NextRoundAt.Equal(now.Add(100 * time.Millisecond)) {
		t.Errorf("NextRoundAt %v, want completion plus cooldown", snap.NextRoundAt)
	}
}

func TestGame_IsOwner(t *testing.T) {
	g := NewGame(squareLibrary(), testSettings())
	if !g.IsOwner(g.OwnerToken) {
		t.Error("owner token should be accepted")
	}
	if g.IsOwner("") || g.IsOwner("someone-else") {
		t.Error("other tokens should be rejected")
	}
}

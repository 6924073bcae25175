package game

import (
	"errors"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"figtrace/internal/figures"
	"figtrace/pkg/realtime"
	"figtrace/pkg/trace"
)

const (
	StatusLobby      = "lobby"
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

// Pointer event types sent by the client.
const (
	PointerStart = "start"
	PointerMove  = "move"
	PointerEnd   = "end"
)

var (
	errAlreadyStarted = errors.New("game already started")
	errNotInProgress  = errors.New("game not in progress")
	errNoValidFigures = errors.New("no valid figures in library")
)

// Settings configures a new game.
type Settings struct {
	Trace          trace.Config
	RoundMax       time.Duration
	RoundMin       time.Duration
	RoundCount     int
	Cooldown       time.Duration
	PointsPerRound int
	// Seed fixes the figure order. Zero shuffles from the clock.
	Seed uint64
}

// DefaultSettings returns the stock schedule: 10s rounds
// shrinking as 10s/n down to half a second, one point per round.
func DefaultSettings() Settings {
	return Settings{
		Trace:          trace.DefaultConfig(),
		RoundMax:       10 * time.Second,
		RoundMin:       500 * time.Millisecond,
		RoundCount:     50,
		Cooldown:       realtime.DefaultCooldown,
		PointsPerRound: 1,
	}
}

// PointerEvent is one input sample in figure coordinates.
type PointerEvent struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// PointerResult reports what a batch of pointer events produced.
type PointerResult struct {
	Lines     []float64 `json:"lines"`
	Angle     float64   `json:"angle"`
	HasAngle  bool      `json:"hasAngle"`
	Matched   bool      `json:"matched"`
	Direction string    `json:"direction,omitempty"`
	Progress  int       `json:"progress"`
	Lost      bool      `json:"lost"`
	Accepted  bool      `json:"accepted"`
}

// Game holds the state for a single player session.
type Game struct {
	mu        sync.Mutex
	ID        string
	CreatedAt time.Time
	// OwnerToken authorises input; everyone else may only watch.
	OwnerToken string
	Rounds     realtime.Rounds
	Status     string
	Points     int
	Best       int
	// Message explains why the game finished early, if it did.
	Message string

	settings   Settings
	library    *figures.Library
	order      []int
	cursor     int
	figure     figures.Figure
	figureIdx  int
	recognizer *trace.Recognizer
	rng        *rand.Rand

	// Filled by recogniser handlers while a pointer batch is dispatched.
	pending PointerResult
}

// NewGame creates a game in the lobby that plays figures from lib.
func NewGame(lib *figures.Library, s Settings) *Game {
	if s.PointsPerRound < 1 {
		s.PointsPerRound = 1
	}
	seed := s.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	g := &Game{
		ID:         newID(),
		CreatedAt:  time.Now().UTC(),
		OwnerToken: newID(),
		Rounds: realtime.Rounds{
			Durations: realtime.RoundDurations(s.RoundMax, s.RoundMin, s.RoundCount),
			Cooldown:  s.Cooldown,
		},
		Status:     StatusLobby,
		settings:   s,
		library:    lib,
		figureIdx:  -1,
		recognizer: trace.NewRecognizer(s.Trace),
		rng:        rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
	g.recognizer.OnReady(func(e trace.ReadyEvent) {
		if !e.Valid {
			log.Printf("game %s: skipping figure %q: %v", g.ID, g.figure.Name, e.Err)
		}
	})
	g.recognizer.OnLineDetected(func(angle float64) {
		g.pending.Lines = append(g.pending.Lines, angle)
	})
	g.recognizer.OnLineAngleChanged(func(angle float64) {
		g.pending.Angle = angle
		g.pending.HasAngle = true
	})
	g.recognizer.OnDrawSuccess(func(dir trace.Direction) {
		g.pending.Matched = true
		g.pending.Direction = dir.String()
	})
	return g
}

// IsOwner reports whether token belongs to the player who created the game.
func (g *Game) IsOwner(token string) bool {
	return token != "" && token == g.OwnerToken
}

// Start begins round one if the game is in the lobby.
func (g *Game) Start(now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Status != StatusLobby {
		return errAlreadyStarted
	}
	g.beginLocked(now)
	return nil
}

// Restart reshuffles the figures and resets the score while keeping the same session ID.
func (g *Game) Restart(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.beginLocked(now)
}

func (g *Game) beginLocked(now time.Time) {
	g.Status = StatusInProgress
	g.Points = 0
	g.Message = ""
	g.order = g.rng.Perm(g.library.Len())
	g.cursor = 0
	g.Rounds.Start(now)
	g.loadNextFigureLocked()
}

// loadNextFigureLocked loads the next valid figure of the shuffled order,
// wrapping around when the rounds outnumber the figures. The game finishes
// when no figure in the library is valid.
func (g *Game) loadNextFigureLocked() {
	for tried := 0; tried < len(g.order); tried++ {
		idx := g.order[g.cursor%len(g.order)]
		g.cursor++
		fig, _ := g.library.At(idx)
		g.figure = fig
		if err := g.recognizer.Load(fig.Records); err == nil {
			g.figureIdx = idx
			return
		}
	}
	g.recognizer.Unload()
	g.figure = figures.Figure{}
	g.figureIdx = -1
	g.finishLocked(errNoValidFigures.Error())
}

func (g *Game) finishLocked(message string) {
	g.Status = StatusFinished
	g.Message = message
	if g.Points > g.Best {
		g.Best = g.Points
	}
}

// AdvanceIfNeeded moves the game to the next round if timing conditions are met.
func (g *Game) AdvanceIfNeeded(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.advanceIfNeededLocked(now)
}

func (g *Game) advanceIfNeededLocked(now time.Time) bool {
	if g.Status != StatusInProgress || g.Rounds.RoundStarted.IsZero() {
		return false
	}
	advanced, finished := g.Rounds.Advance(now)
	if finished {
		msg := "out of time"
		if g.Rounds.ExpiredAt.IsZero() {
			msg = "all rounds complete"
		}
		g.finishLocked(msg)
		return true
	}
	if advanced {
		g.loadNextFigureLocked()
	}
	return advanced
}

// Pointer feeds a batch of pointer events into the recogniser. Input outside
// a running round is dropped and reported with Accepted false. A completed
// figure wins the round and drops the rest of the batch.
func (g *Game) Pointer(events []PointerEvent, now time.Time) (PointerResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.advanceIfNeededLocked(now)
	if g.Status != StatusInProgress {
		return PointerResult{}, errNotInProgress
	}
	if !g.Rounds.Running(now) || !g.recognizer.Loaded() {
		return PointerResult{Lines: []float64{}}, nil
	}

	g.pending = PointerResult{Lines: []float64{}, Accepted: true}
	for _, e := range events {
		p := trace.Point{X: e.X, Y: e.Y}
		switch e.Type {
		case PointerStart:
			g.recognizer.TouchStart(p)
		case PointerMove:
			g.recognizer.PointerMove(p)
		case PointerEnd:
			g.recognizer.TouchEnd()
		}
		if g.pending.Matched {
			break
		}
	}
	res := g.pending
	g.pending = PointerResult{}
	res.Progress = g.recognizer.Progress()
	res.Lost = g.recognizer.Lost()
	if res.Matched && g.Rounds.Complete(now) {
		g.Points += g.settings.PointsPerRound
		g.recognizer.StartAttempt()
	}
	return res, nil
}

// NextTimer returns the next time the round state should advance.
func (g *Game) NextTimer(now time.Time) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Status != StatusInProgress {
		return time.Time{}, false
	}
	return g.Rounds.NextWake(now)
}

// Figure returns the figure being traced in the current round.
func (g *Game) Figure() (figures.Figure, int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.figure, g.figureIdx, g.figureIdx >= 0
}

// Snapshot captures the state needed for rendering UI fragments.
type Snapshot struct {
	ID            string
	Status        string
	CurrentRound  int
	Rounds        int
	RoundDuration time.Duration
	RoundStarted  time.Time
	CompletedAt   time.Time
	NextRoundAt   time.Time
	ExpiredAt     time.Time
	FigureIndex   int
	FigureName    string
	FigureEdges   int
	Tolerance     float64
	Progress      int
	Lost          bool
	Points        int
	Best          int
	Message       string
}

// Snapshot returns a consistent view of the current game state.
func (g *Game) Snapshot(now time.Time) Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.advanceIfNeededLocked(now)
	var nextRoundAt time.Time
	if !g.Rounds.CompletedAt.IsZero() {
		nextRoundAt = g.Rounds.CompletedAt.Add(g.Rounds.Cooldown)
	}
	snap := Snapshot{
		ID:            g.ID,
		Status:        g.Status,
		CurrentRound:  g.Rounds.CurrentRound,
		Rounds:        g.Rounds.Total(),
		RoundDuration: g.Rounds.Duration(),
		RoundStarted:  g.Rounds.RoundStarted,
		CompletedAt:   g.Rounds.CompletedAt,
		NextRoundAt:   nextRoundAt,
		ExpiredAt:     g.Rounds.ExpiredAt,
		FigureIndex:   g.figureIdx,
		FigureName:    g.figure.Name,
		Points:        g.Points,
		Best:          g.Best,
		Message:       g.Message,
	}
	if f := g.recognizer.Figure(); f != nil && g.figureIdx >= 0 {
		snap.FigureEdges = f.Len()
		snap.Tolerance = f.MatchTolerance()
		snap.Progress = g.recognizer.Progress()
		snap.Lost = g.recognizer.Lost()
	}
	return snap
}

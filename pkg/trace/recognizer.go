package trace

// ReadyEvent is raised after every Load, whether or not the figure is valid.
type ReadyEvent struct {
	Figure *Figure
	Valid  bool
	Err    error
}

// Recognizer binds one CornerDetector and a forward and backward Matcher to
// the loaded figure and reports when the figure has been traced.
//
// A Recognizer is not safe for concurrent use.
type Recognizer struct {
	cfg      Config
	figure   *Figure
	detector *CornerDetector
	forward  *Matcher
	backward *Matcher
	wiring   subscriptions

	drawnThisLine bool

	ready        signal[ReadyEvent]
	lineDetected signal[float64]
	angleChanged signal[float64]
	drawSuccess  signal[Direction]
}

// NewRecognizer returns a recogniser with no figure loaded.
func NewRecognizer(cfg Config) *Recognizer {
	return &Recognizer{cfg: cfg.withDefaults()}
}

// Config returns the effective tolerances.
func (r *Recognizer) Config() Config { return r.cfg }

// OnReady registers fn for figure loads.
func (r *Recognizer) OnReady(fn func(ReadyEvent)) Subscription { return r.ready.subscribe(fn) }

// OnLineDetected registers fn for committed lines.
func (r *Recognizer) OnLineDetected(fn func(angle float64)) Subscription {
	return r.lineDetected.subscribe(fn)
}

// OnLineAngleChanged registers fn for live direction updates.
func (r *Recognizer) OnLineAngleChanged(fn func(angle float64)) Subscription {
	return r.angleChanged.subscribe(fn)
}

// OnDrawSuccess registers fn for a completed trace in either direction.
func (r *Recognizer) OnDrawSuccess(fn func(Direction)) Subscription {
	return r.drawSuccess.subscribe(fn)
}

// Figure returns the loaded figure, or nil.
func (r *Recognizer) Figure() *Figure { return r.figure }

// Loaded reports whether a valid figure is ready for input.
func (r *Recognizer) Loaded() bool { return r.detector != nil }

// Load replaces the current figure. Ready is raised in every case; an invalid
// figure leaves the recogniser unloaded and its error is returned.
func (r *Recognizer) Load(records []EdgeRecord) error {
	r.Unload()

	f, err := LoadFigure(records, r.cfg)
	r.figure = f
	if err != nil {
		r.ready.emit(ReadyEvent{Figure: f, Valid: false, Err: err})
		return err
	}

	// Both matchers share the figure; NewMatcher cannot fail on a finalized one.
	r.forward, _ = NewMatcher(f, Forward)
	r.backward, _ = NewMatcher(f, Backward)

	vertex := r.cfg.MinVertexAngle
	if vertex <= 0 {
		vertex = f.MatchTolerance()
	}
	r.detector = NewCornerDetector(vertex, r.cfg.MinPointerMovesPerLine)

	r.wiring.add(r.detector.OnLineDetected(r.onLineDetected))
	r.wiring.add(r.detector.OnLineAngleChanged(r.angleChanged.emit))
	r.wiring.add(r.forward.OnMatch(r.onMatch))
	r.wiring.add(r.backward.OnMatch(r.onMatch))

	Logger().Info("figure loaded", "edges", f.Len(), "tolerance", f.MatchTolerance())
	r.ready.emit(ReadyEvent{Figure: f, Valid: true})
	return nil
}

// Unload drops the figure, the detector and both matchers.
func (r *Recognizer) Unload() {
	r.wiring.Close()
	if r.figure != nil {
		r.figure.release()
	}
	r.figure = nil
	r.detector = nil
	r.forward = nil
	r.backward = nil
}

// StartAttempt resets the detector and both matchers.
func (r *Recognizer) StartAttempt() {
	if r.detector == nil {
		return
	}
	r.detector.StartAttempt()
	r.forward.StartAttempt()
	r.backward.StartAttempt()
}

// TouchStart begins a new attempt anchored at p.
func (r *Recognizer) TouchStart(p Point) {
	if r.detector == nil {
		return
	}
	r.StartAttempt()
	r.detector.TouchStart(p)
}

// PointerMove feeds one pointer sample.
func (r *Recognizer) PointerMove(p Point) {
	if r.detector == nil {
		return
	}
	r.detector.PointerMove(p)
}

// TouchEnd ends the current stroke.
func (r *Recognizer) TouchEnd() {
	if r.detector == nil {
		return
	}
	r.detector.TouchEnd()
}

// Progress returns the longest matched run over both directions.
func (r *Recognizer) Progress() int {
	if r.forward == nil {
		return 0
	}
	return max(r.forward.Progress(), r.backward.Progress())
}

// Lost reports whether the current attempt can no longer match in either
// direction. Only a new attempt recovers.
func (r *Recognizer) Lost() bool {
	if r.forward == nil {
		return false
	}
	return !r.forward.Alive() && !r.backward.Alive()
}

func (r *Recognizer) onLineDetected(angle float64) {
	fwd, bwd := r.forward, r.backward
	r.drawnThisLine = false
	r.lineDetected.emit(angle)
	// Handlers may unload or replace the figure from inside an event.
	if r.forward != fwd {
		return
	}
	fwd.SubmitLine(angle)
	if r.backward != bwd {
		return
	}
	bwd.SubmitLine(angle)
}

func (r *Recognizer) onMatch(dir Direction) {
	if r.drawnThisLine {
		return
	}
	r.drawnThisLine = true
	r.drawSuccess.emit(dir)
}

package trace

// DetectorState is the phase of a CornerDetector.
type DetectorState int

const (
	// Idle means no line is anchored; pointer moves are ignored.
	Idle DetectorState = iota
	// TrackingLine means samples accumulate into the current line.
	TrackingLine
)

func (s DetectorState) String() string {
	if s == TrackingLine {
		return "tracking"
	}
	return "idle"
}

// CornerDetector splits a pointer trajectory into straight lines. Each line
// is reported once through LineDetected after enough samples, while
// LineAngleChanged follows the smoothed direction on every sample.
type CornerDetector struct {
	minVertexAngle float64
	movesPerLine   int

	state    DetectorState
	anchor   Point
	angle    float64
	hasAngle bool
	moves    int
	accepted bool

	lineDetected signal[float64]
	angleChanged signal[float64]
}

// NewCornerDetector returns a detector that treats a direction change of at
// least minVertexAngle degrees as a corner and accepts a line after
// minPointerMovesPerLine samples.
func NewCornerDetector(minVertexAngle float64, minPointerMovesPerLine int) *CornerDetector {
	if minPointerMovesPerLine < 1 {
		minPointerMovesPerLine = 1
	}
	return &CornerDetector{
		minVertexAngle: minVertexAngle,
		movesPerLine:   minPointerMovesPerLine,
	}
}

// OnLineDetected registers fn for committed lines.
func (d *CornerDetector) OnLineDetected(fn func(angle float64)) Subscription {
	return d.lineDetected.subscribe(fn)
}

// OnLineAngleChanged registers fn for live direction updates.
func (d *CornerDetector) OnLineAngleChanged(fn func(angle float64)) Subscription {
	return d.angleChanged.subscribe(fn)
}

// State returns the current phase.
func (d *CornerDetector) State() DetectorState { return d.state }

// Angle returns the smoothed direction of the current line and whether one exists.
func (d *CornerDetector) Angle() (float64, bool) { return d.angle, d.hasAngle }

// StartAttempt clears all session state. Call it before every try.
func (d *CornerDetector) StartAttempt() {
	d.state = Idle
	d.anchor = Point{}
	d.angle = 0
	d.hasAngle = false
	d.moves = 0
	d.accepted = false
}

// TouchStart anchors a new line at p.
func (d *CornerDetector) TouchStart(p Point) {
	d.state = TrackingLine
	d.anchor = p
	d.angle = 0
	d.hasAngle = false
	d.moves = 0
	d.accepted = false
}

// TouchEnd stops tracking until the next TouchStart.
func (d *CornerDetector) TouchEnd() {
	d.state = Idle
}

// PointerMove feeds one pointer sample.
func (d *CornerDetector) PointerMove(p Point) {
	if d.state != TrackingLine || p == d.anchor {
		return
	}
	instant := VectorAngle(d.anchor, p)

	if d.hasAngle && Separation(d.angle, instant) >= d.minVertexAngle {
		Logger().Debug("corner", "from", d.angle, "to", instant, "moves", d.moves)
		d.moves = 0
		d.accepted = false
		d.angle = instant
		d.anchor = p
		d.angleChanged.emit(d.angle)
		return
	}

	d.angle = Interpolate(d.angle, instant, d.moves)
	d.hasAngle = true
	d.moves++
	if d.moves%d.movesPerLine == 0 {
		// Re-anchor so slow drift does not bend the whole line.
		d.anchor = p
	}
	d.angleChanged.emit(d.angle)

	if !d.accepted && d.moves >= d.movesPerLine {
		d.accepted = true
		Logger().Debug("line detected", "angle", d.angle)
		d.lineDetected.emit(d.angle)
	}
}

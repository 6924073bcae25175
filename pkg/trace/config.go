package trace

// Config holds the geometric tolerances of a recogniser.
type Config struct {
	// MinEdgeLength is the shortest edge a valid figure may contain.
	MinEdgeLength float64
	// MinCornerAllowed is the sharpest corner, in degrees, a valid figure may contain.
	MinCornerAllowed float64
	// Sensitivity divides the figure's sharpest corner to give its match tolerance.
	// For a 90 degree corner and sensitivity 2 the tolerance is 45 degrees.
	Sensitivity float64
	// MinPointerMovesPerLine is the number of pointer samples a line needs before it is accepted.
	MinPointerMovesPerLine int
	// MinVertexAngle is the direction change the detector treats as a corner.
	// Zero uses the loaded figure's match tolerance.
	MinVertexAngle float64
}

// DefaultConfig returns the tolerances the game ships with.
func DefaultConfig() Config {
	return Config{
		MinEdgeLength:          1,
		MinCornerAllowed:       5,
		Sensitivity:            2,
		MinPointerMovesPerLine: 4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinEdgeLength <= 0 {
		c.MinEdgeLength = d.MinEdgeLength
	}
	if c.MinCornerAllowed <= 0 {
		c.MinCornerAllowed = d.MinCornerAllowed
	}
	if c.Sensitivity <= 0 {
		c.Sensitivity = d.Sensitivity
	}
	if c.MinPointerMovesPerLine < 1 {
		c.MinPointerMovesPerLine = d.MinPointerMovesPerLine
	}
	return c
}

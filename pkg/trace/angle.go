package trace

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument reports a violated input contract, such as a negative step count.
var ErrInvalidArgument = errors.New("invalid argument")

// Point is a planar position in world units.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Mul scales p by s.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Length returns the magnitude of p as a vector.
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// VectorAngle returns the angle of the vector from -> to against the X axis,
// in degrees within (-180, 180].
func VectorAngle(from, to Point) float64 {
	d := to.Sub(from)
	return fromRadians(math.Atan2(d.Y, d.X))
}

// fromRadians converts an atan2 result to degrees in (-180, 180]. Rounding may
// push pi just past 180, which is clamped rather than wrapped.
func fromRadians(rad float64) float64 {
	a := rad * (180 / math.Pi)
	if a > 180 || a <= -180 {
		return 180
	}
	return a
}

// Normalize maps any finite angle in degrees into (-180, 180].
func Normalize(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a <= -180 {
		a += 360
	} else if a > 180 {
		a -= 360
	}
	return a
}

// Separation returns the smallest rotation between two directions, in [0, 180].
func Separation(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Reverse returns the opposite direction of angle, keeping it in (-180, 180].
func Reverse(angle float64) float64 {
	if angle < 0 {
		return angle + 180
	}
	return angle - 180
}

// Interpolate blends b into a with weight 1/(steps+1), as a circular mean.
// With steps == 0 the result is b. A negative step count panics.
func Interpolate(a, b float64, steps int) float64 {
	if steps < 0 {
		panic(fmt.Errorf("%w: interpolate steps %d < 0", ErrInvalidArgument, steps))
	}
	w := 1 / float64(steps+1)
	ra, rb := a*math.Pi/180, b*math.Pi/180
	cs := (1-w)*math.Cos(ra) + w*math.Cos(rb)
	sn := (1-w)*math.Sin(ra) + w*math.Sin(rb)
	return fromRadians(math.Atan2(sn, cs))
}

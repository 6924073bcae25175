// Package trace recognises a pointer trajectory that traces the edges of a
// closed polygon.
//
// A CornerDetector splits the trajectory into straight lines at corners. Each
// committed line direction is submitted to two Matchers, one per winding,
// that track which runs of the figure's cyclic edge order agree with the lines
// drawn so far. A Recognizer wires the three together for one Figure and
// reports DrawSuccess when some rotation of the figure has been traced in
// either direction.
//
// All angles are in degrees. Everything in this package is synchronous and
// single-threaded.
package trace

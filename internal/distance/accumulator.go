// Package distance sums great-circle distance over successive positions.
package distance

import "github.com/SkWeli/step-tracker/internal/shared/geo"

// Point is a single position fix.
type Point struct {
	Lat float64
	Lng float64
}

// Accumulator keeps the last position and the running total in metres.
// It does no smoothing or outlier rejection; callers pre-filter jitter.
type Accumulator struct {
	last    Point
	hasLast bool
	totalM  float64
}

// Add folds p into the total and returns the new total. The first point of
// a session only seeds the cursor.
func (a *Accumulator) Add(p Point) float64 {
	if a.hasLast {
		a.totalM += geo.DistanceMeters(a.last.Lat, a.last.Lng, p.Lat, p.Lng)
	}
	a.last = p
	a.hasLast = true
	return a.totalM
}

// TotalMeters returns the accumulated distance.
func (a *Accumulator) TotalMeters() float64 {
	return a.totalM
}

// Last returns the stored position, if any.
func (a *Accumulator) Last() (Point, bool) {
	return a.last, a.hasLast
}

// Rebase drops the cursor but keeps the total, so the next point only
// seeds a new leg.
func (a *Accumulator) Rebase() {
	a.last = Point{}
	a.hasLast = false
}

// Reset drops the cursor and the total.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

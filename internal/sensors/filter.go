package sensors

import "github.com/SkWeli/step-tracker/internal/shared/geo"

// MinDistanceFilter passes a position only when it lies at least
// MinDistanceM from the last one it passed. The first position always passes.
// Fixes with invalid coordinates pass through without becoming the reference.
type MinDistanceFilter struct {
	MinDistanceM float64

	last    PositionEvent
	hasLast bool
}

func (f *MinDistanceFilter) Accept(p PositionEvent) bool {
	if !geo.ValidCoordinate(p.Lat, p.Lng) {
		return true
	}
	if f.hasLast && f.MinDistanceM > 0 {
		if geo.DistanceMeters(f.last.Lat, f.last.Lng, p.Lat, p.Lng) < f.MinDistanceM {
			return false
		}
	}
	f.last = p
	f.hasLast = true
	return true
}

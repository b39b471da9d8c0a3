// Package elevation estimates cumulative uphill gain from either barometric
// pressure or GPS altitude.
package elevation

import (
	"errors"
	"math"
)

// Mode selects where altitude samples come from. It is fixed once per
// session.
type Mode int

const (
	ModeNone Mode = iota
	ModeBarometric
	ModeGPS
)

func (m Mode) String() string {
	switch m {
	case ModeBarometric:
		return "barometric"
	case ModeGPS:
		return "gps"
	default:
		return "none"
	}
}

// MarshalText lets Mode render as its name in JSON snapshots.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

const (
	// hypsometric approximation: h = 44330 * (1 - (P/P0)^(1/5.255))
	altitudeScaleM = 44330.0
	pressureExpInv = 1 / 5.255
	StandardSeaHpa = 1013.25
)

var (
	ErrInvalidPressure = errors.New("elevation: invalid pressure reading")
	ErrInvalidAltitude = errors.New("elevation: invalid altitude reading")
	ErrWrongMode       = errors.New("elevation: sample does not match active mode")
	ErrModeFixed       = errors.New("elevation: mode already selected for this session")
)

// BarometricAltitude converts a pressure reading to altitude in metres above
// the level where baseline was measured. Both pressures must be positive and
// finite.
func BarometricAltitude(hPa, baselineHpa float64) (float64, error) {
	if !validPressure(hPa) || !validPressure(baselineHpa) {
		return 0, ErrInvalidPressure
	}
	return altitudeScaleM * (1 - math.Pow(hPa/baselineHpa, pressureExpInv)), nil
}

func validPressure(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}

// Estimator tracks uphill-only gain. The zero value has ModeNone and rejects
// every sample until Select is called.
type Estimator struct {
	mode Mode

	baselineHpa float64
	hasBaseline bool

	cursor    float64
	hasCursor bool

	gainM float64
}

// Select fixes the mode for the current session. Selecting again before
// Reset fails with ErrModeFixed and leaves the mode unchanged.
func (e *Estimator) Select(m Mode) error {
	if e.mode != ModeNone {
		return ErrModeFixed
	}
	e.mode = m
	return nil
}

// Mode returns the active mode.
func (e *Estimator) Mode() Mode {
	return e.mode
}

// OnPressure handles a barometer reading. The first valid reading becomes
// the baseline and adds nothing. Invalid readings are rejected without
// touching any state.
func (e *Estimator) OnPressure(hPa float64) (float64, error) {
	if e.mode != ModeBarometric {
		return e.gainM, ErrWrongMode
	}
	if !validPressure(hPa) {
		return e.gainM, ErrInvalidPressure
	}
	if !e.hasBaseline {
		e.baselineHpa = hPa
		e.hasBaseline = true
		return e.gainM, nil
	}
	h, err := BarometricAltitude(hPa, e.baselineHpa)
	if err != nil {
		return e.gainM, err
	}
	return e.updateGain(h), nil
}

// OnGPSAltitude handles the altitude field of a position fix.
func (e *Estimator) OnGPSAltitude(altitudeM float64) (float64, error) {
	if e.mode != ModeGPS {
		return e.gainM, ErrWrongMode
	}
	if math.IsNaN(altitudeM) || math.IsInf(altitudeM, 0) {
		return e.gainM, ErrInvalidAltitude
	}
	return e.updateGain(altitudeM), nil
}

func (e *Estimator) updateGain(altitudeM float64) float64 {
	if e.hasCursor {
		if delta := altitudeM - e.cursor; delta > 0 {
			e.gainM += delta
		}
	}
	e.cursor = altitudeM
	e.hasCursor = true
	return e.gainM
}

// GainMeters returns cumulative uphill gain.
func (e *Estimator) GainMeters() float64 {
	return e.gainM
}

// Baseline returns the latched pressure baseline, if any.
func (e *Estimator) Baseline() (float64, bool) {
	return e.baselineHpa, e.hasBaseline
}

// Cursor returns the last altitude sample, if any.
func (e *Estimator) Cursor() (float64, bool) {
	return e.cursor, e.hasCursor
}

// Rebase clears the pressure baseline, the altitude cursor and the mode but
// keeps the gain accumulated so far.
func (e *Estimator) Rebase() {
	*e = Estimator{gainM: e.gainM}
}

// Reset clears baselines, cursor, gain and the selected mode.
func (e *Estimator) Reset() {
	*e = Estimator{}
}

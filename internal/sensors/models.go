// Package sensors models the three raw sensor streams consumed by a
// tracking session, plus in-process push feeds that back them.
package sensors

import "errors"

// ErrUnavailable is returned by a source whose hardware is absent.
var ErrUnavailable = errors.New("sensors: source unavailable")

type StepEvent struct {
	CumulativeSteps int64 `json:"cumulative_steps"`
}

type PositionEvent struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Altitude float64 `json:"altitude"`
}

type PressureEvent struct {
	PressureHpa float64 `json:"pressure_hpa"`
}

// Accuracy is the position fix preference handed to the GPS at construction.
type Accuracy string

const (
	AccuracyHigh     Accuracy = "high"
	AccuracyBalanced Accuracy = "balanced"
	AccuracyLow      Accuracy = "low"
)

// ParseAccuracy maps a config string to an Accuracy, defaulting to high.
func ParseAccuracy(s string) Accuracy {
	switch Accuracy(s) {
	case AccuracyBalanced:
		return AccuracyBalanced
	case AccuracyLow:
		return AccuracyLow
	default:
		return AccuracyHigh
	}
}

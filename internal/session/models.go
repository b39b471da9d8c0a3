// Package session fuses step, position and pressure streams into one
// running tracking state.
package session

import (
	"context"
	"errors"

	"github.com/SkWeli/step-tracker/internal/elevation"
	"github.com/SkWeli/step-tracker/internal/sensors"
)

var (
	ErrLocationDenied = errors.New("session: location permission denied")
	ErrNotRunning     = errors.New("session: controller not running")
	ErrAlreadyRunning = errors.New("session: controller already running")
)

// Capability names a permission checked before tracking starts.
type Capability string

const (
	CapabilityLocation Capability = "location"
	CapabilityActivity Capability = "activity"
)

// Gate answers whether a capability has been granted.
type Gate interface {
	Check(ctx context.Context, c Capability) (bool, error)
}

// GateFunc adapts a function to Gate.
type GateFunc func(ctx context.Context, c Capability) (bool, error)

func (f GateFunc) Check(ctx context.Context, c Capability) (bool, error) { return f(ctx, c) }

type StepSource interface {
	SubscribeSteps(ctx context.Context) (*sensors.Subscription[sensors.StepEvent], error)
}

type PositionSource interface {
	SubscribePositions(ctx context.Context) (*sensors.Subscription[sensors.PositionEvent], error)
}

type PressureSource interface {
	Available(ctx context.Context) (bool, error)
	SubscribePressure(ctx context.Context) (*sensors.Subscription[sensors.PressureEvent], error)
}

// Sources groups the streams a session consumes. Positions is required;
// Steps and Pressure may be nil.
type Sources struct {
	Steps     StepSource
	Positions PositionSource
	Pressure  PressureSource
}

// State is the merged view exposed to presentation.
type State struct {
	StepCount           int64          `json:"step_count"`
	DistanceMeters      float64        `json:"distance_m"`
	ElevationGainMeters float64        `json:"elevation_gain_m"`
	ElevationSource     elevation.Mode `json:"elevation_source"`
	Tracking            bool           `json:"tracking"`
	StatusMessage       string         `json:"status_message"`
}

// Snapshot is a published State tagged with the run it belongs to.
type Snapshot struct {
	RunID string `json:"run_id,omitempty"`
	Seq   uint64 `json:"seq"`
	State State  `json:"state"`
}

// Observer receives every snapshot. It runs on the controller's event loop
// and must not block.
type Observer func(Snapshot)

// Stats counts events handled by the loop.
type Stats struct {
	StepEvents     int64 `json:"step_events"`
	PositionEvents int64 `json:"position_events"`
	PressureEvents int64 `json:"pressure_events"`
	Rejected       int64 `json:"rejected"`
	StreamErrors   int64 `json:"stream_errors"`
}

package tracking

import (
	"github.com/SkWeli/step-tracker/internal/sensors"
)

// Feeds are the push sources the ingest endpoints write into.
type Feeds struct {
	Steps     *sensors.StepFeed
	Positions *sensors.PositionFeed
	Pressure  *sensors.PressureFeed
}

type IngestResult struct {
	Delivered int `json:"delivered"`
}

type StreamErrorRequest struct {
	Message string `json:"message"`
}

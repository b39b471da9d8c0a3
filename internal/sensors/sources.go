package sensors

import (
	"context"
	"sync/atomic"
)

// StepFeed is a step counter source backed by pushed readings.
type StepFeed struct {
	*Feed[StepEvent]
	available atomic.Bool
}

func NewStepFeed(available bool) *StepFeed {
	f := &StepFeed{Feed: NewFeed[StepEvent](defaultBuffer)}
	f.available.Store(available)
	return f
}

func (f *StepFeed) SetAvailable(v bool) { f.available.Store(v) }

func (f *StepFeed) SubscribeSteps(ctx context.Context) (*Subscription[StepEvent], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !f.available.Load() {
		return nil, ErrUnavailable
	}
	return f.Subscribe(), nil
}

// PositionFeed is a GPS source. Each subscription filters out fixes closer
// than minDistanceM to the previous forwarded fix.
type PositionFeed struct {
	*Feed[PositionEvent]
	minDistanceM float64
	accuracy     Accuracy
}

func NewPositionFeed(minDistanceM float64, accuracy Accuracy) *PositionFeed {
	f := &PositionFeed{
		Feed:         NewFeed[PositionEvent](defaultBuffer),
		minDistanceM: minDistanceM,
		accuracy:     accuracy,
	}
	f.SetFilter(func() func(PositionEvent) bool {
		filter := &MinDistanceFilter{MinDistanceM: minDistanceM}
		return filter.Accept
	})
	return f
}

func (f *PositionFeed) MinDistanceM() float64 { return f.minDistanceM }
func (f *PositionFeed) Accuracy() Accuracy    { return f.accuracy }

func (f *PositionFeed) SubscribePositions(ctx context.Context) (*Subscription[PositionEvent], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.Subscribe(), nil
}

// PressureFeed is a barometer source with a capability probe.
type PressureFeed struct {
	*Feed[PressureEvent]
	available atomic.Bool
}

func NewPressureFeed(available bool) *PressureFeed {
	f := &PressureFeed{Feed: NewFeed[PressureEvent](defaultBuffer)}
	f.available.Store(available)
	return f
}

func (f *PressureFeed) SetAvailable(v bool) { f.available.Store(v) }

// Available is the barometer capability probe.
func (f *PressureFeed) Available(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return f.available.Load(), nil
}

func (f *PressureFeed) SubscribePressure(ctx context.Context) (*Subscription[PressureEvent], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !f.available.Load() {
		return nil, ErrUnavailable
	}
	return f.Subscribe(), nil
}

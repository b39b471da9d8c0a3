package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/SkWeli/step-tracker/internal/distance"
	"github.com/SkWeli/step-tracker/internal/elevation"
	"github.com/SkWeli/step-tracker/internal/sensors"
	"github.com/SkWeli/step-tracker/internal/shared/geo"
	"github.com/SkWeli/step-tracker/internal/steps"

	"github.com/google/uuid"
)

const defaultStartTimeout = 5 * time.Second

type Option func(*Controller)

// WithObserver registers fn to receive every published snapshot.
func WithObserver(fn Observer) Option {
	return func(c *Controller) { c.observer = fn }
}

// WithStartTimeout bounds the permission checks and capability probe run by
// Start.
func WithStartTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.startTimeout = d
		}
	}
}

// WithRunIDs overrides how run ids are generated.
func WithRunIDs(fn func() string) Option {
	return func(c *Controller) { c.newRunID = fn }
}

// Controller owns one tracking session. All state lives on the goroutine
// executing Run; the exported methods hand work to it and wait.
type Controller struct {
	sources      Sources
	gate         Gate
	observer     Observer
	startTimeout time.Duration
	newRunID     func() string

	cmds    chan func()
	done    chan struct{}
	running atomic.Bool

	// loop-owned
	state    State
	runID    string
	seq      uint64
	stats    Stats
	counter  steps.Tracker
	dist     distance.Accumulator
	elev     elevation.Estimator
	stepSub  *sensors.Subscription[sensors.StepEvent]
	posSub   *sensors.Subscription[sensors.PositionEvent]
	pressSub *sensors.Subscription[sensors.PressureEvent]
}

// New returns a controller. Call Run before issuing commands.
func New(sources Sources, gate Gate, opts ...Option) *Controller {
	c := &Controller{
		sources:      sources,
		gate:         gate,
		startTimeout: defaultStartTimeout,
		newRunID:     uuid.NewString,
		cmds:         make(chan func()),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes commands and sensor events one at a time until ctx is
// cancelled. Live subscriptions are released on return.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(c.done)
	defer c.release()

	for {
		stepC, stepErr := subChans(c.stepSub)
		posC, posErr := subChans(c.posSub)
		pressC, pressErr := subChans(c.pressSub)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-c.cmds:
			cmd()
		case ev, ok := <-stepC:
			if !ok {
				c.stepSub.Cancel()
				c.stepSub = nil
				c.streamEnded("Step counter")
				continue
			}
			c.onStep(ev)
		case ev, ok := <-posC:
			if !ok {
				c.posSub.Cancel()
				c.posSub = nil
				c.streamEnded("Location")
				continue
			}
			c.onPosition(ev)
		case ev, ok := <-pressC:
			if !ok {
				c.pressSub.Cancel()
				c.pressSub = nil
				c.streamEnded("Barometer")
				continue
			}
			c.onPressure(ev)
		case err, ok := <-stepErr:
			if !ok {
				c.stepSub.Cancel()
				c.stepSub = nil
				c.streamEnded("Step counter")
				continue
			}
			c.streamError("Step counter", err)
		case err, ok := <-posErr:
			if !ok {
				c.posSub.Cancel()
				c.posSub = nil
				c.streamEnded("Location")
				continue
			}
			c.streamError("Location", err)
		case err, ok := <-pressErr:
			if !ok {
				c.pressSub.Cancel()
				c.pressSub = nil
				c.streamEnded("Barometer")
				continue
			}
			c.streamError("Barometer", err)
		}
	}
}

func subChans[T any](sub *sensors.Subscription[T]) (<-chan T, <-chan error) {
	if sub == nil {
		return nil, nil
	}
	return sub.C, sub.Err
}

// do runs fn on the event loop and waits for it.
func (c *Controller) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	cmd := func() {
		defer close(finished)
		fn()
	}
	select {
	case c.cmds <- cmd:
	case <-c.done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
	<-finished
	return nil
}

// Start checks permissions, attaches the sensor streams and begins
// tracking. Starting while already tracking is a no-op.
func (c *Controller) Start(ctx context.Context) error {
	var err error
	if doErr := c.do(ctx, func() { err = c.start(ctx) }); doErr != nil {
		return doErr
	}
	return err
}

// Stop detaches every stream and keeps the accumulated totals.
func (c *Controller) Stop(ctx context.Context) error {
	return c.do(ctx, c.stop)
}

// Reset stops tracking and clears every total and baseline.
func (c *Controller) Reset(ctx context.Context) error {
	return c.do(ctx, c.reset)
}

// State returns the current merged state.
func (c *Controller) State(ctx context.Context) (State, error) {
	var s State
	err := c.do(ctx, func() { s = c.state })
	return s, err
}

// Snapshot returns the current state with its run id and sequence.
func (c *Controller) Snapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	err := c.do(ctx, func() { s = c.snapshot() })
	return s, err
}

// Stats returns event counters.
func (c *Controller) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.do(ctx, func() { s = c.stats })
	return s, err
}

func (c *Controller) start(parent context.Context) (err error) {
	if c.state.Tracking {
		return nil
	}

	ctx, cancel := context.WithTimeout(parent, c.startTimeout)
	defer cancel()

	granted, err := c.gate.Check(ctx, CapabilityLocation)
	if err != nil {
		return c.abortStart(fmt.Errorf("check location permission: %w", err))
	}
	if !granted {
		return c.abortStart(ErrLocationDenied)
	}

	// every subscription acquired below is released unless start commits
	var stepSub *sensors.Subscription[sensors.StepEvent]
	var posSub *sensors.Subscription[sensors.PositionEvent]
	var pressSub *sensors.Subscription[sensors.PressureEvent]
	committed := false
	defer func() {
		if !committed {
			stepSub.Cancel()
			posSub.Cancel()
			pressSub.Cancel()
		}
	}()

	var notes []string

	activity, err := c.gate.Check(ctx, CapabilityActivity)
	if err != nil {
		log.Printf("activity permission check failed: %v", err)
		activity = false
	}
	switch {
	case !activity:
		notes = append(notes, "activity permission denied, steps disabled")
	case c.sources.Steps == nil:
		notes = append(notes, "step counter unavailable")
	default:
		stepSub, err = c.sources.Steps.SubscribeSteps(ctx)
		if err != nil {
			if !errors.Is(err, sensors.ErrUnavailable) {
				log.Printf("step subscription failed: %v", err)
			}
			notes = append(notes, "step counter unavailable")
			stepSub = nil
		}
	}

	if c.sources.Positions == nil {
		return c.abortStart(fmt.Errorf("subscribe positions: %w", sensors.ErrUnavailable))
	}
	posSub, err = c.sources.Positions.SubscribePositions(ctx)
	if err != nil {
		posSub = nil
		return c.abortStart(fmt.Errorf("subscribe positions: %w", err))
	}

	mode := elevation.ModeGPS
	if c.sources.Pressure != nil {
		available, probeErr := c.sources.Pressure.Available(ctx)
		switch {
		case probeErr != nil:
			log.Printf("barometer probe failed: %v", probeErr)
			notes = append(notes, "barometer probe failed")
		case available:
			pressSub, err = c.sources.Pressure.SubscribePressure(ctx)
			if err != nil {
				log.Printf("barometer subscription failed: %v", err)
				notes = append(notes, "barometer unavailable")
				pressSub = nil
			} else {
				mode = elevation.ModeBarometric
			}
		}
	}

	// a new run re-latches every baseline but keeps the totals
	c.counter.Rebase()
	c.dist.Rebase()
	c.elev.Rebase()
	if err := c.elev.Select(mode); err != nil {
		return c.abortStart(err)
	}

	c.stepSub, c.posSub, c.pressSub = stepSub, posSub, pressSub
	committed = true

	c.runID = c.newRunID()
	c.state.Tracking = true
	c.state.ElevationSource = mode
	c.state.StatusMessage = startedStatus(mode, notes)
	log.Printf("tracking started run=%s elevation=%s", c.runID, mode)
	c.publish()
	return nil
}

func startedStatus(mode elevation.Mode, notes []string) string {
	msg := "Tracking started: elevation from GPS altitude"
	if mode == elevation.ModeBarometric {
		msg = "Tracking started: elevation from barometer"
	}
	if len(notes) > 0 {
		msg += " (" + strings.Join(notes, "; ") + ")"
	}
	return msg
}

func (c *Controller) abortStart(err error) error {
	if errors.Is(err, ErrLocationDenied) {
		c.state.StatusMessage = "Location permission denied"
	} else {
		c.state.StatusMessage = "Could not start tracking: " + err.Error()
	}
	log.Printf("tracking start refused: %v", err)
	c.publish()
	return err
}

func (c *Controller) stop() {
	if !c.state.Tracking && c.stepSub == nil && c.posSub == nil && c.pressSub == nil {
		return
	}
	c.release()
	c.state.Tracking = false
	c.state.StatusMessage = "Tracking stopped"
	log.Printf("tracking stopped run=%s", c.runID)
	c.publish()
}

func (c *Controller) release() {
	c.stepSub.Cancel()
	c.posSub.Cancel()
	c.pressSub.Cancel()
	c.stepSub, c.posSub, c.pressSub = nil, nil, nil
	c.state.Tracking = false
}

func (c *Controller) reset() {
	c.release()
	c.counter.Reset()
	c.dist.Reset()
	c.elev.Reset()
	c.state = State{}
	c.runID = ""
	c.publish()
}

func (c *Controller) onStep(ev sensors.StepEvent) {
	c.stats.StepEvents++
	// a counter that runs backwards never lowers the published count
	if n := c.counter.Observe(ev.CumulativeSteps); n > c.state.StepCount {
		c.state.StepCount = n
	}
	c.publish()
}

func (c *Controller) onPosition(ev sensors.PositionEvent) {
	c.stats.PositionEvents++
	if !geo.ValidCoordinate(ev.Lat, ev.Lng) {
		c.reject(fmt.Sprintf("Ignored invalid position %v,%v", ev.Lat, ev.Lng))
		return
	}
	c.state.DistanceMeters = c.dist.Add(distance.Point{Lat: ev.Lat, Lng: ev.Lng})
	if c.elev.Mode() == elevation.ModeGPS {
		gain, err := c.elev.OnGPSAltitude(ev.Altitude)
		if err != nil {
			c.stats.Rejected++
			c.state.StatusMessage = "Ignored GPS altitude: " + err.Error()
		}
		c.state.ElevationGainMeters = gain
	}
	c.publish()
}

func (c *Controller) onPressure(ev sensors.PressureEvent) {
	c.stats.PressureEvents++
	gain, err := c.elev.OnPressure(ev.PressureHpa)
	if err != nil {
		c.reject("Ignored pressure reading: " + err.Error())
		return
	}
	c.state.ElevationGainMeters = gain
	c.publish()
}

func (c *Controller) reject(status string) {
	c.stats.Rejected++
	c.state.StatusMessage = status
	c.publish()
}

func (c *Controller) streamError(name string, err error) {
	c.stats.StreamErrors++
	log.Printf("%s stream error: %v", strings.ToLower(name), err)
	c.state.StatusMessage = name + " error: " + err.Error()
	c.publish()
}

func (c *Controller) streamEnded(name string) {
	log.Printf("%s stream ended", strings.ToLower(name))
	c.state.StatusMessage = name + " stream ended"
	c.publish()
}

func (c *Controller) snapshot() Snapshot {
	return Snapshot{RunID: c.runID, Seq: c.seq, State: c.state}
}

func (c *Controller) publish() {
	c.seq++
	if c.observer != nil {
		c.observer(c.snapshot())
	}
}

package tracking

import (
	"context"
	"errors"
	"fmt"

	"github.com/SkWeli/step-tracker/internal/sensors"
	"github.com/SkWeli/step-tracker/internal/session"
)

var (
	ErrInvalidSample = errors.New("invalid sensor sample")
	ErrUnknownStream = errors.New("unknown sensor stream")
)

// Controller is the part of session.Controller the HTTP layer drives.
type Controller interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Reset(ctx context.Context) error
	Snapshot(ctx context.Context) (session.Snapshot, error)
	Stats(ctx context.Context) (session.Stats, error)
}

type Service struct {
	ctrl  Controller
	feeds Feeds
}

func NewService(ctrl Controller, feeds Feeds) *Service {
	return &Service{ctrl: ctrl, feeds: feeds}
}

func (s *Service) Start(ctx context.Context) (session.Snapshot, error) {
	if err := s.ctrl.Start(ctx); err != nil {
		return session.Snapshot{}, err
	}
	return s.ctrl.Snapshot(ctx)
}

func (s *Service) Stop(ctx context.Context) (session.Snapshot, error) {
	if err := s.ctrl.Stop(ctx); err != nil {
		return session.Snapshot{}, err
	}
	return s.ctrl.Snapshot(ctx)
}

func (s *Service) Reset(ctx context.Context) (session.Snapshot, error) {
	if err := s.ctrl.Reset(ctx); err != nil {
		return session.Snapshot{}, err
	}
	return s.ctrl.Snapshot(ctx)
}

func (s *Service) Snapshot(ctx context.Context) (session.Snapshot, error) {
	return s.ctrl.Snapshot(ctx)
}

func (s *Service) Stats(ctx context.Context) (session.Stats, error) {
	return s.ctrl.Stats(ctx)
}

func (s *Service) IngestSteps(ev sensors.StepEvent) (IngestResult, error) {
	if ev.CumulativeSteps < 0 {
		return IngestResult{}, fmt.Errorf("%w: negative step count", ErrInvalidSample)
	}
	return IngestResult{Delivered: s.feeds.Steps.Push(ev)}, nil
}

// IngestPosition forwards a fix. Range checks happen in the session so the
// rejection shows up in its status.
func (s *Service) IngestPosition(ev sensors.PositionEvent) (IngestResult, error) {
	return IngestResult{Delivered: s.feeds.Positions.Push(ev)}, nil
}

func (s *Service) IngestPressure(ev sensors.PressureEvent) (IngestResult, error) {
	return IngestResult{Delivered: s.feeds.Pressure.Push(ev)}, nil
}

// ReportError relays a transient error from a device-side stream.
func (s *Service) ReportError(kind, message string) error {
	err := errors.New(message)
	switch kind {
	case "steps":
		s.feeds.Steps.Fail(err)
	case "position":
		s.feeds.Positions.Fail(err)
	case "pressure":
		s.feeds.Pressure.Fail(err)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStream, kind)
	}
	return nil
}

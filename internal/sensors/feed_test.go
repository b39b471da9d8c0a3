package sensors

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestFeedPushDelivers(t *testing.T) {
	f := NewFeed[StepEvent](4)
	sub := f.Subscribe()
	defer sub.Cancel()

	if n := f.Push(StepEvent{CumulativeSteps: 10}); n != 1 {
		t.Fatalf("expected one delivery, got %d", n)
	}
	select {
	case ev := <-sub.C:
		if ev.CumulativeSteps != 10 {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for event")
	}
}

func TestFeedCancelStopsDelivery(t *testing.T) {
	f := NewFeed[StepEvent](4)
	sub := f.Subscribe()
	sub.Cancel()
	sub.Cancel()

	if f.Subscribers() != 0 {
		t.Fatalf("expected no subscribers")
	}
	if n := f.Push(StepEvent{CumulativeSteps: 1}); n != 0 {
		t.Fatalf("expected no delivery after cancel")
	}
	if _, ok := <-sub.C; ok {
		t.Fatalf("expected closed channel")
	}
	if _, ok := <-sub.Err; ok {
		t.Fatalf("expected closed error channel")
	}
}

func TestNilSubscriptionCancel(t *testing.T) {
	var sub *Subscription[StepEvent]
	sub.Cancel()
}

func TestFeedDropsWhenFull(t *testing.T) {
	f := NewFeed[PressureEvent](1)
	sub := f.Subscribe()
	defer sub.Cancel()

	f.Push(PressureEvent{PressureHpa: 1000})
	f.Push(PressureEvent{PressureHpa: 1001})
	if f.Dropped() != 1 {
		t.Fatalf("expected one dropped value, got %d", f.Dropped())
	}
}

func TestFeedFail(t *testing.T) {
	f := NewFeed[StepEvent](1)
	sub := f.Subscribe()
	defer sub.Cancel()

	boom := errors.New("boom")
	f.Fail(boom)
	select {
	case err := <-sub.Err:
		if !errors.Is(err, boom) {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for error")
	}
	if f.Subscribers() != 1 {
		t.Fatalf("error must not end the subscription")
	}
}

func TestFeedClose(t *testing.T) {
	f := NewFeed[StepEvent](1)
	a := f.Subscribe()
	b := f.Subscribe()
	f.Close()
	if _, ok := <-a.C; ok {
		t.Fatalf("expected closed")
	}
	if _, ok := <-b.C; ok {
		t.Fatalf("expected closed")
	}
	a.Cancel()
}

func TestMinDistanceFilter(t *testing.T) {
	f := &MinDistanceFilter{MinDistanceM: 2}
	base := PositionEvent{Lat: 47.0, Lng: 8.0}
	if !f.Accept(base) {
		t.Fatalf("first fix must pass")
	}
	// ~1.1 m north
	if f.Accept(PositionEvent{Lat: 47.00001, Lng: 8.0}) {
		t.Fatalf("expected jitter rejected")
	}
	// ~3.3 m north
	if !f.Accept(PositionEvent{Lat: 47.00003, Lng: 8.0}) {
		t.Fatalf("expected movement accepted")
	}
}

func TestMinDistanceFilterIgnoresInvalidFix(t *testing.T) {
	f := &MinDistanceFilter{MinDistanceM: 2}
	if !f.Accept(PositionEvent{Lat: 47.0, Lng: 8.0}) {
		t.Fatalf("first fix must pass")
	}
	if !f.Accept(PositionEvent{Lat: math.NaN(), Lng: 8.0}) {
		t.Fatalf("invalid fix must reach the consumer")
	}
	if !f.Accept(PositionEvent{Lat: 120, Lng: 8.0}) {
		t.Fatalf("out-of-range fix must reach the consumer")
	}
	// still measured against 47,8
	if f.Accept(PositionEvent{Lat: 47.00001, Lng: 8.0}) {
		t.Fatalf("expected jitter rejected after invalid fixes")
	}
	if !f.Accept(PositionEvent{Lat: 47.00003, Lng: 8.0}) {
		t.Fatalf("expected movement accepted after invalid fixes")
	}
}

func TestPositionFeedFiltersPerSubscription(t *testing.T) {
	f := NewPositionFeed(2, AccuracyHigh)
	a, err := f.SubscribePositions(context.Background())
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer a.Cancel()

	f.Push(PositionEvent{Lat: 10, Lng: 10})
	f.Push(PositionEvent{Lat: 10, Lng: 10})

	b, _ := f.SubscribePositions(context.Background())
	defer b.Cancel()
	if n := f.Push(PositionEvent{Lat: 10, Lng: 10}); n != 1 {
		t.Fatalf("expected only the fresh subscriber to receive, got %d", n)
	}
	if len(a.C) != 1 || len(b.C) != 1 {
		t.Fatalf("unexpected buffered counts: %d %d", len(a.C), len(b.C))
	}
	if f.MinDistanceM() != 2 || f.Accuracy() != AccuracyHigh {
		t.Fatalf("unexpected construction parameters")
	}
}

func TestStepFeedUnavailable(t *testing.T) {
	f := NewStepFeed(false)
	if _, err := f.SubscribeSteps(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	f.SetAvailable(true)
	sub, err := f.SubscribeSteps(context.Background())
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	sub.Cancel()
}

func TestPressureFeedProbe(t *testing.T) {
	f := NewPressureFeed(true)
	ok, err := f.Available(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected available")
	}
	f.SetAvailable(false)
	if ok, _ := f.Available(context.Background()); ok {
		t.Fatalf("expected unavailable")
	}
	if _, err := f.SubscribePressure(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Available(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestParseAccuracy(t *testing.T) {
	if ParseAccuracy("balanced") != AccuracyBalanced || ParseAccuracy("low") != AccuracyLow {
		t.Fatalf("unexpected parse")
	}
	if ParseAccuracy("bogus") != AccuracyHigh {
		t.Fatalf("expected default high")
	}
}

package sensors

import (
	"sync"
	"sync/atomic"
)

const defaultBuffer = 64

// Feed fans pushed values out to every live subscription. Sends never
// block: a subscriber with a full buffer misses the value.
type Feed[T any] struct {
	mu        sync.Mutex
	subs      map[*feedSub[T]]struct{}
	buffer    int
	newFilter func() func(T) bool

	dropped atomic.Int64
}

type feedSub[T any] struct {
	c      chan T
	errs   chan error
	accept func(T) bool
}

// NewFeed returns a feed whose subscriptions buffer up to buffer values.
func NewFeed[T any](buffer int) *Feed[T] {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Feed[T]{
		subs:   map[*feedSub[T]]struct{}{},
		buffer: buffer,
	}
}

// SetFilter installs a factory for per-subscription filters. Each new
// subscription gets its own filter state; existing ones are unaffected.
func (f *Feed[T]) SetFilter(newFilter func() func(T) bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.newFilter = newFilter
}

// Subscribe attaches a new subscriber.
func (f *Feed[T]) Subscribe() *Subscription[T] {
	sub := &feedSub[T]{
		c:    make(chan T, f.buffer),
		errs: make(chan error, 4),
	}

	f.mu.Lock()
	if f.newFilter != nil {
		sub.accept = f.newFilter()
	}
	f.subs[sub] = struct{}{}
	f.mu.Unlock()

	return NewSubscription(sub.c, sub.errs, func() { f.remove(sub) })
}

func (f *Feed[T]) remove(sub *feedSub[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[sub]; !ok {
		return
	}
	delete(f.subs, sub)
	close(sub.c)
	close(sub.errs)
}

// Push delivers v and returns how many subscribers received it.
func (f *Feed[T]) Push(v T) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	delivered := 0
	for sub := range f.subs {
		if sub.accept != nil && !sub.accept(v) {
			continue
		}
		select {
		case sub.c <- v:
			delivered++
		default:
			f.dropped.Add(1)
		}
	}
	return delivered
}

// Fail reports a transient error to every subscriber without ending the
// stream.
func (f *Feed[T]) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subs {
		select {
		case sub.errs <- err:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (f *Feed[T]) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Dropped counts values lost to full subscriber buffers.
func (f *Feed[T]) Dropped() int64 {
	return f.dropped.Load()
}

// Close cancels every subscription.
func (f *Feed[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subs {
		delete(f.subs, sub)
		close(sub.c)
		close(sub.errs)
	}
}

package sensors

import "sync"

// Subscription is a live attachment to a sensor stream. Values arrive on C,
// transient stream errors on Err. Both channels are closed once the
// subscription is cancelled or the source ends.
type Subscription[T any] struct {
	C   <-chan T
	Err <-chan error

	once   sync.Once
	cancel func()
}

// NewSubscription wraps channels owned by a source. cancel runs at most once.
func NewSubscription[T any](c <-chan T, errs <-chan error, cancel func()) *Subscription[T] {
	return &Subscription[T]{C: c, Err: errs, cancel: cancel}
}

// Cancel releases the subscription. Safe to call more than once and on nil.
func (s *Subscription[T]) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

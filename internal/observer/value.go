// Package observer provides Value, an observable value with synchronous,
// ordered notification.
package observer

import "sync"

// Value holds the latest published T and notifies subscribers of every change.
//
// Rounds never overlap. Publish called from inside a callback, or from
// another goroutine while a round is running, queues the value; the running
// round delivers it once the current subscribers have seen the previous one.
// Callbacks run on the flushing goroutine and must not block on it.
type Value[T any] struct {
	mu         sync.Mutex
	current    T
	subs       []*subscription[T]
	queue      []T
	delivering bool
}

type subscription[T any] struct {
	fn     func(T)
	active bool
}

// New returns a Value holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{current: initial}
}

// Get returns the value of the latest round to start. Inside a callback that
// is the value being delivered; values still queued are not visible yet.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Subscribe registers fn for future rounds. It does not replay the current
// value. The returned func unsubscribes; calling it again is a no-op.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s := &subscription[T]{fn: fn, active: true}

	v.mu.Lock()
	v.subs = append(v.subs, s)
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if !s.active {
			return
		}
		s.active = false
		for i, cur := range v.subs {
			if cur == s {
				v.subs = append(v.subs[:i:i], v.subs[i+1:]...)
				break
			}
		}
	}
}

// Publish replaces the value and notifies subscribers in subscription order.
// It is Enqueue followed by Flush.
func (v *Value[T]) Publish(val T) {
	v.Enqueue(val)
	v.Flush()
}

// Enqueue appends val to the delivery queue without running any callback.
// Owners that commit under their own lock enqueue while holding it, which
// fixes the delivery order, and call Flush once the lock is released.
func (v *Value[T]) Enqueue(val T) {
	v.mu.Lock()
	v.queue = append(v.queue, val)
	v.mu.Unlock()
}

// Flush delivers queued values, one round each. If a round is already
// running, on this goroutine or another, Flush returns at once and that
// round's publisher delivers the queue.
func (v *Value[T]) Flush() {
	v.mu.Lock()
	if v.delivering || len(v.queue) == 0 {
		v.mu.Unlock()
		return
	}
	v.delivering = true
	v.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			v.mu.Lock()
			v.delivering = false
			v.queue = nil
			v.mu.Unlock()
			panic(p)
		}
	}()

	for {
		v.mu.Lock()
		if len(v.queue) == 0 {
			v.delivering = false
			v.mu.Unlock()
			return
		}
		next := v.queue[0]
		v.queue = v.queue[1:]
		v.current = next
		round := append([]*subscription[T](nil), v.subs...)
		v.mu.Unlock()

		for _, s := range round {
			if v.isActive(s) {
				s.fn(next)
			}
		}
	}
}

// Len reports the number of subscribers.
func (v *Value[T]) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

func (v *Value[T]) isActive(s *subscription[T]) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return s.active
}

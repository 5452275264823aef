// Package observable provides a latest-value holder that fans updates out to
// subscribers over channels.
//
// Subscribers that fall behind only observe the newest value: each subscriber
// channel has a single slot that is overwritten on publish.
package observable

import "sync"

type Value[T any] struct {
	mu   sync.Mutex
	v    T
	set  bool
	subs map[int]chan T
	next int
}

// New returns a Value that already holds v.
func New[T any](v T) *Value[T] {
	return &Value[T]{v: v, set: true}
}

// Get returns the current value and whether one was ever published.
func (o *Value[T]) Get() (T, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.v, o.set
}

func (o *Value[T]) Set(v T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.publishLocked(v)
}

// Update replaces the value with fn(current) atomically and returns the new
// value. fn must not call back into o.
func (o *Value[T]) Update(fn func(cur T) T) T {
	o.mu.Lock()
	defer o.mu.Unlock()
	v := fn(o.v)
	o.publishLocked(v)
	return v
}

// Subscribe returns a channel carrying every subsequent value, primed with the
// current one if set. The returned func unsubscribes and closes the channel.
func (o *Value[T]) Subscribe() (<-chan T, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.subs == nil {
		o.subs = make(map[int]chan T)
	}
	id := o.next
	o.next++

	ch := make(chan T, 1)
	if o.set {
		ch <- o.v
	}
	o.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.subs, id)
			close(ch)
		})
	}
}

func (o *Value[T]) publishLocked(v T) {
	o.v = v
	o.set = true
	for _, ch := range o.subs {
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

// Reader is the read-only side of a Value.
type Reader[T any] interface {
	Get() (T, bool)
	Subscribe() (<-chan T, func())
}

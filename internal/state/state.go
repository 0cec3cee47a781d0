// Package state implements the observable-store primitive shared by every
// store in the sync layer: a guarded snapshot plus a subscriber registry.
//
// Each store owns one Notifier. Action methods mutate store state, persist
// whatever slice of it is durable, then call Notify; subscribers receive no
// payload and re-read the store's current snapshot themselves. One store
// instance per process, injected explicitly — never a package-level global.
package state

import "sync"

// Notifier fans a change signal out to registered subscribers.
//
// Callbacks run synchronously, in subscription order, on the goroutine that
// calls Notify. A callback must not call back into the store action that
// triggered it.
type Notifier struct {
	name string

	mu   sync.Mutex
	next int
	subs map[int]func()
	keys []int // subscription order
}

// NewNotifier creates a Notifier. The name labels metrics for the owning store.
func NewNotifier(name string) *Notifier {
	return &Notifier{
		name: name,
		subs: make(map[int]func()),
	}
}

// Subscribe registers fn and returns an unsubscribe function.
// Unsubscribing twice is harmless.
func (n *Notifier) Subscribe(fn func()) (unsubscribe func()) {
	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = fn
	n.keys = append(n.keys, id)
	n.mu.Unlock()

	subscribersGauge.WithLabelValues(n.name).Inc()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			for i, k := range n.keys {
				if k == id {
					n.keys = append(n.keys[:i], n.keys[i+1:]...)
					break
				}
			}
			n.mu.Unlock()
			subscribersGauge.WithLabelValues(n.name).Dec()
		})
	}
}

// Notify invokes every registered callback. The subscriber set is snapshotted
// under the lock so callbacks may subscribe or unsubscribe without deadlock;
// such changes take effect on the next Notify.
func (n *Notifier) Notify() {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.keys))
	for _, k := range n.keys {
		fns = append(fns, n.subs[k])
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	notificationsTotal.WithLabelValues(n.name).Add(float64(len(fns)))
}

// Len returns the current subscriber count.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// Value is a mutex-guarded snapshot holder for stores whose state is a single
// value. Load returns a shallow copy; callers must treat slices and maps in
// the snapshot as read-only.
type Value[T any] struct {
	mu sync.RWMutex
	v  T
}

// NewValue creates a Value initialized to v.
func NewValue[T any](v T) *Value[T] {
	return &Value[T]{v: v}
}

// Load returns the current snapshot.
func (v *Value[T]) Load() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.v
}

// Store replaces the snapshot.
func (v *Value[T]) Store(nv T) {
	v.mu.Lock()
	v.v = nv
	v.mu.Unlock()
}

// Update applies fn to the current snapshot and stores the result.
func (v *Value[T]) Update(fn func(T) T) {
	v.mu.Lock()
	v.v = fn(v.v)
	v.mu.Unlock()
}

package container

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned when a key doesn't exist in a KeyQueue.
	ErrNotFound = errors.New("key not found")

	// ErrEmpty is returned by non-blocking pops on an empty KeyQueue.
	ErrEmpty = errors.New("queue is empty")

	// ErrFull is returned by non-blocking puts on a full KeyQueue.
	ErrFull = errors.New("queue is full")
)

// KeyQueue is a FIFO queue whose items are also accessible by their keys.
// The value put first will be popped first, but any item can be read,
// updated or removed by its key regardless of its position.
//
// Putting a key that already exists updates the value in place.
// The item keeps its position in the queue.
//
// KeyQueue is safe for concurrent use.
type KeyQueue[K comparable, V any] struct {
	mu sync.Mutex

	// maxsize is maximum number of items the queue can hold.
	// Zero or negative value means the queue is unbounded.
	maxsize int

	item  map[K]*keyItem[K, V]
	first *keyItem[K, V]
	last  *keyItem[K, V]

	// changed is closed and replaced whenever items are added or removed,
	// so blocked Put and Get calls can check the queue again.
	changed chan struct{}
}

// keyItem wraps a value with its key.
// It directs both of its neighbors, so an item can be removed
// from the middle of the queue.
type keyItem[K comparable, V any] struct {
	k    K
	v    V
	prev *keyItem[K, V]
	next *keyItem[K, V]
}

// Entry is a key and value pair of a KeyQueue.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// NewKeyQueue creates a new KeyQueue.
// When maxsize is greater than zero, Put blocks while the queue holds maxsize items.
func NewKeyQueue[K comparable, V any](maxsize int) *KeyQueue[K, V] {
	return &KeyQueue[K, V]{
		maxsize: maxsize,
		item:    make(map[K]*keyItem[K, V]),
		changed: make(chan struct{}),
	}
}

// notify wakes up every blocked Put and Get.
// The caller should hold the lock.
func (q *KeyQueue[K, V]) notify() {
	close(q.changed)
	q.changed = make(chan struct{})
}

func (q *KeyQueue[K, V]) full() bool {
	return q.maxsize > 0 && len(q.item) >= q.maxsize
}

// Put puts a value with its key to the back of the queue.
// If the key already exists, it updates the value without moving it.
// It blocks while a bounded queue is full, until the ctx is done.
//
// Put must not be called while holding a Group of the same queue.
func (q *KeyQueue[K, V]) Put(ctx context.Context, k K, v V) error {
	for {
		q.mu.Lock()
		_, exists := q.item[k]
		if exists || !q.full() {
			q.put(k, v)
			q.mu.Unlock()
			return nil
		}
		changed := q.changed
		q.mu.Unlock()
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Get pops the oldest key and value from the queue.
// It blocks while the queue is empty, until the ctx is done.
//
// Get must not be called while holding a Group of the same queue.
func (q *KeyQueue[K, V]) Get(ctx context.Context) (K, V, error) {
	for {
		q.mu.Lock()
		if q.first != nil {
			k, v := q.pop()
			q.mu.Unlock()
			return k, v, nil
		}
		changed := q.changed
		q.mu.Unlock()
		select {
		case <-changed:
		case <-ctx.Done():
			var k K
			var v V
			return k, v, ctx.Err()
		}
	}
}

// TryPut is Put, but it returns ErrFull instead of blocking.
func (q *KeyQueue[K, V]) TryPut(k K, v V) error {
	g := q.Lock()
	defer g.Unlock()
	return g.TryPut(k, v)
}

// TryGet is Get, but it returns ErrEmpty instead of blocking.
func (q *KeyQueue[K, V]) TryGet() (K, V, error) {
	g := q.Lock()
	defer g.Unlock()
	return g.TryGet()
}

// Peek returns the oldest key and value without removing them.
// It returns false when the queue is empty.
func (q *KeyQueue[K, V]) Peek() (K, V, bool) {
	g := q.Lock()
	defer g.Unlock()
	return g.Peek()
}

// Item returns the value of the key.
func (q *KeyQueue[K, V]) Item(k K) (V, error) {
	g := q.Lock()
	defer g.Unlock()
	return g.Item(k)
}

// SetItem updates the value of an existing key.
func (q *KeyQueue[K, V]) SetItem(k K, v V) error {
	g := q.Lock()
	defer g.Unlock()
	return g.SetItem(k, v)
}

// RemoveItem removes the key wherever it is in the queue.
func (q *KeyQueue[K, V]) RemoveItem(k K) error {
	g := q.Lock()
	defer g.Unlock()
	return g.RemoveItem(k)
}

// Has reports whether the key exists in the queue.
func (q *KeyQueue[K, V]) Has(k K) bool {
	g := q.Lock()
	defer g.Unlock()
	return g.Has(k)
}

// Len returns the number of items in the queue.
func (q *KeyQueue[K, V]) Len() int {
	g := q.Lock()
	defer g.Unlock()
	return g.Len()
}

// Keys returns a snapshot of keys in the queue order.
func (q *KeyQueue[K, V]) Keys() []K {
	g := q.Lock()
	defer g.Unlock()
	return g.Keys()
}

// Values returns a snapshot of values in the queue order.
func (q *KeyQueue[K, V]) Values() []V {
	g := q.Lock()
	defer g.Unlock()
	return g.Values()
}

// Entries returns a snapshot of key and value pairs in the queue order.
func (q *KeyQueue[K, V]) Entries() []Entry[K, V] {
	g := q.Lock()
	defer g.Unlock()
	return g.Entries()
}

// Lock locks the queue and returns a Group for running several operations
// as one. Other goroutines cannot touch the queue until the Group is unlocked.
//
// The lock is not reentrant. While holding the Group, use only the methods
// of the Group. Calling any method of the queue itself, like Item or Put,
// from the same goroutine deadlocks.
func (q *KeyQueue[K, V]) Lock() *Group[K, V] {
	q.mu.Lock()
	return &Group[K, V]{q: q}
}

// Locked runs fn while holding a Group of the queue.
// fn should use only g, not the queue's methods. See Lock.
func (q *KeyQueue[K, V]) Locked(fn func(g *Group[K, V])) {
	g := q.Lock()
	defer g.Unlock()
	fn(g)
}

// put should be called with the lock held.
func (q *KeyQueue[K, V]) put(k K, v V) {
	if it, ok := q.item[k]; ok {
		it.v = v
		return
	}
	it := &keyItem[K, V]{k: k, v: v}
	q.item[k] = it
	if q.first == nil {
		q.first = it
	} else {
		q.last.next = it
		it.prev = q.last
	}
	q.last = it
	q.notify()
}

// pop should be called with the lock held, and only when the queue isn't empty.
func (q *KeyQueue[K, V]) pop() (K, V) {
	it := q.first
	q.unlink(it)
	return it.k, it.v
}

// unlink should be called with the lock held.
func (q *KeyQueue[K, V]) unlink(it *keyItem[K, V]) {
	if it.prev == nil {
		q.first = it.next
	} else {
		it.prev.next = it.next
	}
	if it.next == nil {
		q.last = it.prev
	} else {
		it.next.prev = it.prev
	}
	it.prev = nil
	it.next = nil
	delete(q.item, it.k)
	q.notify()
}

// Group is a locked KeyQueue.
// Every operation of a Group happens while the queue is locked,
// so a series of them cannot be interleaved with other goroutines.
// It has no blocking operations.
//
// A Group should not be used after Unlock.
type Group[K comparable, V any] struct {
	q *KeyQueue[K, V]
}

// Unlock releases the queue.
func (g *Group[K, V]) Unlock() {
	q := g.q
	g.q = nil
	q.mu.Unlock()
}

// TryPut puts a value with its key to the back of the queue,
// or updates the value in place when the key exists.
// It returns ErrFull if the key is new and the queue is full.
func (g *Group[K, V]) TryPut(k K, v V) error {
	_, exists := g.q.item[k]
	if !exists && g.q.full() {
		return ErrFull
	}
	g.q.put(k, v)
	return nil
}

// TryGet pops the oldest key and value.
// It returns ErrEmpty if the queue is empty.
func (g *Group[K, V]) TryGet() (K, V, error) {
	if g.q.first == nil {
		var k K
		var v V
		return k, v, ErrEmpty
	}
	k, v := g.q.pop()
	return k, v, nil
}

// Peek returns the oldest key and value without removing them.
// It returns false when the queue is empty.
func (g *Group[K, V]) Peek() (K, V, bool) {
	if g.q.first == nil {
		var k K
		var v V
		return k, v, false
	}
	return g.q.first.k, g.q.first.v, true
}

// Item returns the value of the key.
// It returns ErrNotFound if the key doesn't exist.
func (g *Group[K, V]) Item(k K) (V, error) {
	it, ok := g.q.item[k]
	if !ok {
		var v V
		return v, ErrNotFound
	}
	return it.v, nil
}

// SetItem updates the value of the key.
// It returns ErrNotFound if the key doesn't exist.
func (g *Group[K, V]) SetItem(k K, v V) error {
	it, ok := g.q.item[k]
	if !ok {
		return ErrNotFound
	}
	it.v = v
	return nil
}

// RemoveItem removes the key from the queue.
// It returns ErrNotFound if the key doesn't exist.
func (g *Group[K, V]) RemoveItem(k K) error {
	it, ok := g.q.item[k]
	if !ok {
		return ErrNotFound
	}
	g.q.unlink(it)
	return nil
}

// Has reports whether the key exists in the queue.
func (g *Group[K, V]) Has(k K) bool {
	_, ok := g.q.item[k]
	return ok
}

// Len returns the number of items in the queue.
func (g *Group[K, V]) Len() int {
	return len(g.q.item)
}

// Keys returns keys in the queue order.
func (g *Group[K, V]) Keys() []K {
	keys := make([]K, 0, len(g.q.item))
	for it := g.q.first; it != nil; it = it.next {
		keys = append(keys, it.k)
	}
	return keys
}

// Values returns values in the queue order.
func (g *Group[K, V]) Values() []V {
	vals := make([]V, 0, len(g.q.item))
	for it := g.q.first; it != nil; it = it.next {
		vals = append(vals, it.v)
	}
	return vals
}

// Entries returns key and value pairs in the queue order.
func (g *Group[K, V]) Entries() []Entry[K, V] {
	ents := make([]Entry[K, V], 0, len(g.q.item))
	for it := g.q.first; it != nil; it = it.next {
		ents = append(ents, Entry[K, V]{Key: it.k, Value: it.v})
	}
	return ents
}

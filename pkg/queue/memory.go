// queue package

package queue

import "sync"

// InMemoryQueue implements an unbounded in-memory queue.
type InMemoryQueue[T any] struct {
	items []T
	lock  sync.RWMutex
}

var _ Queue[int] = (*InMemoryQueue[int])(nil)

// NewInMemoryQueue creates a new queue.
func NewInMemoryQueue[T any]() *InMemoryQueue[T] {
	return &InMemoryQueue[T]{}
}

// Enqueue adds an item to the end of the queue.
func (q *InMemoryQueue[T]) Enqueue(item T) {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.items = append(q.items, item)
}

// EnqueueAndRead adds an item to the end of the queue and returns the pending items.
func (q *InMemoryQueue[T]) EnqueueAndRead(item T) []T {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.items = append(q.items, item)
	return q.copyItems()
}

// Size returns the current size of the queue.
func (q *InMemoryQueue[T]) Size() int {
	q.lock.RLock()
	defer q.lock.RUnlock()
	return len(q.items)
}

// ReadAllMessages returns a copy of the pending items in order.
func (q *InMemoryQueue[T]) ReadAllMessages() []T {
	q.lock.RLock()
	defer q.lock.RUnlock()
	return q.copyItems()
}

// Drain hands a copy of the pending items to fn while holding the lock, then clears the queue.
func (q *InMemoryQueue[T]) Drain(fn func(items []T)) {
	q.lock.Lock()
	defer q.lock.Unlock()

	fn(q.copyItems())
	q.items = nil
}

// ClearQueue clears all messages from the queue.
func (q *InMemoryQueue[T]) ClearQueue() {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.items = nil
}

func (q *InMemoryQueue[T]) copyItems() []T {
	items := make([]T, len(q.items))
	copy(items, q.items)
	return items
}

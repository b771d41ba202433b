package queue

// Queue represents a basic FIFO queue that can be drained in one step.
// Implementations must be thread-safe.
type Queue[T any] interface {
	Enqueue(item T)
	// EnqueueAndRead adds an item and returns a copy of every pending item, atomically.
	EnqueueAndRead(item T) []T
	Size() int
	// ReadAllMessages returns a copy of every pending item without removing them.
	ReadAllMessages() []T
	// Drain calls fn with a copy of every pending item and empties the queue.
	// No item can be enqueued between the copy and the clear.
	Drain(fn func(items []T))
	ClearQueue()
}

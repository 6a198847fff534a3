// Package notifier queues transient, user-facing notification messages and
// delivers them to a listener callback. It is the client's counterpart of the
// original web UI's dismissible snack-bar.
package notifier

import "sync"

// Notifier buffers notification messages until a listener consumes them.
type Notifier struct {
	queue     chan string
	closeOnce sync.Once
}

// New creates a Notifier with the given queue capacity.
// Notify drops messages once the queue is full and no listener is draining it.
func New(capacity int) *Notifier {
	return &Notifier{
		queue: make(chan string, capacity),
	}
}

// Notify enqueues a message without blocking the caller.
func (n *Notifier) Notify(message string) {
	select {
	case n.queue <- message:
	default:
	}
}

// Listen consumes queued messages on a background goroutine, invoking
// callback for each one until Close is called.
func (n *Notifier) Listen(callback func(message string)) {
	go func() {
		for message := range n.queue {
			callback(message)
		}
	}()
}

// Close stops delivery. Pending messages already queued are still drained by
// the listener.
func (n *Notifier) Close() {
	n.closeOnce.Do(func() {
		close(n.queue)
	})
}

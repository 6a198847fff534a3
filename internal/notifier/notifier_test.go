package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotifyDeliversToListener(t *testing.T) {
	n := New(4)
	defer n.Close()

	var mu sync.Mutex
	var received []string
	done := make(chan struct{})

	n.Listen(func(message string) {
		mu.Lock()
		received = append(received, message)
		if len(received) == 2 {
			close(done)
		}
		mu.Unlock()
	})

	n.Notify("first")
	n.Notify("second")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not receive messages in time")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "second"}, received)
}

func TestNotifyDropsWhenQueueFull(t *testing.T) {
	n := New(1)
	defer n.Close()

	// No listener attached: the second message has nowhere to go.
	n.Notify("kept")
	n.Notify("dropped")

	var mu sync.Mutex
	var received []string
	done := make(chan struct{})

	n.Listen(func(message string) {
		mu.Lock()
		received = append(received, message)
		mu.Unlock()
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not receive the queued message in time")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"kept"}, received)
}

func TestCloseIsIdempotent(t *testing.T) {
	n := New(1)
	n.Close()
	n.Close()
}

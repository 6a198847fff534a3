package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishDeliversInRegistrationOrder(t *testing.T) {
	subject := New[int]()

	var order []string

	subject.Subscribe(func(v int) {
		order = append(order, "first")
	})
	subject.Subscribe(func(v int) {
		order = append(order, "second")
	})
	subject.Subscribe(func(v int) {
		order = append(order, "third")
	})

	subject.Publish(1)

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestNoReplayBeforeFirstPublish(t *testing.T) {
	subject := New[string]()

	var received []string
	subject.Subscribe(func(v string) {
		received = append(received, v)
	})

	assert.Empty(t, received)

	subject.Publish("snapshot")
	assert.Equal(t, []string{"snapshot"}, received)
}

func TestLateSubscriberReceivesLastValueOnly(t *testing.T) {
	subject := New[int]()

	subject.Publish(1)
	subject.Publish(2)

	var received []int
	subject.Subscribe(func(v int) {
		received = append(received, v)
	})

	assert.Equal(t, []int{2}, received)
}

func TestNewWithInitialReplaysImmediately(t *testing.T) {
	subject := NewWithInitial(false)

	var received []bool
	subject.Subscribe(func(v bool) {
		received = append(received, v)
	})

	assert.Equal(t, []bool{false}, received)

	subject.Publish(true)
	assert.Equal(t, []bool{false, true}, received)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	subject := New[int]()

	var received []int
	unsubscribe := subject.Subscribe(func(v int) {
		received = append(received, v)
	})

	subject.Publish(1)
	unsubscribe()
	subject.Publish(2)

	assert.Equal(t, []int{1}, received)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	subject := New[int]()

	unsubscribe := subject.Subscribe(func(v int) {})
	unsubscribe()
	unsubscribe()

	subject.Publish(1)
}

func TestValue(t *testing.T) {
	subject := New[int]()

	_, ok := subject.Value()
	assert.False(t, ok)

	subject.Publish(42)

	v, ok := subject.Value()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

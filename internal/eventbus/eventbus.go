// Package eventbus provides a small in-process publish/subscribe bus.
package eventbus

// DefaultBuffer is the channel capacity given to each subscriber.
const DefaultBuffer = 8

// Publisher is the write side of a bus, used by producers that should not
// manage subscriptions.
type Publisher[T any] interface {
	Publish(T)
}

// Nop discards every event.
type Nop[T any] struct{}

// Publish implements Publisher.
func (Nop[T]) Publish(T) {}

// ABOUTME: Notification bus for mutation outcomes.
// ABOUTME: Publishes success and error notifications to subscribers in subscription order.
package notify

import (
	"sync"
	"time"
)

// Kind distinguishes success from error notifications.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a user-visible mutation outcome.
type Notification struct {
	Kind        Kind
	Title       string // short heading, e.g. "Transaction sent"
	Message     string // human-readable text; for errors, the full error line
	Signature   string // set on success
	ExplorerURL string // set on success
	Cluster     string
	At          time.Time
}

// Subscriber receives notifications.
type Subscriber interface {
	Notify(n Notification)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(n Notification)

// Notify implements Subscriber.
func (f SubscriberFunc) Notify(n Notification) {
	f(n)
}

// Publisher is the side of the bus the accessors depend on.
type Publisher interface {
	Publish(n Notification)
}

// Bus fans notifications out to subscribers.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

type subscription struct {
	id  int
	sub Subscriber
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe adds sub and returns a function that removes it.
func (b *Bus) Subscribe(sub Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, sub: sub})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers n synchronously to every current subscriber. A zero At is
// stamped with the current time.
func (b *Bus) Publish(n Notification) {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	b.mu.RLock()
	subs := make([]Subscriber, len(b.subs))
	for i, s := range b.subs {
		subs[i] = s.sub
	}
	b.mu.RUnlock()

	for _, s := range subs {
		s.Notify(n)
	}
}

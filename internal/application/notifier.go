package application

import "sync"

// AuthEventKind enumerates credential-state transitions.
type AuthEventKind string

const (
	AuthSignedIn       AuthEventKind = "signed_in"
	AuthSignedOut      AuthEventKind = "signed_out"
	AuthTokenRefreshed AuthEventKind = "token_refreshed"
)

// AuthEvent is one credential-state transition, tagged with the session token
// it refers to. Subscribers must be idempotent: delivery is at-least-once and
// ordering across subscribers is not guaranteed.
type AuthEvent struct {
	Kind  AuthEventKind
	Token string
}

// Notifier is a small fan-out channel for auth events. It replaces
// framework-managed listeners with an explicit subscribe/unsubscribe pair so
// tests can construct isolated instances.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan AuthEvent
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan AuthEvent)}
}

// Subscribe returns a buffered event channel and a cancel function. The
// channel is closed on cancel.
func (n *Notifier) Subscribe() (<-chan AuthEvent, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	ch := make(chan AuthEvent, 16)
	n.subs[id] = ch
	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to all current subscribers. Slow subscribers
// with a full buffer are skipped rather than blocking the publisher.
func (n *Notifier) Publish(ev AuthEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

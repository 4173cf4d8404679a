package signup

import "sync"

// StateNotifier is the auth-state stream shared by provider adapters. It
// keeps the last notified value and a registry of handlers: every handler
// receives the current value once at registration time and each subsequent
// change, in registration order.
//
// Providers are expected to serialize calls to Notify; the notifier keeps
// handler bookkeeping safe for concurrent use but does not order competing
// writers.
type StateNotifier struct {
	mu       sync.Mutex
	nextID   int
	handlers []stateHandler
	current  *User
}

type stateHandler struct {
	id int
	fn func(*User)
}

func NewStateNotifier() *StateNotifier {
	return &StateNotifier{}
}

// Register adds handler to the stream and synchronously delivers the current
// value. The returned function removes the registration; calling it more
// than once is a no-op.
func (n *StateNotifier) Register(handler func(*User)) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.handlers = append(n.handlers, stateHandler{id: id, fn: handler})
	current := n.current
	n.mu.Unlock()

	handler(current)

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, h := range n.handlers {
			if h.id == id {
				n.handlers = append(n.handlers[:i], n.handlers[i+1:]...)
				return
			}
		}
	}
}

// Notify records user as the current auth state and fans it out to every
// registered handler.
func (n *StateNotifier) Notify(user *User) {
	n.mu.Lock()
	n.current = user
	handlers := make([]stateHandler, len(n.handlers))
	copy(handlers, n.handlers)
	n.mu.Unlock()

	for _, h := range handlers {
		h.fn(user)
	}
}

// Current returns the last notified value without registering a handler.
func (n *StateNotifier) Current() *User {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

package signup

import (
	"context"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// StoreState tracks the session store lifecycle
type StoreState = string

const (
	// StoreUninitialized is the state before the provider subscription exists
	StoreUninitialized StoreState = "uninitialized"
	// StoreSubscribed is the normal operating state
	StoreSubscribed StoreState = "subscribed"
	// StoreTornDown is the terminal state, no transition leads back
	StoreTornDown StoreState = "torn-down"
)

// SessionStore bridges the identity provider's auth-state stream into a
// single shared current-user value and exposes the signup action.
//
// The provider subscription callback is the only writer of the shared value.
// The store mirrors every provider notification, nil included, so a sign-out
// reported by the provider clears the shared user.
type SessionStore struct {
	provider IdentityProvider
	logger   Logger

	mu          sync.RWMutex
	state       StoreState
	current     *User
	subscribers []stateHandler
	nextID      int
	unsubscribe func()
}

type SessionStoreOption func(*SessionStore) *SessionStore

// WithStoreLogger overrides the logger used by the session store.
func WithStoreLogger(l Logger) SessionStoreOption {
	return func(s *SessionStore) *SessionStore {
		if l != nil {
			s.logger = l
		}
		return s
	}
}

// NewSessionStore subscribes to the provider's auth-state stream and returns
// a store in the subscribed state. The initial notification is delivered
// during construction, so CurrentUser reflects the provider's value as soon
// as the constructor returns.
func NewSessionStore(provider IdentityProvider, opts ...SessionStoreOption) (*SessionStore, error) {
	if provider == nil {
		return nil, goerrors.New("identity provider is required", goerrors.CategoryBadInput)
	}

	s := &SessionStore{
		provider: provider,
		logger:   defLogger{},
		state:    StoreUninitialized,
	}

	for _, opt := range opts {
		s = opt(s)
	}

	s.unsubscribe = provider.OnAuthStateChanged(s.onAuthState)

	s.mu.Lock()
	s.state = StoreSubscribed
	s.mu.Unlock()

	return s, nil
}

// onAuthState is the provider subscription callback, the single writer of
// the shared current-user slot.
func (s *SessionStore) onAuthState(user *User) {
	s.mu.Lock()
	if s.state == StoreTornDown {
		s.mu.Unlock()
		return
	}
	s.current = user
	subscribers := make([]stateHandler, len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, sub := range subscribers {
		sub.fn(user)
	}
}

// CurrentUser returns the most recently notified user, or nil while the
// provider has not confirmed a session. No side effects.
func (s *SessionStore) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// State reports where the store is in its lifecycle.
func (s *SessionStore) State() StoreState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers a consumer callback for current-user changes. The
// callback fires immediately with the current value, matching the provider
// stream contract, then on every mirrored notification. The returned
// function removes the registration. On a torn-down store nothing is
// registered and the returned function is a no-op.
func (s *SessionStore) Subscribe(fn func(*User)) func() {
	s.mu.Lock()
	if s.state == StoreTornDown {
		s.mu.Unlock()
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.subscribers = append(s.subscribers, stateHandler{id: id, fn: fn})
	current := s.current
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Signup delegates account creation to the identity provider and returns the
// settled result. Failure propagation is the caller's responsibility; the
// shared current-user value updates through the auth-state stream, not
// through this return value.
func (s *SessionStore) Signup(ctx context.Context, input AccountInput) (*User, error) {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()

	if state == StoreTornDown {
		return nil, ErrStoreTornDown
	}

	user, err := s.provider.CreateAccount(ctx, input)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "account creation failed")
	}

	return user, nil
}

// Close tears the store down: it releases the provider subscription,
// guaranteeing no further writes to the shared value, and drops all consumer
// registrations. Idempotent.
func (s *SessionStore) Close() error {
	s.mu.Lock()
	if s.state == StoreTornDown {
		s.mu.Unlock()
		return nil
	}
	s.state = StoreTornDown
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.subscribers = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}

	s.logger.Debug("session store torn down")
	return nil
}

package signup

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// IdentityProvider is the external collaborator that owns account creation
// and session tracking. Adapters live under provider/.
type IdentityProvider interface {
	// CreateAccount creates an account for input and returns the settled
	// result. A successful creation also establishes a session, which the
	// provider reports through the auth-state stream.
	CreateAccount(ctx context.Context, input AccountInput) (*User, error)

	// OnAuthStateChanged registers handler on the provider's auth-state
	// stream. The handler fires once at registration time with the current
	// value, possibly nil, then on every state change, in order. The
	// returned function removes the registration; no notifications are
	// delivered after it returns.
	OnAuthStateChanged(handler func(*User)) (unsubscribe func())
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SIGNUP "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SIGNUP "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SIGNUP "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

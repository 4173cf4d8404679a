// Package signup implements the account signup flow for the coaching app:
// a session store synchronized with an external identity provider, the
// validation gate for the signup form, and the HTTP controller that renders
// and drives it.
//
// Session state:
//   - SessionStore owns the single shared "current user" value. It subscribes
//     to the provider's auth-state stream on construction and mirrors every
//     notification, nil included, so sign-out events clear the shared value.
//     The subscription callback is the only writer; consumers read through
//     CurrentUser or observe changes through Subscribe.
//
// Identity providers:
//   - IdentityProvider is the contract adapters implement. The provider/
//     subtree carries a Firebase-backed adapter for production and a
//     self-contained local adapter for development and tests. StateNotifier
//     is the shared auth-state stream implementation: initial delivery at
//     registration time, ordered fan-out, unsubscribe stops delivery.
//
// Signup flow:
//   - SignupController binds the form payload, runs the validation gate
//     (all fields present, passwords matching), and delegates to the store's
//     Signup action, waiting for the settled result so provider failures
//     surface on the form instead of being dropped.
package signup

package signup

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// ErrNoEmptyString is the error for required string values
var ErrNoEmptyString = errors.New("value should not be an empty string")

// ErrMismatchedHashAndPassword is the error for failed password comparisons
var ErrMismatchedHashAndPassword = errors.New("mismatched password and hash")

// ErrAccountNotFound is the error we return for non found accounts
var ErrAccountNotFound = errors.New("account not found")

// ErrStoreTornDown is returned when an action is invoked on a store that
// already released its provider subscription.
var ErrStoreTornDown = goerrors.New("session store is torn down", goerrors.CategoryConflict).
	WithTextCode("STORE_TORN_DOWN").
	WithCode(goerrors.CodeConflict)

// ErrEmailInUse is returned by providers when the address already has an account.
var ErrEmailInUse = goerrors.New("email address is already in use", goerrors.CategoryConflict).
	WithTextCode("EMAIL_IN_USE").
	WithCode(goerrors.CodeConflict)

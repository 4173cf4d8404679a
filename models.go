package signup

import (
	"strings"
	"time"
)

// User is the provider-issued account record. The identity provider mints it
// and the session store only mirrors it; nothing in this package mutates a
// User after the provider hands it over.
type User struct {
	UID           string         `json:"uid,omitempty"`
	Email         string         `json:"email,omitempty"`
	DisplayName   string         `json:"display_name,omitempty"`
	EmailVerified bool           `json:"email_verified,omitempty"`
	ProviderID    string         `json:"provider_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// AccountInput carries the fields forwarded to the identity provider when
// creating an account. The collected names travel with the call as profile
// data instead of being discarded at the form boundary.
type AccountInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// DisplayName joins the collected names into the profile display name.
func (a AccountInput) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
}

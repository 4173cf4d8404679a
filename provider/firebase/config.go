package firebase

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// Config holds the Firebase project settings for the identity provider.
type Config struct {
	// ProjectID is the Firebase project. Optional when the credentials file
	// carries it.
	ProjectID string

	// CredentialsFile is the path to the service account credentials.
	CredentialsFile string
}

// Validate will run validation rules
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.CredentialsFile, validation.Required),
	)
}

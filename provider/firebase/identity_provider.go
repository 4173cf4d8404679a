// Package firebase implements signup.IdentityProvider on top of Firebase
// Authentication through the Admin SDK.
//
// The Admin SDK exposes no push channel for auth-state, so the adapter feeds
// the notification stream from its own successful mutations: creating an
// account establishes the session and notifies subscribers with the new
// user.
package firebase

import (
	"context"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	goerrors "github.com/goliatone/go-errors"
	"google.golang.org/api/option"

	signup "github.com/aOrro/coaching-project"
)

// ProviderName is the value stamped on users minted by this provider.
const ProviderName = "firebase"

// Provider implements signup.IdentityProvider backed by Firebase.
type Provider struct {
	client   *fbauth.Client
	notifier *signup.StateNotifier
}

var _ signup.IdentityProvider = (*Provider)(nil)

// New creates a Firebase-backed identity provider.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid firebase config")
	}

	var fbcfg *firebase.Config
	if cfg.ProjectID != "" {
		fbcfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbcfg, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create firebase app")
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create firebase auth client")
	}

	return &Provider{
		client:   client,
		notifier: signup.NewStateNotifier(),
	}, nil
}

// CreateAccount implements signup.IdentityProvider.
func (p *Provider) CreateAccount(ctx context.Context, input signup.AccountInput) (*signup.User, error) {
	params := (&fbauth.UserToCreate{}).
		Email(strings.TrimSpace(input.Email)).
		Password(input.Password)

	if name := input.DisplayName(); name != "" {
		params = params.DisplayName(name)
	}

	record, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return nil, signup.ErrEmailInUse
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "firebase account creation failed")
	}

	user := mapUserRecord(record)
	p.notifier.Notify(user)

	return user, nil
}

// OnAuthStateChanged implements signup.IdentityProvider.
func (p *Provider) OnAuthStateChanged(handler func(*signup.User)) func() {
	return p.notifier.Register(handler)
}

func mapUserRecord(r *fbauth.UserRecord) *signup.User {
	if r == nil {
		return nil
	}

	user := &signup.User{
		UID:           r.UID,
		Email:         r.Email,
		DisplayName:   r.DisplayName,
		EmailVerified: r.EmailVerified,
		ProviderID:    ProviderName,
	}

	if r.UserMetadata != nil && r.UserMetadata.CreationTimestamp > 0 {
		user.CreatedAt = time.UnixMilli(r.UserMetadata.CreationTimestamp)
	}

	if r.PhotoURL != "" {
		user.AddMetadata("picture", r.PhotoURL)
	}

	if r.PhoneNumber != "" {
		user.AddMetadata("phone_number", r.PhoneNumber)
	}

	return user
}

// Package local implements a self-contained identity provider for
// development and tests. Accounts live in a SQLite database owned by the
// provider; the auth-state stream is fed by the provider's own successful
// mutations, the same contract the hosted provider exposes.
package local

import (
	"context"
	"database/sql"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	signup "github.com/aOrro/coaching-project"
)

// ProviderName is the value stamped on users minted by this provider.
const ProviderName = "local"

// Account is the provider-side account row. The provider owns this storage,
// nothing outside this package reads it.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	UID           string    `bun:"uid,pk" json:"uid"`
	Email         string    `bun:"email,notnull,unique" json:"email"`
	DisplayName   string    `bun:"display_name" json:"display_name"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Provider implements signup.IdentityProvider against the local store.
type Provider struct {
	db       *bun.DB
	dsn      string
	notifier *signup.StateNotifier
	logger   signup.Logger
}

var _ signup.IdentityProvider = (*Provider)(nil)

type Option func(*Provider) *Provider

// WithLogger sets the provider logger.
func WithLogger(l signup.Logger) Option {
	return func(p *Provider) *Provider {
		p.logger = l
		return p
	}
}

// WithDSN points the provider at a specific SQLite database. The default is
// a private in-memory database per provider instance.
func WithDSN(dsn string) Option {
	return func(p *Provider) *Provider {
		p.dsn = dsn
		return p
	}
}

// New opens the backing database and prepares the accounts table.
func New(ctx context.Context, opts ...Option) (*Provider, error) {
	p := &Provider{
		notifier: signup.NewStateNotifier(),
	}

	for _, opt := range opts {
		p = opt(p)
	}

	if p.dsn == "" {
		// unique name per instance so parallel providers do not share state
		p.dsn = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, p.dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open account store")
	}

	p.db = bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := p.db.NewCreateTable().
		Model((*Account)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to prepare account store")
	}

	return p, nil
}

// CreateAccount implements signup.IdentityProvider. The provider applies the
// hosted provider's own rules before storing: a well-formed email address
// and a password of at least six characters.
func (p *Provider) CreateAccount(ctx context.Context, input signup.AccountInput) (*signup.User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account creation",
		)
	default:
		return p.createAccount(ctx, input)
	}
}

func (p *Provider) createAccount(ctx context.Context, input signup.AccountInput) (*signup.User, error) {
	// validation runs on the normalized address, the form the account is
	// stored and looked up under
	email := strings.ToLower(strings.TrimSpace(input.Email))
	input.Email = email

	if err := validateInput(input); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid account details")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	hash, err := signup.HashPassword(input.Password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	account := &Account{
		Email:        email,
		DisplayName:  input.DisplayName(),
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	account.UID = accountUID(email)

	err = p.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*Account)(nil)).
			Where("email = ?", email).
			Exists(ctx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check account email")
		}

		if exists {
			return signup.ErrEmailInUse
		}

		if _, err := tx.NewInsert().Model(account).Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "account creation transaction failed")
	}

	user := accountToUser(account)

	if p.logger != nil {
		p.logger.Info("account created uid=%s email=%s", user.UID, user.Email)
	}

	// account creation signs the new user in
	p.notifier.Notify(user)

	return user, nil
}

// OnAuthStateChanged implements signup.IdentityProvider.
func (p *Provider) OnAuthStateChanged(handler func(*signup.User)) func() {
	return p.notifier.Register(handler)
}

// VerifyPassword checks credentials against the stored hash and returns the
// matching user.
func (p *Provider) VerifyPassword(ctx context.Context, email, password string) (*signup.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	account := new(Account)
	err := p.db.NewSelect().
		Model(account).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, signup.ErrAccountNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load account")
	}

	if err := signup.ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		return nil, err
	}

	return accountToUser(account), nil
}

// SignOut clears the provider session and pushes a nil auth-state
// notification to every registered handler.
func (p *Provider) SignOut() {
	p.notifier.Notify(nil)
}

// Close releases the backing database.
func (p *Provider) Close() error {
	return p.db.Close()
}

func validateInput(in signup.AccountInput) error {
	return validation.Errors{
		"email":    validation.Validate(in.Email, validation.Required, is.Email),
		"password": validation.Validate(in.Password, validation.Required, validation.Length(6, 0)),
	}.Filter()
}

// accountUID derives a stable identifier from the email so repeated
// registrations of the same address would collide instead of minting a new
// subject. Falls back to a random identifier if derivation fails.
func accountUID(email string) string {
	if id, err := hashid.NewUUID(email); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

func accountToUser(a *Account) *signup.User {
	return &signup.User{
		UID:         a.UID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		ProviderID:  ProviderName,
		CreatedAt:   a.CreatedAt,
	}
}

package signup

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingProvider struct {
	notifier    *StateNotifier
	createCalls []AccountInput
	createErr   error
	user        *User
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{
		notifier: NewStateNotifier(),
		user:     &User{UID: "uid-1", Email: "a@b.com", DisplayName: "A B"},
	}
}

func (s *recordingProvider) CreateAccount(ctx context.Context, input AccountInput) (*User, error) {
	s.createCalls = append(s.createCalls, input)
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.notifier.Notify(s.user)
	return s.user, nil
}

func (s *recordingProvider) OnAuthStateChanged(handler func(*User)) func() {
	return s.notifier.Register(handler)
}

func newTestController(t *testing.T, provider *recordingProvider, opts ...SignupControllerOption) *SignupController {
	t.Helper()

	store, err := NewSessionStore(provider)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	opts = append([]SignupControllerOption{WithStore(store)}, opts...)
	return NewSignupController(opts...)
}

func validPayload() SignupCreatePayload {
	return SignupCreatePayload{
		FirstName:       "A",
		LastName:        "B",
		Email:           "a@b.com",
		Password:        "pw123456",
		ConfirmPassword: "pw123456",
	}
}

func bindPayload(ctx *router.MockContext, payload SignupCreatePayload) {
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		p := args.Get(0).(*SignupCreatePayload)
		*p = payload
	}).Return(nil)
}

func TestSignupShowRendersEmptyForm(t *testing.T) {
	ctrl := newTestController(t, newRecordingProvider())

	ctx := router.NewMockContext()
	ctx.On("Render", ctrl.Views.Signup, mock.Anything).Run(func(args mock.Arguments) {
		vc, ok := args.Get(1).(router.ViewContext)
		require.True(t, ok, "expected router.ViewContext")
		assert.Nil(t, vc["errors"])
		assert.Equal(t, SignupCreatePayload{}, vc["record"])
		assert.Equal(t, false, vc["submitting"])
	}).Return(nil)

	require.NoError(t, ctrl.SignupShow(ctx))
	ctx.AssertExpectations(t)
}

func TestSignupCreateMissingFieldBlocksProviderCall(t *testing.T) {
	provider := newRecordingProvider()
	ctrl := newTestController(t, provider)

	payload := validPayload()
	payload.Email = ""

	ctx := router.NewMockContext()
	bindPayload(ctx, payload)

	var rendered router.ViewContext
	ctx.On("Render", ctrl.Views.Signup, mock.Anything).Run(func(args mock.Arguments) {
		rendered = args.Get(1).(router.ViewContext)
	}).Return(nil)

	require.NoError(t, ctrl.SignupCreate(ctx))

	assert.Empty(t, provider.createCalls, "provider must not be called")
	assert.Equal(t, MsgFieldsIncomplete, rendered["validation"])
	ctx.AssertExpectations(t)
}

func TestSignupCreatePasswordMismatchBlocksProviderCall(t *testing.T) {
	provider := newRecordingProvider()
	ctrl := newTestController(t, provider)

	payload := validPayload()
	payload.ConfirmPassword = "different"

	ctx := router.NewMockContext()
	bindPayload(ctx, payload)

	var rendered router.ViewContext
	ctx.On("Render", ctrl.Views.Signup, mock.Anything).Run(func(args mock.Arguments) {
		rendered = args.Get(1).(router.ViewContext)
	}).Return(nil)

	require.NoError(t, ctrl.SignupCreate(ctx))

	assert.Empty(t, provider.createCalls)
	assert.Equal(t, MsgPasswordMismatch, rendered["validation"])
	ctx.AssertExpectations(t)
}

func TestSignupCreateValidPayloadCallsProviderOnce(t *testing.T) {
	provider := newRecordingProvider()
	ctrl := newTestController(t, provider)

	ctx := router.NewMockContext()
	bindPayload(ctx, validPayload())
	ctx.On("Context").Return(context.Background())
	ctx.On("Redirect", ctrl.Routes.Welcome, []int{router.StatusSeeOther}).Return(nil)

	require.NoError(t, ctrl.SignupCreate(ctx))

	require.Len(t, provider.createCalls, 1)
	assert.Equal(t, "a@b.com", provider.createCalls[0].Email)
	assert.Equal(t, "pw123456", provider.createCalls[0].Password)
	assert.Equal(t, "A", provider.createCalls[0].FirstName)
	assert.Equal(t, "B", provider.createCalls[0].LastName)

	// the auth-state notification reached the store
	assert.Same(t, provider.user, ctrl.Store.CurrentUser())
	ctx.AssertExpectations(t)
}

func TestSignupCreateProviderFailureRendersRetryMessage(t *testing.T) {
	provider := newRecordingProvider()
	provider.createErr = errors.New("provider unavailable")
	ctrl := newTestController(t, provider)

	ctx := router.NewMockContext()
	bindPayload(ctx, validPayload())
	ctx.On("Context").Return(context.Background())

	var rendered router.ViewContext
	ctx.On("Render", ctrl.Views.Signup, mock.Anything).Run(func(args mock.Arguments) {
		rendered = args.Get(1).(router.ViewContext)
	}).Return(nil)

	require.NoError(t, ctrl.SignupCreate(ctx))

	require.Len(t, provider.createCalls, 1)
	assert.Equal(t, MsgSignupFailed, rendered["validation"])
	assert.Nil(t, ctrl.Store.CurrentUser())
	ctx.AssertExpectations(t)
}

func TestSignupCreateSetsSessionCookie(t *testing.T) {
	provider := newRecordingProvider()
	ctrl := newTestController(t, provider, WithSessionToken(SessionTokenConfig{
		SigningKey: "0123456789abcdef0123456789abcdef",
		Issuer:     "signup-test",
		CookieName: "app_session",
		TTL:        time.Hour,
	}))

	ctx := router.NewMockContext()
	bindPayload(ctx, validPayload())
	ctx.On("Context").Return(context.Background())

	var cookie *router.Cookie
	ctx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
		return c.Name == "app_session"
	})).Run(func(args mock.Arguments) {
		cookie = args.Get(0).(*router.Cookie)
	}).Return()
	ctx.On("Redirect", ctrl.Routes.Welcome, []int{router.StatusSeeOther}).Return(nil)

	require.NoError(t, ctrl.SignupCreate(ctx))

	require.NotNil(t, cookie, "session cookie should be set")
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HTTPOnly)
	assert.True(t, cookie.Secure)
	assert.True(t, cookie.Expires.After(time.Now()))
	ctx.AssertExpectations(t)
}

type captureLogger struct {
	entries []string
}

func (c *captureLogger) format(format string, args ...any) {
	c.entries = append(c.entries, fmt.Sprintf(format, args...))
}

func (c *captureLogger) Debug(format string, args ...any) { c.format(format, args...) }
func (c *captureLogger) Info(format string, args ...any)  { c.format(format, args...) }
func (c *captureLogger) Error(format string, args ...any) { c.format(format, args...) }

func TestSignupCreateLogsFormattedProviderError(t *testing.T) {
	provider := newRecordingProvider()
	provider.createErr = errors.New("wire down")
	logger := &captureLogger{}
	ctrl := newTestController(t, provider, WithControllerLogger(logger))

	ctx := router.NewMockContext()
	bindPayload(ctx, validPayload())
	ctx.On("Context").Return(context.Background())
	ctx.On("Render", ctrl.Views.Signup, mock.Anything).Return(nil)

	require.NoError(t, ctrl.SignupCreate(ctx))

	require.Len(t, logger.entries, 1)
	assert.Contains(t, logger.entries[0], "signup create account:")
	assert.NotContains(t, logger.entries[0], "%!", "format verbs must match the arguments")
}

func TestWelcomeShowRendersCurrentUser(t *testing.T) {
	provider := newRecordingProvider()
	ctrl := newTestController(t, provider)

	provider.notifier.Notify(provider.user)

	ctx := router.NewMockContext()
	ctx.On("Render", ctrl.Views.Welcome, mock.Anything).Run(func(args mock.Arguments) {
		vc := args.Get(1).(router.ViewContext)
		assert.Same(t, provider.user, vc["user"])
	}).Return(nil)

	require.NoError(t, ctrl.WelcomeShow(ctx))
	ctx.AssertExpectations(t)
}

func TestNewSignupControllerPanicsWithoutStore(t *testing.T) {
	assert.Panics(t, func() {
		NewSignupController()
	})
}

func TestSignupCreatePayloadValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SignupCreatePayload)
		wantMsg string
	}{
		{
			name:   "valid payload",
			mutate: func(p *SignupCreatePayload) {},
		},
		{
			name:    "missing first name",
			mutate:  func(p *SignupCreatePayload) { p.FirstName = "" },
			wantMsg: MsgFieldsIncomplete,
		},
		{
			name:    "missing last name",
			mutate:  func(p *SignupCreatePayload) { p.LastName = "" },
			wantMsg: MsgFieldsIncomplete,
		},
		{
			name:    "missing email",
			mutate:  func(p *SignupCreatePayload) { p.Email = "" },
			wantMsg: MsgFieldsIncomplete,
		},
		{
			name:    "missing password",
			mutate:  func(p *SignupCreatePayload) { p.Password = "" },
			wantMsg: MsgFieldsIncomplete,
		},
		{
			name:    "missing confirmation",
			mutate:  func(p *SignupCreatePayload) { p.ConfirmPassword = "" },
			wantMsg: MsgFieldsIncomplete,
		},
		{
			name: "mismatched passwords",
			mutate: func(p *SignupCreatePayload) {
				p.ConfirmPassword = "different"
			},
			wantMsg: MsgPasswordMismatch,
		},
		{
			name: "empty pair is reported as incomplete, not mismatched",
			mutate: func(p *SignupCreatePayload) {
				p.Password = ""
				p.ConfirmPassword = ""
			},
			wantMsg: MsgFieldsIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(&payload)

			err := payload.Validate()
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, ValidationMessage(err))
		})
	}
}

package signup

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// User facing messages for the signup form. The strings are part of the
// form's contract, keep them stable.
const (
	MsgFieldsIncomplete = "Please make sure all the fields are completed."
	MsgPasswordMismatch = "Passwords do not match"
	MsgSignupFailed     = "Failed to create an account. Try again later."
)

// RegisterSignupRoutes mounts the signup flow on app.
func RegisterSignupRoutes[T any](app router.Router[T], opts ...SignupControllerOption) {

	controller := NewSignupController(opts...)

	app.
		Get(controller.Routes.Signup, controller.SignupShow).
		SetName("sign-up.get")

	app.
		Post(controller.Routes.Signup, controller.SignupCreate).
		SetName("sign-up.post")

	app.
		Get(controller.Routes.Welcome, controller.WelcomeShow).
		SetName("welcome.get")
}

type SignupControllerRoutes struct {
	Signup  string
	Welcome string
}

type SignupControllerViews struct {
	Signup  string
	Welcome string
}

// SignupController drives the signup form: it renders the five credential
// fields, runs the validation gate, and hands valid submissions to the
// session store, waiting for the settled result.
type SignupController struct {
	Debug        bool
	Logger       Logger
	Store        *SessionStore
	Routes       *SignupControllerRoutes
	Views        *SignupControllerViews
	SessionToken *SessionTokenConfig
	ErrorHandler router.ErrorHandler
}

type SignupControllerOption func(*SignupController) *SignupController

// WithStore sets the session store backing the controller.
func WithStore(store *SessionStore) SignupControllerOption {
	return func(c *SignupController) *SignupController {
		c.Store = store
		return c
	}
}

// WithControllerLogger overrides the controller logger.
func WithControllerLogger(l Logger) SignupControllerOption {
	return func(c *SignupController) *SignupController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

// WithSessionToken enables the post-signup session cookie.
func WithSessionToken(cfg SessionTokenConfig) SignupControllerOption {
	return func(c *SignupController) *SignupController {
		c.SessionToken = &cfg
		return c
	}
}

// WithDebug toggles request payload dumps.
func WithDebug(debug bool) SignupControllerOption {
	return func(c *SignupController) *SignupController {
		c.Debug = debug
		return c
	}
}

func NewSignupController(opts ...SignupControllerOption) *SignupController {
	c := &SignupController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &SignupControllerRoutes{
			Signup:  "/signup",
			Welcome: "/welcome",
		},
		Views: &SignupControllerViews{
			Signup:  "signup",
			Welcome: "welcome",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Store == nil {
		panic("Missing SessionStore in signup controller...")
	}

	return c
}

func (a *SignupController) SignupShow(ctx router.Context) error {
	if err := ctx.Render(a.Views.Signup, router.ViewContext{
		"errors":     nil,
		"record":     SignupCreatePayload{},
		"submitting": false,
	}); err != nil {
		return a.ErrorHandler(ctx, err)
	}
	return nil
}

// SignupCreatePayload is the form payload
type SignupCreatePayload struct {
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate gates the provider call: every field present first, matching
// passwords second. Each gate collapses to the single message the form
// renders, provider-side rules (email shape, password strength) stay with
// the provider.
func (r SignupCreatePayload) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required),
		validation.Field(&r.LastName, validation.Required),
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.ConfirmPassword, validation.Required),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, MsgFieldsIncomplete).
			WithTextCode("FIELDS_INCOMPLETE")
	}

	if err := validation.Validate(r.ConfirmPassword, validation.By(ValidateStringEquals(r.Password))); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, MsgPasswordMismatch).
			WithTextCode("PASSWORD_MISMATCH")
	}

	return nil
}

func (r SignupCreatePayload) accountInput() AccountInput {
	return AccountInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
	}
}

func (a *SignupController) SignupCreate(ctx router.Context) error {
	payload := new(SignupCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		errors := FormatValidationErrorToMap(err)
		a.Logger.Error("signup parse payload: %s", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Signup, router.ViewContext{
			"errors": errors,
			"record": payload,
		})
	}

	if a.Debug {
		fmt.Println("======= SIGNUP CREATE ======")
		fmt.Println(print.MaybePrettyJSON(map[string]string{
			"first_name": payload.FirstName,
			"last_name":  payload.LastName,
			"email":      payload.Email,
		}))
		fmt.Println("============================")
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("signup validate payload: %s", err)
		return ctx.Render(a.Views.Signup, router.ViewContext{
			"record":     payload,
			"validation": ValidationMessage(err),
			"submitting": false,
		})
	}

	// Valid submission: any stale message is gone, the provider call is
	// awaited so asynchronous failures surface here instead of being dropped.
	user, err := a.Store.Signup(ctx.Context(), payload.accountInput())
	if err != nil {
		a.Logger.Error("signup create account: %s", err)
		return ctx.Render(a.Views.Signup, router.ViewContext{
			"record":     payload,
			"validation": MsgSignupFailed,
			"submitting": false,
		})
	}

	if a.SessionToken != nil {
		token, expires, err := MintSessionToken(*a.SessionToken, user)
		if err != nil {
			// the account exists, a failed cookie only costs the user a login
			a.Logger.Error("signup session token: %s", err)
		} else {
			a.setSessionCookie(ctx, token, expires)
		}
	}

	return ctx.Redirect(a.Routes.Welcome, router.StatusSeeOther)
}

func (a *SignupController) WelcomeShow(ctx router.Context) error {
	if err := ctx.Render(a.Views.Welcome, router.ViewContext{
		"user": a.Store.CurrentUser(),
	}); err != nil {
		return a.ErrorHandler(ctx, err)
	}
	return nil
}

func (a *SignupController) setSessionCookie(ctx router.Context, token string, expires time.Time) {
	name := a.SessionToken.CookieName
	if name == "" {
		name = DefaultSessionCookieName
	}

	ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func defaultErrHandler(c router.Context, err error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": err.Error(),
	})
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-router"
	mflash "github.com/goliatone/go-router/middleware/flash"

	signup "github.com/aOrro/coaching-project"
	"github.com/aOrro/coaching-project/provider/firebase"
	"github.com/aOrro/coaching-project/provider/local"
)

func main() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("app"),
	)

	ctx := context.Background()

	provider, closeProvider, err := buildProvider(ctx, cfg, lgr)
	if err != nil {
		log.Fatalf("failed to build identity provider: %v", err)
	}

	store, err := signup.NewSessionStore(provider,
		signup.WithStoreLogger(lgr.GetLogger("store")),
	)
	if err != nil {
		log.Fatalf("failed to build session store: %v", err)
	}

	engine := django.New("./views", ".html")

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:           cfg.App.Name,
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})

	srv.Router().WithLogger(lgr.GetLogger("router"))
	srv.Router().Use(mflash.New(mflash.ConfigDefault))

	signup.RegisterSignupRoutes(srv.Router(),
		signup.WithStore(store),
		signup.WithControllerLogger(lgr.GetLogger("signup")),
		signup.WithDebug(cfg.App.Debug),
		signup.WithSessionToken(signup.SessionTokenConfig{
			SigningKey: cfg.Session.SigningKey,
			Issuer:     cfg.App.Name,
			CookieName: cfg.Session.CookieName,
			TTL:        time.Duration(cfg.Session.TTLHours) * time.Hour,
		}),
	)

	srv.Router().Get("/", func(ctx router.Context) error {
		return ctx.Redirect("/signup", router.StatusSeeOther)
	})

	mainLogger := lgr.GetLogger("main")
	mainLogger.Info("listening", "addr", cfg.App.Addr(), "provider", cfg.Provider.Kind)

	srv.Serve(cfg.App.Addr())

	WaitExitSignal()

	if err := store.Close(); err != nil {
		mainLogger.Error("session store close", "error", err)
	}

	if closeProvider != nil {
		if err := closeProvider(); err != nil {
			mainLogger.Error("provider close", "error", err)
		}
	}
}

func buildProvider(ctx context.Context, cfg *Config, lgr *glog.BaseLogger) (signup.IdentityProvider, func() error, error) {
	switch cfg.Provider.Kind {
	case "firebase":
		p, err := firebase.New(ctx, firebase.Config{
			ProjectID:       cfg.Provider.FirebaseProjectID,
			CredentialsFile: cfg.Provider.FirebaseCredentials,
		})
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil
	default:
		p, err := local.New(ctx, local.WithLogger(lgr.GetLogger("provider")))
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	}
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/activitymap"
	"github.com/goliatone/go-blog/config"
	"github.com/goliatone/go-blog/persistence"
	"github.com/goliatone/go-blog/posts"
	"github.com/goliatone/go-blog/server"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/uptrace/bun"
)

const usage = `usage: blogd [command] [args]

commands:
  serve               run the HTTP API (default)
  migrate             create the database schema and exit
  activate <email>    mark a user as active
  deactivate <email>  mark a user as inactive
`

type App struct {
	config *config.Config
	logger *glog.BaseLogger
	db     *bun.DB
	repo   blog.RepositoryManager
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("blogd"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	if err := run(lgr, flag.Args()); err != nil {
		lgr.GetLogger("main").Error("blogd failed", "error", err)
		os.Exit(1)
	}
}

func run(lgr *glog.BaseLogger, args []string) error {
	command := "serve"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	lgr.GetLogger("config").Debug("configuration loaded")
	fmt.Println(print.MaybeHighlightJSON(cfg.Redacted()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &App{config: cfg, logger: lgr}
	if err := WithPersistence(ctx, app); err != nil {
		return err
	}
	defer app.db.Close()

	switch command {
	case "serve":
		return Serve(ctx, app)
	case "migrate":
		app.GetLogger("persistence").Info("schema is up to date")
		return nil
	case "activate", "deactivate":
		if len(args) != 1 {
			flag.Usage()
			return fmt.Errorf("%s expects exactly one email", command)
		}
		return SetActive(ctx, app, args[0], command == "activate")
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := persistence.Open(ctx, app.config.Database.Persistence(), app.GetLogger("persistence"))
	if err != nil {
		return err
	}

	if err := persistence.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	repo := blog.NewRepositoryManager(db)
	repo.MustValidate()

	app.db = db
	app.repo = repo

	return nil
}

func Serve(ctx context.Context, app *App) error {
	tokens, err := blog.NewTokenService(
		app.config.Auth.TokenConfig(),
		blog.WithTokenLogger(app.GetLogger("auth:token")),
	)
	if err != nil {
		return err
	}

	gate := blog.NewGate(app.repo.Users(), tokens, blog.NewBcryptHasher(app.config.Auth.BcryptCost)).
		WithLogger(app.GetLogger("auth:gate")).
		WithActivitySink(activitymap.Sink(app.GetLogger("auth:activity")))

	srv := server.New(server.Deps{
		Gate:  gate,
		Posts: posts.NewService(app.repo).WithLogger(app.GetLogger("posts")),
		LoggerFor: func(name string) blog.Logger {
			return app.GetLogger(name)
		},
	})

	errCh := make(chan error, 1)
	go func() {
		app.GetLogger("http").Info("listening", "addr", app.config.HTTP.Addr)
		errCh <- srv.Listen(app.config.HTTP.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		app.GetLogger("http").Info("shutting down")
		return srv.ShutdownWithTimeout(app.config.HTTP.ShutdownTimeout)
	}
}

func SetActive(ctx context.Context, app *App, email string, active bool) error {
	user, err := app.repo.Users().SetActive(ctx, email, active)
	if err != nil {
		return err
	}

	app.GetLogger("users").Info("user status updated", "id", user.ID, "email", user.Email, "is_active", user.IsActive)
	return nil
}

package server

import (
	"github.com/gofiber/fiber/v2"
	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/middleware/authware"
	"github.com/goliatone/go-blog/posts"
)

// Deps are the collaborators the HTTP layer needs
type Deps struct {
	Gate   *blog.Gate
	Posts  *posts.Service
	Logger blog.Logger
	// LoggerFor returns a named child logger. Optional, Logger is used when nil.
	LoggerFor func(name string) blog.Logger
}

func (d Deps) logger(name string) blog.Logger {
	if d.LoggerFor != nil {
		if l := d.LoggerFor(name); l != nil {
			return l
		}
	}
	if d.Logger != nil {
		return d.Logger
	}
	return blog.DefaultLogger()
}

// New builds the fiber app with every route mounted
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "go-blog",
		StrictRouting:         false,
		DisableStartupMessage: true,
		ErrorHandler:          blog.ErrorHandler(deps.logger("http")),
	})

	Register(app, deps)

	return app
}

// Register mounts the routes on r
func Register(r fiber.Router, deps Deps) {
	protected := authware.New(authware.Config{
		Resolver: deps.Gate,
		Logger:   deps.logger("auth:http"),
	})

	r.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "go-blog API"})
	})

	blog.NewAuthController(deps.Gate).
		WithLogger(deps.logger("auth:ctrl")).
		RegisterRoutes(r, protected)

	posts.NewController(deps.Posts).
		WithLogger(deps.logger("posts:ctrl")).
		RegisterRoutes(r, protected)
}

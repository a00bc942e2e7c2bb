package posts

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	blog "github.com/goliatone/go-blog"
)

// PostPayload is the body of create and update requests. Title is required,
// text is optional and cleared when omitted on update.
type PostPayload struct {
	Title *string `form:"title" json:"title"`
	Text  *string `form:"text" json:"text"`
}

// Validate will validate the payload
func (r PostPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NotNil),
	)
}

func (r PostPayload) title() string {
	if r.Title == nil {
		return ""
	}
	return *r.Title
}

// Input converts the payload for Service.Create
func (r PostPayload) Input() blog.PostInput {
	return blog.PostInput{Title: r.title(), Text: r.Text}
}

// Update converts the payload for Service.Update
func (r PostPayload) Update() blog.PostUpdate {
	return blog.PostUpdate{Title: r.title(), Text: r.Text}
}

type ControllerRoutes struct {
	Create string
	List   string
	Get    string
	Update string
	Delete string
}

type Controller struct {
	Logger  blog.Logger
	Service *Service
	Routes  *ControllerRoutes
}

func NewController(service *Service) *Controller {
	return &Controller{
		Logger:  blog.DefaultLogger(),
		Service: service,
		Routes: &ControllerRoutes{
			Create: "/create-post",
			List:   "/list-posts",
			Get:    "/get-post/:id",
			Update: "/update-post/:id",
			Delete: "/delete-post/:id",
		},
	}
}

func (p *Controller) WithLogger(logger blog.Logger) *Controller {
	if logger != nil {
		p.Logger = logger
	}
	return p
}

// RegisterRoutes mounts the post endpoints. protected must resolve an active caller.
func (p *Controller) RegisterRoutes(r fiber.Router, protected fiber.Handler) {
	r.Post(p.Routes.Create, protected, blog.WithUser(p.Create))
	r.Get(p.Routes.List, p.List)
	r.Get(p.Routes.Get, p.Get)
	r.Patch(p.Routes.Update, protected, blog.WithUser(p.Update))
	r.Delete(p.Routes.Delete, protected, blog.WithUser(p.Delete))
}

func (p *Controller) Create(c *fiber.Ctx, user *blog.User) error {
	payload, err := p.bindPayload(c)
	if err != nil {
		return err
	}

	post, err := p.Service.Create(c.UserContext(), user, payload.Input())
	if err != nil {
		return err
	}

	return c.JSON(post)
}

func (p *Controller) List(c *fiber.Ctx) error {
	records, err := p.Service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(records)
}

func (p *Controller) Get(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	post, err := p.Service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(post)
}

func (p *Controller) Update(c *fiber.Ctx, user *blog.User) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	payload, err := p.bindPayload(c)
	if err != nil {
		return err
	}

	post, err := p.Service.Update(c.UserContext(), user, id, payload.Update())
	if err != nil {
		return err
	}

	return c.JSON(post)
}

func (p *Controller) Delete(c *fiber.Ctx, user *blog.User) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	post, err := p.Service.Delete(c.UserContext(), user, id)
	if err != nil {
		return err
	}

	return c.JSON(post)
}

func (p *Controller) bindPayload(c *fiber.Ctx) (*PostPayload, error) {
	payload := new(PostPayload)

	if err := c.BodyParser(payload); err != nil {
		p.Logger.Debug("post parse payload", "error", err)
		return nil, blog.ErrMalformedBody
	}

	if err := payload.Validate(); err != nil {
		return nil, blog.NewValidationError(err)
	}

	return payload, nil
}

func postID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return 0, blog.ErrInvalidID
	}
	return int64(id), nil
}

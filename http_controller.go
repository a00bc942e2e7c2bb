package blog

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
)

// CredentialsPayload is the body of /signup and /login
type CredentialsPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload. bcrypt only reads the first 72 bytes.
func (r CredentialsPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 72)),
	)
}

type AuthControllerRoutes struct {
	Signup string
	Login  string
	Me     string
}

type AuthController struct {
	Logger Logger
	Gate   *Gate
	Routes *AuthControllerRoutes
}

func NewAuthController(gate *Gate) *AuthController {
	return &AuthController{
		Logger: defLogger{},
		Gate:   gate,
		Routes: &AuthControllerRoutes{
			Signup: "/signup",
			Login:  "/login",
			Me:     "/me",
		},
	}
}

func (a *AuthController) WithLogger(logger Logger) *AuthController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// RegisterRoutes mounts the auth endpoints. protected must resolve the caller.
func (a *AuthController) RegisterRoutes(r fiber.Router, protected fiber.Handler) {
	r.Post(a.Routes.Signup, a.Signup)
	r.Post(a.Routes.Login, a.Login)
	r.Get(a.Routes.Me, protected, WithUser(a.Me))
}

func (a *AuthController) Signup(c *fiber.Ctx) error {
	payload, err := a.bindCredentials(c)
	if err != nil {
		return err
	}

	user, err := a.Gate.Signup(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(user)
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload, err := a.bindCredentials(c)
	if err != nil {
		return err
	}

	token, err := a.Gate.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(token)
}

func (a *AuthController) Me(c *fiber.Ctx, user *User) error {
	return c.JSON(user.SortPosts())
}

func (a *AuthController) bindCredentials(c *fiber.Ctx) (*CredentialsPayload, error) {
	payload := new(CredentialsPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Debug("credentials parse payload", "error", err)
		return nil, ErrMalformedBody
	}

	if err := payload.Validate(); err != nil {
		return nil, NewValidationError(err)
	}

	return payload, nil
}

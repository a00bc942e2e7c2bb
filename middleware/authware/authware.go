package authware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	blog "github.com/goliatone/go-blog"
)

var defaultTokenLookup = "header:" + fiber.HeaderAuthorization

// ValidationListener is invoked after the caller has been resolved but before the handler runs.
type ValidationListener func(c *fiber.Ctx, user *blog.User) error

type Config struct {
	Filter         func(*fiber.Ctx) bool
	SuccessHandler fiber.Handler
	// ErrorHandler receives blog.ErrNoCredentials, blog.ErrInvalidCredentials,
	// blog.ErrInactiveAccount or a wrapped store error. Defaults to returning
	// the error so the app error handler renders it.
	ErrorHandler func(*fiber.Ctx, error) error
	// Resolver is required
	Resolver    blog.IdentityResolver
	ContextKey  string
	TokenLookup string
	AuthScheme  string
	// AllowInactive stops after the authentication step, inactive users pass
	AllowInactive       bool
	ValidationListeners []ValidationListener
	Logger              blog.Logger
}

// New resolves the bearer token once per request and stores the caller with
// blog.SetCurrentUser.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)
	extractors := cfg.getExtractors()

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := ExtractRawToken(c, extractors)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		var user *blog.User
		if cfg.AllowInactive {
			user, err = cfg.Resolver.Authenticate(c.UserContext(), raw)
		} else {
			user, err = cfg.Resolver.ResolveActiveUser(c.UserContext(), raw)
		}
		if err != nil {
			cfg.Logger.Debug("identity resolution rejected", "path", c.Path(), "error", err)
			return cfg.ErrorHandler(c, err)
		}

		if err := cfg.runValidationListeners(c, user); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		blog.SetCurrentUser(c, cfg.ContextKey, user)

		return cfg.SuccessHandler(c)
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Resolver == nil {
		panic("BLOG: identity middleware configuration: Resolver is required.")
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return err
		}
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = blog.DefaultContextKey
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.Logger == nil {
		cfg.Logger = blog.DefaultLogger()
	}

	return cfg
}

// ExtractRawToken returns the first token found by extractors
func ExtractRawToken(c *fiber.Ctx, extractors []TokenExtractor) (string, error) {
	for _, extractor := range extractors {
		if raw, err := extractor(c); raw != "" && err == nil {
			return raw, nil
		}
	}
	return "", blog.ErrNoCredentials
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func (cfg *Config) runValidationListeners(c *fiber.Ctx, user *blog.User) error {
	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(c, user); err != nil {
			return err
		}
	}
	return nil
}

// TokenExtractor pulls a raw token out of the request
type TokenExtractor func(c *fiber.Ctx) (string, error)

// GetExtractors parses a lookup such as "header:Authorization,cookie:jwt,query:access_token"
func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.SplitN(strings.TrimSpace(rootPart), ":", 2)
		if len(parts) != 2 {
			continue
		}

		name := strings.TrimSpace(parts[1])
		switch strings.TrimSpace(parts[0]) {
		case "header":
			extractors = append(extractors, tokenFromHeader(name, authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(name))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(name))
		}
	}

	return extractors
}

// tokenFromHeader expects "<scheme> <token>", the scheme is case insensitive.
func tokenFromHeader(header string, authScheme string) TokenExtractor {
	authScheme = strings.TrimSpace(authScheme)
	return func(c *fiber.Ctx) (string, error) {
		a := strings.TrimSpace(c.Get(header))
		l := len(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) && a[l] == ' ' {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", blog.ErrNoCredentials
	}
}

func tokenFromQuery(param string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", blog.ErrNoCredentials
		}
		return token, nil
	}
}

func tokenFromCookie(name string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", blog.ErrNoCredentials
		}
		return token, nil
	}
}

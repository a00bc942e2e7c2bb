package blog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// dummyPassword is hashed once per Gate so unknown emails pay the same
// verify cost as a wrong password.
const dummyPassword = "blog-login-timing-equalizer"

// Gate handles signup, login and per request identity resolution
type Gate struct {
	users        UserStore
	hasher       PasswordHasher
	tokens       *TokenService
	logger       Logger
	activitySink ActivitySink

	dummyOnce sync.Once
	dummyHash string
}

var _ IdentityResolver = (*Gate)(nil)

// NewGate returns a new Gate
func NewGate(users UserStore, tokens *TokenService, hasher PasswordHasher) *Gate {
	if hasher == nil {
		hasher = NewBcryptHasher(0)
	}
	return &Gate{
		users:        users,
		hasher:       hasher,
		tokens:       tokens,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (g *Gate) WithLogger(logger Logger) *Gate {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (g *Gate) WithActivitySink(sink ActivitySink) *Gate {
	g.activitySink = normalizeActivitySink(sink)
	return g
}

// TokenService returns the codec used by this Gate
func (g *Gate) TokenService() *TokenService {
	return g.tokens
}

// Signup registers a new active user
func (g *Gate) Signup(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)

	_, err := g.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		g.emit(ctx, ActivityEventSignupFailure, 0, email, map[string]any{"error": ErrDuplicateEmail.Error()})
		return nil, ErrDuplicateEmail
	case !errors.Is(err, ErrUserNotFound):
		g.logger.Error("Signup lookup error", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	hash, err := g.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, ErrNoEmptyString) || errors.Is(err, bcrypt.ErrPasswordTooLong) {
			g.emit(ctx, ActivityEventSignupFailure, 0, email, map[string]any{"error": "invalid_password"})
			return nil, errors.Wrap(err, errors.CategoryBadInput, "Password must be between 1 and 72 bytes").
				WithTextCode(TextCodeInvalidPassword).
				WithCode(errors.CodeBadRequest)
		}
		g.logger.Error("Signup hash password error", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	user, err := g.users.Register(ctx, &User{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			g.emit(ctx, ActivityEventSignupFailure, 0, email, map[string]any{"error": err.Error()})
			return nil, ErrDuplicateEmail
		}
		g.logger.Error("Signup register error", "error", err)
		return nil, err
	}

	g.emit(ctx, ActivityEventSignupSuccess, user.ID, user.Email, nil)

	return user.SortPosts(), nil
}

// Login verifies the password and issues an access token. Unknown email and
// wrong password both return ErrInvalidLoginCredentials.
func (g *Gate) Login(ctx context.Context, email, password string) (AccessToken, error) {
	email = NormalizeEmail(email)

	user, err := g.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			g.hasher.Verify(password, g.timingHash())
			g.emit(ctx, ActivityEventLoginFailure, 0, email, map[string]any{"reason": "unknown_email"})
			return AccessToken{}, ErrInvalidLoginCredentials
		}
		g.logger.Error("Login lookup error", "error", err)
		return AccessToken{}, errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	if !g.hasher.Verify(password, user.PasswordHash) {
		g.emit(ctx, ActivityEventLoginFailure, user.ID, email, map[string]any{"reason": "password_mismatch"})
		return AccessToken{}, ErrInvalidLoginCredentials
	}

	token, err := g.tokens.Issue(user.Email)
	if err != nil {
		g.logger.Error("Login issue token error", "error", err)
		return AccessToken{}, err
	}

	g.emit(ctx, ActivityEventLoginSuccess, user.ID, user.Email, nil)

	return token, nil
}

// Authenticate resolves rawToken to a known user without looking at is_active
func (g *Gate) Authenticate(ctx context.Context, rawToken string) (*User, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, ErrNoCredentials
	}

	claims, err := g.tokens.Decode(rawToken)
	if err != nil {
		if IsTokenError(err) {
			g.logger.Debug("Authenticate rejected token", "error", err)
		} else {
			g.logger.Error("Authenticate decode error", "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	user, err := g.users.GetByEmail(ctx, claims.Subject())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			g.logger.Debug("Authenticate unknown subject")
			return nil, ErrInvalidCredentials
		}
		g.logger.Error("Authenticate lookup error", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve identity")
	}

	return user, nil
}

// ResolveActiveUser is Authenticate plus the is_active check
func (g *Gate) ResolveActiveUser(ctx context.Context, rawToken string) (*User, error) {
	user, err := g.Authenticate(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveAccount
	}

	return user, nil
}

// timingHash returns a hash of dummyPassword made with the Gate hasher
func (g *Gate) timingHash() string {
	g.dummyOnce.Do(func() {
		hash, err := g.hasher.Hash(dummyPassword)
		if err != nil {
			g.logger.Warn("timing hash error: %v", err)
			return
		}
		g.dummyHash = hash
	})
	return g.dummyHash
}

func (g *Gate) emit(ctx context.Context, eventType ActivityEventType, userID int64, email string, metadata map[string]any) {
	sink := normalizeActivitySink(g.activitySink)
	if metadata == nil {
		metadata = map[string]any{}
	}

	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Email:      email,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if err := sink.Record(ctx, event); err != nil {
		g.logger.Warn("activity sink record error: %v", err)
	}
}

package blog_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	blog "github.com/goliatone/go-blog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestGate(t *testing.T, store blog.UserStore, opts ...blog.TokenServiceOption) (*blog.Gate, *capturingSink) {
	t.Helper()
	sink := &capturingSink{}
	gate := blog.NewGate(store, newTestTokenService(t, opts...), blog.NewBcryptHasher(bcrypt.MinCost)).
		WithLogger(quietLogger{}).
		WithActivitySink(sink)
	return gate, sink
}

func hashedUser(t *testing.T, email, password string, active bool) *blog.User {
	t.Helper()
	hash, err := blog.NewBcryptHasher(bcrypt.MinCost).Hash(password)
	require.NoError(t, err)
	return &blog.User{ID: 7, Email: email, PasswordHash: hash, IsActive: active}
}

func TestGate_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("registers an active user with a hashed password", func(t *testing.T) {
		store := new(MockUserStore)
		store.On("GetByEmail", ctx, "a@x.com").Return(nil, blog.ErrUserNotFound)
		store.On("Register", ctx, mock.MatchedBy(func(u *blog.User) bool {
			return u.Email == "a@x.com" && u.IsActive && u.PasswordHash != "" && u.PasswordHash != "pw1"
		})).Return(nil, nil)

		gate, sink := newTestGate(t, store)

		user, err := gate.Signup(ctx, " a@x.com ", "pw1")
		require.NoError(t, err)

		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, "a@x.com", user.Email)
		assert.True(t, user.IsActive)
		assert.NotNil(t, user.Posts)
		assert.Empty(t, user.Posts)
		assert.True(t, blog.NewBcryptHasher(bcrypt.MinCost).Verify("pw1", user.PasswordHash))
		assert.Equal(t, []blog.ActivityEventType{blog.ActivityEventSignupSuccess}, sink.types())
		store.AssertExpectations(t)
	})

	t.Run("rejects a registered email", func(t *testing.T) {
		store := new(MockUserStore)
		store.On("GetByEmail", ctx, "a@x.com").Return(&blog.User{ID: 1, Email: "a@x.com"}, nil)

		gate, sink := newTestGate(t, store)

		_, err := gate.Signup(ctx, "a@x.com", "pw2")
		assert.ErrorIs(t, err, blog.ErrDuplicateEmail)
		assert.Equal(t, []blog.ActivityEventType{blog.ActivityEventSignupFailure}, sink.types())
		store.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("maps a lost insert race to duplicate email", func(t *testing.T) {
		store := new(MockUserStore)
		store.On("GetByEmail", ctx, "a@x.com").Return(nil, blog.ErrUserNotFound)
		store.On("Register", ctx, mock.Anything).Return(nil, blog.ErrDuplicateEmail)

		gate, _ := newTestGate(t, store)

		_, err := gate.Signup(ctx, "a@x.com", "pw")
		assert.ErrorIs(t, err, blog.ErrDuplicateEmail)
	})

	t.Run("hides store failures", func(t *testing.T) {
		store := new(MockUserStore)
		store.On("GetByEmail", ctx, "a@x.com").Return(nil, errors.New("disk on fire"))

		gate, _ := newTestGate(t, store)

		_, err := gate.Signup(ctx, "a@x.com", "pw")
		require.Error(t, err)
		status, msg := blog.HTTPStatus(err)
		assert.Equal(t, 500, status)
		assert.NotContains(t, msg, "disk")
	})
}

func TestGate_Login(t *testing.T) {
	ctx := context.Background()
	user := hashedUser(t, "a@x.com", "pw1", true)

	store := new(MockUserStore)
	store.On("GetByEmail", ctx, "a@x.com").Return(user, nil)
	store.On("GetByEmail", ctx, "nobody@x.com").Return(nil, blog.ErrUserNotFound)

	gate, sink := newTestGate(t, store)

	t.Run("issues a bearer token for the email", func(t *testing.T) {
		token, err := gate.Login(ctx, "a@x.com", "pw1")
		require.NoError(t, err)
		assert.Equal(t, "bearer", token.Type)

		claims, err := gate.TokenService().Decode(token.Token)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", claims.Subject())
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		_, wrongPassword := gate.Login(ctx, "a@x.com", "nope")
		_, unknownEmail := gate.Login(ctx, "nobody@x.com", "pw1")

		assert.ErrorIs(t, wrongPassword, blog.ErrInvalidLoginCredentials)
		assert.ErrorIs(t, unknownEmail, blog.ErrInvalidLoginCredentials)
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

		s1, m1 := blog.HTTPStatus(wrongPassword)
		s2, m2 := blog.HTTPStatus(unknownEmail)
		assert.Equal(t, 400, s1)
		assert.Equal(t, s1, s2)
		assert.Equal(t, m1, m2)
	})

	t.Run("inactive users can still log in", func(t *testing.T) {
		inactive := hashedUser(t, "off@x.com", "pw", false)
		store.On("GetByEmail", ctx, "off@x.com").Return(inactive, nil)

		_, err := gate.Login(ctx, "off@x.com", "pw")
		assert.NoError(t, err)
	})

	assert.Contains(t, sink.types(), blog.ActivityEventLoginSuccess)
	assert.Contains(t, sink.types(), blog.ActivityEventLoginFailure)
}

func TestGate_ResolveActiveUser(t *testing.T) {
	ctx := context.Background()

	active := &blog.User{ID: 1, Email: "a@x.com", IsActive: true}
	inactive := &blog.User{ID: 2, Email: "off@x.com", IsActive: false}

	store := new(MockUserStore)
	store.On("GetByEmail", ctx, "a@x.com").Return(active, nil)
	store.On("GetByEmail", ctx, "off@x.com").Return(inactive, nil)
	store.On("GetByEmail", ctx, "gone@x.com").Return(nil, blog.ErrUserNotFound)
	store.On("GetByEmail", ctx, "broken@x.com").Return(nil, errors.New("connection reset"))

	gate, _ := newTestGate(t, store)
	ts := gate.TokenService()

	issue := func(sub string) string {
		token, err := ts.Issue(sub)
		require.NoError(t, err)
		return token.Token
	}

	past := time.Now().Add(-time.Hour)
	stale := newTestTokenService(t, blog.WithClock(func() time.Time { return past }))
	expired, err := stale.Issue("a@x.com")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
		wantID  int64
	}{
		{name: "valid", token: issue("a@x.com"), wantID: 1},
		{name: "missing", token: "", wantErr: blog.ErrNoCredentials},
		{name: "blank", token: "   ", wantErr: blog.ErrNoCredentials},
		{name: "garbage", token: "abc.def.ghi", wantErr: blog.ErrInvalidCredentials},
		{name: "expired", token: expired.Token, wantErr: blog.ErrInvalidCredentials},
		{name: "unknown subject", token: issue("gone@x.com"), wantErr: blog.ErrInvalidCredentials},
		{name: "inactive", token: issue("off@x.com"), wantErr: blog.ErrInactiveAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := gate.ResolveActiveUser(ctx, tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, user.ID)
		})
	}

	t.Run("expired is not reported as expired", func(t *testing.T) {
		_, err := gate.ResolveActiveUser(ctx, expired.Token)
		assert.False(t, errors.Is(err, blog.ErrTokenExpired))
	})

	t.Run("store failure is internal", func(t *testing.T) {
		_, err := gate.ResolveActiveUser(ctx, issue("broken@x.com"))
		require.Error(t, err)
		status, _ := blog.HTTPStatus(err)
		assert.Equal(t, 500, status)
	})

	t.Run("authenticate skips the active check", func(t *testing.T) {
		user, err := gate.Authenticate(ctx, issue("off@x.com"))
		require.NoError(t, err)
		assert.Equal(t, int64(2), user.ID)
	})
}

func TestGate_SinkErrorsDoNotFailLogin(t *testing.T) {
	ctx := context.Background()
	user := hashedUser(t, "a@x.com", "pw", true)

	store := new(MockUserStore)
	store.On("GetByEmail", ctx, "a@x.com").Return(user, nil)

	gate, _ := newTestGate(t, store)
	gate.WithActivitySink(blog.ActivitySinkFunc(func(context.Context, blog.ActivityEvent) error {
		return errors.New("sink down")
	}))

	_, err := gate.Login(ctx, "a@x.com", "pw")
	assert.NoError(t, err)
}

type countingHasher struct {
	blog.BcryptHasher
	verified []string
}

func (c *countingHasher) Verify(password, hash string) bool {
	c.verified = append(c.verified, hash)
	return c.BcryptHasher.Verify(password, hash)
}

func TestGate_LoginUnknownEmailRunsVerify(t *testing.T) {
	ctx := context.Background()

	store := new(MockUserStore)
	store.On("GetByEmail", ctx, "nobody@x.com").Return(nil, blog.ErrUserNotFound)

	hasher := &countingHasher{BcryptHasher: blog.NewBcryptHasher(bcrypt.MinCost)}
	gate := blog.NewGate(store, newTestTokenService(t), hasher).WithLogger(quietLogger{})

	for i := 0; i < 2; i++ {
		_, err := gate.Login(ctx, "nobody@x.com", "pw")
		assert.ErrorIs(t, err, blog.ErrInvalidLoginCredentials)
	}

	require.Len(t, hasher.verified, 2)
	assert.NotEmpty(t, hasher.verified[0])
	assert.Equal(t, hasher.verified[0], hasher.verified[1])

	cost, err := bcrypt.Cost([]byte(hasher.verified[0]))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestGate_SignupRejectsUnhashablePasswords(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		password string
	}{
		{name: "empty", password: ""},
		{name: "over 72 bytes", password: strings.Repeat("é", 72)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockUserStore)
			store.On("GetByEmail", ctx, "a@x.com").Return(nil, blog.ErrUserNotFound)

			gate, sink := newTestGate(t, store)

			_, err := gate.Signup(ctx, "a@x.com", tt.password)
			require.Error(t, err)

			status, msg := blog.HTTPStatus(err)
			assert.Equal(t, 400, status)
			assert.Equal(t, "Password must be between 1 and 72 bytes", msg)
			assert.Equal(t, []blog.ActivityEventType{blog.ActivityEventSignupFailure}, sink.types())
			store.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
		})
	}
}

package blog_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/persistence"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type quietLogger struct{}

func (quietLogger) Debug(string, ...any) {}
func (quietLogger) Info(string, ...any)  {}
func (quietLogger) Warn(string, ...any)  {}
func (quietLogger) Error(string, ...any) {}

// MockUserStore implements blog.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*blog.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*blog.User)
	return user, args.Error(1)
}

// Register echoes the record back with id 1 unless the expectation returns a user
func (m *MockUserStore) Register(ctx context.Context, user *blog.User) (*blog.User, error) {
	args := m.Called(ctx, user)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	if u, ok := args.Get(0).(*blog.User); ok && u != nil {
		return u, nil
	}
	user.ID = 1
	return user, nil
}

type capturingSink struct {
	events []blog.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, evt blog.ActivityEvent) error {
	c.events = append(c.events, evt)
	return nil
}

func (c *capturingSink) types() []blog.ActivityEventType {
	out := make([]blog.ActivityEventType, 0, len(c.events))
	for _, evt := range c.events {
		out = append(out, evt.EventType)
	}
	return out
}

func newTestTokenService(t *testing.T, opts ...blog.TokenServiceOption) *blog.TokenService {
	t.Helper()
	opts = append([]blog.TokenServiceOption{blog.WithTokenLogger(quietLogger{})}, opts...)
	ts, err := blog.NewTokenService(&blog.TokenConfig{
		SigningKey: []byte("test-signing-key"),
		Algorithm:  "HS256",
		TTL:        30 * time.Minute,
	}, opts...)
	require.NoError(t, err)
	return ts
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	ctx := context.Background()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := persistence.Open(ctx, persistence.Config{
		Driver: persistence.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	}, quietLogger{})
	require.NoError(t, err)
	require.NoError(t, persistence.Migrate(ctx, db))

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func strPtr(s string) *string {
	return &s
}

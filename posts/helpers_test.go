package posts_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/persistence"
	"github.com/stretchr/testify/require"
)

type quietLogger struct{}

func (quietLogger) Debug(string, ...any) {}
func (quietLogger) Info(string, ...any)  {}
func (quietLogger) Warn(string, ...any)  {}
func (quietLogger) Error(string, ...any) {}

func newTestRepo(t *testing.T) blog.RepositoryManager {
	t.Helper()

	ctx := context.Background()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := persistence.Open(ctx, persistence.Config{
		Driver: persistence.DriverSQLite,
		DSN:    fmt.Sprintf("file:posts_%s?mode=memory&cache=shared", name),
	}, quietLogger{})
	require.NoError(t, err)
	require.NoError(t, persistence.Migrate(ctx, db))

	t.Cleanup(func() {
		_ = db.Close()
	})

	return blog.NewRepositoryManager(db)
}

func newUser(t *testing.T, repo blog.RepositoryManager, email string) *blog.User {
	t.Helper()
	user, err := repo.Users().Register(context.Background(), &blog.User{Email: email, PasswordHash: "h", IsActive: true})
	require.NoError(t, err)
	return user
}

func strPtr(s string) *string {
	return &s
}

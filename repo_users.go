package blog

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
)

// pgUniqueViolation is the SQLSTATE postgres uses for unique constraint failures
const pgUniqueViolation = "23505"

type Users interface {
	UserStore

	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	SetActive(ctx context.Context, email string, active bool) (*User, error)
	SetActiveTx(ctx context.Context, tx bun.IDB, email string, active bool) (*User, error)
	Count(ctx context.Context) (int, error)
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Relation("Posts").
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to select user by email")
	}

	return record.SortPosts(), nil
}

func (a *users) GetByID(ctx context.Context, id int64) (*User, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *users) GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Relation("Posts").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to select user by id")
	}

	return record.SortPosts(), nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

// RegisterTx inserts user. A unique violation on email is reported as
// ErrDuplicateEmail so concurrent signups fail the same way as sequential ones.
func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	if user == nil {
		return nil, errors.New("user must not be nil", errors.CategoryBadInput)
	}

	prepareUserDefaults(user)

	if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert user")
	}

	return user.SortPosts(), nil
}

func (a *users) SetActive(ctx context.Context, email string, active bool) (*User, error) {
	return a.SetActiveTx(ctx, a.db, email, active)
}

func (a *users) SetActiveTx(ctx context.Context, tx bun.IDB, email string, active bool) (*User, error) {
	res, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("is_active = ?", active).
		Where("email = ?", NormalizeEmail(email)).
		Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update user status")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrUserNotFound
	}

	return a.GetByEmailTx(ctx, tx, email)
}

func (a *users) Count(ctx context.Context) (int, error) {
	return a.db.NewSelect().Model((*User)(nil)).Count(ctx)
}

// NormalizeEmail trims surrounding whitespace; addresses are compared as stored
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func prepareUserDefaults(record *User) {
	record.Email = NormalizeEmail(record.Email)
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.Posts == nil {
		record.Posts = []*Post{}
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

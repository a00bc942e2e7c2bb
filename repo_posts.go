package blog

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type Posts interface {
	List(ctx context.Context) ([]*Post, error)
	ListTx(ctx context.Context, tx bun.IDB) ([]*Post, error)
	GetByID(ctx context.Context, id int64) (*Post, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*Post, error)
	Create(ctx context.Context, post *Post) (*Post, error)
	CreateTx(ctx context.Context, tx bun.IDB, post *Post) (*Post, error)
	UpdateTx(ctx context.Context, tx bun.IDB, post *Post) (*Post, error)
	DeleteTx(ctx context.Context, tx bun.IDB, post *Post) (*Post, error)
}

type posts struct {
	db *bun.DB
}

var _ Posts = (*posts)(nil)

func NewPostsRepository(db *bun.DB) Posts {
	return &posts{db: db}
}

func (p *posts) List(ctx context.Context) ([]*Post, error) {
	return p.ListTx(ctx, p.db)
}

func (p *posts) ListTx(ctx context.Context, tx bun.IDB) ([]*Post, error) {
	records := make([]*Post, 0)
	err := tx.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list posts")
	}
	return records, nil
}

func (p *posts) GetByID(ctx context.Context, id int64) (*Post, error) {
	return p.GetByIDTx(ctx, p.db, id)
}

func (p *posts) GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*Post, error) {
	record := &Post{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to select post")
	}

	return record, nil
}

func (p *posts) Create(ctx context.Context, post *Post) (*Post, error) {
	return p.CreateTx(ctx, p.db, post)
}

func (p *posts) CreateTx(ctx context.Context, tx bun.IDB, post *Post) (*Post, error) {
	if post == nil {
		return nil, errors.New("post must not be nil", errors.CategoryBadInput)
	}

	if _, err := tx.NewInsert().Model(post).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert post")
	}

	return post, nil
}

// UpdateTx writes the mutable columns only; author_id and created_at are never touched
func (p *posts) UpdateTx(ctx context.Context, tx bun.IDB, post *Post) (*Post, error) {
	res, err := tx.NewUpdate().
		Model(post).
		Column("title", "text").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update post")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrPostNotFound
	}

	return post, nil
}

func (p *posts) DeleteTx(ctx context.Context, tx bun.IDB, post *Post) (*Post, error) {
	res, err := tx.NewDelete().
		Model(post).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to delete post")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrPostNotFound
	}

	return post, nil
}

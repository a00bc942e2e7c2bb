package posts

import (
	"context"
	"time"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Service runs post operations. Update and delete read, check ownership and
// write inside one transaction. Concurrent updates to the same post are last
// writer wins.
type Service struct {
	repo   blog.RepositoryManager
	logger blog.Logger
	now    func() time.Time
}

func NewService(repo blog.RepositoryManager) *Service {
	return &Service{
		repo:   repo,
		logger: blog.DefaultLogger(),
		now:    time.Now,
	}
}

func (s *Service) WithLogger(logger blog.Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Create stores a post owned by author. The author id never comes from the client.
func (s *Service) Create(ctx context.Context, author *blog.User, in blog.PostInput) (*blog.Post, error) {
	if author == nil {
		return nil, blog.ErrNoCredentials
	}

	post, err := s.repo.Posts().Create(ctx, blog.NewPost(author.ID, in, s.now()))
	if err != nil {
		s.logger.Error("create post error", "author_id", author.ID, "error", err)
		return nil, err
	}

	return post, nil
}

func (s *Service) List(ctx context.Context) ([]*blog.Post, error) {
	return s.repo.Posts().List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*blog.Post, error) {
	return s.repo.Posts().GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, caller *blog.User, id int64, upd blog.PostUpdate) (*blog.Post, error) {
	var updated *blog.Post

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		post, err := s.repo.Posts().GetByIDTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := EnsureAuthor(caller, post); err != nil {
			return err
		}

		updated, err = s.repo.Posts().UpdateTx(ctx, tx, upd.Apply(post))
		return err
	})

	if err != nil {
		return nil, s.txError("update", id, err)
	}

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, caller *blog.User, id int64) (*blog.Post, error) {
	var deleted *blog.Post

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		post, err := s.repo.Posts().GetByIDTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := EnsureAuthor(caller, post); err != nil {
			return err
		}

		deleted, err = s.repo.Posts().DeleteTx(ctx, tx, post)
		return err
	})

	if err != nil {
		return nil, s.txError("delete", id, err)
	}

	return deleted, nil
}

func (s *Service) txError(op string, id int64, err error) error {
	if errors.Is(err, blog.ErrPostNotFound) || errors.Is(err, blog.ErrForbidden) {
		return err
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		s.logger.Error(op+" post error", "post_id", id, "error", err)
		return richErr
	}

	s.logger.Error(op+" post transaction error", "post_id", id, "error", err)
	return errors.Wrap(err, errors.CategoryInternal, op+" post transaction failed")
}

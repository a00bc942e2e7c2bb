package posts

import (
	blog "github.com/goliatone/go-blog"
)

// EnsureAuthor returns blog.ErrForbidden unless caller wrote post
func EnsureAuthor(caller *blog.User, post *blog.Post) error {
	if caller == nil || post == nil || caller.ID != post.AuthorID {
		return blog.ErrForbidden
	}
	return nil
}

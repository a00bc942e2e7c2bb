package blog

import (
	"slices"
	"time"

	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Email         string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	IsActive      bool      `bun:"is_active,notnull,default:true" json:"is_active"`
	Posts         []*Post   `bun:"rel:has-many,join:id=author_id" json:"posts"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
}

// SortPosts orders the owned posts by id and replaces a nil slice with an
// empty one so it serializes as [].
func (u *User) SortPosts() *User {
	if u == nil {
		return u
	}
	if u.Posts == nil {
		u.Posts = []*Post{}
	}
	slices.SortFunc(u.Posts, func(a, b *Post) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return u
}

// Post is the post model
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:pst"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Title         string    `bun:"title,notnull" json:"title"`
	Text          *string   `bun:"text" json:"text"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
	AuthorID      int64     `bun:"author_id,notnull" json:"author_id"`
	Author        *User     `bun:"rel:belongs-to,join:author_id=id" json:"-"`
}

// PostInput is the payload used to create a post
type PostInput struct {
	Title string
	Text  *string
}

// PostUpdate lists every field a post author may change
type PostUpdate struct {
	Title string
	Text  *string
}

// Apply copies the mutable fields onto post
func (u PostUpdate) Apply(post *Post) *Post {
	if post == nil {
		return nil
	}
	post.Title = u.Title
	post.Text = u.Text
	return post
}

// NewPost builds a post owned by authorID
func NewPost(authorID int64, in PostInput, now time.Time) *Post {
	return &Post{
		Title:     in.Title,
		Text:      in.Text,
		AuthorID:  authorID,
		CreatedAt: now.UTC(),
	}
}

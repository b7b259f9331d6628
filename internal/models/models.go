package models

import (
	"database/sql"
	"strings"
	"time"
)

type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	PasswordHash string    `db:"password_hash"`
	DateJoined   time.Time `db:"date_joined"`
}

// FullName returns "first last" with surrounding space trimmed.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserProfile carries every app-level ownership relation of a User.
type UserProfile struct {
	ID       int64  `db:"id"`
	UserID   int64  `db:"user_id"`
	Username string `db:"username"`
}

type Session struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Slug string `db:"slug"`
}

type Post struct {
	ID           int64          `db:"id"`
	ProfileID    int64          `db:"profile_id"`
	Title        string         `db:"title"`
	Content      string         `db:"content"`
	CategoryID   sql.NullInt64  `db:"category_id"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	Author       string         `db:"author"`
	AuthorUserID int64          `db:"author_user_id"`
	CategoryName sql.NullString `db:"category_name"`
	CategorySlug sql.NullString `db:"category_slug"`
}

// Edited reports whether the post changed after it was published.
func (p *Post) Edited() bool { return p.UpdatedAt.After(p.CreatedAt) }

type Comment struct {
	ID          int64         `db:"id"`
	ProfileID   sql.NullInt64 `db:"profile_id"`
	PostID      int64         `db:"post_id"`
	Name        string        `db:"name"`
	CommentText string        `db:"comment_text"`
	CreatedAt   time.Time     `db:"created_at"`
	Likes       int           `db:"likes"`
}

// Anonymous reports whether the comment was left without an account.
func (c *Comment) Anonymous() bool { return !c.ProfileID.Valid }

type Like struct {
	ID        int64 `db:"id"`
	ProfileID int64 `db:"profile_id"`
	PostID    int64 `db:"post_id"`
	IsLiked   bool  `db:"is_liked"`
}

type CommentLike struct {
	ID        int64 `db:"id"`
	ProfileID int64 `db:"profile_id"`
	CommentID int64 `db:"comment_id"`
	IsLiked   bool  `db:"is_liked"`
}

// PostDetail is everything the detail page shows for one post and viewer.
type PostDetail struct {
	Post            *Post
	Comments        []*Comment
	UserLiked       bool
	LikedCommentIDs map[int64]bool
	TotalLikes      int
}

// Page is one slice of a paginated listing.
type Page struct {
	Posts    []*Post
	Number   int
	NumPages int
	Total    int
}

func (p *Page) HasPrevious() bool { return p.Number > 1 }
func (p *Page) HasNext() bool     { return p.Number < p.NumPages }
func (p *Page) PreviousNumber() int {
	return p.Number - 1
}
func (p *Page) NextNumber() int { return p.Number + 1 }

package forms

import (
	"database/sql"
	"net/url"

	"blog/internal/models"
)

// CommentForm only has a name field for anonymous visitors; signed-in
// users comment under their account name.
type CommentForm struct {
	*Form
	Anonymous bool
}

func NewCommentForm(data url.Values, authenticated bool) *CommentForm {
	return &CommentForm{Form: New(data), Anonymous: !authenticated}
}

func (f *CommentForm) Validate() {
	f.Required("comment_text")
	if f.Anonymous {
		f.Required("name")
		f.MaxLength("name", 30)
	}
}

// Comment builds the comment for postID. author is nil for anonymous
// submissions; otherwise any submitted name is ignored.
func (f *CommentForm) Comment(postID int64, author *models.User, profile *models.UserProfile) *models.Comment {
	c := &models.Comment{PostID: postID, CommentText: f.Get("comment_text")}
	if author != nil && profile != nil {
		c.ProfileID = sql.NullInt64{Int64: profile.ID, Valid: true}
		c.Name = author.FullName()
		return c
	}
	c.Name = f.Get("name")
	return c
}
